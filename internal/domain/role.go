package domain

// Role is a player's side in the current round. Each round has one imposter
// and everyone else is an agent.
type Role string

const (
	RoleNone     Role = ""
	RoleImposter Role = "imposter"
	RoleAgent    Role = "agent"
)

// Word returns the word a player with this role is shown for pair
func (r Role) Word(pair WordPair) string {
	switch r {
	case RoleImposter:
		return pair.Imposter
	case RoleAgent:
		return pair.Main
	}
	return ""
}
