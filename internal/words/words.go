package words

import (
	"math/rand"
	"sync"
	"time"

	"undercover/internal/domain"
)

// Pairs is a curated list of look-alike word pairs per difficulty tier.
// The first word goes to the agents, the second to the imposter.
var Pairs = map[domain.Difficulty][]domain.WordPair{
	domain.DifficultyEasy: {
		{Main: "cat", Imposter: "dog"},
		{Main: "coffee", Imposter: "tea"},
		{Main: "pizza", Imposter: "burger"},
		{Main: "sun", Imposter: "moon"},
		{Main: "beach", Imposter: "pool"},
		{Main: "apple", Imposter: "orange"},
		{Main: "train", Imposter: "bus"},
		{Main: "guitar", Imposter: "piano"},
		{Main: "winter", Imposter: "summer"},
		{Main: "shoe", Imposter: "sock"},
		{Main: "bread", Imposter: "cake"},
		{Main: "river", Imposter: "lake"},
	},
	domain.DifficultyMedium: {
		{Main: "hacker", Imposter: "programmer"},
		{Main: "dragon", Imposter: "dinosaur"},
		{Main: "casino", Imposter: "arcade"},
		{Main: "subway", Imposter: "tunnel"},
		{Main: "whiskey", Imposter: "wine"},
		{Main: "drone", Imposter: "helicopter"},
		{Main: "lantern", Imposter: "candle"},
		{Main: "volcano", Imposter: "geyser"},
		{Main: "compass", Imposter: "map"},
		{Main: "satellite", Imposter: "rocket"},
		{Main: "phoenix", Imposter: "eagle"},
		{Main: "hourglass", Imposter: "clock"},
	},
	domain.DifficultyHard: {
		{Main: "paradox", Imposter: "contradiction"},
		{Main: "illusion", Imposter: "hallucination"},
		{Main: "symphony", Imposter: "opera"},
		{Main: "glacier", Imposter: "iceberg"},
		{Main: "mosaic", Imposter: "collage"},
		{Main: "hologram", Imposter: "projection"},
		{Main: "specter", Imposter: "phantom"},
		{Main: "velocity", Imposter: "acceleration"},
		{Main: "aurora", Imposter: "rainbow"},
		{Main: "origami", Imposter: "papercraft"},
		{Main: "kaleidoscope", Imposter: "telescope"},
		{Main: "firewall", Imposter: "antivirus"},
	},
}

// Provider hands out one word pair per round
type Provider interface {
	Pair(difficulty domain.Difficulty, custom []domain.WordPair, used []domain.WordPair) domain.WordPair
}

// Catalog draws pairs from Pairs, or from the room's custom pairs when it has
// any. It is safe for concurrent use.
type Catalog struct {
	pairs map[domain.Difficulty][]domain.WordPair
	rng   *rand.Rand
	mu    sync.Mutex
}

// NewCatalog creates a catalog over pairs drawing from src
func NewCatalog(pairs map[domain.Difficulty][]domain.WordPair, src rand.Source) *Catalog {
	return &Catalog{pairs: pairs, rng: rand.New(src)}
}

// Default returns a catalog over the built-in pairs
func Default() *Catalog {
	return NewCatalog(Pairs, rand.NewSource(time.Now().UnixNano()))
}

// Pair returns a random pair that is not in used. If every candidate was
// used already, any candidate is returned.
func (c *Catalog) Pair(difficulty domain.Difficulty, custom []domain.WordPair, used []domain.WordPair) domain.WordPair {
	candidates := validPairs(custom)
	if len(candidates) == 0 {
		candidates = c.pairs[difficulty]
	}
	if len(candidates) == 0 {
		candidates = Pairs[domain.DifficultyMedium]
	}

	excluded := make(map[domain.WordPair]bool, len(used))
	for _, p := range used {
		excluded[p] = true
	}

	fresh := make([]domain.WordPair, 0, len(candidates))
	for _, p := range candidates {
		if !excluded[p] {
			fresh = append(fresh, p)
		}
	}
	if len(fresh) == 0 {
		fresh = candidates
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return fresh[c.rng.Intn(len(fresh))]
}

func validPairs(pairs []domain.WordPair) []domain.WordPair {
	out := make([]domain.WordPair, 0, len(pairs))
	for _, p := range pairs {
		if p.Valid() {
			out = append(out, p)
		}
	}
	return out
}
