package words

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"undercover/internal/domain"
)

func TestPairs_AreValid(t *testing.T) {
	for tier, pairs := range Pairs {
		require.True(t, tier.Valid(), "tier %s", tier)
		require.NotEmpty(t, pairs, "tier %s", tier)
		for _, p := range pairs {
			assert.True(t, p.Valid(), "pair %+v", p)
		}
	}
}

func TestCatalog_PairFromTier(t *testing.T) {
	c := NewCatalog(Pairs, rand.NewSource(1))

	for i := 0; i < 50; i++ {
		p := c.Pair(domain.DifficultyHard, nil, nil)
		assert.Contains(t, Pairs[domain.DifficultyHard], p)
	}
}

func TestCatalog_CustomPairsTakePrecedence(t *testing.T) {
	c := NewCatalog(Pairs, rand.NewSource(1))
	custom := []domain.WordPair{{Main: "sword", Imposter: "knife"}}

	assert.Equal(t, custom[0], c.Pair(domain.DifficultyEasy, custom, nil))
}

func TestCatalog_InvalidCustomPairsIgnored(t *testing.T) {
	c := NewCatalog(Pairs, rand.NewSource(1))
	custom := []domain.WordPair{{Main: "same", Imposter: "SAME"}, {Main: "", Imposter: "x"}}

	p := c.Pair(domain.DifficultyEasy, custom, nil)
	assert.Contains(t, Pairs[domain.DifficultyEasy], p)
}

func TestCatalog_AvoidsUsedPairs(t *testing.T) {
	pairs := map[domain.Difficulty][]domain.WordPair{
		domain.DifficultyEasy: {
			{Main: "a1", Imposter: "b1"},
			{Main: "a2", Imposter: "b2"},
		},
	}
	c := NewCatalog(pairs, rand.NewSource(7))
	used := []domain.WordPair{{Main: "a1", Imposter: "b1"}}

	for i := 0; i < 20; i++ {
		assert.Equal(t, domain.WordPair{Main: "a2", Imposter: "b2"}, c.Pair(domain.DifficultyEasy, nil, used))
	}
}

func TestCatalog_ReusesWhenExhausted(t *testing.T) {
	pairs := map[domain.Difficulty][]domain.WordPair{
		domain.DifficultyEasy: {{Main: "a1", Imposter: "b1"}},
	}
	c := NewCatalog(pairs, rand.NewSource(7))

	p := c.Pair(domain.DifficultyEasy, nil, pairs[domain.DifficultyEasy])
	assert.Equal(t, pairs[domain.DifficultyEasy][0], p)
}
