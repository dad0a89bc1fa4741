package lineup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchbalancer/rotation-engine/internal/models"
)

func roster(names ...string) []models.PlayerID {
	out := make([]models.PlayerID, len(names))
	for i, n := range names {
		out[i] = models.PlayerID(n)
	}
	return out
}

func TestGenerate_SixPlayersFourField(t *testing.T) {
	r := roster("A", "B", "C", "D", "E", "F")
	lineups := Generate(r, 4, 1)
	require.Len(t, lineups, 6)

	counts := map[models.PlayerID]int{}
	for i, l := range lineups {
		require.Len(t, l, 4)
		for _, p := range l {
			counts[p]++
		}
		if i > 0 {
			prev := lineups[i-1]
			assert.Equal(t, 1, symmetricDiffCount(prev, l), "lineup %d should differ by exactly one swap", i)
		}
	}
	for _, p := range r {
		assert.Equal(t, 4, counts[p], "player %s should appear in exactly 4 of 6 lineups", p)
	}
}

func TestGenerate_SevenPlayersFiveField(t *testing.T) {
	r := roster("A", "B", "C", "D", "E", "F", "G")
	lineups := Generate(r, 5, 1)
	require.Len(t, lineups, 7)

	counts := map[models.PlayerID]int{}
	for _, l := range lineups {
		for _, p := range l {
			counts[p]++
		}
	}
	for _, p := range r {
		assert.Equal(t, 5, counts[p])
	}
}

func TestGenerate_DegenerateInputsReturnEmpty(t *testing.T) {
	r := roster("A", "B", "C", "D")
	assert.Nil(t, Generate(r, 4, 1), "no bench available")
	assert.Nil(t, Generate(r, 0, 1), "zero field size")
	assert.Nil(t, Generate(r, 2, 0), "zero swaps")
	assert.Nil(t, Generate(r, 2, 3), "swaps exceeding bench/field size")
}

func TestGenerate_GeneralBuilderBalancesWithinOne(t *testing.T) {
	r := roster("A", "B", "C", "D", "E", "F", "G", "H", "I")
	lineups := Generate(r, 5, 2)
	require.NotEmpty(t, lineups)

	counts := map[models.PlayerID]int{}
	for _, l := range lineups {
		require.Len(t, l, 5)
		for _, p := range l {
			counts[p]++
		}
	}
	minC, maxC := -1, -1
	for _, p := range r {
		c := counts[p]
		require.Greater(t, c, 0, "every player must appear at least once")
		if minC == -1 || c < minC {
			minC = c
		}
		if maxC == -1 || c > maxC {
			maxC = c
		}
	}
	assert.LessOrEqual(t, maxC-minC, 1)
}

func symmetricDiffCount(a, b Lineup) int {
	inB := map[models.PlayerID]bool{}
	for _, p := range b {
		inB[p] = true
	}
	off := 0
	for _, p := range a {
		if !inB[p] {
			off++
		}
	}
	return off
}
