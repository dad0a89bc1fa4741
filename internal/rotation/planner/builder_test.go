package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchbalancer/rotation-engine/internal/models"
	"github.com/benchbalancer/rotation-engine/internal/rotation/lineup"
)

func ids(names ...string) []models.PlayerID {
	out := make([]models.PlayerID, len(names))
	for i, n := range names {
		out[i] = models.PlayerID(n)
	}
	return out
}

func TestBuild_SixPlayersFourField(t *testing.T) {
	roster := ids("A", "B", "C", "D", "E", "F")
	lineups := lineup.Generate(roster, 4, 1)
	require.Len(t, lineups, 6)

	plan := Build(lineups, Params{Duration: 1200, Swaps: 1, MinInterval: 60, EndBuffer: 30})
	require.Len(t, plan.Events, 5)

	expectedTimes := []int{200, 400, 600, 800, 1000}
	for i, ev := range plan.Events {
		assert.Equal(t, expectedTimes[i], ev.Time)
		assert.Len(t, ev.Off, 1)
		assert.Len(t, ev.On, 1)
	}
}

func TestBuild_SevenPlayersFiveField(t *testing.T) {
	roster := ids("P1", "P2", "P3", "P4", "P5", "P6", "P7")
	lineups := lineup.Generate(roster, 5, 1)
	require.Len(t, lineups, 7)

	plan := Build(lineups, Params{Duration: 1400, Swaps: 1, MinInterval: 60, EndBuffer: 30})
	require.Len(t, plan.Events, 6)
	for _, ev := range plan.Events {
		assert.Equal(t, 0, ev.Time%200)
	}
}

func TestBuild_EmptyWhenLineupSequenceTooShort(t *testing.T) {
	plan := Build(nil, Params{Duration: 1200, Swaps: 1, MinInterval: 60, EndBuffer: 30})
	assert.Empty(t, plan.Events)

	plan = Build([]lineup.Lineup{{models.PlayerID("A")}}, Params{Duration: 1200, Swaps: 1, MinInterval: 60, EndBuffer: 30})
	assert.Empty(t, plan.Events)
}

func TestBuild_EmptyOnTightWindow(t *testing.T) {
	roster := ids("A", "B", "C", "D", "E")
	lineups := lineup.Generate(roster, 4, 1)
	require.NotEmpty(t, lineups)

	plan := Build(lineups, Params{Duration: 70, Swaps: 1, MinInterval: 60, EndBuffer: 30})
	assert.Empty(t, plan.Events)
}

func TestBuild_EventsStrictlyIncreasingAndBuffered(t *testing.T) {
	roster := ids("A", "B", "C", "D", "E", "F", "G", "H", "I")
	lineups := lineup.Generate(roster, 5, 2)
	require.NotEmpty(t, lineups)

	plan := Build(lineups, Params{Duration: 900, Swaps: 2, MinInterval: 60, EndBuffer: 30})
	last := -1
	for _, ev := range plan.Events {
		assert.Greater(t, ev.Time, last)
		assert.LessOrEqual(t, ev.Time, 900-30)
		last = ev.Time
	}
}
