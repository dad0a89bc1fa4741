package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchbalancer/rotation-engine/internal/models"
)

func track(id string, idx int, status Status) PlayerTrack {
	return PlayerTrack{ID: models.PlayerID(id), RosterIdx: idx, Status: status}
}

func TestComputeTargets_MinSubGapClamped(t *testing.T) {
	targets := ComputeTargets(6, 4, 1200, 15, 0, TempoBalanced)
	assert.GreaterOrEqual(t, targets.MinSubGap, 60)
	assert.LessOrEqual(t, targets.MinSubGap, 420)
	assert.Greater(t, targets.IdealShifts, 0)
}

func TestDecide_UrgentOffFiresWhenStintBreached(t *testing.T) {
	players := []PlayerTrack{
		track("A", 0, StatusOnField),
		track("B", 1, StatusOnField),
		track("C", 2, StatusOnField),
		track("D", 3, StatusOnField),
		track("E", 4, StatusOnBench),
		track("F", 5, StatusOnBench),
	}
	targets := ComputeTargets(6, 4, 1200, 15, 0, TempoBalanced)
	players[0].CurrentFieldStint = targets.MaxFieldStint + 10

	in := Input{
		Now:                      600,
		GameLength:               1200,
		FieldSize:                4,
		CheckInterval:            15,
		LookAheadWindow:          60,
		MinAcceptableSubInterval: 60,
		Tempo:                    TempoBalanced,
		Players:                  players,
		LastSubTime:              0,
	}
	d := Decide(in, targets)
	require.NotNil(t, d)
	assert.Equal(t, models.ReasonUrgent, d.reason)
	assert.Contains(t, d.off, models.PlayerID("A"))
}

func TestDecide_RespectsMinimumSubGap(t *testing.T) {
	players := []PlayerTrack{
		track("A", 0, StatusOnField),
		track("B", 1, StatusOnField),
		track("C", 2, StatusOnField),
		track("D", 3, StatusOnField),
		track("E", 4, StatusOnBench),
		track("F", 5, StatusOnBench),
	}
	targets := ComputeTargets(6, 4, 1200, 15, 0, TempoBalanced)

	in := Input{
		Now:                      100,
		GameLength:               1200,
		FieldSize:                4,
		CheckInterval:            15,
		LookAheadWindow:          60,
		MinAcceptableSubInterval: 60,
		Tempo:                    TempoBalanced,
		Players:                  players,
		LastSubTime:              95, // 5s since last sub, well under minSubGap
	}
	d := Decide(in, targets)
	assert.Nil(t, d)
}

func TestClassifyOff_RespectsLookAheadWindow(t *testing.T) {
	targets := ComputeTargets(6, 4, 1200, 15, 0, TempoBalanced)
	p := track("A", 0, StatusOnField)
	p.CurrentFieldStint = targets.MaxFieldStint - 75

	_, upcoming60, _ := classifyOff([]PlayerTrack{p}, targets, 60)
	assert.Empty(t, upcoming60, "75s from breach should not enter the upcoming bucket with a 60s window")

	_, upcoming90, _ := classifyOff([]PlayerTrack{p}, targets, 90)
	require.Len(t, upcoming90, 1, "75s from breach should enter the upcoming bucket with a 90s window")
	assert.Equal(t, models.PlayerID("A"), upcoming90[0].ID)
}

func TestClassifyOn_RespectsLookAheadWindow(t *testing.T) {
	targets := ComputeTargets(6, 4, 1200, 15, 0, TempoBalanced)
	p := track("E", 4, StatusOnBench)
	p.CurrentBenchStint = targets.MaxBenchStint - 75

	_, upcoming60, _ := classifyOn([]PlayerTrack{p}, targets, 60)
	assert.Empty(t, upcoming60, "75s from breach should not enter the upcoming bucket with a 60s window")

	_, upcoming90, _ := classifyOn([]PlayerTrack{p}, targets, 90)
	require.Len(t, upcoming90, 1, "75s from breach should enter the upcoming bucket with a 90s window")
	assert.Equal(t, models.PlayerID("E"), upcoming90[0].ID)
}

func TestGeneratePlan_ErrorsWithoutEnoughPlayers(t *testing.T) {
	players := []PlayerTrack{
		track("A", 0, StatusOnField),
		track("B", 1, StatusOnField),
		track("C", 2, StatusRemoved),
	}
	_, _, err := GeneratePlan(Input{
		Now:           0,
		GameLength:    1200,
		FieldSize:     4,
		CheckInterval: 15,
		Players:       players,
	})
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)
}

func TestGeneratePlan_EventsStrictlyIncreasing(t *testing.T) {
	players := []PlayerTrack{
		track("A", 0, StatusOnField),
		track("B", 1, StatusOnField),
		track("C", 2, StatusOnField),
		track("D", 3, StatusOnField),
		track("E", 4, StatusOnBench),
		track("F", 5, StatusOnBench),
	}
	plan, variance, err := GeneratePlan(Input{
		Now:                      0,
		GameLength:               1200,
		FieldSize:                4,
		CheckInterval:            15,
		LookAheadWindow:          60,
		MinAcceptableSubInterval: 60,
		Tempo:                    TempoBalanced,
		Players:                  players,
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, variance, 0.0)

	last := -1
	for _, ev := range plan.Events {
		assert.Greater(t, ev.Time, last)
		assert.Equal(t, len(ev.Off), len(ev.On))
		assert.NotEmpty(t, ev.Off)
		last = ev.Time
	}
}
