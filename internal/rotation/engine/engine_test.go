package engine

import (
	"testing"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchbalancer/rotation-engine/internal/models"
	"github.com/benchbalancer/rotation-engine/internal/rotation/optimizer"
)

func ids(names ...string) []models.PlayerID {
	out := make([]models.PlayerID, len(names))
	for i, n := range names {
		out[i] = models.PlayerID(n)
	}
	return out
}

func newTestEngine() (*Engine, *time.Time) {
	clock := time.Unix(0, 0)
	e := New(nil, nil)
	e.now = func() time.Time { return clock }
	return e, &clock
}

func tickBy(e *Engine, clock *time.Time, seconds int) {
	for remaining := seconds; remaining > 0; {
		step := minInt(remaining, e.config.MaxTickCatchupSeconds)
		*clock = clock.Add(time.Duration(step) * time.Second)
		e.Tick()
		remaining -= step
	}
}

func TestInitialize_SixPlayersProducesExpectedPlan(t *testing.T) {
	e, _ := newTestEngine()
	result, err := e.Initialize(Setup{
		RosterStarters: ids("A", "B", "C", "D"),
		RosterReserves: ids("E", "F"),
		FieldSize:      4,
		PeriodSeconds:  1200,
		NumPeriods:     2,
		SwapsPerChange: 1,
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 6, result.RosterSize)
	assert.Equal(t, 5, result.RotationsPlanned)
	assert.Equal(t, models.StateIdle, e.state)
}

func TestStateMachine_StartStopGameOver(t *testing.T) {
	e, _ := newTestEngine()
	_, err := e.Initialize(Setup{
		RosterStarters: ids("A", "B", "C", "D"),
		RosterReserves: ids("E", "F"),
		FieldSize:      4,
		PeriodSeconds:  1200,
		NumPeriods:     2,
		SwapsPerChange: 1,
	})
	require.NoError(t, err)

	assert.True(t, e.Start())
	assert.Equal(t, models.StateRunning, e.state)
	assert.True(t, e.Stop())
	assert.Equal(t, models.StateIdle, e.state)

	e.state = models.StateGameOver
	assert.False(t, e.Start())
}

func TestTick_ScheduledRotationEntersPendingThenConfirms(t *testing.T) {
	e, clock := newTestEngine()
	_, err := e.Initialize(Setup{
		RosterStarters: ids("A", "B", "C", "D"),
		RosterReserves: ids("E", "F"),
		FieldSize:      4,
		PeriodSeconds:  1200,
		NumPeriods:     2,
		SwapsPerChange: 1,
	})
	require.NoError(t, err)
	require.True(t, e.Start())
	e.lastTickAt = *clock

	tickBy(e, clock, 200)

	require.Equal(t, models.StateRotationPending, e.state)
	require.NotNil(t, e.pending)
	off := append([]models.PlayerID(nil), e.pending.Off...)

	require.True(t, e.ConfirmRotation())
	assert.Equal(t, models.StateRunning, e.state)
	for _, p := range off {
		assert.True(t, e.placement.OnBench(p))
	}
}

func TestEmergencySubstitution_RemovesPlayerFromGame(t *testing.T) {
	e, clock := newTestEngine()
	_, err := e.Initialize(Setup{
		RosterStarters: ids("A", "B", "C", "D"),
		RosterReserves: ids("E", "F"),
		FieldSize:      4,
		PeriodSeconds:  1200,
		NumPeriods:     2,
		SwapsPerChange: 1,
	})
	require.NoError(t, err)
	require.True(t, e.Start())
	e.lastTickAt = *clock
	tickBy(e, clock, 300)

	benchBefore := len(e.placement.Bench)
	frozenAt := e.ledger.Players["A"].FieldSeconds

	require.True(t, e.EmergencySubstitution("A", "E", true))
	assert.True(t, e.placement.OnField("E"))
	assert.False(t, e.placement.OnField("A"))
	assert.True(t, e.placement.IsRemoved("A"))
	assert.Equal(t, benchBefore-1, len(e.placement.Bench))

	tickBy(e, clock, 50)
	assert.Equal(t, frozenAt, e.ledger.Players["A"].FieldSeconds, "removed player's ledger must freeze")
}

func TestHandleVisibilityChange_CatchupCrossesPeriodBoundary(t *testing.T) {
	e, clock := newTestEngine()
	_, err := e.Initialize(Setup{
		RosterStarters: ids("A", "B", "C", "D"),
		RosterReserves: ids("E"),
		FieldSize:      4,
		PeriodSeconds:  600,
		NumPeriods:     2,
		SwapsPerChange: 1,
	})
	require.NoError(t, err)
	require.True(t, e.Start())

	e.currentTime = 550
	e.periodElapsed = 550

	e.HandleVisibilityChange(false, 0)
	e.HandleVisibilityChange(true, 100)

	assert.Equal(t, 650, e.currentTime)
	assert.Equal(t, 2, e.currentPeriod)
	assert.Equal(t, 50, e.periodElapsed)
}

func TestInitialize_EmptyPlanOnTightWindow(t *testing.T) {
	e, clock := newTestEngine()
	result, err := e.Initialize(Setup{
		RosterStarters: ids("A", "B", "C", "D"),
		RosterReserves: ids("E"),
		FieldSize:      4,
		PeriodSeconds:  70,
		NumPeriods:     2,
		SwapsPerChange: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.RotationsPlanned)

	require.True(t, e.Start())
	e.lastTickAt = *clock
	tickBy(e, clock, 70)

	for _, p := range ids("A", "B", "C", "D") {
		assert.Equal(t, 70, e.ledger.Players[p].FieldSeconds)
	}
	assert.Equal(t, 0, e.ledger.Players[models.PlayerID("E")].FieldSeconds)
}

func TestInitialize_RejectsMismatchedStarterCount(t *testing.T) {
	e, _ := newTestEngine()
	_, err := e.Initialize(Setup{
		RosterStarters: ids("A", "B", "C"),
		RosterReserves: ids("D"),
		FieldSize:      4,
		PeriodSeconds:  1200,
		NumPeriods:     2,
		SwapsPerChange: 1,
	})
	assert.ErrorIs(t, err, ErrInvalidSetup)
}

func TestConfirmRotation_LateConfirmTriggersReplan(t *testing.T) {
	e, clock := newTestEngine()
	_, err := e.Initialize(Setup{
		RosterStarters: ids("A", "B", "C", "D"),
		RosterReserves: ids("E", "F"),
		FieldSize:      4,
		PeriodSeconds:  1200,
		NumPeriods:     2,
		SwapsPerChange: 1,
	})
	require.NoError(t, err)
	require.True(t, e.Start())
	e.lastTickAt = *clock

	tickBy(e, clock, 200)
	require.Equal(t, models.StateRotationPending, e.state)
	scheduledTime := e.pending.ScheduledTime

	// Leave the rotation unconfirmed well past the late-confirm threshold.
	tickBy(e, clock, lateConfirmThresholdSeconds+5)
	confirmTime := e.currentTime
	require.Greater(t, confirmTime-scheduledTime, lateConfirmThresholdSeconds)

	require.True(t, e.ConfirmRotation())
	assert.Equal(t, 0, e.planCursor, "a replan resets the cursor to the start of the new plan")
	require.NotEmpty(t, e.plan.Events, "late confirm must trigger a replan with at least one future event")
	firstEvent := e.plan.Events[e.planCursor]

	tracksAtConfirm := e.buildPlayerTracks()
	targets := optimizer.ComputeTargets(len(tracksAtConfirm), e.config.FieldSize, e.config.GameLengthSeconds(), e.config.CheckIntervalSeconds, e.config.IdealShiftsOverride, e.setup.Tempo)
	assert.GreaterOrEqual(t, firstEvent.Time, confirmTime+targets.MinSubGap,
		"the replanned first event must respect the minimum substitution gap measured from the (late) confirm time")

	_, lateVariance, err := optimizer.GeneratePlan(optimizer.Input{
		Now:                      confirmTime,
		GameLength:               e.config.GameLengthSeconds(),
		FieldSize:                e.config.FieldSize,
		CheckInterval:            e.config.CheckIntervalSeconds,
		LookAheadWindow:          e.config.LookAheadWindowSeconds,
		MinAcceptableSubInterval: e.config.MinAcceptableSubInterval,
		Tempo:                    e.setup.Tempo,
		IdealShiftsOverride:      e.config.IdealShiftsOverride,
		Players:                  tracksAtConfirm,
		LastSubTime:              e.lastSubTime,
		HalftimeFired:            e.halftimeFired,
	})
	require.NoError(t, err)

	// A plan that keeps substituting should project a far tighter spread of
	// playing time at game end than never substituting again from here.
	remaining := e.config.GameLengthSeconds() - confirmTime
	noSwapValues := make([]float64, 0, len(tracksAtConfirm))
	for _, p := range tracksAtConfirm {
		if p.Status == optimizer.StatusRemoved {
			continue
		}
		total := p.TotalPlayed
		if p.Status == optimizer.StatusOnField {
			total += remaining
		}
		noSwapValues = append(noSwapValues, float64(total))
	}
	noSwapVariance, err := stats.StandardDeviation(noSwapValues)
	require.NoError(t, err)

	assert.Less(t, lateVariance, noSwapVariance,
		"the replan's projected end-of-game variance must improve on never substituting again after the late confirm")
}

func TestCheckInvariants_HoldThroughoutARun(t *testing.T) {
	e, clock := newTestEngine()
	_, err := e.Initialize(Setup{
		RosterStarters: ids("A", "B", "C", "D"),
		RosterReserves: ids("E", "F"),
		FieldSize:      4,
		PeriodSeconds:  1200,
		NumPeriods:     2,
		SwapsPerChange: 1,
	})
	require.NoError(t, err)
	require.True(t, e.Start())
	e.lastTickAt = *clock

	for i := 0; i < 100; i++ {
		tickBy(e, clock, 10)
		assert.True(t, e.checkInvariants())
		if e.state == models.StateRotationPending {
			e.ConfirmRotation()
		}
	}
}
