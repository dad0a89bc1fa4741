package engine

import (
	"github.com/benchbalancer/rotation-engine/internal/models"
	"github.com/benchbalancer/rotation-engine/internal/rotation/optimizer"
	"github.com/benchbalancer/rotation-engine/internal/rotation/rotationerrors"
)

// requestRecoveryPlan asks the optimizer for a fresh forward plan from the
// engine's current snapshot and, on success, replaces the plan tail.
// On failure (too few available players) the current plan is kept, per
// spec.md §7's missing-plan propagation policy.
func (e *Engine) requestRecoveryPlan(reason models.Reason) {
	tracks := e.buildPlayerTracks()

	plan, _, err := optimizer.GeneratePlan(optimizer.Input{
		Now:                      e.currentTime,
		GameLength:               e.config.GameLengthSeconds(),
		FieldSize:                e.config.FieldSize,
		CheckInterval:            e.config.CheckIntervalSeconds,
		LookAheadWindow:          e.config.LookAheadWindowSeconds,
		MinAcceptableSubInterval: e.config.MinAcceptableSubInterval,
		Tempo:                    e.setup.Tempo,
		IdealShiftsOverride:      e.config.IdealShiftsOverride,
		Players:                  tracks,
		LastSubTime:              e.lastSubTime,
		HalftimeFired:            e.halftimeFired,
	})
	if err != nil {
		e.report(rotationerrors.SeverityWarning, rotationerrors.CategoryRotation, err.Error(), "requestRecoveryPlan", reason)
		return
	}

	e.plan = plan
	e.planCursor = 0
	e.earlyWarnFired = false
	e.imminentWarnFired = false
}

func (e *Engine) buildPlayerTracks() []optimizer.PlayerTrack {
	tracks := make([]optimizer.PlayerTrack, 0, len(e.roster.Players))
	for i, p := range e.roster.Players {
		st, ok := e.ledger.Players[p]
		if !ok {
			continue
		}
		status := optimizer.StatusOnBench
		fieldStint, benchStint := 0, 0
		switch {
		case e.placement.IsRemoved(p):
			status = optimizer.StatusRemoved
		case e.placement.OnField(p):
			status = optimizer.StatusOnField
			fieldStint = e.ledger.CurrentStint(p, e.currentTime)
		default:
			status = optimizer.StatusOnBench
			benchStint = e.ledger.CurrentStint(p, e.currentTime)
		}
		tracks = append(tracks, optimizer.PlayerTrack{
			ID:                p,
			RosterIdx:         i,
			Status:            status,
			TotalPlayed:       st.FieldSeconds,
			CurrentFieldStint: fieldStint,
			CurrentBenchStint: benchStint,
			TotalBenched:      st.BenchSeconds,
		})
	}
	return tracks
}
