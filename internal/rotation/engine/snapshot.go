package engine

import "github.com/benchbalancer/rotation-engine/internal/models"

// GetState returns a lossless, copy-only snapshot of engine state. Callers
// never receive aliases into engine-owned slices or maps.
func (e *Engine) GetState() models.Snapshot {
	var pending *models.PendingRotation
	if e.pending != nil {
		cp := *e.pending
		cp.Off = append([]models.PlayerID(nil), e.pending.Off...)
		cp.On = append([]models.PlayerID(nil), e.pending.On...)
		pending = &cp
	}

	return models.Snapshot{
		SchemaVersion: models.CurrentSchemaVersion,
		Config:        e.config,
		Placement:     e.placement.Clone(),
		Ledger:        e.ledger.Clone(),
		Plan:          e.plan.Clone(),
		PlanCursor:    e.planCursor,
		Pending:       pending,
		CurrentTime:   e.currentTime,
		CurrentPeriod: e.currentPeriod,
		PeriodElapsed: e.periodElapsed,
		Scoring:       e.scoring.Clone(),
		State:         e.state,
		CapturedAt:    e.now(),
	}
}

// Restore rebuilds engine state from a previously captured snapshot. Used
// by collaborators implementing the round-trip law in spec.md §8: a
// restored engine's subsequent tick trace must match the original's for
// identical wall-clock deltas.
func (e *Engine) Restore(roster models.Roster, setup Setup, snap models.Snapshot) {
	e.roster = roster
	e.setup = setup
	e.config = snap.Config
	e.placement = snap.Placement.Clone()
	e.ledger = snap.Ledger.Clone()
	e.plan = snap.Plan.Clone()
	e.planCursor = snap.PlanCursor
	if snap.Pending != nil {
		cp := *snap.Pending
		e.pending = &cp
	} else {
		e.pending = nil
	}
	e.currentTime = snap.CurrentTime
	e.currentPeriod = snap.CurrentPeriod
	e.periodElapsed = snap.PeriodElapsed
	e.scoring = snap.Scoring.Clone()
	e.state = snap.State
	e.lastTickAt = e.now()
}
