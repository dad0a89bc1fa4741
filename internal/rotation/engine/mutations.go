package engine

import (
	"github.com/benchbalancer/rotation-engine/internal/models"
	"github.com/benchbalancer/rotation-engine/internal/rotation/eventbus"
	"github.com/benchbalancer/rotation-engine/internal/rotation/rotationerrors"
)

const lateConfirmThresholdSeconds = 15

// ConfirmRotation applies the pending rotation. Returns false if there is
// no pending rotation or it fails validation against current placement.
func (e *Engine) ConfirmRotation() bool {
	if e.state != models.StateRotationPending || e.pending == nil {
		return false
	}
	p := e.pending

	if len(p.Off) != len(p.On) {
		return false
	}
	for _, id := range p.Off {
		if !e.placement.OnField(id) {
			return false
		}
	}
	for _, id := range p.On {
		if !e.placement.OnBench(id) {
			return false
		}
	}

	for _, id := range p.Off {
		e.placement.Field = removeFromSet(e.placement.Field, id)
		e.placement.Bench = append(e.placement.Bench, id)
		setStintStart(&e.ledger, id, e.currentTime)
	}
	for _, id := range p.On {
		e.placement.Bench = removeFromSet(e.placement.Bench, id)
		e.placement.Field = append(e.placement.Field, id)
		setStintStart(&e.ledger, id, e.currentTime)
	}

	if !e.checkInvariants() {
		e.report(rotationerrors.SeverityError, rotationerrors.CategoryState, "placement invariant violated after confirm", "confirm_rotation", nil)
		e.fixPlacement()
		e.emit(eventbus.ErrorEvent, "placement repaired after confirm")
	}

	scheduledTime := p.ScheduledTime
	e.pending = nil
	e.state = models.StateRunning
	e.advanceCursor()
	e.lastSubTime = e.currentTime
	e.emit(eventbus.RotationConfirmed, eventbus.Event{})

	if e.currentTime-scheduledTime > lateConfirmThresholdSeconds {
		e.requestRecoveryPlan(models.ReasonRecovery)
	}
	return true
}

// CancelRotation discards the pending rotation, advances past it, and
// requests a recovery plan. Always legal while rotation_pending.
func (e *Engine) CancelRotation() bool {
	if e.state != models.StateRotationPending || e.pending == nil {
		return false
	}
	e.pending = nil
	e.state = models.StateRunning
	e.advanceCursor()
	e.requestRecoveryPlan(models.ReasonRecovery)
	return true
}

// EmergencySubstitution performs an immediate, unscheduled swap. If
// removeFromGame is true, playerOff is withdrawn to the removed set
// instead of returning to the bench.
func (e *Engine) EmergencySubstitution(playerOff, playerOn models.PlayerID, removeFromGame bool) bool {
	if !e.placement.OnField(playerOff) || !e.placement.OnBench(playerOn) {
		return false
	}

	e.placement.Field = removeFromSet(e.placement.Field, playerOff)
	e.placement.Field = append(e.placement.Field, playerOn)
	e.placement.Bench = removeFromSet(e.placement.Bench, playerOn)

	if removeFromGame {
		e.placement.Removed = append(e.placement.Removed, playerOff)
	} else {
		e.placement.Bench = append(e.placement.Bench, playerOff)
		setStintStart(&e.ledger, playerOff, e.currentTime)
	}
	setStintStart(&e.ledger, playerOn, e.currentTime)

	if onState, ok := e.ledger.Players[playerOn]; ok {
		if offState, ok2 := e.ledger.Players[playerOff]; ok2 && offState.Meta.Position != "" {
			onState.Meta.Position = offState.Meta.Position
		}
	}

	if !e.checkInvariants() {
		e.fixPlacement()
	}

	e.lastSubTime = e.currentTime
	e.emit(eventbus.RotationConfirmed, eventbus.Event{})
	e.requestRecoveryPlan(models.ReasonEmergency)
	return true
}

// RemovePlayer withdraws a benched player from the game.
func (e *Engine) RemovePlayer(p models.PlayerID) bool {
	if !e.placement.OnBench(p) {
		return false
	}
	e.placement.Bench = removeFromSet(e.placement.Bench, p)
	e.placement.Removed = append(e.placement.Removed, p)
	e.requestRecoveryPlan(models.ReasonRecovery)
	return true
}

// ReturnPlayer restores a previously removed player to the bench.
func (e *Engine) ReturnPlayer(p models.PlayerID) bool {
	if !e.placement.IsRemoved(p) {
		return false
	}
	e.placement.Removed = removeFromSet(e.placement.Removed, p)
	e.placement.Bench = append(e.placement.Bench, p)
	setStintStart(&e.ledger, p, e.currentTime)
	e.requestRecoveryPlan(models.ReasonRecovery)
	return true
}

// HandleVisibilityChange records a hide timestamp, or on becoming visible
// again, fast-forwards ledgers and game time by the elapsed wall-clock,
// clamped by MaxVisibilityCatchup and by time remaining in the game.
func (e *Engine) HandleVisibilityChange(nowVisible bool, elapsedWhileHidden int) {
	if !nowVisible {
		t := e.now()
		e.hiddenAt = &t
		return
	}
	e.hiddenAt = nil

	if e.state != models.StateRunning && e.state != models.StateRotationPending {
		return
	}

	elapsed := minInt(elapsedWhileHidden, e.config.MaxVisibilityCatchup)
	remaining := e.config.GameLengthSeconds() - totalElapsedGameSeconds(e)
	elapsed = minInt(elapsed, maxInt(remaining, 0))

	for i := 0; i < elapsed; i++ {
		if e.state == models.StateGameOver {
			break
		}
		e.advanceOneSecond()
	}
}

func totalElapsedGameSeconds(e *Engine) int {
	return (e.currentPeriod-1)*e.config.PeriodSeconds + e.periodElapsed
}

// fixPlacement repairs a corrupted placement: trims or refills the field
// to field_size, then rebuilds bench as active minus field, deduplicated.
// A no-op when placement is already valid.
func (e *Engine) fixPlacement() {
	if e.checkInvariants() {
		return
	}

	field := dedupe(e.placement.Field)
	removed := dedupe(e.placement.Removed)
	removedSet := toSet(removed)

	active := make([]models.PlayerID, 0, len(e.roster.Players))
	fieldSet := toSet(field)
	for _, p := range e.roster.Players {
		if !removedSet[p] {
			active = append(active, p)
		}
	}

	if len(field) > e.config.FieldSize {
		field = field[:e.config.FieldSize]
	} else if len(field) < e.config.FieldSize {
		for _, p := range active {
			if len(field) >= e.config.FieldSize {
				break
			}
			if !fieldSet[p] {
				field = append(field, p)
				fieldSet[p] = true
			}
		}
	}
	fieldSet = toSet(field)

	bench := make([]models.PlayerID, 0, len(active))
	for _, p := range active {
		if !fieldSet[p] {
			bench = append(bench, p)
		}
	}

	e.placement = models.Placement{Field: field, Bench: bench, Removed: removed}
	e.emit(eventbus.StateValidated, "fix_placement applied")
}

// checkInvariants reports whether the current placement satisfies §3's
// invariants.
func (e *Engine) checkInvariants() bool {
	p := e.placement
	if len(p.Field) != e.config.FieldSize {
		return false
	}
	if hasDuplicates(p.Field) || hasDuplicates(p.Bench) || hasDuplicates(p.Removed) {
		return false
	}
	fieldSet, benchSet, removedSet := toSet(p.Field), toSet(p.Bench), toSet(p.Removed)
	for id := range fieldSet {
		if benchSet[id] || removedSet[id] {
			return false
		}
	}
	for id := range benchSet {
		if removedSet[id] {
			return false
		}
	}
	total := len(p.Field) + len(p.Bench) + len(p.Removed)
	if total != len(e.roster.Players) {
		return false
	}
	for _, p := range e.roster.Players {
		if !fieldSet[p] && !benchSet[p] && !removedSet[p] {
			return false
		}
	}
	return true
}

func removeFromSet(set []models.PlayerID, p models.PlayerID) []models.PlayerID {
	out := make([]models.PlayerID, 0, len(set))
	for _, q := range set {
		if q != p {
			out = append(out, q)
		}
	}
	return out
}

func dedupe(set []models.PlayerID) []models.PlayerID {
	seen := make(map[models.PlayerID]bool, len(set))
	out := make([]models.PlayerID, 0, len(set))
	for _, p := range set {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

func toSet(list []models.PlayerID) map[models.PlayerID]bool {
	out := make(map[models.PlayerID]bool, len(list))
	for _, p := range list {
		out[p] = true
	}
	return out
}

func hasDuplicates(list []models.PlayerID) bool {
	seen := make(map[models.PlayerID]bool, len(list))
	for _, p := range list {
		if seen[p] {
			return true
		}
		seen[p] = true
	}
	return false
}
