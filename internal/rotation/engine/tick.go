package engine

import (
	"github.com/benchbalancer/rotation-engine/internal/models"
	"github.com/benchbalancer/rotation-engine/internal/rotation/eventbus"
	"github.com/benchbalancer/rotation-engine/internal/rotation/rotationerrors"
)

const imminentWarningLeadSeconds = 10

// Tick advances the engine by the wall-clock delta since the previous
// Tick, clamped to MaxTickCatchupSeconds. A no-op outside running and
// rotation_pending.
func (e *Engine) Tick() {
	now := e.now()
	if e.state != models.StateRunning && e.state != models.StateRotationPending {
		e.lastTickAt = now
		return
	}

	delta := int(now.Sub(e.lastTickAt).Seconds())
	e.lastTickAt = now
	if delta <= 0 {
		return
	}
	advance := minInt(delta, e.config.MaxTickCatchupSeconds)

	for i := 0; i < advance; i++ {
		e.advanceOneSecond()
	}
}

func (e *Engine) advanceOneSecond() {
	defer func() {
		if r := recover(); r != nil {
			e.report(rotationerrors.SeverityError, rotationerrors.CategoryTimer, "tick panicked", "tick", r)
		}
	}()

	for _, p := range e.placement.Field {
		if st, ok := e.ledger.Players[p]; ok {
			st.FieldSeconds++
		}
	}
	for _, p := range e.placement.Bench {
		if st, ok := e.ledger.Players[p]; ok {
			st.BenchSeconds++
		}
	}

	e.currentTime++
	e.periodElapsed++

	if e.periodElapsed >= e.config.PeriodSeconds {
		e.handlePeriodEnd()
	}

	e.checkWarnings()

	if e.state == models.StateRunning {
		e.checkScheduledEvent()
	}
}

func (e *Engine) handlePeriodEnd() {
	e.periodElapsed -= e.config.PeriodSeconds
	if e.periodElapsed < 0 {
		e.periodElapsed = 0
	}
	e.currentPeriod++
	e.earlyWarnFired = false
	e.imminentWarnFired = false

	if e.currentPeriod > e.config.NumPeriods {
		e.state = models.StateGameOver
		e.emit(eventbus.GameEnded, nil)
		return
	}

	e.emit(eventbus.PeriodEnd, e.currentPeriod)
	if e.state == models.StateRunning {
		e.state = models.StateIdle
	}
}

func (e *Engine) checkWarnings() {
	if e.pending != nil || e.planCursor >= len(e.plan.Events) {
		return
	}
	ev := e.plan.Events[e.planCursor]
	remaining := ev.Time - e.currentTime

	if e.config.EnableEarlyWarning && !e.earlyWarnFired && remaining <= e.config.WarningLeadSeconds {
		e.earlyWarnFired = true
		e.emit(eventbus.EarlyWarning, ev)
	}
	if !e.imminentWarnFired && remaining <= imminentWarningLeadSeconds {
		e.imminentWarnFired = true
		e.emit(eventbus.ImminentWarning, ev)
	}
}

func (e *Engine) checkScheduledEvent() {
	if e.pending != nil || e.planCursor >= len(e.plan.Events) {
		return
	}
	ev := e.plan.Events[e.planCursor]
	if e.currentTime < ev.Time {
		return
	}

	for _, p := range ev.Off {
		if !e.placement.OnField(p) {
			e.report(rotationerrors.SeverityWarning, rotationerrors.CategoryRotation, "scheduled off player not on field", "checkScheduledEvent", ev)
			e.emit(eventbus.WarningEvent, ev)
			e.advanceCursor()
			e.requestRecoveryPlan(models.ReasonRecovery)
			return
		}
	}

	e.pending = &models.PendingRotation{
		Off:           append([]models.PlayerID(nil), ev.Off...),
		On:            append([]models.PlayerID(nil), ev.On...),
		ScheduledTime: ev.Time,
	}
	e.state = models.StateRotationPending
	e.emit(eventbus.RotationPending, *e.pending)

	if e.config.AutoConfirmRotations {
		e.ConfirmRotation()
	}
}

func (e *Engine) advanceCursor() {
	e.planCursor++
	e.earlyWarnFired = false
	e.imminentWarnFired = false
}
