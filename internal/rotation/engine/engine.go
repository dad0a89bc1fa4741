// Package engine implements the tick-driven game state machine described
// in spec.md §4.4: it owns placement and minute ledgers, drives the timer,
// validates invariants, executes confirmed rotations, and hands off to the
// optimizer on any disruption.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/benchbalancer/rotation-engine/internal/models"
	"github.com/benchbalancer/rotation-engine/internal/rotation/eventbus"
	"github.com/benchbalancer/rotation-engine/internal/rotation/lineup"
	"github.com/benchbalancer/rotation-engine/internal/rotation/optimizer"
	"github.com/benchbalancer/rotation-engine/internal/rotation/planner"
	"github.com/benchbalancer/rotation-engine/internal/rotation/rotationerrors"
)

// Default tunable constants, see spec.md §6.
const (
	DefaultMinAcceptableSubInterval = 60
	DefaultEndBuffer                = 30
	DefaultMinFieldStint            = 180
	DefaultMaxTickCatchup           = 10
	DefaultMaxVisibilityCatchup     = 3600
	DefaultValidationInterval       = 30
	DefaultCheckInterval            = 15
	DefaultLookAheadWindow          = 60
	DefaultVarianceGoalBalanced     = 60
)

// Defaults carries the process-wide tunables from spec.md §6 that are not
// part of a per-game Setup payload (config.RotationConfig, in production,
// populated from ROTATION_* env vars). A zero field falls back to the
// package-level Default* constant, so New(bus, errs) with no Defaults
// keeps every existing caller and test working unchanged.
type Defaults struct {
	MinAcceptableSubInterval  int
	EndBufferSeconds          int
	MinFieldStintSeconds      int
	MaxTickCatchupSeconds     int
	MaxVisibilityCatchupSecs  int
	ValidationIntervalSeconds int
	CheckIntervalSeconds      int
	LookAheadWindowSeconds    int
	VarianceGoalBalanced      float64
}

func (d Defaults) orConstants() Defaults {
	if d.MinAcceptableSubInterval <= 0 {
		d.MinAcceptableSubInterval = DefaultMinAcceptableSubInterval
	}
	if d.EndBufferSeconds <= 0 {
		d.EndBufferSeconds = DefaultEndBuffer
	}
	if d.MinFieldStintSeconds <= 0 {
		d.MinFieldStintSeconds = DefaultMinFieldStint
	}
	if d.MaxTickCatchupSeconds <= 0 {
		d.MaxTickCatchupSeconds = DefaultMaxTickCatchup
	}
	if d.MaxVisibilityCatchupSecs <= 0 {
		d.MaxVisibilityCatchupSecs = DefaultMaxVisibilityCatchup
	}
	if d.ValidationIntervalSeconds <= 0 {
		d.ValidationIntervalSeconds = DefaultValidationInterval
	}
	if d.CheckIntervalSeconds <= 0 {
		d.CheckIntervalSeconds = DefaultCheckInterval
	}
	if d.LookAheadWindowSeconds <= 0 {
		d.LookAheadWindowSeconds = DefaultLookAheadWindow
	}
	if d.VarianceGoalBalanced <= 0 {
		d.VarianceGoalBalanced = DefaultVarianceGoalBalanced
	}
	return d
}

// Setup is the enumerated, recognized setup payload for Initialize.
type Setup struct {
	RosterStarters       []models.PlayerID
	RosterReserves       []models.PlayerID
	FieldSize            int
	PeriodSeconds        int
	NumPeriods           int // 2 or 4
	SwapsPerChange       int
	WarningLeadSeconds   int
	EnableEarlyWarning   bool
	AutoConfirmRotations bool
	IdealShiftsOverride  int
	PlayerMeta           map[models.PlayerID]models.PlayerMeta
	Tempo                optimizer.Tempo
}

// InitResult summarizes a successful Initialize call.
type InitResult struct {
	Success                bool
	RosterSize             int
	RotationsPlanned       int
	TargetSecondsPerPlayer float64
	ExpectedVariance       float64
}

var (
	ErrInvalidSetup   = errors.New("engine: invalid setup payload")
	ErrWrongState     = errors.New("engine: operation not valid in current state")
	ErrPlayerNotFound = errors.New("engine: player not on roster")
)

// Engine is the authoritative owner of one game's placement, ledger, and
// plan. It is not safe for concurrent use: per spec.md §5 the caller
// discipline is one logical task driving a given engine at a time (a
// single goroutine per live game), so no internal locking is used.
type Engine struct {
	now func() time.Time

	bus  *eventbus.Bus
	errs *rotationerrors.Handler

	state     models.EngineState
	config    models.GameConfig
	roster    models.Roster
	placement models.Placement
	ledger    models.Ledger

	plan       models.Plan
	planCursor int
	pending    *models.PendingRotation

	currentTime   int
	currentPeriod int
	periodElapsed int
	scoring       models.ScoringCounters

	lastTickAt        time.Time
	lastSubTime       int
	halftimeFired     bool
	earlyWarnFired    bool
	imminentWarnFired bool
	hiddenAt          *time.Time

	setup Setup

	defaults Defaults
}

// New builds an uninitialized engine publishing events on bus and
// reporting failures through errs. Either may be nil. An optional Defaults
// overrides the package-level tunable constants for every game this engine
// initializes; omit it to use the constants as-is.
func New(bus *eventbus.Bus, errs *rotationerrors.Handler, defaults ...Defaults) *Engine {
	var d Defaults
	if len(defaults) > 0 {
		d = defaults[0]
	}
	return &Engine{
		now:      time.Now,
		bus:      bus,
		errs:     errs,
		state:    models.StateUninitialized,
		defaults: d.orConstants(),
	}
}

func (e *Engine) emit(name eventbus.Name, data interface{}) {
	if e.bus != nil {
		e.bus.Emit(eventbus.Event{Name: name, Data: data})
	}
}

func (e *Engine) report(severity rotationerrors.Severity, category rotationerrors.Category, msg, context string, data interface{}) {
	if e.errs != nil {
		e.errs.Report(severity, category, msg, context, data)
	}
}

// Initialize validates setup and, on success, transitions the engine from
// uninitialized to idle with a planner-produced initial plan.
func (e *Engine) Initialize(setup Setup) (InitResult, error) {
	if e.state != models.StateUninitialized {
		return InitResult{}, ErrWrongState
	}

	if err := validateSetup(setup); err != nil {
		e.report(rotationerrors.SeverityError, rotationerrors.CategoryValidation, err.Error(), "initialize", nil)
		return InitResult{}, err
	}

	roster := append(append([]models.PlayerID(nil), setup.RosterStarters...), setup.RosterReserves...)
	e.roster = models.Roster{Players: roster}
	e.placement = models.Placement{
		Field: append([]models.PlayerID(nil), setup.RosterStarters...),
		Bench: append([]models.PlayerID(nil), setup.RosterReserves...),
	}
	e.ledger = models.NewLedger(e.roster, setup.PlayerMeta)
	for _, p := range e.placement.Field {
		setStintStart(&e.ledger, p, 0)
	}
	for _, p := range e.placement.Bench {
		setStintStart(&e.ledger, p, 0)
	}

	e.config = e.buildConfig(setup)
	e.setup = setup
	e.currentTime = 0
	e.currentPeriod = 1
	e.periodElapsed = 0
	e.scoring = models.ScoringCounters{Values: map[string]int{}}
	e.planCursor = 0
	e.pending = nil
	e.lastSubTime = 0
	e.halftimeFired = false

	lineups := lineup.Generate(roster, e.config.FieldSize, e.config.SwapsPerChange)
	segmentDuration := e.config.PeriodSeconds
	plan := planner.Build(lineups, planner.Params{
		Duration:    segmentDuration,
		Swaps:       e.config.SwapsPerChange,
		MinInterval: e.config.MinAcceptableSubInterval,
		EndBuffer:   e.config.EndBufferSeconds,
	})
	e.plan = plan

	activeCount := len(roster)
	targets := optimizer.ComputeTargets(activeCount, e.config.FieldSize, e.config.GameLengthSeconds(), e.config.CheckIntervalSeconds, e.config.IdealShiftsOverride, setup.Tempo)

	e.state = models.StateIdle
	e.emit(eventbus.StateValidated, "initialized")

	return InitResult{
		Success:                true,
		RosterSize:             len(roster),
		RotationsPlanned:       len(plan.Events),
		TargetSecondsPerPlayer: targets.TargetPerPlayer,
		ExpectedVariance:       float64(targets.VarianceGoal),
	}, nil
}

func validateSetup(setup Setup) error {
	if setup.FieldSize <= 0 {
		return fmt.Errorf("%w: field_size must be positive", ErrInvalidSetup)
	}
	if len(setup.RosterStarters) != setup.FieldSize {
		return fmt.Errorf("%w: roster_starters must have length field_size", ErrInvalidSetup)
	}
	if setup.PeriodSeconds <= 0 {
		return fmt.Errorf("%w: period_seconds must be positive", ErrInvalidSetup)
	}
	if setup.NumPeriods != 2 && setup.NumPeriods != 4 {
		return fmt.Errorf("%w: num_periods must be 2 or 4", ErrInvalidSetup)
	}
	if setup.SwapsPerChange < 0 {
		return fmt.Errorf("%w: swaps_per_change must be non-negative", ErrInvalidSetup)
	}
	seen := make(map[models.PlayerID]bool)
	all := append(append([]models.PlayerID(nil), setup.RosterStarters...), setup.RosterReserves...)
	for _, p := range all {
		if seen[p] {
			return fmt.Errorf("%w: duplicate player label %q", ErrInvalidSetup, p)
		}
		seen[p] = true
	}
	bench := len(setup.RosterReserves)
	if setup.SwapsPerChange > 0 && setup.SwapsPerChange > minInt(bench, setup.FieldSize) {
		return fmt.Errorf("%w: swaps_per_change incompatible with roster size", ErrInvalidSetup)
	}
	return nil
}

func (e *Engine) buildConfig(setup Setup) models.GameConfig {
	d := e.defaults
	return models.GameConfig{
		FieldSize:                setup.FieldSize,
		PeriodSeconds:            setup.PeriodSeconds,
		NumPeriods:               setup.NumPeriods,
		SwapsPerChange:           setup.SwapsPerChange,
		WarningLeadSeconds:       setup.WarningLeadSeconds,
		EnableEarlyWarning:       setup.EnableEarlyWarning,
		AutoConfirmRotations:     setup.AutoConfirmRotations,
		IdealShiftsOverride:      setup.IdealShiftsOverride,
		MinAcceptableSubInterval: d.MinAcceptableSubInterval,
		EndBufferSeconds:         d.EndBufferSeconds,
		MinFieldStintSeconds:     d.MinFieldStintSeconds,
		MaxTickCatchupSeconds:    d.MaxTickCatchupSeconds,
		MaxVisibilityCatchup:     d.MaxVisibilityCatchupSecs,
		ValidationIntervalSec:    d.ValidationIntervalSeconds,
		CheckIntervalSeconds:     d.CheckIntervalSeconds,
		LookAheadWindowSeconds:   d.LookAheadWindowSeconds,
		VarianceGoalBalanced:     int(d.VarianceGoalBalanced),
	}
}

// Start transitions idle -> running. Fails (returns false) from any other
// state, notably game_over.
func (e *Engine) Start() bool {
	if e.state == models.StateGameOver {
		return false
	}
	if e.state != models.StateIdle {
		return false
	}
	e.state = models.StateRunning
	e.lastTickAt = e.now()
	e.emit(eventbus.GameStarted, nil)
	return true
}

// Stop transitions running -> idle.
func (e *Engine) Stop() bool {
	if e.state != models.StateRunning {
		return false
	}
	e.state = models.StateIdle
	return true
}

// Reset returns the engine to its uninitialized state, discarding all
// in-memory state. A subsequent Initialize starts a fresh game.
func (e *Engine) Reset() {
	*e = Engine{now: e.now, bus: e.bus, errs: e.errs, state: models.StateUninitialized, defaults: e.defaults}
}

func setStintStart(l *models.Ledger, p models.PlayerID, t int) {
	if st, ok := l.Players[p]; ok {
		v := t
		st.StintStart = &v
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
