// internal/services/game_service.go
// Game lifecycle service: owns one engine.Engine per live game, drives its
// tick loop, and fans its events out to persistence and websocket clients.

package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/benchbalancer/rotation-engine/internal/config"
	"github.com/benchbalancer/rotation-engine/internal/models"
	"github.com/benchbalancer/rotation-engine/internal/repositories"
	"github.com/benchbalancer/rotation-engine/internal/rotation/engine"
	"github.com/benchbalancer/rotation-engine/internal/rotation/eventbus"
	"github.com/benchbalancer/rotation-engine/internal/rotation/rotationerrors"
	"github.com/benchbalancer/rotation-engine/internal/utils"
	"github.com/benchbalancer/rotation-engine/internal/websocket"
)

// gameInstance bundles one game's engine with the goroutine and mutex that
// serialize every caller onto it: the tick loop, HTTP handlers, and
// websocket-triggered actions all acquire mu before touching eng. This is
// the "single critical section" spec.md §5 assumes once the driver is a
// real multi-goroutine server.
type gameInstance struct {
	mu     sync.Mutex
	id     string
	eng    *engine.Engine
	bus    *eventbus.Bus
	errs   *rotationerrors.Handler
	cancel context.CancelFunc
}

// GameService owns the set of live games in this process.
type GameService struct {
	repos  *repositories.Container
	hub    *websocket.Hub
	cfg    *config.Config
	logger *log.Logger

	mu    sync.RWMutex
	games map[string]*gameInstance
}

// NewGameService creates a new game service. cfg.Rotation supplies the
// process-wide tunable defaults every engine is built with, and
// cfg.Features gates the two per-game feature toggles a setup payload may
// request.
func NewGameService(repos *repositories.Container, hub *websocket.Hub, cfg *config.Config, logger *log.Logger) *GameService {
	return &GameService{
		repos:  repos,
		hub:    hub,
		cfg:    cfg,
		logger: logger,
		games:  make(map[string]*gameInstance),
	}
}

func engineDefaults(r config.RotationConfig) engine.Defaults {
	return engine.Defaults{
		MinAcceptableSubInterval:  r.MinAcceptableSubInterval,
		EndBufferSeconds:          r.EndBufferSeconds,
		MinFieldStintSeconds:      r.MinFieldStintSeconds,
		MaxTickCatchupSeconds:     r.MaxTickCatchupSeconds,
		MaxVisibilityCatchupSecs:  r.MaxVisibilityCatchupSecs,
		ValidationIntervalSeconds: r.ValidationIntervalSeconds,
		CheckIntervalSeconds:      r.CheckIntervalSeconds,
		LookAheadWindowSeconds:    r.LookAheadWindowSeconds,
		VarianceGoalBalanced:      r.VarianceGoalBalanced,
	}
}

// CreateGame constructs a new engine from a setup payload, registers its
// event listeners, persists a game record, and starts its tick loop. The
// engine begins idle; callers invoke StartGame separately.
func (s *GameService) CreateGame(ctx context.Context, rosterID, homeTeam, awayTeam string, setup engine.Setup) (string, engine.InitResult, error) {
	if setup.FieldSize <= 0 {
		setup.FieldSize = s.cfg.Rotation.DefaultFieldSize
	}
	// -1 is the "omitted" sentinel a handler uses for SwapsPerChange: 0 is
	// itself a meaningful, valid choice (no swaps, full-lineup rotation
	// only) and must not be silently overridden.
	if setup.SwapsPerChange < 0 {
		setup.SwapsPerChange = s.cfg.Rotation.DefaultSwapsPerChange
	}
	// Feature flags are a kill switch, not a force-on: a game may opt out
	// of a feature that's globally enabled, but can't opt in to one that's
	// globally disabled.
	setup.EnableEarlyWarning = setup.EnableEarlyWarning && s.cfg.Features.EnableEarlyWarn
	setup.AutoConfirmRotations = setup.AutoConfirmRotations && s.cfg.Features.EnableAutoConfirm

	bus := eventbus.New(s.logger)
	errs := rotationerrors.New(time.Now)
	eng := engine.New(bus, errs, engineDefaults(s.cfg.Rotation))

	result, err := eng.Initialize(setup)
	if err != nil {
		return "", engine.InitResult{}, err
	}

	gameID := utils.GenerateUUID()
	gctx, cancel := context.WithCancel(context.Background())
	inst := &gameInstance{id: gameID, eng: eng, bus: bus, errs: errs, cancel: cancel}

	s.wireEvents(inst)

	s.mu.Lock()
	s.games[gameID] = inst
	s.mu.Unlock()

	record := &models.GameRecord{
		ID:        gameID,
		RosterID:  rosterID,
		HomeTeam:  homeTeam,
		AwayTeam:  awayTeam,
		Status:    models.GameScheduled,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.repos.GameRecord.Create(ctx, record); err != nil {
		s.logger.Printf("game %s: failed to persist game record: %v", gameID, err)
	}

	go s.runTickLoop(gctx, inst)

	return gameID, result, nil
}

func (s *GameService) runTickLoop(ctx context.Context, inst *gameInstance) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			inst.mu.Lock()
			inst.eng.Tick()
			inst.mu.Unlock()
		}
	}
}

// wireEvents subscribes to the engine's bus and forwards every event to the
// websocket hub, and persists a snapshot on significant transitions.
// Persistence is fire-and-forget: a failed write here must never block a
// tick or a caller's mutation response.
func (s *GameService) wireEvents(inst *gameInstance) {
	forward := func(name eventbus.Name) {
		inst.bus.On(name, func(ev eventbus.Event) error {
			s.hub.BroadcastGameEvent(inst.id, string(ev.Name), ev.Data)
			return nil
		})
	}
	for _, name := range []eventbus.Name{
		eventbus.GameStarted, eventbus.RotationPending, eventbus.RotationConfirmed,
		eventbus.PeriodEnd, eventbus.GameEnded, eventbus.StateValidated,
		eventbus.ErrorEvent, eventbus.WarningEvent, eventbus.EarlyWarning, eventbus.ImminentWarning,
	} {
		forward(name)
	}

	snapshotOn := func(name eventbus.Name, reason string) {
		inst.bus.On(name, func(ev eventbus.Event) error {
			snap := inst.eng.GetState()
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := s.repos.Snapshot.Append(ctx, inst.id, reason, snap); err != nil {
					s.logger.Printf("game %s: failed to append snapshot: %v", inst.id, err)
				}
			}()
			return nil
		})
	}
	snapshotOn(eventbus.GameStarted, "game_started")
	snapshotOn(eventbus.RotationConfirmed, "rotation_confirmed")
	snapshotOn(eventbus.PeriodEnd, "period_end")
	snapshotOn(eventbus.GameEnded, "game_ended")

	inst.bus.On(eventbus.GameEnded, func(ev eventbus.Event) error {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			snap := inst.eng.GetState()
			score1, score2 := snap.Scoring.Values["score1"], snap.Scoring.Values["score2"]
			if err := s.repos.GameRecord.MarkCompleted(ctx, inst.id, score1, score2); err != nil {
				s.logger.Printf("game %s: failed to mark completed: %v", inst.id, err)
			}
		}()
		return nil
	})
}

func (s *GameService) get(gameID string) (*gameInstance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inst, ok := s.games[gameID]
	return inst, ok
}

// GetState returns a game's current snapshot.
func (s *GameService) GetState(gameID string) (models.Snapshot, bool) {
	inst, ok := s.get(gameID)
	if !ok {
		return models.Snapshot{}, false
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.eng.GetState(), true
}

// StartGame transitions a game idle -> running.
func (s *GameService) StartGame(ctx context.Context, gameID string) bool {
	inst, ok := s.get(gameID)
	if !ok {
		return false
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	started := inst.eng.Start()
	if started {
		go func() {
			cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.repos.GameRecord.MarkStarted(cctx, gameID)
		}()
	}
	return started
}

// StopGame transitions a game running -> idle.
func (s *GameService) StopGame(gameID string) bool {
	inst, ok := s.get(gameID)
	if !ok {
		return false
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.eng.Stop()
}

// ConfirmRotation applies the pending rotation for a game.
func (s *GameService) ConfirmRotation(gameID string) bool {
	inst, ok := s.get(gameID)
	if !ok {
		return false
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.eng.ConfirmRotation()
}

// CancelRotation discards a game's pending rotation.
func (s *GameService) CancelRotation(gameID string) bool {
	inst, ok := s.get(gameID)
	if !ok {
		return false
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.eng.CancelRotation()
}

// EmergencySubstitution performs an immediate swap for a game.
func (s *GameService) EmergencySubstitution(gameID string, off, on models.PlayerID, remove bool) bool {
	inst, ok := s.get(gameID)
	if !ok {
		return false
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.eng.EmergencySubstitution(off, on, remove)
}

// RemovePlayer withdraws a benched player from a game.
func (s *GameService) RemovePlayer(gameID string, p models.PlayerID) bool {
	inst, ok := s.get(gameID)
	if !ok {
		return false
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.eng.RemovePlayer(p)
}

// ReturnPlayer restores a previously removed player to a game's bench.
func (s *GameService) ReturnPlayer(gameID string, p models.PlayerID) bool {
	inst, ok := s.get(gameID)
	if !ok {
		return false
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.eng.ReturnPlayer(p)
}

// HandleVisibilityChange forwards a visibility transition to a game.
func (s *GameService) HandleVisibilityChange(gameID string, nowVisible bool, elapsedWhileHidden int) bool {
	inst, ok := s.get(gameID)
	if !ok {
		return false
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	inst.eng.HandleVisibilityChange(nowVisible, elapsedWhileHidden)
	return true
}

// ResetGame returns a game's engine to the uninitialized state, discarding
// its in-memory state; the game stays registered under its ID.
func (s *GameService) ResetGame(gameID string) bool {
	inst, ok := s.get(gameID)
	if !ok {
		return false
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	inst.eng.Reset()
	return true
}

// StopAll cancels every game's tick loop. Called on process shutdown.
func (s *GameService) StopAll() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, inst := range s.games {
		inst.cancel()
	}
}
