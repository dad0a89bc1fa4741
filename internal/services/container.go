// internal/services/container.go
// Service container provides dependency injection for all business logic services.
// This pattern makes testing easier and keeps services loosely coupled.

package services

import (
	"errors"
	"log"

	"github.com/benchbalancer/rotation-engine/internal/config"
	"github.com/benchbalancer/rotation-engine/internal/database"
	"github.com/benchbalancer/rotation-engine/internal/repositories"
	"github.com/benchbalancer/rotation-engine/internal/websocket"
)

// Container holds all service instances and provides them to handlers
type Container struct {
	Auth   *AuthService
	Cache  *CacheService
	Roster *RosterService
	Game   *GameService
}

// NewContainer creates a new service container with all dependencies. hub
// is the websocket hub that game events fan out through; the caller owns
// its Run loop.
func NewContainer(db *database.Connections, cfg *config.Config, hub *websocket.Hub, logger *log.Logger) *Container {
	repos := repositories.NewContainer(db)

	cache := NewCacheService(db.Redis, logger)
	auth := NewAuthService(cfg.Auth, cache, logger)
	roster := NewRosterService(repos.Roster, cache)
	game := NewGameService(repos, hub, cfg, logger)

	return &Container{
		Auth:   auth,
		Cache:  cache,
		Roster: roster,
		Game:   game,
	}
}

// Common errors used across services
var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)
