// internal/services/roster_service.go
// Roster catalog service: saved team rosters that game setup payloads draw
// their starters/reserves/meta from.

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/benchbalancer/rotation-engine/internal/models"
	"github.com/benchbalancer/rotation-engine/internal/repositories"
	"github.com/benchbalancer/rotation-engine/internal/utils"
)

const rosterCacheTTL = 10 * time.Minute

// RosterService manages the durable roster catalog.
type RosterService struct {
	repo  *repositories.RosterRepository
	cache *CacheService
}

// NewRosterService creates a new roster service.
func NewRosterService(repo *repositories.RosterRepository, cache *CacheService) *RosterService {
	return &RosterService{repo: repo, cache: cache}
}

func rosterCacheKey(id string) string {
	return fmt.Sprintf("roster:%s", id)
}

// Create saves a new roster.
func (s *RosterService) Create(ctx context.Context, ownerID, name string, fieldSize int, players models.RosterPlayerList) (*models.TeamRoster, error) {
	if err := utils.ValidateRosterName(name); err != nil {
		return nil, err
	}
	if err := utils.ValidateFieldSize(fieldSize, len(players)); err != nil {
		return nil, err
	}

	roster := &models.TeamRoster{
		ID:        utils.GenerateUUID(),
		OwnerID:   ownerID,
		Name:      name,
		FieldSize: fieldSize,
		Players:   players,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, roster); err != nil {
		return nil, err
	}
	return roster, nil
}

// Get retrieves a roster by ID, checking the cache first.
func (s *RosterService) Get(ctx context.Context, id string) (*models.TeamRoster, error) {
	var roster models.TeamRoster
	if err := s.cache.Get(rosterCacheKey(id), &roster); err == nil {
		return &roster, nil
	}

	fetched, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(rosterCacheKey(id), fetched, rosterCacheTTL); err != nil {
		s.cache.logger.Printf("failed to cache roster %s: %v", id, err)
	}
	return fetched, nil
}

// Update modifies a saved roster's name, field size, and player list.
func (s *RosterService) Update(ctx context.Context, roster *models.TeamRoster) error {
	if err := s.repo.Update(ctx, roster); err != nil {
		return err
	}
	return s.cache.Delete(rosterCacheKey(roster.ID))
}

// Delete removes a saved roster.
func (s *RosterService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	return s.cache.Delete(rosterCacheKey(id))
}

// List retrieves saved rosters with pagination and filters.
func (s *RosterService) List(ctx context.Context, filter repositories.RosterListFilter) ([]*models.TeamRoster, int, error) {
	return s.repo.List(ctx, filter)
}
