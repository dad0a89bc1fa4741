// internal/api/game_handlers.go
// Game lifecycle HTTP handlers

package api

import (
	"net/http"

	"github.com/benchbalancer/rotation-engine/internal/models"
	"github.com/benchbalancer/rotation-engine/internal/rotation/engine"
	"github.com/benchbalancer/rotation-engine/internal/rotation/optimizer"
	"github.com/benchbalancer/rotation-engine/internal/services"

	"github.com/gin-gonic/gin"
)

// CreateGameRequest is the enumerated request body for POST /games.
type CreateGameRequest struct {
	RosterID             string                               `json:"roster_id"`
	HomeTeam             string                               `json:"home_team"`
	AwayTeam             string                               `json:"away_team"`
	Starters             []models.PlayerID                    `json:"starters" binding:"required"`
	Reserves             []models.PlayerID                     `json:"reserves"`
	FieldSize            int                                  `json:"field_size"`
	PeriodSeconds        int                                  `json:"period_seconds" binding:"required"`
	NumPeriods           int                                  `json:"num_periods" binding:"required"`
	SwapsPerChange       *int                                 `json:"swaps_per_change"`
	WarningLeadSeconds   int                                  `json:"warning_lead_seconds"`
	EnableEarlyWarning   bool                                 `json:"enable_early_warning"`
	AutoConfirmRotations bool                                 `json:"auto_confirm_rotations"`
	IdealShiftsOverride  int                                  `json:"ideal_shifts_override"`
	Tempo                string                               `json:"tempo"`
	PlayerMeta           map[models.PlayerID]models.PlayerMeta `json:"player_meta"`
}

func parseTempo(s string) optimizer.Tempo {
	switch s {
	case "aggressive":
		return optimizer.TempoAggressive
	case "conservative":
		return optimizer.TempoConservative
	default:
		return optimizer.TempoBalanced
	}
}

// HandleCreateGame initializes a new game engine from a setup payload.
func HandleCreateGame(svc *services.GameService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateGameRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
			return
		}

		swapsPerChange := -1 // unset sentinel: GameService falls back to the configured default
		if req.SwapsPerChange != nil {
			swapsPerChange = *req.SwapsPerChange
		}

		setup := engine.Setup{
			RosterStarters:       req.Starters,
			RosterReserves:       req.Reserves,
			FieldSize:            req.FieldSize,
			PeriodSeconds:        req.PeriodSeconds,
			NumPeriods:           req.NumPeriods,
			SwapsPerChange:       swapsPerChange,
			WarningLeadSeconds:   req.WarningLeadSeconds,
			EnableEarlyWarning:   req.EnableEarlyWarning,
			AutoConfirmRotations: req.AutoConfirmRotations,
			IdealShiftsOverride:  req.IdealShiftsOverride,
			PlayerMeta:           req.PlayerMeta,
			Tempo:                parseTempo(req.Tempo),
		}

		gameID, result, err := svc.CreateGame(c.Request.Context(), req.RosterID, req.HomeTeam, req.AwayTeam, setup)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"game_id": gameID,
			"result":  result,
		})
	}
}

// HandleGetGame returns a game's current snapshot.
func HandleGetGame(svc *services.GameService) gin.HandlerFunc {
	return func(c *gin.Context) {
		gameID := c.Param("id")
		snap, ok := svc.GetState(gameID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

// HandleStartGame transitions a game idle -> running.
func HandleStartGame(svc *services.GameService) gin.HandlerFunc {
	return func(c *gin.Context) {
		gameID := c.Param("id")
		if _, ok := svc.GetState(gameID); !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
			return
		}
		ok := svc.StartGame(c.Request.Context(), gameID)
		c.JSON(http.StatusOK, gin.H{"started": ok})
	}
}

// HandleStopGame transitions a game running -> idle.
func HandleStopGame(svc *services.GameService) gin.HandlerFunc {
	return func(c *gin.Context) {
		gameID := c.Param("id")
		if _, ok := svc.GetState(gameID); !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
			return
		}
		ok := svc.StopGame(gameID)
		c.JSON(http.StatusOK, gin.H{"stopped": ok})
	}
}

// HandleConfirmRotation applies a game's pending rotation.
func HandleConfirmRotation(svc *services.GameService) gin.HandlerFunc {
	return func(c *gin.Context) {
		gameID := c.Param("id")
		if _, ok := svc.GetState(gameID); !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
			return
		}
		ok := svc.ConfirmRotation(gameID)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"confirmed": false, "warning": "no pending rotation to confirm"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"confirmed": true})
	}
}

// HandleCancelRotation discards a game's pending rotation.
func HandleCancelRotation(svc *services.GameService) gin.HandlerFunc {
	return func(c *gin.Context) {
		gameID := c.Param("id")
		if _, ok := svc.GetState(gameID); !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
			return
		}
		ok := svc.CancelRotation(gameID)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"cancelled": false, "warning": "no pending rotation to cancel"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"cancelled": true})
	}
}

// EmergencySubRequest is the request body for an immediate substitution.
type EmergencySubRequest struct {
	PlayerOff      models.PlayerID `json:"player_off" binding:"required"`
	PlayerOn       models.PlayerID `json:"player_on" binding:"required"`
	RemoveFromGame bool            `json:"remove_from_game"`
}

// HandleEmergencySub performs an immediate field swap, bypassing the plan.
func HandleEmergencySub(svc *services.GameService) gin.HandlerFunc {
	return func(c *gin.Context) {
		gameID := c.Param("id")
		if _, ok := svc.GetState(gameID); !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
			return
		}

		var req EmergencySubRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
			return
		}

		ok := svc.EmergencySubstitution(gameID, req.PlayerOff, req.PlayerOn, req.RemoveFromGame)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"applied": false, "warning": "substitution rejected"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"applied": true})
	}
}

// HandleRemovePlayer withdraws a benched player from a game.
func HandleRemovePlayer(svc *services.GameService) gin.HandlerFunc {
	return func(c *gin.Context) {
		gameID := c.Param("id")
		playerID := models.PlayerID(c.Param("playerId"))
		if _, ok := svc.GetState(gameID); !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
			return
		}
		ok := svc.RemovePlayer(gameID, playerID)
		c.JSON(http.StatusOK, gin.H{"removed": ok})
	}
}

// HandleReturnPlayer restores a previously removed player to the bench.
func HandleReturnPlayer(svc *services.GameService) gin.HandlerFunc {
	return func(c *gin.Context) {
		gameID := c.Param("id")
		playerID := models.PlayerID(c.Param("playerId"))
		if _, ok := svc.GetState(gameID); !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
			return
		}
		ok := svc.ReturnPlayer(gameID, playerID)
		c.JSON(http.StatusOK, gin.H{"returned": ok})
	}
}

// VisibilityRequest reports a client tab going to background or foreground.
type VisibilityRequest struct {
	Visible             bool `json:"visible"`
	ElapsedWhileHidden int  `json:"elapsed_while_hidden_seconds"`
}

// HandleVisibilityChange forwards a visibility transition, letting the
// engine catch up elapsed time in one jump instead of drifting via ticks.
func HandleVisibilityChange(svc *services.GameService) gin.HandlerFunc {
	return func(c *gin.Context) {
		gameID := c.Param("id")
		if _, ok := svc.GetState(gameID); !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
			return
		}

		var req VisibilityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
			return
		}

		svc.HandleVisibilityChange(gameID, req.Visible, req.ElapsedWhileHidden)
		c.JSON(http.StatusOK, gin.H{"applied": true})
	}
}

// HandleResetGame returns a game's engine to the uninitialized state,
// discarding its in-memory state.
func HandleResetGame(svc *services.GameService) gin.HandlerFunc {
	return func(c *gin.Context) {
		gameID := c.Param("id")
		if _, ok := svc.GetState(gameID); !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
			return
		}
		svc.ResetGame(gameID)
		c.JSON(http.StatusOK, gin.H{"reset": true})
	}
}
