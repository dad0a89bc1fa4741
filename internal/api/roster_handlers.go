// internal/api/roster_handlers.go
// Roster catalog HTTP handlers

package api

import (
	"net/http"
	"strconv"

	"github.com/benchbalancer/rotation-engine/internal/models"
	"github.com/benchbalancer/rotation-engine/internal/repositories"
	"github.com/benchbalancer/rotation-engine/internal/services"

	"github.com/gin-gonic/gin"
)

// CreateRosterRequest is the request body for POST /rosters.
type CreateRosterRequest struct {
	Name      string                   `json:"name" binding:"required"`
	FieldSize int                      `json:"field_size" binding:"required"`
	Players   models.RosterPlayerList `json:"players" binding:"required"`
}

// HandleCreateRoster saves a new roster to the catalog.
func HandleCreateRoster(svc *services.RosterService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateRosterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
			return
		}

		ownerID, _ := c.Get("operator")
		owner, _ := ownerID.(string)

		roster, err := svc.Create(c.Request.Context(), owner, req.Name, req.FieldSize, req.Players)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save roster"})
			return
		}

		c.JSON(http.StatusCreated, roster)
	}
}

// HandleListRosters returns saved rosters with pagination.
func HandleListRosters(svc *services.RosterService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

		filter := repositories.RosterListFilter{
			Page:   page,
			Limit:  limit,
			Search: c.Query("search"),
		}

		rosters, total, err := svc.List(c.Request.Context(), filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list rosters"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"rosters": rosters,
			"total":   total,
			"page":    page,
			"limit":   limit,
		})
	}
}

// HandleGetRoster returns a saved roster by ID.
func HandleGetRoster(svc *services.RosterService) gin.HandlerFunc {
	return func(c *gin.Context) {
		roster, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "roster not found"})
			return
		}
		c.JSON(http.StatusOK, roster)
	}
}

// UpdateRosterRequest is the request body for PUT /rosters/:id.
type UpdateRosterRequest struct {
	Name      string                  `json:"name" binding:"required"`
	FieldSize int                     `json:"field_size" binding:"required"`
	Players   models.RosterPlayerList `json:"players" binding:"required"`
}

// HandleUpdateRoster replaces a saved roster's name, field size, and players.
func HandleUpdateRoster(svc *services.RosterService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		existing, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "roster not found"})
			return
		}

		var req UpdateRosterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
			return
		}

		existing.Name = req.Name
		existing.FieldSize = req.FieldSize
		existing.Players = req.Players

		if err := svc.Update(c.Request.Context(), existing); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, existing)
	}
}

// HandleDeleteRoster removes a saved roster from the catalog.
func HandleDeleteRoster(svc *services.RosterService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete roster"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	}
}
