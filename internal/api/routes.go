// internal/api/routes.go
// Central route registration for all API endpoints

package api

import (
	"github.com/benchbalancer/rotation-engine/internal/middleware"
	"github.com/benchbalancer/rotation-engine/internal/services"

	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers operator authentication routes.
func RegisterAuthRoutes(router *gin.RouterGroup, services *services.Container) {
	auth := router.Group("/auth")
	{
		auth.POST("/login", HandleLogin(services.Auth))
		auth.POST("/refresh", HandleRefreshToken(services.Auth))
		auth.POST("/logout", middleware.RequireAuth(services.Auth), HandleLogout(services.Auth))
	}
}

// RegisterGameRoutes registers game lifecycle routes.
func RegisterGameRoutes(router *gin.RouterGroup, services *services.Container) {
	games := router.Group("/games")
	{
		games.GET("/:id", HandleGetGame(services.Game))

		games.Use(middleware.RequireAuth(services.Auth))
		games.POST("", HandleCreateGame(services.Game))
		games.POST("/:id/start", HandleStartGame(services.Game))
		games.POST("/:id/stop", HandleStopGame(services.Game))
		games.POST("/:id/rotation/confirm", HandleConfirmRotation(services.Game))
		games.POST("/:id/rotation/cancel", HandleCancelRotation(services.Game))
		games.POST("/:id/emergency-sub", HandleEmergencySub(services.Game))
		games.POST("/:id/players/:playerId/remove", HandleRemovePlayer(services.Game))
		games.POST("/:id/players/:playerId/return", HandleReturnPlayer(services.Game))
		games.POST("/:id/visibility", HandleVisibilityChange(services.Game))
		games.POST("/:id/reset", HandleResetGame(services.Game))
	}
}

// RegisterRosterRoutes registers saved-roster catalog routes.
func RegisterRosterRoutes(router *gin.RouterGroup, services *services.Container) {
	rosters := router.Group("/rosters")
	rosters.Use(middleware.RequireAuth(services.Auth))
	{
		rosters.POST("", HandleCreateRoster(services.Roster))
		rosters.GET("", HandleListRosters(services.Roster))
		rosters.GET("/:id", HandleGetRoster(services.Roster))
		rosters.PUT("/:id", HandleUpdateRoster(services.Roster))
		rosters.DELETE("/:id", HandleDeleteRoster(services.Roster))
	}
}
