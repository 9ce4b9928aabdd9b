package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xpch/platform/shared/middleware"
	"github.com/xpch/platform/shared/models"
)

var staffRoles = []string{models.RoleSuperAdmin, models.RoleAdmin, models.RoleManager}

// Routes mounts the sports API on r.
func Routes(r gin.IRouter, h *SportsHandler) {
	api := r.Group("/api/v1", middleware.ValidateChannels())
	api.GET("", func(c *gin.Context) {
		middleware.RespondWithMessage(c, http.StatusOK, "sports service v1", nil)
	})

	countries := api.Group("/countries")
	{
		countries.GET("", h.ListCountries)
		countries.GET("/:id", h.GetCountry)
		countries.GET("/states/:id", h.GetStates)
	}

	staff := api.Group("", middleware.Protect(), middleware.Authorize(staffRoles...))

	leagues := staff.Group("/leagues")
	{
		leagues.GET("", h.ListLeagues)
		leagues.GET("/:id", h.GetLeague)
		leagues.POST("", h.AddLeague)
		leagues.PUT("/:id", h.UpdateLeague)
		leagues.PUT("/add-team/:id", h.AddLeagueTeam)
		leagues.PUT("/add-match/:id", h.AddLeagueMatch)
		leagues.PUT("/add-fixture/:id", h.AddLeagueFixture)
	}

	teams := staff.Group("/teams")
	{
		teams.GET("", h.ListTeams)
		teams.GET("/:id", h.GetTeam)
		teams.POST("", h.AddTeam)
		teams.PUT("/:id", h.UpdateTeam)
		teams.PUT("/add-league/:id", h.AddTeamLeague)
	}

	matches := staff.Group("/matches")
	{
		matches.GET("", h.ListMatches)
		matches.GET("/:id", h.GetMatch)
		matches.POST("", h.AddMatch)
		matches.PUT("/:id", h.UpdateMatch)
		matches.PUT("/update-score/:id", h.UpdateScore)
		matches.PUT("/update-stats/:id", h.UpdateStats)
		matches.PUT("/update-league/:id", h.UpdateMatchLeague)
	}

	fixtures := staff.Group("/fixtures")
	{
		fixtures.GET("", h.ListFixtures)
		fixtures.GET("/:id", h.GetFixture)
		fixtures.POST("", h.AddFixture)
		fixtures.PUT("/add-matches/:id", h.AddFixtureMatches)
		fixtures.PUT("/update-league/:id", h.UpdateFixtureLeague)
	}
}
