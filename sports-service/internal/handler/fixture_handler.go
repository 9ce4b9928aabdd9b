package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xpch/platform/shared/cqrs"
	"github.com/xpch/platform/shared/middleware"
)

type FixtureRequest struct {
	Description string   `json:"description" validate:"max=300"`
	LeagueID    string   `json:"leagueId" validate:"required"`
	Matches     []string `json:"matches"`
}

func (h *SportsHandler) ListFixtures(c *gin.Context) {
	list, err := h.queries.ListFixtures(c.Request.Context())
	respondPage(c, list, err)
}

func (h *SportsHandler) GetFixture(c *gin.Context) {
	fixture, err := h.queries.GetFixture(c.Request.Context(), cqrs.GetFixtureQuery{FixtureID: c.Param("id")})
	respond(c, fixture, err)
}

func (h *SportsHandler) AddFixture(c *gin.Context) {
	var req FixtureRequest
	if !middleware.BindAndValidate(c, &req) {
		return
	}
	fixture, err := h.commands.AddFixture(c.Request.Context(), cqrs.AddFixtureCommand{
		Description: req.Description,
		LeagueID:    req.LeagueID,
		Matches:     req.Matches,
	})
	respond(c, fixture, err)
}

// AddFixtureMatches takes a bare JSON array of match ids as its body.
func (h *SportsHandler) AddFixtureMatches(c *gin.Context) {
	var ids []string
	if err := c.ShouldBindJSON(&ids); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	matches, err := h.commands.AddFixtureMatches(c.Request.Context(), cqrs.AddFixtureMatchesCommand{
		FixtureID: c.Param("id"),
		MatchIDs:  ids,
	})
	respond(c, matches, err)
}

// UpdateFixtureLeague moves the fixture to the league named by code.
func (h *SportsHandler) UpdateFixtureLeague(c *gin.Context) {
	var req CodeRequest
	if !middleware.BindAndValidate(c, &req) {
		return
	}
	fixture, err := h.commands.UpdateFixtureLeague(c.Request.Context(), cqrs.UpdateFixtureLeagueCommand{
		FixtureID:  c.Param("id"),
		LeagueCode: req.Code,
	})
	respond(c, fixture, err)
}
