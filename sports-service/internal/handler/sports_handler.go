package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xpch/platform/shared/cqrs"
	"github.com/xpch/platform/shared/middleware"
	"github.com/xpch/platform/shared/models"
)

// SportsCommander defines the write-side operations used by SportsHandler.
type SportsCommander interface {
	AddLeague(ctx context.Context, cmd cqrs.AddLeagueCommand) (*models.League, error)
	UpdateLeague(ctx context.Context, cmd cqrs.UpdateLeagueCommand) (*models.League, error)
	AddLeagueTeam(ctx context.Context, cmd cqrs.AddLeagueTeamCommand) (*models.League, error)
	AddLeagueMatch(ctx context.Context, cmd cqrs.AddLeagueMatchCommand) (*models.League, error)
	AddLeagueFixture(ctx context.Context, cmd cqrs.AddLeagueFixtureCommand) (*models.League, error)

	AddTeam(ctx context.Context, cmd cqrs.AddTeamCommand) (*models.Team, error)
	UpdateTeam(ctx context.Context, cmd cqrs.UpdateTeamCommand) (*models.Team, error)
	AddTeamLeague(ctx context.Context, cmd cqrs.AddTeamLeagueCommand) (*models.League, error)

	AddMatch(ctx context.Context, cmd cqrs.AddMatchCommand) (*models.Match, error)
	UpdateMatch(ctx context.Context, cmd cqrs.UpdateMatchCommand) (*models.Match, error)
	UpdateScore(ctx context.Context, cmd cqrs.UpdateScoreCommand) ([]models.Score, error)
	UpdateStats(ctx context.Context, cmd cqrs.UpdateStatsCommand) ([]models.Stats, error)
	UpdateMatchLeague(ctx context.Context, cmd cqrs.UpdateMatchLeagueCommand) (*models.Match, error)

	AddFixture(ctx context.Context, cmd cqrs.AddFixtureCommand) (*models.Fixture, error)
	AddFixtureMatches(ctx context.Context, cmd cqrs.AddFixtureMatchesCommand) ([]string, error)
	UpdateFixtureLeague(ctx context.Context, cmd cqrs.UpdateFixtureLeagueCommand) (*models.Fixture, error)
}

// SportsQuerier defines the read-side operations used by SportsHandler.
type SportsQuerier interface {
	ListLeagues(ctx context.Context) ([]models.League, error)
	GetLeague(ctx context.Context, q cqrs.GetLeagueQuery) (*models.League, error)
	ListTeams(ctx context.Context) ([]models.Team, error)
	GetTeam(ctx context.Context, q cqrs.GetTeamQuery) (*models.Team, error)
	ListMatches(ctx context.Context) ([]models.Match, error)
	GetMatch(ctx context.Context, q cqrs.GetMatchQuery) (*models.Match, error)
	ListFixtures(ctx context.Context) ([]models.Fixture, error)
	GetFixture(ctx context.Context, q cqrs.GetFixtureQuery) (*models.Fixture, error)
	ListCountries(ctx context.Context) ([]models.Country, error)
	GetCountry(ctx context.Context, q cqrs.GetCountryQuery) (*models.Country, error)
	GetStates(ctx context.Context, q cqrs.GetCountryQuery) (*models.CountryStates, error)
}

type SportsHandler struct {
	commands SportsCommander
	queries  SportsQuerier
}

func NewSportsHandler(commands SportsCommander, queries SportsQuerier) *SportsHandler {
	return &SportsHandler{commands: commands, queries: queries}
}

type LeagueRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Code        string `json:"code"`
}

type UpdateLeagueRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Code        string `json:"code"`
}

// CodeRequest names a league or team by its code.
type CodeRequest struct {
	Code string `json:"code" validate:"required"`
}

type AddLeagueMatchRequest struct {
	MatchID string `json:"matchId" validate:"required"`
}

type AddLeagueFixtureRequest struct {
	FixtureID string `json:"fixtureId" validate:"required"`
}

type TeamRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Code        string `json:"code"`
	LeagueID    string `json:"leagueId" validate:"required"`
}

type UpdateTeamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Code        string `json:"code"`
}

// respond writes data with 200 or maps err.
func respond(c *gin.Context, data any, err error) {
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	middleware.RespondWithData(c, http.StatusOK, data)
}

// respondPage writes the page of list selected by the page and limit query
// parameters, or maps err.
func respondPage[T any](c *gin.Context, list []T, err error) {
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	middleware.RespondWithPage(c, list)
}

func (h *SportsHandler) ListLeagues(c *gin.Context) {
	list, err := h.queries.ListLeagues(c.Request.Context())
	respondPage(c, list, err)
}

func (h *SportsHandler) GetLeague(c *gin.Context) {
	league, err := h.queries.GetLeague(c.Request.Context(), cqrs.GetLeagueQuery{LeagueID: c.Param("id")})
	respond(c, league, err)
}

func (h *SportsHandler) AddLeague(c *gin.Context) {
	var req LeagueRequest
	if !middleware.BindAndValidate(c, &req) {
		return
	}
	league, err := h.commands.AddLeague(c.Request.Context(), cqrs.AddLeagueCommand{
		Name:        req.Name,
		Description: req.Description,
		Code:        req.Code,
	})
	respond(c, league, err)
}

func (h *SportsHandler) UpdateLeague(c *gin.Context) {
	var req UpdateLeagueRequest
	if !middleware.BindAndValidate(c, &req) {
		return
	}
	league, err := h.commands.UpdateLeague(c.Request.Context(), cqrs.UpdateLeagueCommand{
		LeagueID:    c.Param("id"),
		Name:        req.Name,
		Description: req.Description,
		Code:        req.Code,
	})
	respond(c, league, err)
}

func (h *SportsHandler) AddLeagueTeam(c *gin.Context) {
	var req CodeRequest
	if !middleware.BindAndValidate(c, &req) {
		return
	}
	league, err := h.commands.AddLeagueTeam(c.Request.Context(), cqrs.AddLeagueTeamCommand{
		LeagueID: c.Param("id"),
		TeamCode: req.Code,
	})
	respond(c, league, err)
}

func (h *SportsHandler) AddLeagueMatch(c *gin.Context) {
	var req AddLeagueMatchRequest
	if !middleware.BindAndValidate(c, &req) {
		return
	}
	league, err := h.commands.AddLeagueMatch(c.Request.Context(), cqrs.AddLeagueMatchCommand{
		LeagueID: c.Param("id"),
		MatchID:  req.MatchID,
	})
	respond(c, league, err)
}

func (h *SportsHandler) AddLeagueFixture(c *gin.Context) {
	var req AddLeagueFixtureRequest
	if !middleware.BindAndValidate(c, &req) {
		return
	}
	league, err := h.commands.AddLeagueFixture(c.Request.Context(), cqrs.AddLeagueFixtureCommand{
		LeagueID:  c.Param("id"),
		FixtureID: req.FixtureID,
	})
	respond(c, league, err)
}

func (h *SportsHandler) ListTeams(c *gin.Context) {
	list, err := h.queries.ListTeams(c.Request.Context())
	respondPage(c, list, err)
}

func (h *SportsHandler) GetTeam(c *gin.Context) {
	team, err := h.queries.GetTeam(c.Request.Context(), cqrs.GetTeamQuery{TeamID: c.Param("id")})
	respond(c, team, err)
}

func (h *SportsHandler) AddTeam(c *gin.Context) {
	var req TeamRequest
	if !middleware.BindAndValidate(c, &req) {
		return
	}
	team, err := h.commands.AddTeam(c.Request.Context(), cqrs.AddTeamCommand{
		Name:        req.Name,
		Description: req.Description,
		Code:        req.Code,
		LeagueID:    req.LeagueID,
	})
	respond(c, team, err)
}

func (h *SportsHandler) UpdateTeam(c *gin.Context) {
	var req UpdateTeamRequest
	if !middleware.BindAndValidate(c, &req) {
		return
	}
	team, err := h.commands.UpdateTeam(c.Request.Context(), cqrs.UpdateTeamCommand{
		TeamID:      c.Param("id"),
		Name:        req.Name,
		Description: req.Description,
		Code:        req.Code,
	})
	respond(c, team, err)
}

// AddTeamLeague joins the team to the league named by code.
func (h *SportsHandler) AddTeamLeague(c *gin.Context) {
	var req CodeRequest
	if !middleware.BindAndValidate(c, &req) {
		return
	}
	league, err := h.commands.AddTeamLeague(c.Request.Context(), cqrs.AddTeamLeagueCommand{
		TeamID:     c.Param("id"),
		LeagueCode: req.Code,
	})
	respond(c, league, err)
}

func (h *SportsHandler) ListCountries(c *gin.Context) {
	list, err := h.queries.ListCountries(c.Request.Context())
	respondPage(c, list, err)
}

// GetCountry accepts a country id or a dialling code such as "+234".
func (h *SportsHandler) GetCountry(c *gin.Context) {
	country, err := h.queries.GetCountry(c.Request.Context(), cqrs.GetCountryQuery{Key: c.Param("id")})
	respond(c, country, err)
}

func (h *SportsHandler) GetStates(c *gin.Context) {
	states, err := h.queries.GetStates(c.Request.Context(), cqrs.GetCountryQuery{Key: c.Param("id")})
	respond(c, states, err)
}
