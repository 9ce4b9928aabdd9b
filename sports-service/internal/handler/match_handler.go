package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xpch/platform/shared/cqrs"
	"github.com/xpch/platform/shared/middleware"
)

// MatchRequest fields are checked by the command service so that the first
// missing one is reported in form order.
type MatchRequest struct {
	Type      string `json:"type"`
	Season    string `json:"season"`
	Stage     string `json:"stage"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	Stadium   string `json:"stadium"`
	HomeTeam  string `json:"homeTeam"`
	AwayTeam  string `json:"awayTeam"`
	CountryID string `json:"countryId"`
	LeagueID  string `json:"leagueId"`
}

type ScoreRequest struct {
	TeamID string `json:"teamId"`
	Score  *int   `json:"score" validate:"omitempty,min=0"`
	Type   string `json:"type"`
}

// StatsRequest leaves unsent counters nil so they keep their stored value.
type StatsRequest struct {
	TeamID       string `json:"teamId" validate:"required"`
	Shots        *int   `json:"shots" validate:"omitempty,min=0"`
	Passes       *int   `json:"passes" validate:"omitempty,min=0"`
	PassAccuracy *int   `json:"passAccuracy" validate:"omitempty,min=0,max=100"`
	ShotOnTarget *int   `json:"shotOnTarget" validate:"omitempty,min=0"`
	Fouls        *int   `json:"fouls" validate:"omitempty,min=0"`
	RedCards     *int   `json:"redCards" validate:"omitempty,min=0"`
	YellowCards  *int   `json:"yellowCards" validate:"omitempty,min=0"`
	Corner       *int   `json:"corner" validate:"omitempty,min=0"`
	Cross        *int   `json:"cross" validate:"omitempty,min=0"`
	Possession   *int   `json:"possession" validate:"omitempty,min=0,max=100"`
	Offsides     *int   `json:"offsides" validate:"omitempty,min=0"`
}

func (h *SportsHandler) ListMatches(c *gin.Context) {
	list, err := h.queries.ListMatches(c.Request.Context())
	respondPage(c, list, err)
}

func (h *SportsHandler) GetMatch(c *gin.Context) {
	match, err := h.queries.GetMatch(c.Request.Context(), cqrs.GetMatchQuery{MatchID: c.Param("id")})
	respond(c, match, err)
}

// AddMatch creates a match; the reminder goes to the caller's email.
func (h *SportsHandler) AddMatch(c *gin.Context) {
	var req MatchRequest
	if !middleware.BindAndValidate(c, &req) {
		return
	}
	userID, _ := middleware.GetUserID(c)
	match, err := h.commands.AddMatch(c.Request.Context(), cqrs.AddMatchCommand{
		Type:         req.Type,
		Season:       req.Season,
		Stage:        req.Stage,
		Date:         req.Date,
		StartTime:    req.StartTime,
		Stadium:      req.Stadium,
		HomeTeam:     req.HomeTeam,
		AwayTeam:     req.AwayTeam,
		CountryID:    req.CountryID,
		LeagueID:     req.LeagueID,
		CreatedBy:    userID,
		CreatorEmail: middleware.GetEmail(c),
	})
	respond(c, match, err)
}

func (h *SportsHandler) UpdateMatch(c *gin.Context) {
	var req MatchRequest
	if !middleware.BindAndValidate(c, &req) {
		return
	}
	match, err := h.commands.UpdateMatch(c.Request.Context(), cqrs.UpdateMatchCommand{
		MatchID:   c.Param("id"),
		Type:      req.Type,
		Season:    req.Season,
		Stage:     req.Stage,
		Date:      req.Date,
		StartTime: req.StartTime,
		Stadium:   req.Stadium,
		CountryID: req.CountryID,
		LeagueID:  req.LeagueID,
	})
	respond(c, match, err)
}

func (h *SportsHandler) UpdateScore(c *gin.Context) {
	var req ScoreRequest
	if !middleware.BindAndValidate(c, &req) {
		return
	}
	score, err := h.commands.UpdateScore(c.Request.Context(), cqrs.UpdateScoreCommand{
		MatchID: c.Param("id"),
		TeamID:  req.TeamID,
		Score:   req.Score,
		Type:    req.Type,
	})
	respond(c, score, err)
}

func (h *SportsHandler) UpdateStats(c *gin.Context) {
	var req StatsRequest
	if !middleware.BindAndValidate(c, &req) {
		return
	}
	stats, err := h.commands.UpdateStats(c.Request.Context(), cqrs.UpdateStatsCommand{
		MatchID: c.Param("id"),
		TeamID:  req.TeamID,
		Patch: cqrs.StatsPatch{
			Shots:        req.Shots,
			Passes:       req.Passes,
			PassAccuracy: req.PassAccuracy,
			ShotOnTarget: req.ShotOnTarget,
			Fouls:        req.Fouls,
			RedCards:     req.RedCards,
			YellowCards:  req.YellowCards,
			Corner:       req.Corner,
			Cross:        req.Cross,
			Possession:   req.Possession,
			Offsides:     req.Offsides,
		},
	})
	respond(c, stats, err)
}

// UpdateMatchLeague moves the match to the league named by code.
func (h *SportsHandler) UpdateMatchLeague(c *gin.Context) {
	var req CodeRequest
	if !middleware.BindAndValidate(c, &req) {
		return
	}
	match, err := h.commands.UpdateMatchLeague(c.Request.Context(), cqrs.UpdateMatchLeagueCommand{
		MatchID:    c.Param("id"),
		LeagueCode: req.Code,
	})
	respond(c, match, err)
}
