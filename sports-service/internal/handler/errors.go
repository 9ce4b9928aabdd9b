package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xpch/platform/shared/middleware"
	"github.com/xpch/platform/sports-service/internal/command"
	"github.com/xpch/platform/sports-service/internal/query"
)

// respondWithServiceError maps service errors to statuses. Relation clashes
// such as "league already contains team" fall through to 500, except the
// update-league moves, which report a repeat as 404.
func respondWithServiceError(c *gin.Context, err error) {
	var verr *command.ValidationError
	switch {
	case errors.As(err, &verr):
		middleware.RespondWithError(c, http.StatusBadRequest, verr.Message)
	case errors.Is(err, command.ErrLeagueNotFound),
		errors.Is(err, command.ErrCountryNotFound),
		errors.Is(err, command.ErrTeamNotFound),
		errors.Is(err, command.ErrHomeTeamNotFound),
		errors.Is(err, command.ErrAwayTeamNotFound),
		errors.Is(err, command.ErrMatchNotFound),
		errors.Is(err, command.ErrFixtureNotFound),
		errors.Is(err, command.ErrMatchInLeague),
		errors.Is(err, command.ErrFixtureInLeague),
		errors.Is(err, query.ErrLeagueNotFound),
		errors.Is(err, query.ErrTeamNotFound),
		errors.Is(err, query.ErrMatchNotFound),
		errors.Is(err, query.ErrFixtureNotFound),
		errors.Is(err, query.ErrCountryNotFound):
		middleware.RespondWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, command.ErrLeagueCodeExists),
		errors.Is(err, command.ErrTeamCodeExists):
		middleware.RespondWithError(c, http.StatusBadRequest, err.Error())
	default:
		middleware.RespondWithError(c, http.StatusInternalServerError, err.Error())
	}
}
