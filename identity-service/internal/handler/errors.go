package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xpch/platform/identity-service/internal/command"
	"github.com/xpch/platform/identity-service/internal/query"
	"github.com/xpch/platform/shared/middleware"
)

func respondWithServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, command.ErrInvalidCredentials),
		errors.Is(err, command.ErrAccountLocked),
		errors.Is(err, command.ErrAccountLockedNow),
		errors.Is(err, command.ErrAccountInactive),
		errors.Is(err, command.ErrInvalidCode),
		errors.Is(err, command.ErrPasswordNotGenerated),
		errors.Is(err, query.ErrForbidden):
		middleware.RespondWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, command.ErrEmailExists),
		errors.Is(err, command.ErrPhoneCodeRequired),
		errors.Is(err, command.ErrPhoneCodeInvalid),
		errors.Is(err, command.ErrPhoneExists),
		errors.Is(err, command.ErrWeakPassword),
		errors.Is(err, command.ErrInvalidToken),
		errors.Is(err, command.ErrRoleNotHeld):
		middleware.RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, command.ErrUserNotFound),
		errors.Is(err, command.ErrRoleNotFound),
		errors.Is(err, query.ErrUserNotFound):
		middleware.RespondWithError(c, http.StatusNotFound, err.Error())
	default:
		middleware.RespondWithError(c, http.StatusInternalServerError, err.Error())
	}
}
