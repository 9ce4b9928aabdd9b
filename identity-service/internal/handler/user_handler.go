package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xpch/platform/identity-service/internal/query"
	"github.com/xpch/platform/shared/cqrs"
	"github.com/xpch/platform/shared/middleware"
	"github.com/xpch/platform/shared/models"
)

// UserCommander defines the write-side operations used by UserHandler.
type UserCommander interface {
	AddManager(ctx context.Context, cmd cqrs.RegisterCommand) (*models.User, error)
	SetEmailCheck(ctx context.Context, userID string, enabled bool) error
}

// UserQuerier defines the read-side operations used by the handlers.
type UserQuerier interface {
	GetUser(ctx context.Context, q cqrs.GetUserQuery) (*models.UserView, error)
	ListUsers(ctx context.Context) ([]models.UserView, error)
}

type UserHandler struct {
	commands UserCommander
	queries  UserQuerier
}

type AddUserRequest struct {
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	PhoneCode   string `json:"phoneCode" validate:"required,contains=+"`
	Callback    string `json:"callback" validate:"required"`
}

func NewUserHandler(commands UserCommander, queries UserQuerier) *UserHandler {
	return &UserHandler{commands: commands, queries: queries}
}

// CurrentRoles reads the user's roles through the user cache, which every
// role change invalidates.
func (h *UserHandler) CurrentRoles(ctx context.Context, userID string) ([]string, error) {
	view, err := h.queries.GetUser(ctx, cqrs.GetUserQuery{UserID: userID, RequestingUserID: userID})
	if errors.Is(err, query.ErrUserNotFound) {
		return nil, middleware.ErrUnknownUser
	}
	if err != nil {
		return nil, err
	}
	return view.Roles, nil
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	views, err := h.queries.ListUsers(c.Request.Context())
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	middleware.RespondWithPage(c, views)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	getUser(c, h.queries)
}

func getUser(c *gin.Context, queries UserQuerier) {
	requestingUserID, _ := middleware.GetUserID(c)
	view, err := queries.GetUser(c.Request.Context(), cqrs.GetUserQuery{
		UserID:           c.Param("id"),
		RequestingUserID: requestingUserID,
		RequesterRoles:   middleware.GetRoles(c),
	})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	middleware.RespondWithData(c, http.StatusOK, view)
}

// AddUser invites a manager with a generated password.
func (h *UserHandler) AddUser(c *gin.Context) {
	var req AddUserRequest
	if !middleware.BindAndValidate(c, &req) {
		return
	}
	user, err := h.commands.AddManager(c.Request.Context(), cqrs.RegisterCommand{
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		PhoneCode:   req.PhoneCode,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Callback:    req.Callback,
	})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	middleware.RespondWithData(c, http.StatusOK, models.NewUserView(user, nil))
}

func (h *UserHandler) EnableEmail(c *gin.Context) {
	h.setEmailCheck(c, true)
}

func (h *UserHandler) DisableEmail(c *gin.Context) {
	h.setEmailCheck(c, false)
}

func (h *UserHandler) setEmailCheck(c *gin.Context, enabled bool) {
	userID := c.Param("id")
	requestingUserID, _ := middleware.GetUserID(c)
	if userID != requestingUserID && !middleware.HasAnyRole(c, models.RoleSuperAdmin, models.RoleAdmin) {
		middleware.RespondWithError(c, http.StatusForbidden, "user is not authorized to access this route")
		return
	}
	if err := h.commands.SetEmailCheck(c.Request.Context(), userID, enabled); err != nil {
		respondWithServiceError(c, err)
		return
	}
	middleware.RespondWithData(c, http.StatusOK, nil)
}
