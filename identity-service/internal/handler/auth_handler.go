package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xpch/platform/identity-service/internal/command"
	"github.com/xpch/platform/shared/cqrs"
	"github.com/xpch/platform/shared/middleware"
	"github.com/xpch/platform/shared/models"
)

// AuthCommander defines the write-side operations used by AuthHandler.
type AuthCommander interface {
	Register(ctx context.Context, cmd cqrs.RegisterCommand) (*models.User, error)
	Login(ctx context.Context, cmd cqrs.LoginCommand) (*command.LoginResult, error)
	Activate(ctx context.Context, cmd cqrs.ActivateCommand) (*models.User, error)
	ForgotPassword(ctx context.Context, cmd cqrs.ForgotPasswordCommand) error
	ResetPassword(ctx context.Context, cmd cqrs.ResetPasswordCommand) (*models.User, error)
	ForcePassword(ctx context.Context, cmd cqrs.ForcePasswordCommand) (*models.User, error)
	AttachRoles(ctx context.Context, cmd cqrs.AttachRoleCommand) (*models.User, error)
	DetachRole(ctx context.Context, cmd cqrs.DetachRoleCommand) (*models.User, error)
}

type AuthHandler struct {
	commands     AuthCommander
	queries      UserQuerier
	secureCookie bool
}

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,password"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	PhoneCode   string `json:"phoneCode" validate:"required,contains=+"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Callback    string `json:"callback" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Code     string `json:"code"`
}

type ForgotPasswordRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Callback string `json:"callback" validate:"required"`
}

type PasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

type ForcePasswordRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AttachRoleRequest struct {
	Roles string `json:"roles" validate:"required"`
}

type DetachRoleRequest struct {
	RoleName string `json:"roleName" validate:"required"`
}

// tokenEnvelope is the standard envelope plus the issued token.
type tokenEnvelope struct {
	middleware.Envelope
	Token string `json:"token"`
}

func NewAuthHandler(commands AuthCommander, queries UserQuerier, secureCookie bool) *AuthHandler {
	return &AuthHandler{commands: commands, queries: queries, secureCookie: secureCookie}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !middleware.BindAndValidate(c, &req) {
		return
	}

	user, err := h.commands.Register(c.Request.Context(), cqrs.RegisterCommand{
		Email:       req.Email,
		Password:    req.Password,
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

	middleware.RespondWithData(c, http.StatusOK, gin.H{
		"id":          user.ID,
		"email":       user.Email,
		"phoneNumber": user.PhoneNumber,
		"phoneCode":   user.PhoneCode,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !middleware.BindAndValidate(c, &req) {
		return
	}

	result, err := h.commands.Login(c.Request.Context(), cqrs.LoginCommand{
		Email:    req.Email,
		Password: req.Password,
		Code:     req.Code,
	})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	if result.CodeSent {
		middleware.RespondWithMessage(c, http.StatusPartialContent, "verification code sent",
			gin.H{"email": result.User.Email})
		return
	}

	c.SetCookie(middleware.TokenCookie, result.Token, int(middleware.TokenLifetime().Seconds()), "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, tokenEnvelope{
		Envelope: middleware.Envelope{
			Errors:  []string{},
			Data:    models.NewUserView(result.User, nil),
			Message: "successful",
			Status:  http.StatusOK,
		},
		Token: result.Token,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.TokenCookie, "none", 10, "/", "", h.secureCookie, true)
	middleware.RespondWithMessage(c, http.StatusOK, "Logout successful", nil)
}

func (h *AuthHandler) Activate(c *gin.Context) {
	user, err := h.commands.Activate(c.Request.Context(), cqrs.ActivateCommand{Token: c.Param("token")})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	middleware.RespondWithData(c, http.StatusOK, gin.H{"email": user.Email, "isActivated": user.IsActivated})
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if !middleware.BindAndValidate(c, &req) {
		return
	}
	err := h.commands.ForgotPassword(c.Request.Context(), cqrs.ForgotPasswordCommand{Email: req.Email, Callback: req.Callback})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	middleware.RespondWithMessage(c, http.StatusOK, "reset link sent", nil)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req PasswordRequest
	if !middleware.BindAndValidate(c, &req) {
		return
	}
	user, err := h.commands.ResetPassword(c.Request.Context(), cqrs.ResetPasswordCommand{
		Token:    c.Param("token"),
		Password: req.Password,
	})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	middleware.RespondWithData(c, http.StatusOK, gin.H{"email": user.Email})
}

func (h *AuthHandler) ForcePassword(c *gin.Context) {
	var req ForcePasswordRequest
	if !middleware.BindAndValidate(c, &req) {
		return
	}
	user, err := h.commands.ForcePassword(c.Request.Context(), cqrs.ForcePasswordCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	middleware.RespondWithData(c, http.StatusOK, gin.H{"email": user.Email, "userType": user.UserType})
}

// GetUser is the authenticated user lookup under /auth.
func (h *AuthHandler) GetUser(c *gin.Context) {
	getUser(c, h.queries)
}

func (h *AuthHandler) AttachRole(c *gin.Context) {
	var req AttachRoleRequest
	if !middleware.BindAndValidate(c, &req) {
		return
	}
	user, err := h.commands.AttachRoles(c.Request.Context(), cqrs.AttachRoleCommand{
		UserID: c.Param("id"),
		Roles:  strings.Split(req.Roles, ","),
	})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	middleware.RespondWithData(c, http.StatusOK, gin.H{"id": user.ID, "roles": user.Roles})
}

func (h *AuthHandler) DetachRole(c *gin.Context) {
	var req DetachRoleRequest
	if !middleware.BindAndValidate(c, &req) {
		return
	}
	user, err := h.commands.DetachRole(c.Request.Context(), cqrs.DetachRoleCommand{
		UserID:   c.Param("id"),
		RoleName: req.RoleName,
	})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	middleware.RespondWithData(c, http.StatusOK, gin.H{"id": user.ID, "roles": user.Roles})
}
