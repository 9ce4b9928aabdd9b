package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xpch/platform/resource-service/internal/command"
	"github.com/xpch/platform/resource-service/internal/query"
	"github.com/xpch/platform/shared/cqrs"
	"github.com/xpch/platform/shared/middleware"
	"github.com/xpch/platform/shared/models"
)

// BankCommander defines the write-side operations used by ResourceHandler.
type BankCommander interface {
	CreateBank(ctx context.Context, cmd cqrs.CreateBankCommand) (*models.Bank, error)
	SetBankEnabled(ctx context.Context, cmd cqrs.SetBankEnabledCommand) (*models.Bank, error)
	DeleteBank(ctx context.Context, cmd cqrs.DeleteBankCommand) error
}

// ResourceQuerier defines the read-side operations used by ResourceHandler.
type ResourceQuerier interface {
	ListCountries(ctx context.Context) ([]models.Country, error)
	GetCountry(ctx context.Context, q cqrs.GetCountryQuery) (*models.Country, error)
	GetStates(ctx context.Context, q cqrs.GetCountryQuery) ([]models.State, error)
	ListBanks(ctx context.Context) ([]models.Bank, error)
	GetBank(ctx context.Context, q cqrs.GetBankQuery) (*models.Bank, error)
}

type ResourceHandler struct {
	commands BankCommander
	queries  ResourceQuerier
}

type CreateBankRequest struct {
	Name     string `json:"name" validate:"required"`
	Code     string `json:"code" validate:"required"`
	BankID   string `json:"bankId" validate:"required"`
	Country  string `json:"country"`
	Currency string `json:"currency"`
	Type     string `json:"type"`
}

func NewResourceHandler(commands BankCommander, queries ResourceQuerier) *ResourceHandler {
	return &ResourceHandler{commands: commands, queries: queries}
}

func (h *ResourceHandler) ListCountries(c *gin.Context) {
	list, err := h.queries.ListCountries(c.Request.Context())
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	middleware.RespondWithPage(c, list)
}

// GetCountry accepts an id or a phone code such as "+234".
func (h *ResourceHandler) GetCountry(c *gin.Context) {
	country, err := h.queries.GetCountry(c.Request.Context(), cqrs.GetCountryQuery{Key: c.Param("id")})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	middleware.RespondWithData(c, http.StatusOK, country)
}

func (h *ResourceHandler) GetStates(c *gin.Context) {
	states, err := h.queries.GetStates(c.Request.Context(), cqrs.GetCountryQuery{Key: c.Param("id")})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	middleware.RespondWithData(c, http.StatusOK, states)
}

func (h *ResourceHandler) ListBanks(c *gin.Context) {
	list, err := h.queries.ListBanks(c.Request.Context())
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	middleware.RespondWithPage(c, list)
}

func (h *ResourceHandler) GetBank(c *gin.Context) {
	bank, err := h.queries.GetBank(c.Request.Context(), cqrs.GetBankQuery{ID: c.Param("id")})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	middleware.RespondWithData(c, http.StatusOK, bank)
}

func (h *ResourceHandler) CreateBank(c *gin.Context) {
	var req CreateBankRequest
	if !middleware.BindAndValidate(c, &req) {
		return
	}
	bank, err := h.commands.CreateBank(c.Request.Context(), cqrs.CreateBankCommand{
		Name:     req.Name,
		Code:     req.Code,
		BankID:   req.BankID,
		Country:  req.Country,
		Currency: req.Currency,
		Type:     req.Type,
	})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	middleware.RespondWithData(c, http.StatusOK, bank)
}

func (h *ResourceHandler) EnableBank(c *gin.Context) {
	h.setEnabled(c, true)
}

func (h *ResourceHandler) DisableBank(c *gin.Context) {
	h.setEnabled(c, false)
}

func (h *ResourceHandler) setEnabled(c *gin.Context, enabled bool) {
	_, err := h.commands.SetBankEnabled(c.Request.Context(), cqrs.SetBankEnabledCommand{ID: c.Param("id"), Enabled: enabled})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	middleware.RespondWithData(c, http.StatusOK, nil)
}

func (h *ResourceHandler) DeleteBank(c *gin.Context) {
	if err := h.commands.DeleteBank(c.Request.Context(), cqrs.DeleteBankCommand{ID: c.Param("id")}); err != nil {
		respondWithServiceError(c, err)
		return
	}
	middleware.RespondWithData(c, http.StatusOK, nil)
}

func respondWithServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, query.ErrCountryNotFound),
		errors.Is(err, query.ErrBankNotFound),
		errors.Is(err, command.ErrBankNotFound):
		middleware.RespondWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, command.ErrBankNameExists),
		errors.Is(err, command.ErrBankCodeExists),
		errors.Is(err, command.ErrBankIDExists):
		middleware.RespondWithError(c, http.StatusBadRequest, err.Error())
	default:
		middleware.RespondWithError(c, http.StatusInternalServerError, err.Error())
	}
}
