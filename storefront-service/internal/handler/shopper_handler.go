package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xpch/platform/shared/cqrs"
	"github.com/xpch/platform/shared/middleware"
	"github.com/xpch/platform/shared/models"
	"github.com/xpch/platform/storefront-service/internal/query"
)

type ShopperQuerier interface {
	ListShoppers(ctx context.Context) ([]models.Shopper, error)
	GetShopper(ctx context.Context, q cqrs.GetShopperQuery, requesterID string, staff bool) (*models.Shopper, error)
}

type ShopperHandler struct {
	queries ShopperQuerier
}

func NewShopperHandler(queries ShopperQuerier) *ShopperHandler {
	return &ShopperHandler{queries: queries}
}

func (h *ShopperHandler) ListShoppers(c *gin.Context) {
	list, err := h.queries.ListShoppers(c.Request.Context())
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	middleware.RespondWithPage(c, list)
}

func (h *ShopperHandler) GetShopper(c *gin.Context) {
	requesterID, _ := middleware.GetUserID(c)
	staff := middleware.HasAnyRole(c, models.RoleSuperAdmin, models.RoleAdmin)

	shopper, err := h.queries.GetShopper(c.Request.Context(), cqrs.GetShopperQuery{ShopperID: c.Param("id")}, requesterID, staff)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	middleware.RespondWithData(c, http.StatusOK, shopper)
}

func respondWithServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, query.ErrShopperNotFound):
		middleware.RespondWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, query.ErrForbidden):
		middleware.RespondWithError(c, http.StatusForbidden, err.Error())
	default:
		middleware.RespondWithError(c, http.StatusInternalServerError, err.Error())
	}
}
