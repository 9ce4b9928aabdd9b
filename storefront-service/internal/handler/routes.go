package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xpch/platform/shared/middleware"
	"github.com/xpch/platform/shared/models"
)

// Routes mounts the storefront API on r.
func Routes(r gin.IRouter, h *ShopperHandler) {
	api := r.Group("/api/store/v1", middleware.ValidateChannels())
	api.GET("", func(c *gin.Context) {
		middleware.RespondWithMessage(c, http.StatusOK, "storefront service v1", nil)
	})

	users := api.Group("/users", middleware.Protect())
	{
		users.GET("", middleware.Authorize(models.RoleSuperAdmin, models.RoleAdmin), h.ListShoppers)
		users.GET("/:id", middleware.Authorize(models.RoleSuperAdmin, models.RoleAdmin, models.RoleUser), h.GetShopper)
	}
}
