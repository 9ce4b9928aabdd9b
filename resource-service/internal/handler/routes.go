package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xpch/platform/shared/middleware"
	"github.com/xpch/platform/shared/models"
)

// Routes mounts the resource API on r.
func Routes(r gin.IRouter, h *ResourceHandler) {
	api := r.Group("/api/resource/v1", middleware.ValidateChannels())
	api.GET("", func(c *gin.Context) {
		middleware.RespondWithMessage(c, http.StatusOK, "resource service v1", nil)
	})

	countries := api.Group("/countries")
	{
		countries.GET("", h.ListCountries)
		countries.GET("/states/:id", h.GetStates)
		countries.GET("/:id", h.GetCountry)
	}

	banks := api.Group("/banks")
	{
		banks.GET("", h.ListBanks)
		banks.GET("/:id", h.GetBank)
		banks.POST("", middleware.Protect(), middleware.Authorize(models.RoleSuperAdmin), h.CreateBank)
		banks.PUT("/enable/:id", middleware.Protect(), middleware.Authorize(models.RoleSuperAdmin, models.RoleAdmin), h.EnableBank)
		banks.PUT("/disable/:id", middleware.Protect(), middleware.Authorize(models.RoleSuperAdmin, models.RoleAdmin), h.DisableBank)
		banks.DELETE("/:id", middleware.Protect(), middleware.Authorize(models.RoleSuperAdmin, models.RoleAdmin), h.DeleteBank)
	}
}
