package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xpch/platform/shared/middleware"
	"github.com/xpch/platform/shared/models"
)

// Routes mounts the identity API on r.
func Routes(r gin.IRouter, auth *AuthHandler, users *UserHandler) {
	admins := middleware.Authorize(models.RoleSuperAdmin, models.RoleAdmin)
	fresh := middleware.RefreshRoles(users.CurrentRoles)

	api := r.Group("/api/identity/v1", middleware.ValidateChannels())
	api.GET("", func(c *gin.Context) {
		middleware.RespondWithMessage(c, http.StatusOK, "identity service v1", nil)
	})

	a := api.Group("/auth")
	{
		a.POST("/register", auth.Register)
		a.POST("/login", auth.Login)
		a.POST("/logout", auth.Logout)
		a.POST("/activate/:token", auth.Activate)
		a.POST("/forgot-password", auth.ForgotPassword)
		a.POST("/reset-password/:token", auth.ResetPassword)
		a.POST("/force-password", auth.ForcePassword)
		a.GET("/user/:id", middleware.Protect(), auth.GetUser)
		a.PUT("/attach-role/:id", middleware.Protect(), fresh, admins, auth.AttachRole)
		a.PUT("/detach-role/:id", middleware.Protect(), fresh, admins, auth.DetachRole)
	}

	u := api.Group("/users", middleware.Protect())
	{
		u.GET("", fresh, admins, users.ListUsers)
		u.GET("/:id", users.GetUser)
		u.POST("/add-user", fresh, admins, users.AddUser)
		u.PUT("/enable-email/:id", users.EnableEmail)
		u.PUT("/disable-email/:id", users.DisableEmail)
	}
}
