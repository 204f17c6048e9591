package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/goto-masaaki-dm/praise-todo/internal/api/dto"
	"github.com/goto-masaaki-dm/praise-todo/internal/api/handlers"
	"github.com/goto-masaaki-dm/praise-todo/internal/api/middleware"
)

type UserRoutes struct {
	handler *handlers.UserHandler
}

func NewUserRoutes(handler *handlers.UserHandler) *UserRoutes {
	return &UserRoutes{handler: handler}
}

// RegisterRoutes sets up profile and settings routes for the caller
func (r *UserRoutes) RegisterRoutes(api *gin.RouterGroup, validation *middleware.ValidationMiddleware, cache *middleware.CacheMiddleware) {
	users := api.Group("/users")
	{
		users.POST("", validation.ValidateRequest(&dto.RegisterUserRequest{}), r.handler.Register)

		me := users.Group("/me")
		me.GET("", r.handler.GetProfile)
		me.PUT("", validation.ValidateRequest(&dto.UpdateProfileRequest{}), r.handler.UpdateProfile)
		me.DELETE("", cache.CacheInvalidate("categories", "tags"), r.handler.DeleteAccount)

		me.GET("/settings", r.handler.GetSettings)
		me.PUT("/settings", validation.ValidateRequest(&dto.UpdateSettingsRequest{}), r.handler.UpdateSettings)
	}
}
