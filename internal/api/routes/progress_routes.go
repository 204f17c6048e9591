package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/goto-masaaki-dm/praise-todo/internal/api/dto"
	"github.com/goto-masaaki-dm/praise-todo/internal/api/handlers"
	"github.com/goto-masaaki-dm/praise-todo/internal/api/middleware"
)

type ProgressRoutes struct {
	handler *handlers.ProgressHandler
}

func NewProgressRoutes(handler *handlers.ProgressHandler) *ProgressRoutes {
	return &ProgressRoutes{handler: handler}
}

func (r *ProgressRoutes) RegisterRoutes(api *gin.RouterGroup, validation *middleware.ValidationMiddleware) {
	progress := api.Group("/progress")
	{
		progress.GET("", r.handler.GetProgress)
		progress.GET("/points", validation.ValidateQuery(&dto.PageRequest{}), r.handler.ListPoints)
		progress.POST("/points/adjust", validation.ValidateRequest(&dto.AdjustPointsRequest{}), r.handler.AdjustPoints)
		progress.GET("/achievements", r.handler.ListAchievements)
		progress.GET("/ws", r.handler.Stream)
	}

	api.GET("/achievements/catalog", r.handler.Catalog)
}
