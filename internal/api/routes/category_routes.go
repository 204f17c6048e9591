package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/goto-masaaki-dm/praise-todo/internal/api/dto"
	"github.com/goto-masaaki-dm/praise-todo/internal/api/handlers"
	"github.com/goto-masaaki-dm/praise-todo/internal/api/middleware"
)

// CategoryRoutes registers category and tag routes. Both lists are cached
// per user and invalidated by their own writes.
type CategoryRoutes struct {
	categories *handlers.CategoryHandler
	tags       *handlers.TagHandler
}

func NewCategoryRoutes(categories *handlers.CategoryHandler, tags *handlers.TagHandler) *CategoryRoutes {
	return &CategoryRoutes{categories: categories, tags: tags}
}

func (r *CategoryRoutes) RegisterRoutes(api *gin.RouterGroup, validation *middleware.ValidationMiddleware, cache *middleware.CacheMiddleware) {
	categories := api.Group("/categories")
	{
		categories.GET("", cache.CacheResponse("categories"), r.categories.ListCategories)
		categories.POST("", validation.ValidateRequest(&dto.CreateCategoryRequest{}), cache.CacheInvalidate("categories"), r.categories.CreateCategory)
		categories.GET("/:id", cache.CacheResponse("categories"), r.categories.GetCategory)
		categories.PUT("/:id", validation.ValidateRequest(&dto.UpdateCategoryRequest{}), cache.CacheInvalidate("categories"), r.categories.UpdateCategory)
		categories.DELETE("/:id", cache.CacheInvalidate("categories"), r.categories.DeleteCategory)
	}

	tags := api.Group("/tags")
	{
		tags.GET("", cache.CacheResponse("tags"), r.tags.ListTags)
		tags.POST("", validation.ValidateRequest(&dto.CreateTagRequest{}), cache.CacheInvalidate("tags"), r.tags.CreateTag)
		tags.GET("/:id", cache.CacheResponse("tags"), r.tags.GetTag)
		tags.PUT("/:id", validation.ValidateRequest(&dto.UpdateTagRequest{}), cache.CacheInvalidate("tags"), r.tags.UpdateTag)
		tags.DELETE("/:id", cache.CacheInvalidate("tags"), r.tags.DeleteTag)
	}
}
