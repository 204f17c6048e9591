package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goto-masaaki-dm/praise-todo/internal/api/dto"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/category"
	"go.uber.org/zap"
)

type CategoryHandler struct {
	service category.Service
	logger  *zap.Logger
}

func NewCategoryHandler(service category.Service, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{service: service, logger: logger}
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	req, ok := boundBody[dto.CreateCategoryRequest](c)
	if !ok {
		return
	}

	created, err := h.service.CreateCategory(c.Request.Context(), category.CreateCategoryInput{
		UserID:      userID,
		Name:        req.Name,
		Color:       req.Color,
		Icon:        req.Icon,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": CategoryToResponse(created)})
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	found, err := h.service.GetCategory(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": CategoryToResponse(found)})
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	categories, err := h.service.ListCategories(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": CategoriesToResponse(categories)})
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	req, ok := boundBody[dto.UpdateCategoryRequest](c)
	if !ok {
		return
	}

	updated, err := h.service.UpdateCategory(c.Request.Context(), userID, id, category.UpdateCategoryInput{
		Name:        req.Name,
		Color:       req.Color,
		Icon:        req.Icon,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": CategoryToResponse(updated)})
}

// DeleteCategory removes the category; its tasks are kept without one.
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteCategory(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
