package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goto-masaaki-dm/praise-todo/internal/api/dto"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/tag"
	"go.uber.org/zap"
)

type TagHandler struct {
	service tag.Service
	logger  *zap.Logger
}

func NewTagHandler(service tag.Service, logger *zap.Logger) *TagHandler {
	return &TagHandler{service: service, logger: logger}
}

func (h *TagHandler) CreateTag(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	req, ok := boundBody[dto.CreateTagRequest](c)
	if !ok {
		return
	}

	created, err := h.service.CreateTag(c.Request.Context(), tag.CreateTagInput{
		UserID: userID,
		Name:   req.Name,
		Color:  req.Color,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": TagToResponse(created)})
}

func (h *TagHandler) GetTag(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	found, err := h.service.GetTag(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": TagToResponse(found)})
}

func (h *TagHandler) ListTags(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	tags, err := h.service.ListTags(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": TagsToResponse(tags)})
}

func (h *TagHandler) UpdateTag(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	req, ok := boundBody[dto.UpdateTagRequest](c)
	if !ok {
		return
	}

	updated, err := h.service.UpdateTag(c.Request.Context(), userID, id, tag.UpdateTagInput{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": TagToResponse(updated)})
}

func (h *TagHandler) DeleteTag(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteTag(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
