package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goto-masaaki-dm/praise-todo/internal/api/dto"
	"github.com/goto-masaaki-dm/praise-todo/internal/api/middleware"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/user"
	"go.uber.org/zap"
)

// UserHandler handles profile and settings requests for the caller.
type UserHandler struct {
	service user.Service
	logger  *zap.Logger
}

func NewUserHandler(service user.Service, logger *zap.Logger) *UserHandler {
	return &UserHandler{service: service, logger: logger}
}

// Register godoc
// @Summary Create the profile for the authenticated identity
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user body dto.RegisterUserRequest false "Profile fields"
// @Success 201 {object} dto.UserResponse
// @Failure 409 {object} map[string]string "Already registered"
// @Router /api/users [post]
func (h *UserHandler) Register(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	req, ok := boundBody[dto.RegisterUserRequest](c)
	if !ok {
		return
	}

	email := req.Email
	if email == "" {
		email = middleware.GetEmail(c)
	}

	u, err := h.service.Register(c.Request.Context(), user.RegisterInput{
		ID:        userID,
		Email:     email,
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": UserToResponse(u)})
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	u, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": UserToResponse(u)})
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	req, ok := boundBody[dto.UpdateProfileRequest](c)
	if !ok {
		return
	}

	u, err := h.service.UpdateProfile(c.Request.Context(), userID, user.UpdateProfileInput{
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": UserToResponse(u)})
}

// DeleteAccount removes the caller and everything they own.
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(c.Request.Context(), userID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) GetSettings(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	settings, err := h.service.GetSettings(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": SettingsToResponse(settings)})
}

func (h *UserHandler) UpdateSettings(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	req, ok := boundBody[dto.UpdateSettingsRequest](c)
	if !ok {
		return
	}

	input := user.UpdateSettingsInput{
		PraiseOnComplete:    req.PraiseOnComplete,
		PraiseOnStreak:      req.PraiseOnStreak,
		PraiseOnAchievement: req.PraiseOnAchievement,
		PraiseOnEarlyFinish: req.PraiseOnEarlyFinish,
		PraiseOnUrgent:      req.PraiseOnUrgent,
		PraiseOnFirstOfDay:  req.PraiseOnFirstOfDay,
		AnimationEnabled:    req.AnimationEnabled,
	}
	if req.Theme != nil {
		theme := user.Theme(*req.Theme)
		input.Theme = &theme
	}

	settings, err := h.service.UpdateSettings(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": SettingsToResponse(settings)})
}
