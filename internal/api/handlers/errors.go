package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/goto-masaaki-dm/praise-todo/internal/api/middleware"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/apperr"
	"go.uber.org/zap"
)

// statusFor maps the domain error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case apperr.IsValidation(err):
		return http.StatusBadRequest
	case apperr.IsNotFound(err):
		return http.StatusNotFound
	case apperr.IsAlreadyCompleted(err), apperr.IsConstraintViolation(err):
		return http.StatusConflict
	case apperr.IsPersistence(err):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	body := gin.H{"error": err.Error()}

	var verr *apperr.ValidationError
	if errors.As(err, &verr) && verr.Field != "" {
		body["details"] = gin.H{verr.Field: verr.Reason}
	}
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
		)
		body["error"] = http.StatusText(status)
	}

	_ = c.Error(err)
	c.JSON(status, body)
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return uuid.Nil, false
	}
	return userID, true
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// boundBody returns the request the validation middleware stored, falling
// back to plain binding when the route has no validator.
func boundBody[T any](c *gin.Context) (*T, bool) {
	if req, ok := middleware.GetValidatedModel[T](c); ok {
		return req, true
	}
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return &req, true
}
