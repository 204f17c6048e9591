package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/task"
	"go.uber.org/zap"
)

const (
	validatedModelKey = "validated_model"
	validatedQueryKey = "validated_query"
)

// ValidationMiddleware binds and validates request bodies and queries
type ValidationMiddleware struct {
	validator *validator.Validate
	logger    *zap.Logger
}

// NewValidationMiddleware creates a new validation middleware
func NewValidationMiddleware(logger *zap.Logger) *ValidationMiddleware {
	v := validator.New()

	// Report fields by the names clients send.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return strings.ToLower(fld.Name)
	})

	v.RegisterValidation("not_empty", validateNotEmpty)
	v.RegisterValidation("valid_uuid", validateUUID)
	v.RegisterValidation("priority", validatePriority)

	return &ValidationMiddleware{validator: v, logger: logger}
}

// ValidateRequest validates the request body against the provided struct
func (m *ValidationMiddleware) ValidateRequest(model interface{}) gin.HandlerFunc {
	return func(c *gin.Context) {
		modelValue := newModel(model)

		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		if len(bytes.TrimSpace(bodyBytes)) == 0 {
			bodyBytes = []byte("{}")
		}
		if err := json.Unmarshal(bodyBytes, modelValue); err != nil {
			m.logger.Debug("JSON unmarshal failed", zap.Error(err), zap.String("path", c.FullPath()))
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Invalid JSON format: %v", err.Error()),
			})
			c.Abort()
			return
		}

		if !m.validate(c, modelValue) {
			return
		}

		c.Set(validatedModelKey, modelValue)
		c.Next()
	}
}

// ValidateQuery validates query parameters against the provided struct
func (m *ValidationMiddleware) ValidateQuery(model interface{}) gin.HandlerFunc {
	return func(c *gin.Context) {
		modelValue := newModel(model)

		if err := c.ShouldBindQuery(modelValue); err != nil {
			m.logger.Debug("Failed to bind query parameters", zap.Error(err), zap.String("path", c.FullPath()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
			c.Abort()
			return
		}

		if !m.validate(c, modelValue) {
			return
		}

		c.Set(validatedQueryKey, modelValue)
		c.Next()
	}
}

func (m *ValidationMiddleware) validate(c *gin.Context, modelValue interface{}) bool {
	err := m.validator.Struct(modelValue)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return false
	}

	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = formatValidationError(fe)
	}
	m.logger.Debug("Validation failed", zap.Any("errors", details), zap.String("path", c.FullPath()))
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "validation failed",
		"details": details,
	})
	c.Abort()
	return false
}

func newModel(model interface{}) interface{} {
	modelType := reflect.TypeOf(model)
	if modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}
	return reflect.New(modelType).Interface()
}

// GetValidatedModel returns the body stored by ValidateRequest.
func GetValidatedModel[T any](c *gin.Context) (*T, bool) {
	value, ok := c.Get(validatedModelKey)
	if !ok {
		return nil, false
	}
	model, ok := value.(*T)
	return model, ok
}

// GetValidatedQuery returns the query stored by ValidateQuery.
func GetValidatedQuery[T any](c *gin.Context) (*T, bool) {
	value, ok := c.Get(validatedQueryKey)
	if !ok {
		return nil, false
	}
	query, ok := value.(*T)
	return query, ok
}

// Custom validators
func validateNotEmpty(fl validator.FieldLevel) bool {
	return len(strings.TrimSpace(fl.Field().String())) > 0
}

func validateUUID(fl validator.FieldLevel) bool {
	_, err := uuid.Parse(fl.Field().String())
	return err == nil
}

func validatePriority(fl validator.FieldLevel) bool {
	_, err := task.ParsePriority(fl.Field().String())
	return err == nil
}

func formatValidationError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "invalid email format"
	case "min", "gte":
		return "value is too short or too small"
	case "max", "lte":
		return "value is too long or too large"
	case "not_empty":
		return "this field cannot be empty"
	case "valid_uuid", "uuid":
		return "invalid UUID format"
	case "priority":
		return "must be LOW, MEDIUM, HIGH or URGENT"
	case "hexcolor", "len":
		return "must look like #RRGGBB"
	case "oneof":
		return "must be one of: " + err.Param()
	case "ne":
		return "must not be " + err.Param()
	default:
		return "invalid value"
	}
}
