package category

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/apperr"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/user"
	"gorm.io/gorm"
)

const maxNameLength = 50

var validate = validator.New()

// Category groups tasks. Deleting one detaches its tasks instead of deleting them.
type Category struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	UserID      uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_category_user_name,priority:1"`
	User        *user.User `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Name        string     `json:"name" gorm:"size:50;not null;uniqueIndex:idx_category_user_name,priority:2"`
	Color       *string    `json:"color,omitempty" gorm:"size:7"`
	Icon        *string    `json:"icon,omitempty" gorm:"size:50"`
	Description *string    `json:"description,omitempty" gorm:"type:text"`
	CreatedAt   time.Time  `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"not null"`
}

func (Category) TableName() string {
	return "categories"
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Validate checks the name and color rules.
func (c *Category) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	if err := ValidateName(c.Name); err != nil {
		return err
	}
	return ValidateColor(c.Color)
}

// ValidateName is shared with tags, which follow the same naming rules.
func ValidateName(name string) error {
	if name == "" {
		return apperr.Validation("name", "is required")
	}
	if len([]rune(name)) > maxNameLength {
		return apperr.Validation("name", "must be at most 50 characters")
	}
	return nil
}

// ValidateColor accepts nil or a #RRGGBB string.
func ValidateColor(color *string) error {
	if color == nil {
		return nil
	}
	if err := validate.Var(*color, "len=7,hexcolor"); err != nil {
		return apperr.Validation("color", "must look like #RRGGBB")
	}
	return nil
}
