package tag

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/category"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/user"
	"gorm.io/gorm"
)

type Tag struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	UserID    uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_tag_user_name,priority:1"`
	User      *user.User `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Name      string     `json:"name" gorm:"size:50;not null;uniqueIndex:idx_tag_user_name,priority:2"`
	Color     *string    `json:"color,omitempty" gorm:"size:7"`
	CreatedAt time.Time  `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"not null"`
}

func (Tag) TableName() string {
	return "tags"
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t *Tag) Validate() error {
	t.Name = strings.TrimSpace(t.Name)
	if err := category.ValidateName(t.Name); err != nil {
		return err
	}
	return category.ValidateColor(t.Color)
}
