package task

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/apperr"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/category"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/tag"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/user"
	"gorm.io/gorm"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
	MaxNoteLength        = 2000
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// ParsePriority accepts any casing and returns the canonical value.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToUpper(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", apperr.Validation("priority", "must be one of LOW, MEDIUM, HIGH, URGENT")
	}
	return p, nil
}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Points is the ledger amount a completion at this priority earns.
func (p Priority) Points() int {
	switch p {
	case PriorityLow:
		return 10
	case PriorityMedium:
		return 20
	case PriorityHigh:
		return 30
	case PriorityUrgent:
		return 50
	}
	return 0
}

// Task represents a task in the system
type Task struct {
	ID          uuid.UUID          `json:"id" gorm:"type:uuid;primary_key"`
	UserID      uuid.UUID          `json:"user_id" gorm:"type:uuid;not null;index:idx_task_user"`
	User        *user.User         `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Title       string             `json:"title" gorm:"size:200;not null"`
	Description *string            `json:"description,omitempty" gorm:"type:text"`
	Priority    Priority           `json:"priority" gorm:"type:varchar(10);not null;index:idx_task_priority"`
	DueDate     *time.Time         `json:"due_date,omitempty" gorm:"index:idx_task_due"`
	Completed   bool               `json:"completed" gorm:"not null;index:idx_task_completed"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
	CategoryID  *uuid.UUID         `json:"category_id,omitempty" gorm:"type:uuid;index"`
	Category    *category.Category `json:"category,omitempty" gorm:"constraint:OnDelete:SET NULL"`
	Tags        []tag.Tag          `json:"tags" gorm:"many2many:task_tags;constraint:OnDelete:CASCADE"`
	Subtasks    []Subtask          `json:"subtasks,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Notes       []TaskNote         `json:"notes,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time          `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time          `json:"updated_at" gorm:"not null"`
}

// TableName specifies the table name for the Task model
func (Task) TableName() string {
	return "tasks"
}

// BeforeCreate is called before creating a new task record
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type NewTaskParams struct {
	UserID      uuid.UUID
	Title       string
	Description *string
	Priority    Priority
	DueDate     *time.Time
	CategoryID  *uuid.UUID
}

// NewTask validates params and returns an active task. An empty priority
// means MEDIUM.
func NewTask(p NewTaskParams, now time.Time) (*Task, error) {
	if p.UserID == uuid.Nil {
		return nil, apperr.Validation("user_id", "is required")
	}
	title, err := normalizeTitle(p.Title)
	if err != nil {
		return nil, err
	}
	if err := validateDescription(p.Description); err != nil {
		return nil, err
	}
	if p.Priority == "" {
		p.Priority = PriorityMedium
	}
	if !p.Priority.IsValid() {
		return nil, apperr.Validation("priority", "must be one of LOW, MEDIUM, HIGH, URGENT")
	}

	return &Task{
		UserID:      p.UserID,
		Title:       title,
		Description: p.Description,
		Priority:    p.Priority,
		DueDate:     p.DueDate,
		CategoryID:  p.CategoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperr.Validation("title", "must not be empty")
	}
	if len([]rune(title)) > MaxTitleLength {
		return "", apperr.Validation("title", "must be at most 200 characters")
	}
	return title, nil
}

func validateDescription(d *string) error {
	if d != nil && len([]rune(*d)) > MaxDescriptionLength {
		return apperr.Validation("description", "must be at most 2000 characters")
	}
	return nil
}

// Complete moves the task to the completed state exactly once.
func (t *Task) Complete(now time.Time) error {
	if t.Completed {
		return apperr.ErrAlreadyCompleted
	}
	t.Completed = true
	t.CompletedAt = &now
	t.UpdatedAt = now
	return nil
}

func (t *Task) UpdateTitle(title string, now time.Time) error {
	title, err := normalizeTitle(title)
	if err != nil {
		return err
	}
	t.Title = title
	t.UpdatedAt = now
	return nil
}

func (t *Task) UpdateDescription(d *string, now time.Time) error {
	if err := validateDescription(d); err != nil {
		return err
	}
	t.Description = d
	t.UpdatedAt = now
	return nil
}

// ChangePriority does not touch points already awarded.
func (t *Task) ChangePriority(p Priority, now time.Time) error {
	if !p.IsValid() {
		return apperr.Validation("priority", "must be one of LOW, MEDIUM, HIGH, URGENT")
	}
	t.Priority = p
	t.UpdatedAt = now
	return nil
}

func (t *Task) Reschedule(due *time.Time, now time.Time) {
	t.DueDate = due
	t.UpdatedAt = now
}

func (t *Task) AssignCategory(id *uuid.UUID, now time.Time) {
	t.CategoryID = id
	t.Category = nil
	t.UpdatedAt = now
}

// FinishedEarly reports whether a completed task beat its due date.
func (t *Task) FinishedEarly() bool {
	return t.Completed && t.DueDate != nil && t.CompletedAt != nil && t.CompletedAt.Before(*t.DueDate)
}

// Subtask is a checklist item inside a task.
type Subtask struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	TaskID      uuid.UUID  `json:"task_id" gorm:"type:uuid;not null;index:idx_subtask_task_order,priority:1"`
	Title       string     `json:"title" gorm:"size:200;not null"`
	Completed   bool       `json:"completed" gorm:"not null"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Order       int        `json:"order" gorm:"column:sort_order;not null;index:idx_subtask_task_order,priority:2"`
	CreatedAt   time.Time  `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"not null"`
}

func (Subtask) TableName() string {
	return "subtasks"
}

func (s *Subtask) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func NewSubtask(taskID uuid.UUID, title string, order int, now time.Time) (*Subtask, error) {
	title, err := normalizeTitle(title)
	if err != nil {
		return nil, err
	}
	if order < 0 {
		return nil, apperr.Validation("order", "must not be negative")
	}
	return &Subtask{TaskID: taskID, Title: title, Order: order, CreatedAt: now, UpdatedAt: now}, nil
}

func (s *Subtask) Complete(now time.Time) error {
	if s.Completed {
		return apperr.ErrAlreadyCompleted
	}
	s.Completed = true
	s.CompletedAt = &now
	s.UpdatedAt = now
	return nil
}

func (s *Subtask) Rename(title string, now time.Time) error {
	title, err := normalizeTitle(title)
	if err != nil {
		return err
	}
	s.Title = title
	s.UpdatedAt = now
	return nil
}

// TaskNote is free-form text attached to a task.
type TaskNote struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	TaskID    uuid.UUID `json:"task_id" gorm:"type:uuid;not null;index"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}

func (TaskNote) TableName() string {
	return "task_notes"
}

func (n *TaskNote) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

func NewTaskNote(taskID uuid.UUID, content string, now time.Time) (*TaskNote, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("content", "must not be empty")
	}
	if len([]rune(content)) > MaxNoteLength {
		return nil, apperr.Validation("content", "must be at most 2000 characters")
	}
	return &TaskNote{TaskID: taskID, Content: content, CreatedAt: now, UpdatedAt: now}, nil
}
