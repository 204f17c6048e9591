package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/apperr"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/tag"
	"github.com/goto-masaaki-dm/praise-todo/internal/infrastructure/persistence/postgres/connection"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskFilter defines filtering options for tasks
type TaskFilter struct {
	UserID       uuid.UUID
	Completed    *bool
	Priority     *Priority
	CategoryID   *uuid.UUID
	TagID        *uuid.UUID
	DueDateStart *time.Time
	DueDateEnd   *time.Time
	Page         int
	PageSize     int
}

const defaultPageSize = 50

// Repository defines the persistence operations for tasks and their children.
// Every lookup is scoped to the owning user or task.
type Repository interface {
	Create(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*Task, error)
	FindAll(ctx context.Context, filter TaskFilter) ([]Task, int64, error)
	// Update writes the editable fields only; completion state is owned by
	// MarkCompleted.
	Update(ctx context.Context, task *Task) error
	// MarkCompleted flips the flag only while it is still false and reports
	// whether this call did it.
	MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error

	CreateSubtask(ctx context.Context, subtask *Subtask) error
	FindSubtask(ctx context.Context, taskID, id uuid.UUID) (*Subtask, error)
	ListSubtasks(ctx context.Context, taskID uuid.UUID) ([]Subtask, error)
	NextSubtaskOrder(ctx context.Context, taskID uuid.UUID) (int, error)
	UpdateSubtask(ctx context.Context, subtask *Subtask) error
	MarkSubtaskCompleted(ctx context.Context, taskID, id uuid.UUID, at time.Time) (bool, error)
	DeleteSubtask(ctx context.Context, taskID, id uuid.UUID) error

	CreateNote(ctx context.Context, note *TaskNote) error
	ListNotes(ctx context.Context, taskID uuid.UUID) ([]TaskNote, error)
	DeleteNote(ctx context.Context, taskID, id uuid.UUID) error

	AttachTag(ctx context.Context, task *Task, t *tag.Tag) error
	DetachTag(ctx context.Context, task *Task, t *tag.Tag) error

	WithTx(tx *connection.Database) Repository
}

type repository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *connection.Database) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, task *Task) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return apperr.ConstraintViolation("task references an unknown user or category", err)
	}
	return apperr.FromDB("create task", "task", err)
}

func (r *repository) FindByID(ctx context.Context, userID, id uuid.UUID) (*Task, error) {
	var task Task
	err := r.db.WithContext(ctx).
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("name") }).
		Preload("Category").
		Where("user_id = ? AND id = ?", userID, id).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("task", id)
		}
		return nil, apperr.FromDB("find task", "task", err)
	}
	return &task, nil
}

func (r *repository) FindAll(ctx context.Context, filter TaskFilter) ([]Task, int64, error) {
	var tasks []Task
	var total int64

	base := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&Task{}).Where("user_id = ?", filter.UserID)
		if filter.Completed != nil {
			query = query.Where("completed = ?", *filter.Completed)
		}
		if filter.Priority != nil {
			query = query.Where("priority = ?", *filter.Priority)
		}
		if filter.CategoryID != nil {
			query = query.Where("category_id = ?", *filter.CategoryID)
		}
		if filter.TagID != nil {
			query = query.Where("id IN (?)",
				r.db.Table("task_tags").Select("task_id").Where("tag_id = ?", *filter.TagID))
		}
		if filter.DueDateStart != nil {
			query = query.Where("due_date >= ?", *filter.DueDateStart)
		}
		if filter.DueDateEnd != nil {
			query = query.Where("due_date < ?", *filter.DueDateEnd)
		}
		return query
	}

	// Count total before pagination
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, apperr.FromDB("count tasks", "task", err)
	}

	if filter.PageSize <= 0 {
		filter.PageSize = defaultPageSize
	}
	if filter.Page < 0 {
		filter.Page = 0
	}

	err := base().
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("name") }).
		Order("completed ASC").Order("created_at DESC").Order("id").
		Offset(filter.Page * filter.PageSize).Limit(filter.PageSize).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, apperr.FromDB("list tasks", "task", err)
	}
	return tasks, total, nil
}

func (r *repository) Update(ctx context.Context, task *Task) error {
	result := r.db.WithContext(ctx).Model(&Task{}).
		Where("id = ? AND user_id = ?", task.ID, task.UserID).
		Updates(map[string]interface{}{
			"title":       task.Title,
			"description": task.Description,
			"priority":    task.Priority,
			"due_date":    task.DueDate,
			"category_id": task.CategoryID,
			"updated_at":  task.UpdatedAt,
		})
	if errors.Is(result.Error, gorm.ErrForeignKeyViolated) {
		return apperr.ConstraintViolation("task references an unknown category", result.Error)
	}
	if result.Error != nil {
		return apperr.FromDB("update task", "task", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("task", task.ID)
	}
	return nil
}

func (r *repository) MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&Task{}).
		Where("id = ? AND completed = ?", id, false).
		Updates(map[string]interface{}{
			"completed":    true,
			"completed_at": at,
			"updated_at":   at,
		})
	if result.Error != nil {
		return false, apperr.FromDB("complete task", "task", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Delete(&Task{})
	if result.Error != nil {
		return apperr.FromDB("delete task", "task", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("task", id)
	}
	return nil
}

func (r *repository) CreateSubtask(ctx context.Context, subtask *Subtask) error {
	return apperr.FromDB("create subtask", "subtask", r.db.WithContext(ctx).Create(subtask).Error)
}

func (r *repository) FindSubtask(ctx context.Context, taskID, id uuid.UUID) (*Subtask, error) {
	var subtask Subtask
	err := r.db.WithContext(ctx).Where("task_id = ? AND id = ?", taskID, id).First(&subtask).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("subtask", id)
		}
		return nil, apperr.FromDB("find subtask", "subtask", err)
	}
	return &subtask, nil
}

func (r *repository) ListSubtasks(ctx context.Context, taskID uuid.UUID) ([]Subtask, error) {
	var subtasks []Subtask
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("sort_order ASC").Order("created_at ASC").
		Find(&subtasks).Error
	if err != nil {
		return nil, apperr.FromDB("list subtasks", "subtask", err)
	}
	return subtasks, nil
}

func (r *repository) NextSubtaskOrder(ctx context.Context, taskID uuid.UUID) (int, error) {
	var next int
	err := r.db.WithContext(ctx).Model(&Subtask{}).
		Select("COALESCE(MAX(sort_order) + 1, 0)").
		Where("task_id = ?", taskID).
		Scan(&next).Error
	if err != nil {
		return 0, apperr.FromDB("next subtask order", "subtask", err)
	}
	return next, nil
}

// UpdateSubtask renames; completion goes through MarkSubtaskCompleted.
func (r *repository) UpdateSubtask(ctx context.Context, subtask *Subtask) error {
	result := r.db.WithContext(ctx).Model(&Subtask{}).
		Where("task_id = ? AND id = ?", subtask.TaskID, subtask.ID).
		Updates(map[string]interface{}{
			"title":      subtask.Title,
			"updated_at": subtask.UpdatedAt,
		})
	if result.Error != nil {
		return apperr.FromDB("update subtask", "subtask", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("subtask", subtask.ID)
	}
	return nil
}

func (r *repository) MarkSubtaskCompleted(ctx context.Context, taskID, id uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&Subtask{}).
		Where("task_id = ? AND id = ? AND completed = ?", taskID, id, false).
		Updates(map[string]interface{}{
			"completed":    true,
			"completed_at": at,
			"updated_at":   at,
		})
	if result.Error != nil {
		return false, apperr.FromDB("complete subtask", "subtask", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) DeleteSubtask(ctx context.Context, taskID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("task_id = ? AND id = ?", taskID, id).Delete(&Subtask{})
	if result.Error != nil {
		return apperr.FromDB("delete subtask", "subtask", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("subtask", id)
	}
	return nil
}

func (r *repository) CreateNote(ctx context.Context, note *TaskNote) error {
	return apperr.FromDB("create note", "note", r.db.WithContext(ctx).Create(note).Error)
}

func (r *repository) ListNotes(ctx context.Context, taskID uuid.UUID) ([]TaskNote, error) {
	var notes []TaskNote
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at ASC").Order("id").
		Find(&notes).Error
	if err != nil {
		return nil, apperr.FromDB("list notes", "note", err)
	}
	return notes, nil
}

func (r *repository) DeleteNote(ctx context.Context, taskID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("task_id = ? AND id = ?", taskID, id).Delete(&TaskNote{})
	if result.Error != nil {
		return apperr.FromDB("delete note", "note", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("note", id)
	}
	return nil
}

// AttachTag links t to task; linking twice is a no-op.
func (r *repository) AttachTag(ctx context.Context, task *Task, t *tag.Tag) error {
	err := r.db.WithContext(ctx).Model(task).Association("Tags").Append(t)
	return apperr.FromDB("attach tag", "tag", err)
}

func (r *repository) DetachTag(ctx context.Context, task *Task, t *tag.Tag) error {
	err := r.db.WithContext(ctx).Model(task).Association("Tags").Delete(t)
	return apperr.FromDB("detach tag", "tag", err)
}
