package task

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/apperr"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/category"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/events"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/gamification"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/tag"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/user"
	"github.com/goto-masaaki-dm/praise-todo/internal/infrastructure/persistence/postgres/connection"
	"go.uber.org/zap"
)

type CreateTaskInput struct {
	UserID      uuid.UUID
	Title       string
	Description *string
	Priority    Priority
	DueDate     *time.Time
	CategoryID  *uuid.UUID
	TagIDs      []uuid.UUID
}

// UpdateTaskInput carries optional changes. Nil leaves a field alone; the
// Clear flags null out optional references.
type UpdateTaskInput struct {
	Title            *string
	Description      *string
	ClearDescription bool
	Priority         *Priority
	DueDate          *time.Time
	ClearDueDate     bool
	CategoryID       *uuid.UUID
	ClearCategory    bool
}

// CompletionResult is everything a single completion changed.
type CompletionResult struct {
	Task         *Task                        `json:"task"`
	Point        *gamification.Point          `json:"point"`
	Streak       *gamification.Streak         `json:"streak"`
	Unlocked     []gamification.Achievement   `json:"unlocked_achievements"`
	TotalPoints  int64                        `json:"total_points"`
	Praise       []gamification.PraiseMessage `json:"praise"`
	FirstOfDay   bool                         `json:"first_of_day"`
	StreakBefore int                          `json:"streak_before"`
}

type Service interface {
	CreateTask(ctx context.Context, input CreateTaskInput) (*Task, error)
	GetTask(ctx context.Context, userID, id uuid.UUID) (*Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]Task, int64, error)
	UpdateTask(ctx context.Context, userID, id uuid.UUID, input UpdateTaskInput) (*Task, error)
	CompleteTask(ctx context.Context, userID, id uuid.UUID) (*CompletionResult, error)
	DeleteTask(ctx context.Context, userID, id uuid.UUID) error

	AddSubtask(ctx context.Context, userID, taskID uuid.UUID, title string) (*Subtask, error)
	ListSubtasks(ctx context.Context, userID, taskID uuid.UUID) ([]Subtask, error)
	CompleteSubtask(ctx context.Context, userID, taskID, subtaskID uuid.UUID) (*Subtask, error)
	RenameSubtask(ctx context.Context, userID, taskID, subtaskID uuid.UUID, title string) (*Subtask, error)
	DeleteSubtask(ctx context.Context, userID, taskID, subtaskID uuid.UUID) error

	AddNote(ctx context.Context, userID, taskID uuid.UUID, content string) (*TaskNote, error)
	ListNotes(ctx context.Context, userID, taskID uuid.UUID) ([]TaskNote, error)
	DeleteNote(ctx context.Context, userID, taskID, noteID uuid.UUID) error

	AttachTag(ctx context.Context, userID, taskID, tagID uuid.UUID) (*Task, error)
	DetachTag(ctx context.Context, userID, taskID, tagID uuid.UUID) (*Task, error)
}

// ProgressInvalidator drops cached progress after a committed completion.
type ProgressInvalidator interface {
	InvalidateProgress(ctx context.Context, userID uuid.UUID)
}

type Option func(*service)

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// WithLocation sets the time zone that decides which calendar day a
// completion falls on.
func WithLocation(loc *time.Location) Option {
	return func(s *service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithPublisher(p events.Publisher) Option {
	return func(s *service) { s.publisher = p }
}

func WithProgressInvalidator(p ProgressInvalidator) Option {
	return func(s *service) { s.invalidator = p }
}

// WithUserLocks shares the per-user writer lock with the gamification service.
func WithUserLocks(l *gamification.UserLocks) Option {
	return func(s *service) { s.locks = l }
}

// Repositories groups the stores the lifecycle manager writes through.
type Repositories struct {
	Tasks        Repository
	Gamification gamification.Repository
	Users        user.Repository
	Categories   category.Repository
	Tags         tag.Repository
}

type service struct {
	db          *connection.Database
	repo        Repository
	progress    gamification.Repository
	users       user.Repository
	categories  category.Repository
	tags        tag.Repository
	publisher   events.Publisher
	invalidator ProgressInvalidator
	locks       *gamification.UserLocks
	logger      *zap.Logger
	now         func() time.Time
	loc         *time.Location
}

func NewService(db *connection.Database, repos Repositories, logger *zap.Logger, opts ...Option) Service {
	s := &service{
		db:         db,
		repo:       repos.Tasks,
		progress:   repos.Gamification,
		users:      repos.Users,
		categories: repos.Categories,
		tags:       repos.Tags,
		publisher:  events.NopPublisher{},
		locks:      gamification.NewUserLocks(),
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
		loc:        time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) CreateTask(ctx context.Context, input CreateTaskInput) (*Task, error) {
	task, err := NewTask(NewTaskParams{
		UserID:      input.UserID,
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		CategoryID:  input.CategoryID,
	}, s.now())
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(input.UserID)
	defer unlock()

	err = s.db.InTransaction(ctx, func(tx *connection.Database) error {
		if task.CategoryID != nil {
			if _, err := s.categories.WithTx(tx).FindByID(ctx, input.UserID, *task.CategoryID); err != nil {
				return err
			}
		}
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, task); err != nil {
			return err
		}
		for _, tagID := range input.TagIDs {
			t, err := s.tags.WithTx(tx).FindByID(ctx, input.UserID, tagID)
			if err != nil {
				return err
			}
			if err := repo.AttachTag(ctx, task, t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Task created",
		zap.String("task_id", task.ID.String()),
		zap.String("user_id", task.UserID.String()),
		zap.String("priority", string(task.Priority)),
	)
	return s.repo.FindByID(ctx, input.UserID, task.ID)
}

func (s *service) GetTask(ctx context.Context, userID, id uuid.UUID) (*Task, error) {
	task, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if task.Subtasks, err = s.repo.ListSubtasks(ctx, id); err != nil {
		return nil, err
	}
	if task.Notes, err = s.repo.ListNotes(ctx, id); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *service) ListTasks(ctx context.Context, filter TaskFilter) ([]Task, int64, error) {
	if filter.UserID == uuid.Nil {
		return nil, 0, apperr.Validation("user_id", "is required")
	}
	if filter.Priority != nil && !filter.Priority.IsValid() {
		return nil, 0, apperr.Validation("priority", "must be one of LOW, MEDIUM, HIGH, URGENT")
	}
	return s.repo.FindAll(ctx, filter)
}

// UpdateTask edits a task in any state. Completed tasks stay completed and
// their ledger entry is never recalculated.
func (s *service) UpdateTask(ctx context.Context, userID, id uuid.UUID, input UpdateTaskInput) (*Task, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	task, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if input.Title != nil {
		if err := task.UpdateTitle(*input.Title, now); err != nil {
			return nil, err
		}
	}
	if input.ClearDescription {
		_ = task.UpdateDescription(nil, now)
	} else if input.Description != nil {
		if err := task.UpdateDescription(input.Description, now); err != nil {
			return nil, err
		}
	}
	if input.Priority != nil {
		if err := task.ChangePriority(*input.Priority, now); err != nil {
			return nil, err
		}
	}
	if input.ClearDueDate {
		task.Reschedule(nil, now)
	} else if input.DueDate != nil {
		task.Reschedule(input.DueDate, now)
	}
	if input.ClearCategory {
		task.AssignCategory(nil, now)
	} else if input.CategoryID != nil {
		if _, err := s.categories.FindByID(ctx, userID, *input.CategoryID); err != nil {
			return nil, err
		}
		task.AssignCategory(input.CategoryID, now)
	}

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, userID, id)
}

// CompleteTask marks the task done and, in the same transaction, appends
// the ledger entry, advances the streak and unlocks achievements. Nothing
// is written unless all four succeed.
func (s *service) CompleteTask(ctx context.Context, userID, id uuid.UUID) (*CompletionResult, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	now := s.now()
	today := gamification.DayOf(now, s.loc)
	result := &CompletionResult{}
	var streakBefore gamification.StreakState

	err := s.db.InTransaction(ctx, func(tx *connection.Database) error {
		tasks := s.repo.WithTx(tx)
		progress := s.progress.WithTx(tx)

		task, err := tasks.FindByID(ctx, userID, id)
		if err != nil {
			return err
		}
		if err := task.Complete(now); err != nil {
			return err
		}
		won, err := tasks.MarkCompleted(ctx, task.ID, now)
		if err != nil {
			return err
		}
		if !won {
			return apperr.ErrAlreadyCompleted
		}

		point := gamification.NewCompletionPoint(userID, task.ID, task.Priority.Points(), now)
		if err := progress.AppendPoint(ctx, point); err != nil {
			return err
		}

		streak, err := progress.FindStreakForUpdate(ctx, userID)
		isNew := false
		if apperr.IsNotFound(err) {
			streak, isNew = gamification.NewStreak(userID, now), true
		} else if err != nil {
			return err
		}
		streakBefore = streak.State()
		streak.Apply(gamification.AdvanceStreak(streakBefore, today), now)
		if isNew {
			err = progress.CreateStreak(ctx, streak)
		} else {
			err = progress.SaveStreak(ctx, streak)
		}
		if err != nil {
			return err
		}

		completed, err := progress.CountCompletions(ctx, userID)
		if err != nil {
			return err
		}
		total, err := progress.SumPoints(ctx, userID)
		if err != nil {
			return err
		}
		existing, err := progress.ListAchievements(ctx, userID)
		if err != nil {
			return err
		}
		have := make(map[gamification.AchievementType]bool, len(existing))
		for _, a := range existing {
			have[a.Type] = true
		}

		stats := gamification.Stats{CompletedTasks: completed, CurrentStreak: streak.CurrentStreak, TotalPoints: total}
		var unlocked []gamification.Achievement
		for _, t := range gamification.EvaluateAchievements(stats, have) {
			a := gamification.NewAchievement(userID, t, now)
			added, err := progress.UnlockAchievement(ctx, a)
			if err != nil {
				return err
			}
			if added {
				unlocked = append(unlocked, *a)
			}
		}

		result.Task = task
		result.Point = point
		result.Streak = streak
		result.Unlocked = unlocked
		result.TotalPoints = total
		return nil
	})
	if err != nil {
		if !apperr.IsAlreadyCompleted(err) && !apperr.IsNotFound(err) {
			s.logger.Error("Task completion rolled back",
				zap.String("task_id", id.String()),
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
		}
		return nil, err
	}

	result.FirstOfDay = gamification.IsFirstOfDay(streakBefore, today)
	result.StreakBefore = gamification.ActiveStreak(streakBefore, today)
	s.afterCompletion(ctx, result)
	return result, nil
}

// afterCompletion runs once the transaction has committed. Its failures are
// logged and never undo the completion.
func (s *service) afterCompletion(ctx context.Context, result *CompletionResult) {
	task := result.Task
	userID := task.UserID

	unlockedTypes := make([]gamification.AchievementType, len(result.Unlocked))
	unlockedNames := make([]string, len(result.Unlocked))
	for i, a := range result.Unlocked {
		unlockedTypes[i] = a.Type
		unlockedNames[i] = string(a.Type)
	}

	settings, err := s.users.FindSettings(ctx, userID)
	if err != nil {
		s.logger.Warn("Falling back to default praise settings", zap.String("user_id", userID.String()), zap.Error(err))
		settings = user.DefaultSettings(userID, s.now())
	}
	result.Praise = gamification.Praise(gamification.CompletionOutcome{
		Points:        result.Point.Amount,
		Urgent:        task.Priority == PriorityUrgent,
		FinishedEarly: task.FinishedEarly(),
		FirstOfDay:    result.FirstOfDay,
		StreakBefore:  result.StreakBefore,
		StreakAfter:   result.Streak.CurrentStreak,
		Unlocked:      unlockedTypes,
	}, gamification.PraiseToggles{
		OnComplete:    settings.PraiseOnComplete,
		OnStreak:      settings.PraiseOnStreak,
		OnAchievement: settings.PraiseOnAchievement,
		OnEarlyFinish: settings.PraiseOnEarlyFinish,
		OnUrgent:      settings.PraiseOnUrgent,
		OnFirstOfDay:  settings.PraiseOnFirstOfDay,
	})

	if s.invalidator != nil {
		s.invalidator.InvalidateProgress(ctx, userID)
	}

	praise := make([]string, len(result.Praise))
	for i, p := range result.Praise {
		praise[i] = p.Message
	}
	event := &events.ProgressEvent{
		EventType:     events.EventTypeTaskCompleted,
		UserID:        userID,
		EntityID:      task.ID,
		Timestamp:     *task.CompletedAt,
		Points:        result.Point.Amount,
		TotalPoints:   result.TotalPoints,
		CurrentStreak: result.Streak.CurrentStreak,
		LongestStreak: result.Streak.LongestStreak,
		Unlocked:      unlockedNames,
		Praise:        praise,
	}
	if err := s.publisher.PublishProgress(ctx, event); err != nil {
		s.logger.Warn("Failed to publish completion event", zap.String("task_id", task.ID.String()), zap.Error(err))
	}

	gamification.RecordCompletion(string(task.Priority), result.Point.Amount, unlockedTypes)

	s.logger.Info("Task completed",
		zap.String("task_id", task.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Int("points", result.Point.Amount),
		zap.Int64("total_points", result.TotalPoints),
		zap.Int("streak", result.Streak.CurrentStreak),
		zap.Strings("unlocked", unlockedNames),
	)
}

// DeleteTask removes the task with its subtasks, notes and tag links.
// Points already earned stay in the ledger.
func (s *service) DeleteTask(ctx context.Context, userID, id uuid.UUID) error {
	unlock := s.locks.Lock(userID)
	defer unlock()

	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.logger.Info("Task deleted", zap.String("task_id", id.String()), zap.String("user_id", userID.String()))
	return nil
}

func (s *service) AddSubtask(ctx context.Context, userID, taskID uuid.UUID, title string) (*Subtask, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	var subtask *Subtask
	err := s.db.InTransaction(ctx, func(tx *connection.Database) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByID(ctx, userID, taskID); err != nil {
			return err
		}
		order, err := repo.NextSubtaskOrder(ctx, taskID)
		if err != nil {
			return err
		}
		if subtask, err = NewSubtask(taskID, title, order, s.now()); err != nil {
			return err
		}
		return repo.CreateSubtask(ctx, subtask)
	})
	if err != nil {
		return nil, err
	}
	return subtask, nil
}

func (s *service) ListSubtasks(ctx context.Context, userID, taskID uuid.UUID) ([]Subtask, error) {
	if _, err := s.repo.FindByID(ctx, userID, taskID); err != nil {
		return nil, err
	}
	return s.repo.ListSubtasks(ctx, taskID)
}

func (s *service) ownedSubtask(ctx context.Context, userID, taskID, subtaskID uuid.UUID) (*Subtask, error) {
	if _, err := s.repo.FindByID(ctx, userID, taskID); err != nil {
		return nil, err
	}
	return s.repo.FindSubtask(ctx, taskID, subtaskID)
}

// CompleteSubtask checks off a subtask. Subtasks earn no points.
func (s *service) CompleteSubtask(ctx context.Context, userID, taskID, subtaskID uuid.UUID) (*Subtask, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	subtask, err := s.ownedSubtask(ctx, userID, taskID, subtaskID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := subtask.Complete(now); err != nil {
		return nil, err
	}
	done, err := s.repo.MarkSubtaskCompleted(ctx, taskID, subtaskID, now)
	if err != nil {
		return nil, err
	}
	if !done {
		// Completed or deleted by another writer since the read.
		if _, err := s.repo.FindSubtask(ctx, taskID, subtaskID); err != nil {
			return nil, err
		}
		return nil, apperr.ErrAlreadyCompleted
	}
	return subtask, nil
}

func (s *service) RenameSubtask(ctx context.Context, userID, taskID, subtaskID uuid.UUID, title string) (*Subtask, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	subtask, err := s.ownedSubtask(ctx, userID, taskID, subtaskID)
	if err != nil {
		return nil, err
	}
	if err := subtask.Rename(title, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateSubtask(ctx, subtask); err != nil {
		return nil, err
	}
	return subtask, nil
}

func (s *service) DeleteSubtask(ctx context.Context, userID, taskID, subtaskID uuid.UUID) error {
	unlock := s.locks.Lock(userID)
	defer unlock()

	if _, err := s.repo.FindByID(ctx, userID, taskID); err != nil {
		return err
	}
	return s.repo.DeleteSubtask(ctx, taskID, subtaskID)
}

func (s *service) AddNote(ctx context.Context, userID, taskID uuid.UUID, content string) (*TaskNote, error) {
	if _, err := s.repo.FindByID(ctx, userID, taskID); err != nil {
		return nil, err
	}
	note, err := NewTaskNote(taskID, content, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateNote(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *service) ListNotes(ctx context.Context, userID, taskID uuid.UUID) ([]TaskNote, error) {
	if _, err := s.repo.FindByID(ctx, userID, taskID); err != nil {
		return nil, err
	}
	return s.repo.ListNotes(ctx, taskID)
}

func (s *service) DeleteNote(ctx context.Context, userID, taskID, noteID uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, userID, taskID); err != nil {
		return err
	}
	return s.repo.DeleteNote(ctx, taskID, noteID)
}

func (s *service) AttachTag(ctx context.Context, userID, taskID, tagID uuid.UUID) (*Task, error) {
	return s.changeTag(ctx, userID, taskID, tagID, Repository.AttachTag)
}

func (s *service) DetachTag(ctx context.Context, userID, taskID, tagID uuid.UUID) (*Task, error) {
	return s.changeTag(ctx, userID, taskID, tagID, Repository.DetachTag)
}

func (s *service) changeTag(ctx context.Context, userID, taskID, tagID uuid.UUID,
	apply func(Repository, context.Context, *Task, *tag.Tag) error) (*Task, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	task, err := s.repo.FindByID(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	t, err := s.tags.FindByID(ctx, userID, tagID)
	if err != nil {
		return nil, err
	}
	if err := apply(s.repo, ctx, task, t); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, userID, taskID)
}
