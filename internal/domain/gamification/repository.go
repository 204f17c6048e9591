package gamification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/apperr"
	"github.com/goto-masaaki-dm/praise-todo/internal/infrastructure/persistence/postgres/connection"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	AppendPoint(ctx context.Context, point *Point) error
	SumPoints(ctx context.Context, userID uuid.UUID) (int64, error)
	CountCompletions(ctx context.Context, userID uuid.UUID) (int64, error)
	ListPoints(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]Point, int64, error)
	FindStreak(ctx context.Context, userID uuid.UUID) (*Streak, error)
	// FindStreakForUpdate locks the row until the surrounding transaction ends.
	FindStreakForUpdate(ctx context.Context, userID uuid.UUID) (*Streak, error)
	CreateStreak(ctx context.Context, streak *Streak) error
	SaveStreak(ctx context.Context, streak *Streak) error
	ListAchievements(ctx context.Context, userID uuid.UUID) ([]Achievement, error)
	// UnlockAchievement inserts unless (user, type) exists and reports whether a row was added.
	UnlockAchievement(ctx context.Context, achievement *Achievement) (bool, error)
	ProvisionAccount(ctx context.Context, tx *connection.Database, userID uuid.UUID, now time.Time) error
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

func (r *repository) AppendPoint(ctx context.Context, point *Point) error {
	if !point.Reason.IsValid() {
		return apperr.Validation("reason", "unknown point reason")
	}
	return apperr.FromDB("append point", "point", r.db.WithContext(ctx).Create(point).Error)
}

func (r *repository) SumPoints(ctx context.Context, userID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&Point{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ?", userID).
		Scan(&total).Error
	if err != nil {
		return 0, apperr.FromDB("sum points", "point", err)
	}
	return total, nil
}

// CountCompletions counts completion entries in the ledger, so deleting a
// completed task does not take back progress.
func (r *repository) CountCompletions(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Point{}).
		Where("user_id = ? AND reason = ?", userID, ReasonTaskCompleted).
		Count(&count).Error
	if err != nil {
		return 0, apperr.FromDB("count completions", "point", err)
	}
	return count, nil
}

func (r *repository) ListPoints(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]Point, int64, error) {
	var points []Point
	var total int64

	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&Point{}).Where("user_id = ?", userID)
	}
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, apperr.FromDB("count points", "point", err)
	}

	if pageSize <= 0 {
		pageSize = 20
	}
	if page < 0 {
		page = 0
	}
	err := base().Order("created_at DESC").Order("id").
		Offset(page * pageSize).Limit(pageSize).
		Find(&points).Error
	if err != nil {
		return nil, 0, apperr.FromDB("list points", "point", err)
	}
	return points, total, nil
}

func (r *repository) findStreak(ctx context.Context, userID uuid.UUID, lock bool) (*Streak, error) {
	var streak Streak
	query := r.db.WithContext(ctx)
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := query.Where("user_id = ?", userID).First(&streak).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("streak", userID)
		}
		return nil, apperr.FromDB("find streak", "streak", err)
	}
	return &streak, nil
}

func (r *repository) FindStreak(ctx context.Context, userID uuid.UUID) (*Streak, error) {
	return r.findStreak(ctx, userID, false)
}

func (r *repository) FindStreakForUpdate(ctx context.Context, userID uuid.UUID) (*Streak, error) {
	return r.findStreak(ctx, userID, true)
}

func (r *repository) CreateStreak(ctx context.Context, streak *Streak) error {
	return apperr.FromDB("create streak", "streak", r.db.WithContext(ctx).Create(streak).Error)
}

func (r *repository) SaveStreak(ctx context.Context, streak *Streak) error {
	if streak.LongestStreak < streak.CurrentStreak || streak.CurrentStreak < 0 {
		return apperr.Validation("streak", "longest must be >= current >= 0")
	}
	return apperr.FromDB("save streak", "streak", r.db.WithContext(ctx).Save(streak).Error)
}

func (r *repository) ListAchievements(ctx context.Context, userID uuid.UUID) ([]Achievement, error) {
	var achievements []Achievement
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("unlocked_at ASC").Order("type ASC").
		Find(&achievements).Error
	if err != nil {
		return nil, apperr.FromDB("list achievements", "achievement", err)
	}
	return achievements, nil
}

func (r *repository) UnlockAchievement(ctx context.Context, achievement *Achievement) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "type"}},
			DoNothing: true,
		}).
		Create(achievement)
	if result.Error != nil {
		return false, apperr.FromDB("unlock achievement", "achievement", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// ProvisionAccount gives a newly registered user an empty streak.
func (r *repository) ProvisionAccount(ctx context.Context, tx *connection.Database, userID uuid.UUID, now time.Time) error {
	return r.WithTx(tx).CreateStreak(ctx, NewStreak(userID, now))
}
