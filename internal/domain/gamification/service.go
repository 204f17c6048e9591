package gamification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/apperr"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/events"
	"github.com/goto-masaaki-dm/praise-todo/internal/infrastructure/cache"
	"github.com/goto-masaaki-dm/praise-todo/internal/infrastructure/persistence/postgres/connection"
	"go.uber.org/zap"
)

const progressCacheType = "progress"

// ProgressCache is the subset of the Redis client the read side needs.
type ProgressCache interface {
	GetJSON(ctx context.Context, key, cacheType string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type Service interface {
	GetProgress(ctx context.Context, userID uuid.UUID) (*Progress, error)
	ListPoints(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]Point, int64, error)
	ListAchievements(ctx context.Context, userID uuid.UUID) ([]Achievement, error)
	AdjustPoints(ctx context.Context, userID uuid.UUID, amount int, note string) (*Point, error)
	InvalidateProgress(ctx context.Context, userID uuid.UUID)
	Catalog() []Definition
}

type Option func(*service)

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// WithLocation sets the time zone that decides which calendar day "now" is.
func WithLocation(loc *time.Location) Option {
	return func(s *service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithCache(pc ProgressCache, ttl time.Duration) Option {
	return func(s *service) {
		s.cache = pc
		s.ttl = ttl
	}
}

func WithPublisher(p events.Publisher) Option {
	return func(s *service) { s.publisher = p }
}

// WithUserLocks shares the per-user writer lock with the task service.
func WithUserLocks(l *UserLocks) Option {
	return func(s *service) { s.locks = l }
}

type service struct {
	db        *connection.Database
	repo      Repository
	cache     ProgressCache
	ttl       time.Duration
	publisher events.Publisher
	locks     *UserLocks
	logger    *zap.Logger
	now       func() time.Time
	loc       *time.Location
}

func NewService(db *connection.Database, repo Repository, logger *zap.Logger, opts ...Option) Service {
	s := &service{
		db:        db,
		repo:      repo,
		publisher: events.NopPublisher{},
		locks:     NewUserLocks(),
		logger:    logger,
		ttl:       5 * time.Minute,
		now:       func() time.Time { return time.Now().UTC() },
		loc:       time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func progressKey(userID uuid.UUID) string {
	return cache.GenerateCacheKey("progress", userID, "")
}

func (s *service) GetProgress(ctx context.Context, userID uuid.UUID) (*Progress, error) {
	if s.cache != nil {
		var cached Progress
		hit, err := s.cache.GetJSON(ctx, progressKey(userID), progressCacheType, &cached)
		if err != nil {
			s.logger.Warn("Progress cache read failed", zap.String("user_id", userID.String()), zap.Error(err))
		}
		if hit {
			cached.ActiveStreak = ActiveStreak(StreakState{
				Current:    cached.CurrentStreak,
				Longest:    cached.LongestStreak,
				LastActive: cached.LastActiveDate,
			}, DayOf(s.now(), s.loc))
			return &cached, nil
		}
	}

	progress, err := s.loadProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, progressKey(userID), progress, s.ttl); err != nil {
			s.logger.Warn("Progress cache write failed", zap.String("user_id", userID.String()), zap.Error(err))
		}
	}
	return progress, nil
}

func (s *service) loadProgress(ctx context.Context, userID uuid.UUID) (*Progress, error) {
	streak, err := s.repo.FindStreak(ctx, userID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("user", userID)
		}
		return nil, err
	}
	total, err := s.repo.SumPoints(ctx, userID)
	if err != nil {
		return nil, err
	}
	completed, err := s.repo.CountCompletions(ctx, userID)
	if err != nil {
		return nil, err
	}
	achievements, err := s.repo.ListAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Progress{
		UserID:         userID,
		TotalPoints:    total,
		CompletedTasks: completed,
		CurrentStreak:  streak.CurrentStreak,
		ActiveStreak:   ActiveStreak(streak.State(), DayOf(s.now(), s.loc)),
		LongestStreak:  streak.LongestStreak,
		LastActiveDate: streak.LastActiveDate,
		Achievements:   achievements,
	}, nil
}

func (s *service) ListPoints(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]Point, int64, error) {
	return s.repo.ListPoints(ctx, userID, page, pageSize)
}

func (s *service) ListAchievements(ctx context.Context, userID uuid.UUID) ([]Achievement, error) {
	return s.repo.ListAchievements(ctx, userID)
}

// AdjustPoints appends a correction to the ledger. Adjustments move the
// total but never unlock achievements; those are earned by completing tasks.
func (s *service) AdjustPoints(ctx context.Context, userID uuid.UUID, amount int, note string) (*Point, error) {
	now := s.now()
	point, err := NewAdjustmentPoint(userID, amount, note, now)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	var total int64
	var streak *Streak
	err = s.db.InTransaction(ctx, func(tx *connection.Database) error {
		repo := s.repo.WithTx(tx)
		var err error
		if streak, err = repo.FindStreak(ctx, userID); err != nil {
			if apperr.IsNotFound(err) {
				return apperr.NotFound("user", userID)
			}
			return err
		}
		if err := repo.AppendPoint(ctx, point); err != nil {
			return err
		}
		total, err = repo.SumPoints(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	recordAdjustment(amount)
	s.InvalidateProgress(ctx, userID)

	event := &events.ProgressEvent{
		EventType:     events.EventTypePointsAdjusted,
		UserID:        userID,
		EntityID:      point.ID,
		Timestamp:     now,
		Points:        amount,
		TotalPoints:   total,
		CurrentStreak: streak.CurrentStreak,
		LongestStreak: streak.LongestStreak,
	}
	if err := s.publisher.PublishProgress(ctx, event); err != nil {
		s.logger.Warn("Failed to publish adjustment event", zap.String("user_id", userID.String()), zap.Error(err))
	}

	s.logger.Info("Points adjusted",
		zap.String("user_id", userID.String()),
		zap.Int("amount", amount),
		zap.Int64("total", total),
	)
	return point, nil
}

// InvalidateProgress drops the cached read model. Failures only cost a
// stale read until the TTL expires, so they are logged.
func (s *service) InvalidateProgress(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, progressKey(userID)); err != nil {
		s.logger.Warn("Progress cache invalidation failed", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

func (s *service) Catalog() []Definition {
	return Catalog()
}
