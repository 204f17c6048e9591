package routes

import (
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/category"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/gamification"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/tag"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/task"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/user"
	"github.com/goto-masaaki-dm/praise-todo/internal/infrastructure/cache"
	"github.com/goto-masaaki-dm/praise-todo/internal/infrastructure/persistence/postgres/connection"
	"github.com/goto-masaaki-dm/praise-todo/pkg/config"
	"go.uber.org/zap"
)

// NewServices builds the domain services over db. With a nil redis the
// progress cache is skipped and events are dropped.
func NewServices(cfg *config.Config, db *connection.Database, redis *cache.RedisClient, logger *zap.Logger) (Services, error) {
	loc, err := cfg.Gamification.Location()
	if err != nil {
		return Services{}, err
	}

	// Task completion and point adjustment must not interleave for a user.
	locks := gamification.NewUserLocks()

	userRepo := user.NewRepository(db)
	categoryRepo := category.NewRepository(db)
	tagRepo := tag.NewRepository(db)
	progressRepo := gamification.NewRepository(db)

	progressOpts := []gamification.Option{
		gamification.WithLocation(loc),
		gamification.WithUserLocks(locks),
	}
	taskOpts := []task.Option{
		task.WithLocation(loc),
		task.WithUserLocks(locks),
	}
	if redis != nil {
		progressOpts = append(progressOpts,
			gamification.WithCache(redis, cfg.Gamification.ProgressTTL),
			gamification.WithPublisher(redis),
		)
		taskOpts = append(taskOpts, task.WithPublisher(redis))
	}

	progress := gamification.NewService(db, progressRepo, logger, progressOpts...)
	taskOpts = append(taskOpts, task.WithProgressInvalidator(progress))

	return Services{
		Users:      user.NewService(db, userRepo, logger, user.WithProvisioners(progressRepo)),
		Categories: category.NewService(categoryRepo, logger),
		Tags:       tag.NewService(tagRepo, logger),
		Progress:   progress,
		Tasks: task.NewService(db, task.Repositories{
			Tasks:        task.NewRepository(db),
			Gamification: progressRepo,
			Users:        userRepo,
			Categories:   categoryRepo,
			Tags:         tagRepo,
		}, logger, taskOpts...),
	}, nil
}
