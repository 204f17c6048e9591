package gamification

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/apperr"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/events"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/user"
	"github.com/goto-masaaki-dm/praise-todo/internal/infrastructure/cache"
	"github.com/goto-masaaki-dm/praise-todo/internal/infrastructure/persistence/postgres/connection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	events []*events.ProgressEvent
}

func (p *recordingPublisher) PublishProgress(_ context.Context, e *events.ProgressEvent) error {
	p.events = append(p.events, e)
	return nil
}

type fixture struct {
	db   *connection.Database
	repo Repository
	user *user.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := connection.NewSQLiteDatabase("file::memory:?_foreign_keys=on", false)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&user.User{}, &Point{}, &Streak{}, &Achievement{}))
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	u := &user.User{Email: "progress@example.com", CreatedAt: testNow, UpdatedAt: testNow}
	require.NoError(t, user.NewRepository(db).Create(ctx, u))

	repo := NewRepository(db)
	require.NoError(t, repo.ProvisionAccount(ctx, db, u.ID, testNow))
	return &fixture{db: db, repo: repo, user: u}
}

func newRedis(t *testing.T) (*cache.RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cfg := cache.DefaultConfig()
	cfg.Addr = mr.Addr()
	cfg.HealthCheckInterval = 0
	client, err := cache.NewRedisClient(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestRepositoryLedger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.repo.AppendPoint(ctx, NewCompletionPoint(f.user.ID, uuid.New(), 20, testNow)))
	require.NoError(t, f.repo.AppendPoint(ctx, NewCompletionPoint(f.user.ID, uuid.New(), 30, testNow.Add(time.Hour))))
	adj, err := NewAdjustmentPoint(f.user.ID, -5, "fix", testNow.Add(2*time.Hour))
	require.NoError(t, err)
	require.NoError(t, f.repo.AppendPoint(ctx, adj))

	total, err := f.repo.SumPoints(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(45), total)

	completions, err := f.repo.CountCompletions(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), completions)

	points, count, err := f.repo.ListPoints(ctx, f.user.ID, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	require.Len(t, points, 2)
	assert.Equal(t, -5, points[0].Amount)
	assert.Equal(t, 30, points[1].Amount)

	empty, err := f.repo.SumPoints(ctx, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, empty)
}

func TestRepositoryRejectsUnknownReason(t *testing.T) {
	f := newFixture(t)
	err := f.repo.AppendPoint(context.Background(), &Point{UserID: f.user.ID, Amount: 1, Reason: "bonus", CreatedAt: testNow})
	assert.True(t, apperr.IsValidation(err))
}

func TestRepositoryStreakRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	streak, err := f.repo.FindStreakForUpdate(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Zero(t, streak.CurrentStreak)
	assert.Nil(t, streak.LastActiveDate)

	streak.Apply(AdvanceStreak(streak.State(), DayOf(testNow, time.UTC)), testNow)
	require.NoError(t, f.repo.SaveStreak(ctx, streak))

	reloaded, err := f.repo.FindStreak(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.CurrentStreak)
	assert.Equal(t, 1, reloaded.LongestStreak)
	require.NotNil(t, reloaded.LastActiveDate)
	assert.True(t, DayOf(testNow, time.UTC).Equal(*reloaded.LastActiveDate))

	reloaded.CurrentStreak = 3
	assert.True(t, apperr.IsValidation(f.repo.SaveStreak(ctx, reloaded)))

	_, err = f.repo.FindStreak(ctx, uuid.New())
	assert.True(t, apperr.IsNotFound(err))
}

func TestRepositoryUnlockIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	added, err := f.repo.UnlockAchievement(ctx, NewAchievement(f.user.ID, AchievementFirstTask, testNow))
	require.NoError(t, err)
	assert.True(t, added)

	added, err = f.repo.UnlockAchievement(ctx, NewAchievement(f.user.ID, AchievementFirstTask, testNow.Add(time.Hour)))
	require.NoError(t, err)
	assert.False(t, added)

	list, err := f.repo.ListAchievements(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "First Step", list[0].Title)
	assert.True(t, testNow.Equal(list[0].UnlockedAt))
}

func TestGetProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewService(f.db, f.repo, zap.NewNop(), WithClock(func() time.Time { return testNow }))

	require.NoError(t, f.repo.AppendPoint(ctx, NewCompletionPoint(f.user.ID, uuid.New(), 20, testNow)))
	streak, err := f.repo.FindStreak(ctx, f.user.ID)
	require.NoError(t, err)
	yesterday := DayOf(testNow, time.UTC).AddDate(0, 0, -1)
	streak.Apply(StreakState{Current: 2, Longest: 4, LastActive: &yesterday}, testNow)
	require.NoError(t, f.repo.SaveStreak(ctx, streak))

	progress, err := svc.GetProgress(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20), progress.TotalPoints)
	assert.Equal(t, int64(1), progress.CompletedTasks)
	assert.Equal(t, 2, progress.CurrentStreak)
	assert.Equal(t, 2, progress.ActiveStreak)
	assert.Equal(t, 4, progress.LongestStreak)

	_, err = svc.GetProgress(ctx, uuid.New())
	assert.True(t, apperr.IsNotFound(err))
}

func TestGetProgressUsesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	redis, mr := newRedis(t)
	svc := NewService(f.db, f.repo, zap.NewNop(),
		WithClock(func() time.Time { return testNow }),
		WithCache(redis, time.Minute),
	)

	first, err := svc.GetProgress(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Zero(t, first.TotalPoints)
	assert.True(t, mr.Exists("praise:progress:"+f.user.ID.String()))

	// Written behind the service's back: the cached copy wins until invalidated.
	require.NoError(t, f.repo.AppendPoint(ctx, NewCompletionPoint(f.user.ID, uuid.New(), 30, testNow)))
	cached, err := svc.GetProgress(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Zero(t, cached.TotalPoints)

	svc.InvalidateProgress(ctx, f.user.ID)
	assert.False(t, mr.Exists("praise:progress:"+f.user.ID.String()))

	fresh, err := svc.GetProgress(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(30), fresh.TotalPoints)
}

func TestAdjustPoints(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := NewService(f.db, f.repo, zap.NewNop(),
		WithClock(func() time.Time { return testNow }),
		WithPublisher(pub),
	)

	require.NoError(t, f.repo.AppendPoint(ctx, NewCompletionPoint(f.user.ID, uuid.New(), 50, testNow)))

	point, err := svc.AdjustPoints(ctx, f.user.ID, -20, "completed by mistake")
	require.NoError(t, err)
	assert.Equal(t, ReasonAdjustment, point.Reason)

	progress, err := svc.GetProgress(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(30), progress.TotalPoints)
	assert.Equal(t, int64(1), progress.CompletedTasks)

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.EventTypePointsAdjusted, pub.events[0].EventType)
	assert.Equal(t, int64(30), pub.events[0].TotalPoints)

	_, err = svc.AdjustPoints(ctx, f.user.ID, 0, "nothing")
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.AdjustPoints(ctx, uuid.New(), 10, "ghost")
	assert.True(t, apperr.IsNotFound(err))
	assert.Len(t, pub.events, 1)
}

func TestUserLocksSerializePerUser(t *testing.T) {
	locks := NewUserLocks()
	id := uuid.New()

	unlock := locks.Lock(id)
	acquired := make(chan struct{})
	done := make(chan struct{})
	go func() {
		release := locks.Lock(id)
		close(acquired)
		release()
		close(done)
	}()

	select {
	case <-acquired:
		t.Fatal("second holder acquired the lock early")
	case <-time.After(20 * time.Millisecond):
	}

	// Other users are not blocked.
	locks.Lock(uuid.New())()

	unlock()
	<-done
	locks.mu.Lock()
	defer locks.mu.Unlock()
	assert.Empty(t, locks.locks)
}
