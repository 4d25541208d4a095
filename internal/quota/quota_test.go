package quota

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/humane/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu         sync.Mutex
	counts     map[uuid.UUID]int
	subscribed map[uuid.UUID]bool
	err        error
	resets     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{counts: map[uuid.UUID]int{}, subscribed: map[uuid.UUID]bool{}}
}

func (s *fakeStore) GetUsage(_ context.Context, userID uuid.UUID) (*db.Usage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	count, ok := s.counts[userID]
	if !ok {
		return nil, nil
	}
	return &db.Usage{UserID: userID, RewriteCount: count}, nil
}

func (s *fakeStore) IncrementUsage(_ context.Context, userID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.counts[userID]++
	return s.counts[userID], nil
}

func (s *fakeStore) ReserveUsage(_ context.Context, userID uuid.UUID, limit int) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, false, s.err
	}
	if s.counts[userID] >= limit {
		return 0, false, nil
	}
	s.counts[userID]++
	return s.counts[userID], true, nil
}

func (s *fakeStore) ReleaseUsage(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if s.counts[userID] > 0 {
		s.counts[userID]--
	}
	return nil
}

func (s *fakeStore) HasActiveSubscription(_ context.Context, userID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscribed[userID], nil
}

func (s *fakeStore) ResetUsage(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.resets++
	n := int64(len(s.counts))
	for k := range s.counts {
		s.counts[k] = 0
	}
	return n, nil
}

func TestChecker_NewUserStatus(t *testing.T) {
	status, err := NewChecker(newFakeStore(), 4).Status(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Equal(t, Status{RewriteCount: 0, Limit: 4, Remaining: 4}, status)
}

func TestChecker_LimitReachedAtFour(t *testing.T) {
	store := newFakeStore()
	checker := NewChecker(store, 4)
	ctx := context.Background()
	userID := uuid.New()

	for i := 1; i <= 4; i++ {
		count, err := checker.Reserve(ctx, userID)
		require.NoError(t, err, "rewrite %d", i)
		assert.Equal(t, i, count)
	}

	_, err := checker.Reserve(ctx, userID)
	assert.ErrorIs(t, err, ErrLimitReached)

	status, err := checker.Status(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 4, status.RewriteCount)
	assert.Equal(t, 0, status.Remaining)
}

func TestChecker_ConcurrentReservationsStopAtLimit(t *testing.T) {
	store := newFakeStore()
	checker := NewChecker(store, 4)
	userID := uuid.New()

	var wg sync.WaitGroup
	results := make([]error, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = checker.Reserve(context.Background(), userID)
		}(i)
	}
	wg.Wait()

	granted := 0
	for _, err := range results {
		if err == nil {
			granted++
		} else {
			assert.ErrorIs(t, err, ErrLimitReached)
		}
	}
	assert.Equal(t, 4, granted)
	assert.Equal(t, 4, store.counts[userID])
}

func TestChecker_ReleaseReturnsTheReservation(t *testing.T) {
	store := newFakeStore()
	checker := NewChecker(store, 1)
	ctx := context.Background()
	userID := uuid.New()

	_, err := checker.Reserve(ctx, userID)
	require.NoError(t, err)
	_, err = checker.Reserve(ctx, userID)
	require.ErrorIs(t, err, ErrLimitReached)

	require.NoError(t, checker.Release(ctx, userID))
	assert.Equal(t, 0, store.counts[userID])

	_, err = checker.Reserve(ctx, userID)
	assert.NoError(t, err)
}

func TestChecker_SubscribersAreUnlimited(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	store.counts[userID] = 50
	store.subscribed[userID] = true
	checker := NewChecker(store, 4)

	count, err := checker.Reserve(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 51, count)

	status, err := checker.Status(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, status.Subscribed)
	assert.Equal(t, Unlimited, status.Remaining)
	assert.Equal(t, 51, status.RewriteCount)
}

func TestChecker_ZeroLimitBlocksFreeUsers(t *testing.T) {
	_, err := NewChecker(newFakeStore(), 0).Reserve(context.Background(), uuid.New())

	assert.ErrorIs(t, err, ErrLimitReached)
}

func TestChecker_StoreErrors(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("db down")
	checker := NewChecker(store, 4)

	_, err := checker.Reserve(context.Background(), uuid.New())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLimitReached)
	assert.ErrorContains(t, err, "db down")

	_, err = checker.Status(context.Background(), uuid.New())
	assert.ErrorContains(t, err, "failed to check usage")

	assert.ErrorContains(t, checker.Release(context.Background(), uuid.New()), "db down")
}

func TestResetter_RunOnce(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	store.counts[userID] = 4

	resetter, err := NewResetter(store, "")
	require.NoError(t, err)

	require.NoError(t, resetter.RunOnce(context.Background()))
	assert.Equal(t, 1, store.resets)
	assert.Equal(t, 0, store.counts[userID])
}

func TestResetter_RunOnceError(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("db down")

	resetter, err := NewResetter(store, DefaultResetSchedule)
	require.NoError(t, err)

	assert.Error(t, resetter.RunOnce(context.Background()))
}

func TestResetter_Schedule(t *testing.T) {
	resetter, err := NewResetter(newFakeStore(), DefaultResetSchedule)
	require.NoError(t, err)

	next := resetter.Next()
	assert.Equal(t, 1, next.Day())
	assert.Equal(t, 0, next.Hour())
	assert.True(t, next.After(time.Now()))

	resetter.Start()
	resetter.Stop()
}

func TestResetter_InvalidSchedule(t *testing.T) {
	_, err := NewResetter(newFakeStore(), "every monday")

	assert.ErrorContains(t, err, "invalid usage reset schedule")
}
