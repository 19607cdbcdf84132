package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderboard/internal/domain"
	"orderboard/internal/errors"
)

// fakeClock is a manually advanced clock shared by the repository under test.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func fixedCookTime(d time.Duration) func() time.Duration {
	return func() time.Duration { return d }
}

func TestNewInMemoryOrderRepository(t *testing.T) {
	repo := NewInMemoryOrderRepository()

	assert.NotNil(t, repo)
	assert.NotNil(t, repo.orders)
	assert.Equal(t, uint(0), repo.lastID)
	assert.Nil(t, repo.poisoned)
}

func TestRandomCookTime_WithinRange(t *testing.T) {
	seen := make(map[time.Duration]bool)
	for i := 0; i < 2000; i++ {
		d := RandomCookTime()
		require.GreaterOrEqual(t, d, domain.MinCookTime)
		require.LessOrEqual(t, d, domain.MaxCookTime)
		require.Zero(t, d%time.Minute, "cook time must be whole minutes")
		seen[d] = true
	}

	assert.True(t, seen[domain.MinCookTime], "lower bound should be reachable")
	assert.True(t, seen[domain.MaxCookTime], "upper bound should be reachable")
}

func TestInMemoryOrderRepository_Add(t *testing.T) {
	clock := newFakeClock()
	repo := NewInMemoryOrderRepository(WithClock(clock.Now), WithCookTime(fixedCookTime(7*time.Minute)))

	order, err := repo.Add(context.Background(), 3, "Ramen", 2)
	require.NoError(t, err)

	assert.Equal(t, uint(1), order.ID)
	assert.Equal(t, 3, order.TableNumber)
	assert.Equal(t, "Ramen", order.MenuItem)
	assert.Equal(t, 2, order.Quantity)
	assert.Equal(t, clock.Now(), order.CreatedAt)
	assert.Equal(t, clock.Now().Add(7*time.Minute), order.FinishedAt)
}

func TestInMemoryOrderRepository_Add_NonPositiveCookTimeKeepsFinishAfterCreate(t *testing.T) {
	repo := NewInMemoryOrderRepository(WithCookTime(fixedCookTime(0)))

	order, err := repo.Add(context.Background(), 1, "Sushi", 1)
	require.NoError(t, err)

	assert.True(t, order.FinishedAt.After(order.CreatedAt))
}

func TestInMemoryOrderRepository_Add_IDsAreMonotonic(t *testing.T) {
	repo := NewInMemoryOrderRepository()
	ctx := context.Background()

	var previous uint
	for i := 0; i < 50; i++ {
		order, err := repo.Add(ctx, i%5+1, "Sushi", 1)
		require.NoError(t, err)
		assert.Equal(t, previous+1, order.ID)
		previous = order.ID
	}
}

func TestInMemoryOrderRepository_Add_ConcurrentIDsAreUniqueAndGapFree(t *testing.T) {
	repo := NewInMemoryOrderRepository()
	ctx := context.Background()

	const workers = 200
	ids := make(chan uint, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			order, err := repo.Add(ctx, i%7+1, "Sushi", 1)
			if err != nil {
				t.Errorf("add failed: %v", err)
				return
			}
			ids <- order.ID
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := make(map[uint]bool, workers)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	require.Len(t, seen, workers)
	for id := uint(1); id <= workers; id++ {
		assert.True(t, seen[id], "missing id %d", id)
	}
}

func TestInMemoryOrderRepository_Get(t *testing.T) {
	repo := NewInMemoryOrderRepository()
	ctx := context.Background()

	_, err := repo.Add(ctx, 1, "Sushi", 1)
	require.NoError(t, err)
	added, err := repo.Add(ctx, 2, "Ramen", 2)
	require.NoError(t, err)

	order, err := repo.Get(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, added, order)
}

func TestInMemoryOrderRepository_Get_NotFound(t *testing.T) {
	repo := NewInMemoryOrderRepository()

	order, err := repo.Get(context.Background(), 42)
	assert.Error(t, err)
	assert.Equal(t, domain.Order{}, order)

	nfe, ok := errors.IsNotFoundError(err)
	assert.True(t, ok)
	assert.Contains(t, nfe.Message, "42")
}

func TestInMemoryOrderRepository_Remove(t *testing.T) {
	repo := NewInMemoryOrderRepository()
	ctx := context.Background()

	first, err := repo.Add(ctx, 1, "Sushi", 1)
	require.NoError(t, err)
	second, err := repo.Add(ctx, 1, "Ramen", 1)
	require.NoError(t, err)

	require.NoError(t, repo.Remove(ctx, first.ID))

	_, err = repo.Get(ctx, first.ID)
	_, ok := errors.IsNotFoundError(err)
	assert.True(t, ok)

	remaining, err := repo.GetRemainingByTableNumber(ctx, 1)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, second.ID, remaining[0].ID)
}

func TestInMemoryOrderRepository_Remove_ScansAllTables(t *testing.T) {
	repo := NewInMemoryOrderRepository()
	ctx := context.Background()

	order, err := repo.Add(ctx, 8, "Gyoza", 3)
	require.NoError(t, err)

	require.NoError(t, repo.Remove(ctx, order.ID))

	_, err = repo.Get(ctx, order.ID)
	_, ok := errors.IsNotFoundError(err)
	assert.True(t, ok)
	assert.NotContains(t, repo.orders, 8)
}

func TestInMemoryOrderRepository_Remove_Idempotent(t *testing.T) {
	repo := NewInMemoryOrderRepository()
	ctx := context.Background()

	order, err := repo.Add(ctx, 1, "Sushi", 1)
	require.NoError(t, err)

	assert.NoError(t, repo.Remove(ctx, order.ID))
	assert.NoError(t, repo.Remove(ctx, order.ID))
	assert.NoError(t, repo.Remove(ctx, 9999))
}

func TestInMemoryOrderRepository_Remove_IDIsNeverReused(t *testing.T) {
	repo := NewInMemoryOrderRepository()
	ctx := context.Background()

	first, err := repo.Add(ctx, 1, "Sushi", 1)
	require.NoError(t, err)
	require.NoError(t, repo.Remove(ctx, first.ID))

	second, err := repo.Add(ctx, 1, "Sushi", 1)
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)
}

func TestInMemoryOrderRepository_GetRemainingByTableNumber_FiltersByTime(t *testing.T) {
	clock := newFakeClock()
	cookTimes := []time.Duration{5 * time.Minute, 15 * time.Minute}
	var calls int
	repo := NewInMemoryOrderRepository(
		WithClock(clock.Now),
		WithCookTime(func() time.Duration {
			d := cookTimes[calls%len(cookTimes)]
			calls++
			return d
		}),
	)
	ctx := context.Background()

	quick, err := repo.Add(ctx, 1, "Edamame", 1)
	require.NoError(t, err)
	slow, err := repo.Add(ctx, 1, "Ramen", 1)
	require.NoError(t, err)

	remaining, err := repo.GetRemainingByTableNumber(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, remaining, 2)

	clock.Advance(10 * time.Minute)

	remaining, err = repo.GetRemainingByTableNumber(ctx, 1)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, slow.ID, remaining[0].ID)

	// the finished order is still stored, only filtered out
	_, err = repo.Get(ctx, quick.ID)
	assert.NoError(t, err)
}

func TestInMemoryOrderRepository_GetRemainingByTableNumber_FinishBoundaryIsExcluded(t *testing.T) {
	clock := newFakeClock()
	repo := NewInMemoryOrderRepository(WithClock(clock.Now), WithCookTime(fixedCookTime(5*time.Minute)))
	ctx := context.Background()

	_, err := repo.Add(ctx, 1, "Sushi", 1)
	require.NoError(t, err)

	clock.Advance(5 * time.Minute)

	remaining, err := repo.GetRemainingByTableNumber(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestInMemoryOrderRepository_GetRemainingByTableNumber_PreservesInsertionOrder(t *testing.T) {
	repo := NewInMemoryOrderRepository()
	ctx := context.Background()

	var want []uint
	for i := 0; i < 5; i++ {
		order, err := repo.Add(ctx, 2, "Sushi", i+1)
		require.NoError(t, err)
		want = append(want, order.ID)
		_, err = repo.Add(ctx, 3, "Tea", 1)
		require.NoError(t, err)
	}

	remaining, err := repo.GetRemainingByTableNumber(ctx, 2)
	require.NoError(t, err)

	got := make([]uint, 0, len(remaining))
	for _, o := range remaining {
		got = append(got, o.ID)
	}
	assert.Equal(t, want, got)
}

func TestInMemoryOrderRepository_GetRemainingByTableNumber_UnknownTable(t *testing.T) {
	repo := NewInMemoryOrderRepository()

	remaining, err := repo.GetRemainingByTableNumber(context.Background(), 999)
	require.NoError(t, err)
	assert.NotNil(t, remaining)
	assert.Empty(t, remaining)
}

func TestInMemoryOrderRepository_GetRemainingByTableNumber_ReturnsCopies(t *testing.T) {
	repo := NewInMemoryOrderRepository()
	ctx := context.Background()

	added, err := repo.Add(ctx, 1, "Sushi", 1)
	require.NoError(t, err)

	remaining, err := repo.GetRemainingByTableNumber(ctx, 1)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	remaining[0].MenuItem = "Tampered"

	stored, err := repo.Get(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sushi", stored.MenuItem)
}

func TestInMemoryOrderRepository_PanicPoisonsStore(t *testing.T) {
	panicking := true
	repo := NewInMemoryOrderRepository(WithCookTime(func() time.Duration {
		if panicking {
			panic("cook timer broke")
		}
		return domain.MinCookTime
	}))
	ctx := context.Background()

	_, err := repo.Add(ctx, 1, "Sushi", 1)
	le, ok := errors.IsLockError(err)
	require.True(t, ok, "expected lock error, got %v", err)
	assert.Contains(t, le.Error(), "cook timer broke")

	panicking = false

	_, err = repo.Add(ctx, 1, "Sushi", 1)
	_, ok = errors.IsLockError(err)
	assert.True(t, ok)

	_, err = repo.Get(ctx, 1)
	_, ok = errors.IsLockError(err)
	assert.True(t, ok)

	err = repo.Remove(ctx, 1)
	_, ok = errors.IsLockError(err)
	assert.True(t, ok)

	remaining, err := repo.GetRemainingByTableNumber(ctx, 1)
	_, ok = errors.IsLockError(err)
	assert.True(t, ok)
	assert.Nil(t, remaining)

	assert.Equal(t, uint(0), repo.lastID, "no id may be consumed by a failed add")
	assert.Empty(t, repo.orders)
}
