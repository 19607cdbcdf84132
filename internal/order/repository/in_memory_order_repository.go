package repository

import (
	"context"
	"fmt"
	"math/rand"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"orderboard/internal/domain"
	"orderboard/internal/errors"
)

type Option func(*InMemoryOrderRepository)

func WithClock(now func() time.Time) Option {
	return func(r *InMemoryOrderRepository) {
		r.now = now
	}
}

func WithCookTime(cookTime func() time.Duration) Option {
	return func(r *InMemoryOrderRepository) {
		r.cookTime = cookTime
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(r *InMemoryOrderRepository) {
		r.logger = logger
	}
}

// InMemoryOrderRepository keeps every order in process memory, grouped by
// table in insertion order. A single mutex guards both the orders and the id
// counter, so ids are handed out gap-free and never reused.
type InMemoryOrderRepository struct {
	mu       sync.Mutex
	orders   map[int][]domain.Order
	lastID   uint
	poisoned error

	now      func() time.Time
	cookTime func() time.Duration
	logger   *zap.Logger
}

func NewInMemoryOrderRepository(opts ...Option) *InMemoryOrderRepository {
	r := &InMemoryOrderRepository{
		orders:   make(map[int][]domain.Order),
		now:      time.Now,
		cookTime: RandomCookTime,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RandomCookTime draws a whole number of minutes uniformly from
// [domain.MinCookTime, domain.MaxCookTime].
func RandomCookTime() time.Duration {
	span := int((domain.MaxCookTime - domain.MinCookTime) / time.Minute)
	return domain.MinCookTime + time.Duration(rand.Intn(span+1))*time.Minute
}

func (r *InMemoryOrderRepository) Add(_ context.Context, tableNumber int, menuItem string, quantity int) (domain.Order, error) {
	var order domain.Order
	err := r.withLock("add", func() error {
		createdAt := r.now()
		cookTime := r.cookTime()
		if cookTime <= 0 {
			cookTime = domain.MinCookTime
		}

		r.lastID++
		order = domain.Order{
			ID:          r.lastID,
			TableNumber: tableNumber,
			MenuItem:    menuItem,
			Quantity:    quantity,
			CreatedAt:   createdAt,
			FinishedAt:  createdAt.Add(cookTime),
		}
		r.orders[tableNumber] = append(r.orders[tableNumber], order)
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

// Remove deletes the order with the given id from whichever table holds it.
// Removing an unknown id succeeds without changing anything.
func (r *InMemoryOrderRepository) Remove(_ context.Context, orderID uint) error {
	return r.withLock("remove", func() error {
		for tableNumber, tableOrders := range r.orders {
			idx := slices.IndexFunc(tableOrders, func(o domain.Order) bool { return o.ID == orderID })
			if idx < 0 {
				continue
			}
			tableOrders = slices.Delete(tableOrders, idx, idx+1)
			if len(tableOrders) == 0 {
				delete(r.orders, tableNumber)
			} else {
				r.orders[tableNumber] = tableOrders
			}
			return nil
		}
		return nil
	})
}

func (r *InMemoryOrderRepository) GetRemainingByTableNumber(_ context.Context, tableNumber int) ([]domain.Order, error) {
	remaining := []domain.Order{}
	err := r.withLock("get remaining", func() error {
		now := r.now()
		for _, order := range r.orders[tableNumber] {
			if order.IsRemaining(now) {
				remaining = append(remaining, order)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return remaining, nil
}

func (r *InMemoryOrderRepository) Get(_ context.Context, orderID uint) (domain.Order, error) {
	var order domain.Order
	err := r.withLock("get", func() error {
		for _, tableOrders := range r.orders {
			for _, o := range tableOrders {
				if o.ID == orderID {
					order = o
					return nil
				}
			}
		}
		return errors.NewNotFoundError(fmt.Sprintf("order with id %d not found", orderID))
	})
	if err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

// withLock runs fn with exclusive access to the store. A panic inside fn
// poisons the store: the panicking call and every later call fail with a
// LockError instead of touching state that may be half-written.
func (r *InMemoryOrderRepository) withLock(op string, fn func() error) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.poisoned != nil {
		return errors.NewLockError("order store is poisoned", r.poisoned)
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.poisoned = errors.NewInternalError(fmt.Sprintf("panic during %s", op), fmt.Errorf("%v", rec))
			r.logger.Error("order store poisoned", zap.String("operation", op), zap.Any("panic", rec))
			err = errors.NewLockError("order store is poisoned", r.poisoned)
		}
	}()

	return fn()
}
