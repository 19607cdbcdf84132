package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"orderboard/internal/domain"
	"orderboard/internal/dto"
	apperrors "orderboard/internal/errors"
	"orderboard/internal/metrics"
)

const (
	msgInvalidTableNumber = "Invalid table number"
	msgEmptyMenuItem      = "Menu item cannot be empty"
	msgInvalidQuantity    = "Quantity must be greater than 0"
)

type OrderRepository interface {
	Add(ctx context.Context, tableNumber int, menuItem string, quantity int) (domain.Order, error)
	Remove(ctx context.Context, orderID uint) error
	GetRemainingByTableNumber(ctx context.Context, tableNumber int) ([]domain.Order, error)
	Get(ctx context.Context, orderID uint) (domain.Order, error)
}

type Recorder interface {
	OrderAdded()
	OrderRemoved()
	OrderLookup(result string)
	ValidationFailed(reason string)
	LockFailed()
}

type OrderService struct {
	repo     OrderRepository
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time
}

func NewOrderService(repo OrderRepository, recorder Recorder, logger *zap.Logger) *OrderService {
	return &OrderService{
		repo:     repo,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *OrderService) AddOrder(ctx context.Context, tableNumber int, menuItem string, quantity int) (dto.OrderView, error) {
	menuItem = strings.TrimSpace(menuItem)
	if err := s.validateAddOrder(tableNumber, menuItem, quantity); err != nil {
		ve, _ := apperrors.IsValidationError(err)
		s.recorder.ValidationFailed(ve.Details[0].Field)
		s.logger.Warn("order rejected", zap.Int("tableNumber", tableNumber), zap.String("reason", ve.Message))
		return dto.OrderView{}, err
	}

	order, err := s.repo.Add(ctx, tableNumber, menuItem, quantity)
	if err != nil {
		s.recordStoreError("add order", err)
		return dto.OrderView{}, err
	}

	s.recorder.OrderAdded()
	s.logger.Info("order placed",
		zap.Uint("orderId", order.ID),
		zap.Int("tableNumber", order.TableNumber),
		zap.String("menuItem", order.MenuItem),
		zap.Int("quantity", order.Quantity),
		zap.Time("finishedAt", order.FinishedAt),
	)

	return dto.NewOrderView(order, s.now()), nil
}

// validateAddOrder applies the rules in order; the first failing rule wins.
func (s *OrderService) validateAddOrder(tableNumber int, menuItem string, quantity int) error {
	if tableNumber <= 0 {
		return apperrors.NewValidationError(msgInvalidTableNumber, apperrors.ValidationDetail{
			Field:   "table_number",
			Message: msgInvalidTableNumber,
		})
	}

	if menuItem == "" {
		return apperrors.NewValidationError(msgEmptyMenuItem, apperrors.ValidationDetail{
			Field:   "menu_item",
			Message: msgEmptyMenuItem,
		})
	}

	if quantity <= 0 {
		return apperrors.NewValidationError(msgInvalidQuantity, apperrors.ValidationDetail{
			Field:   "quantity",
			Message: msgInvalidQuantity,
		})
	}

	return nil
}

// RemoveOrder cancels an order. Cancelling an unknown order is not an error.
func (s *OrderService) RemoveOrder(ctx context.Context, orderID uint) error {
	if err := s.repo.Remove(ctx, orderID); err != nil {
		s.recordStoreError("remove order", err)
		return err
	}

	s.recorder.OrderRemoved()
	s.logger.Info("order removed", zap.Uint("orderId", orderID))
	return nil
}

func (s *OrderService) GetRemainingOrdersByTableNumber(ctx context.Context, tableNumber int) ([]dto.OrderView, error) {
	orders, err := s.repo.GetRemainingByTableNumber(ctx, tableNumber)
	if err != nil {
		s.recordStoreError("list remaining orders", err)
		return nil, err
	}

	now := s.now()
	views := make([]dto.OrderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, dto.NewOrderView(order, now))
	}

	s.logger.Debug("remaining orders listed", zap.Int("tableNumber", tableNumber), zap.Int("count", len(views)))
	return views, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID uint) (dto.OrderView, error) {
	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			s.recorder.OrderLookup(metrics.LookupNotFound)
			return dto.OrderView{}, err
		}
		s.recordStoreError("get order", err)
		return dto.OrderView{}, err
	}

	s.recorder.OrderLookup(metrics.LookupFound)
	return dto.NewOrderView(order, s.now()), nil
}

func (s *OrderService) recordStoreError(op string, err error) {
	if _, ok := apperrors.IsLockError(err); ok {
		s.recorder.LockFailed()
	}
	s.logger.Error("order store failure", zap.String("operation", op), zap.Error(err))
}
