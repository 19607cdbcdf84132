package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"orderboard/internal/dto"
	apperrors "orderboard/internal/errors"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderService interface {
	AddOrder(ctx context.Context, tableNumber int, menuItem string, quantity int) (dto.OrderView, error)
	RemoveOrder(ctx context.Context, orderID uint) error
	GetRemainingOrdersByTableNumber(ctx context.Context, tableNumber int) ([]dto.OrderView, error)
	GetOrder(ctx context.Context, orderID uint) (dto.OrderView, error)
}

type OrderController struct {
	service OrderService
	logger  *zap.Logger
}

func NewOrderController(service OrderService, logger *zap.Logger) *OrderController {
	return &OrderController{
		service: service,
		logger:  logger,
	}
}

// Routes mounts the order endpoints on r.
func (c *OrderController) Routes(r chi.Router) {
	r.Post("/", c.AddOrder)
	r.Get("/", c.GetRemainingOrders)
	r.Get("/{orderId}", c.GetOrder)
	r.Delete("/{orderId}", c.RemoveOrder)
}

func (c *OrderController) AddOrder(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.AddOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeError(w, traceID, http.StatusBadRequest, "BAD_REQUEST", "request body must be valid JSON")
		return
	}

	view, err := c.service.AddOrder(r.Context(), req.TableNumber, req.MenuItem, req.Quantity)
	if err != nil {
		c.handleServiceError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusCreated, view)
}

func (c *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := c.parseOrderID(w, r, traceID, logger)
	if !ok {
		return
	}

	view, err := c.service.GetOrder(r.Context(), orderID)
	if err != nil {
		c.handleServiceError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, view)
}

func (c *OrderController) GetRemainingOrders(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	raw := r.URL.Query().Get("table_number")
	if raw == "" {
		c.writeError(w, traceID, http.StatusBadRequest, "BAD_REQUEST", "table_number query parameter is required")
		return
	}
	tableNumber, err := strconv.Atoi(raw)
	if err != nil {
		logger.Warn("invalid table_number in query", zap.String("tableNumber", raw), zap.Error(err))
		c.writeError(w, traceID, http.StatusBadRequest, "BAD_REQUEST", "table_number must be an integer")
		return
	}

	views, err := c.service.GetRemainingOrdersByTableNumber(r.Context(), tableNumber)
	if err != nil {
		c.handleServiceError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, views)
}

func (c *OrderController) RemoveOrder(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := c.parseOrderID(w, r, traceID, logger)
	if !ok {
		return
	}

	if err := c.service.RemoveOrder(r.Context(), orderID); err != nil {
		c.handleServiceError(w, traceID, err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c *OrderController) parseOrderID(w http.ResponseWriter, r *http.Request, traceID string, logger *zap.Logger) (uint, bool) {
	orderIDStr := chi.URLParam(r, "orderId")
	orderID, err := strconv.ParseUint(orderIDStr, 10, 64)
	if err != nil {
		logger.Warn("invalid orderId in path", zap.String("orderId", orderIDStr), zap.Error(err))
		c.writeError(w, traceID, http.StatusBadRequest, "BAD_REQUEST", "orderId must be a non-negative integer")
		return 0, false
	}
	return uint(orderID), true
}

func (c *OrderController) handleServiceError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
			TraceID: traceID,
			Error:   "VALIDATION_ERROR",
			Message: ve.Message,
			Details: ve.Details,
		})
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeError(w, traceID, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}

	if _, ok := apperrors.IsLockError(err); ok {
		logger.Error("order store unavailable", zap.Error(err))
		c.writeError(w, traceID, http.StatusInternalServerError, "LOCK_FAILED", err.Error())
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	c.writeError(w, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
}

type validationErrorResponse struct {
	TraceID string                       `json:"traceId"`
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *OrderController) writeError(w http.ResponseWriter, traceID string, status int, code string, message string) {
	c.writeJSON(w, status, dto.ErrorResponse{
		TraceID:   traceID,
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

func (c *OrderController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(apperrors.NewInternalError("encoding response", err)))
	}
}
