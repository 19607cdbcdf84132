package order

import (
	"orderboard/internal/metrics"
	"orderboard/internal/order/controller"
	"orderboard/internal/order/repository"
	"orderboard/internal/order/service"

	"go.uber.org/zap"
)

func NewModule(orderMetrics *metrics.OrderMetrics, logger *zap.Logger) *controller.OrderController {
	repo := repository.NewInMemoryOrderRepository(repository.WithLogger(logger))
	svc := service.NewOrderService(repo, orderMetrics, logger)
	return controller.NewOrderController(svc, logger)
}
