package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	LookupFound    = "found"
	LookupNotFound = "not_found"
)

// OrderMetrics counts order board activity.
type OrderMetrics struct {
	ordersAdded        prometheus.Counter
	ordersRemoved      prometheus.Counter
	orderLookups       *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	lockFailures       prometheus.Counter
}

func NewOrderMetrics(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersAdded: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orderboard_orders_added_total",
			Help: "Total number of orders placed",
		}),
		ordersRemoved: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orderboard_orders_removed_total",
			Help: "Total number of order cancellations processed",
		}),
		orderLookups: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orderboard_order_lookups_total",
			Help: "Total number of single order lookups by result",
		}, []string{"result"}),
		validationFailures: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orderboard_validation_failures_total",
			Help: "Total number of rejected orders by reason",
		}, []string{"reason"}),
		lockFailures: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orderboard_store_lock_failures_total",
			Help: "Total number of operations that could not lock the order store",
		}),
	}
}

func (m *OrderMetrics) OrderAdded() {
	m.ordersAdded.Inc()
}

func (m *OrderMetrics) OrderRemoved() {
	m.ordersRemoved.Inc()
}

func (m *OrderMetrics) OrderLookup(result string) {
	m.orderLookups.WithLabelValues(result).Inc()
}

func (m *OrderMetrics) ValidationFailed(reason string) {
	m.validationFailures.WithLabelValues(reason).Inc()
}

func (m *OrderMetrics) LockFailed() {
	m.lockFailures.Inc()
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}
