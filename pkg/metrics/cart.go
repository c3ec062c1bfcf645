package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics counts cart mutation outcomes by operation.
type CartMetrics struct {
	success *prometheus.CounterVec
	failure *prometheus.CounterVec
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutation_success",
		Help: "Successful cart mutations.",
	}, []string{"operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutation_failure",
		Help: "Failed cart mutations.",
	}, []string{"operation"})
	reg.MustRegister(success, failure)
	return &CartMetrics{
		success: success,
		failure: failure,
	}
}

// IncSuccess increments the success counter for the named operation.
func (c *CartMetrics) IncSuccess(operation string) {
	if c == nil || c.success == nil {
		return
	}
	c.success.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncFailure increments the failure counter for the named operation.
func (c *CartMetrics) IncFailure(operation string) {
	if c == nil || c.failure == nil {
		return
	}
	c.failure.WithLabelValues(normalizeLabel(operation)).Inc()
}

func normalizeLabel(operation string) string {
	if operation == "" {
		return "unknown"
	}
	return operation
}
