package core

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/civitas-ai/civitas-ai/pkg/metrics"
)

type Metrics struct {
	apiResponseTime    *prometheus.HistogramVec
	apiErrorCounter    *prometheus.CounterVec
	workflowTime       *prometheus.HistogramVec
	workflowErrors     *prometheus.CounterVec
	statePromotions    *prometheus.CounterVec
	sanitizerSentinels *prometheus.CounterVec
}

func NewMetrics(ns, system string) *Metrics {
	metrics.SetupMetricsManager(ns, system, prometheus.DefaultRegisterer.(*prometheus.Registry))

	return &Metrics{
		apiResponseTime:    metrics.NewHistogramVec("api_response_time", []string{"api"}),
		apiErrorCounter:    metrics.NewCounterVec("api_error", []string{"method", "api", "status"}),
		workflowTime:       metrics.NewHistogramVec("workflow_time", []string{"operation"}),
		workflowErrors:     metrics.NewCounterVec("workflow_error", []string{"operation", "code"}),
		statePromotions:    metrics.NewCounterVec("state_promotion", []string{"backend", "strategy"}),
		sanitizerSentinels: metrics.NewCounterVec("sanitizer_sentinel", []string{"kind"}),
	}
}

func (m *Metrics) ApiResponseTimer(api string) *prometheus.Timer {
	return prometheus.NewTimer(m.apiResponseTime.WithLabelValues(api))
}

func (m *Metrics) ApiErrorInc(method, api string, status int) {
	m.apiErrorCounter.WithLabelValues(method, api, strconv.Itoa(status)).Inc()
}

func (m *Metrics) WorkflowTimer(operation string) *prometheus.Timer {
	return prometheus.NewTimer(m.workflowTime.WithLabelValues(operation))
}

func (m *Metrics) WorkflowErrorInc(operation, code string) {
	m.workflowErrors.WithLabelValues(operation, code).Inc()
}

func (m *Metrics) StatePromotionInc(backend, strategy string) {
	m.statePromotions.WithLabelValues(backend, strategy).Inc()
}

func (m *Metrics) SanitizerSentinelInc(kind string) {
	m.sanitizerSentinels.WithLabelValues(kind).Inc()
}
