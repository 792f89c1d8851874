package types

import (
	sq "github.com/Masterminds/squirrel"
)

const (
	LOG_LEVEL_DEBUG    = "debug"
	LOG_LEVEL_INFO     = "info"
	LOG_LEVEL_WARNING  = "warning"
	LOG_LEVEL_ERROR    = "error"
	LOG_LEVEL_CRITICAL = "critical"
)

var ValidLogLevels = map[string]bool{
	LOG_LEVEL_DEBUG:    true,
	LOG_LEVEL_INFO:     true,
	LOG_LEVEL_WARNING:  true,
	LOG_LEVEL_ERROR:    true,
	LOG_LEVEL_CRITICAL: true,
}

const (
	TRACE_STATUS_OK    = "ok"
	TRACE_STATUS_ERROR = "error"
)

// PlatformLog is an immutable platform log record. Timestamps are unix
// microseconds so retrieval order stays strict under rapid writes.
type PlatformLog struct {
	ID                 string  `json:"id" db:"id"`
	LogLevel           string  `json:"log_level" db:"log_level"`
	Message            string  `json:"message" db:"message"`
	ServiceName        string  `json:"service_name" db:"service_name"`
	TraceID            *string `json:"trace_id" db:"trace_id"`
	DataClassification string  `json:"data_classification" db:"data_classification"`
	TenantID           *string `json:"tenant_id" db:"tenant_id"`
	Metadata           JSONMap `json:"metadata" db:"metadata"`
	Timestamp          int64   `json:"timestamp" db:"timestamp"`
}

type PlatformMetric struct {
	ID                 string  `json:"id" db:"id"`
	MetricName         string  `json:"metric_name" db:"metric_name"`
	MetricValue        float64 `json:"metric_value" db:"metric_value"`
	ServiceName        string  `json:"service_name" db:"service_name"`
	TraceID            *string `json:"trace_id" db:"trace_id"`
	DataClassification string  `json:"data_classification" db:"data_classification"`
	TenantID           *string `json:"tenant_id" db:"tenant_id"`
	Metadata           JSONMap `json:"metadata" db:"metadata"`
	Timestamp          int64   `json:"timestamp" db:"timestamp"`
}

type PlatformTrace struct {
	ID                 string   `json:"id" db:"id"`
	TraceID            string   `json:"trace_id" db:"trace_id"`
	SpanName           string   `json:"span_name" db:"span_name"`
	ServiceName        string   `json:"service_name" db:"service_name"`
	StartTime          int64    `json:"start_time" db:"start_time"`
	EndTime            *int64   `json:"end_time" db:"end_time"`
	DurationMS         *float64 `json:"duration_ms" db:"duration_ms"`
	Status             string   `json:"status" db:"status"`
	DataClassification string   `json:"data_classification" db:"data_classification"`
	TenantID           *string  `json:"tenant_id" db:"tenant_id"`
	Metadata           JSONMap  `json:"metadata" db:"metadata"`
	Timestamp          int64    `json:"timestamp" db:"timestamp"`
}

type AgentExecution struct {
	ID                 string  `json:"id" db:"id"`
	AgentID            string  `json:"agent_id" db:"agent_id"`
	AgentName          string  `json:"agent_name" db:"agent_name"`
	PromptHash         string  `json:"prompt_hash" db:"prompt_hash"`
	Response           string  `json:"response" db:"response"`
	TraceID            *string `json:"trace_id" db:"trace_id"`
	DataClassification string  `json:"data_classification" db:"data_classification"`
	ExecutionMetadata  JSONMap `json:"execution_metadata" db:"execution_metadata"`
	TenantID           *string `json:"tenant_id" db:"tenant_id"`
	Timestamp          int64   `json:"timestamp" db:"timestamp"`
}

// GetObservabilityOptions is the shared filter set for the four
// observability collections. Zero values are not applied.
type GetObservabilityOptions struct {
	ServiceName string
	LogLevel    string
	MetricName  string
	TraceID     string
	SpanName    string
	Status      string
	AgentID     string
	AgentName   string
	TenantID    string
}

func (opts GetObservabilityOptions) Apply(query *sq.SelectBuilder) {
	if opts.ServiceName != "" {
		*query = query.Where(sq.Eq{"service_name": opts.ServiceName})
	}
	if opts.LogLevel != "" {
		*query = query.Where(sq.Eq{"log_level": opts.LogLevel})
	}
	if opts.MetricName != "" {
		*query = query.Where(sq.Eq{"metric_name": opts.MetricName})
	}
	if opts.TraceID != "" {
		*query = query.Where(sq.Eq{"trace_id": opts.TraceID})
	}
	if opts.SpanName != "" {
		*query = query.Where(sq.Eq{"span_name": opts.SpanName})
	}
	if opts.Status != "" {
		*query = query.Where(sq.Eq{"status": opts.Status})
	}
	if opts.AgentID != "" {
		*query = query.Where(sq.Eq{"agent_id": opts.AgentID})
	}
	if opts.AgentName != "" {
		*query = query.Where(sq.Eq{"agent_name": opts.AgentName})
	}
	if opts.TenantID != "" {
		*query = query.Where(sq.Eq{"tenant_id": opts.TenantID})
	}
}

// RecordTraceArgs groups the trace-span inputs; DurationMS is computed
// from EndTime when absent.
type RecordTraceArgs struct {
	TraceID     string
	SpanName    string
	ServiceName string
	StartTime   int64
	EndTime     *int64
	DurationMS  *float64
	Status      string
	UserContext *UserContext
	Metadata    map[string]any
}

type RecordAgentExecutionArgs struct {
	AgentID           string
	AgentName         string
	PromptHash        string
	Response          string
	TraceID           string
	ExecutionMetadata map[string]any
	UserContext       *UserContext
}
