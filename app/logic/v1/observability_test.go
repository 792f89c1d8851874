package v1

import (
	"context"
	"strings"
	"testing"

	"github.com/civitas-ai/civitas-ai/pkg/types"
	"github.com/civitas-ai/civitas-ai/pkg/utils"
)

func init() {
	utils.SetupIDWorker(1)
}

type fakeLogStore struct {
	records      []types.PlatformLog
	lastPage     uint64
	lastPageSize uint64
}

func (s *fakeLogStore) GetTable(...interface{}) string { return "fake" }

func (s *fakeLogStore) Create(ctx context.Context, data types.PlatformLog) error {
	s.records = append(s.records, data)
	return nil
}

func (s *fakeLogStore) List(ctx context.Context, opts types.GetObservabilityOptions, page, pageSize uint64) ([]types.PlatformLog, error) {
	s.lastPage, s.lastPageSize = page, pageSize
	return s.records, nil
}

func (s *fakeLogStore) Total(ctx context.Context, opts types.GetObservabilityOptions) (int64, error) {
	return int64(len(s.records)), nil
}

type fakeMetricStore struct {
	records []types.PlatformMetric
}

func (s *fakeMetricStore) GetTable(...interface{}) string { return "fake" }

func (s *fakeMetricStore) Create(ctx context.Context, data types.PlatformMetric) error {
	s.records = append(s.records, data)
	return nil
}

func (s *fakeMetricStore) List(ctx context.Context, opts types.GetObservabilityOptions, page, pageSize uint64) ([]types.PlatformMetric, error) {
	return s.records, nil
}

func (s *fakeMetricStore) Total(ctx context.Context, opts types.GetObservabilityOptions) (int64, error) {
	return int64(len(s.records)), nil
}

type fakeTraceStore struct {
	records []types.PlatformTrace
}

func (s *fakeTraceStore) GetTable(...interface{}) string { return "fake" }

func (s *fakeTraceStore) Create(ctx context.Context, data types.PlatformTrace) error {
	s.records = append(s.records, data)
	return nil
}

func (s *fakeTraceStore) List(ctx context.Context, opts types.GetObservabilityOptions, page, pageSize uint64) ([]types.PlatformTrace, error) {
	return s.records, nil
}

func (s *fakeTraceStore) Total(ctx context.Context, opts types.GetObservabilityOptions) (int64, error) {
	return int64(len(s.records)), nil
}

type fakeAgentStore struct {
	records []types.AgentExecution
}

func (s *fakeAgentStore) GetTable(...interface{}) string { return "fake" }

func (s *fakeAgentStore) Create(ctx context.Context, data types.AgentExecution) error {
	s.records = append(s.records, data)
	return nil
}

func (s *fakeAgentStore) List(ctx context.Context, opts types.GetObservabilityOptions, page, pageSize uint64) ([]types.AgentExecution, error) {
	return s.records, nil
}

func (s *fakeAgentStore) Total(ctx context.Context, opts types.GetObservabilityOptions) (int64, error) {
	return int64(len(s.records)), nil
}

func newTestObservability() (*ObservabilityLogic, *fakeLogStore, *fakeMetricStore, *fakeTraceStore, *fakeAgentStore) {
	logs := &fakeLogStore{}
	metrics := &fakeMetricStore{}
	traces := &fakeTraceStore{}
	agents := &fakeAgentStore{}
	logic := &ObservabilityLogic{
		ctx:     context.Background(),
		logs:    logs,
		metrics: metrics,
		traces:  traces,
		agents:  agents,
	}
	return logic, logs, metrics, traces, agents
}

func TestRecordPlatformLog(t *testing.T) {
	logic, logs, _, _, _ := newTestObservability()

	user := &types.UserContext{UserID: "u1", TenantID: "tenant-a"}
	id, err := logic.RecordPlatformLog("INFO", "pipeline started", "ingest", "trace-1", map[string]any{"batch": 7}, user)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(id, "log_") {
		t.Fatalf("unexpected id shape: %s", id)
	}

	rec := logs.records[0]
	if rec.LogLevel != types.LOG_LEVEL_INFO {
		t.Fatalf("level should be lowercased: %s", rec.LogLevel)
	}
	if rec.DataClassification != types.DATA_CLASSIFICATION_PLATFORM {
		t.Fatalf("unexpected classification: %s", rec.DataClassification)
	}
	if rec.TenantID == nil || *rec.TenantID != "tenant-a" {
		t.Fatalf("tenant not recorded: %#v", rec.TenantID)
	}
	if rec.Metadata["batch"] != int64(7) {
		t.Fatalf("metadata should be sanitized: %#v", rec.Metadata)
	}
	if rec.Timestamp == 0 {
		t.Fatal("timestamp should be set")
	}
}

func TestRecordPlatformLogRejectsBadLevel(t *testing.T) {
	logic, logs, _, _, _ := newTestObservability()

	if _, err := logic.RecordPlatformLog("verbose", "msg", "svc", "", nil, nil); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if len(logs.records) != 0 {
		t.Fatal("rejected log must not be written")
	}
}

func TestGetPlatformLogsDefaultPaging(t *testing.T) {
	logic, logs, _, _, _ := newTestObservability()

	if _, err := logic.GetPlatformLogs(types.GetObservabilityOptions{}, 0, 0); err != nil {
		t.Fatal(err)
	}
	if logs.lastPage != 1 || logs.lastPageSize != DEFAULT_QUERY_LIMIT {
		t.Fatalf("expected default paging, got page=%d size=%d", logs.lastPage, logs.lastPageSize)
	}
}

func TestRecordPlatformMetric(t *testing.T) {
	logic, _, metrics, _, _ := newTestObservability()

	if _, err := logic.RecordPlatformMetric("", 1, "svc", "", nil, nil); err == nil {
		t.Fatal("expected error for empty metric name")
	}
	if _, err := logic.RecordPlatformMetric("queue_depth", 1, "", "", nil, nil); err == nil {
		t.Fatal("expected error for empty service name")
	}

	id, err := logic.RecordPlatformMetric("queue_depth", 42.5, "dispatch", "", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(id, "metric_") {
		t.Fatalf("unexpected id shape: %s", id)
	}
	if metrics.records[0].MetricValue != 42.5 {
		t.Fatalf("unexpected value: %f", metrics.records[0].MetricValue)
	}
	if metrics.records[0].TenantID != nil {
		t.Fatal("missing caller context should leave tenant nil")
	}
}

func TestRecordPlatformTraceDerivesDuration(t *testing.T) {
	logic, _, _, traces, _ := newTestObservability()

	id, err := logic.RecordPlatformTrace(types.RecordTraceArgs{
		TraceID:     "trace-9",
		SpanName:    "parse",
		ServiceName: "ingest",
		StartTime:   1_000_000,
		EndTime:     utils.Pointer(int64(1_500_000)),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(id, "trace_") {
		t.Fatalf("unexpected id shape: %s", id)
	}

	rec := traces.records[0]
	if rec.Status != types.TRACE_STATUS_OK {
		t.Fatalf("status should default to ok: %s", rec.Status)
	}
	if rec.DurationMS == nil || *rec.DurationMS != 500 {
		t.Fatalf("duration should derive from end time: %#v", rec.DurationMS)
	}
}

func TestRecordPlatformTraceValidation(t *testing.T) {
	logic, _, _, traces, _ := newTestObservability()

	if _, err := logic.RecordPlatformTrace(types.RecordTraceArgs{SpanName: "parse", ServiceName: "ingest"}); err == nil {
		t.Fatal("expected error for missing trace id")
	}
	if _, err := logic.RecordPlatformTrace(types.RecordTraceArgs{TraceID: "t", SpanName: "s"}); err == nil {
		t.Fatal("expected error for missing service name")
	}
	if _, err := logic.RecordPlatformTrace(types.RecordTraceArgs{TraceID: "t", SpanName: "s", ServiceName: "svc", Status: "pending"}); err == nil {
		t.Fatal("expected error for unknown status")
	}
	if len(traces.records) != 0 {
		t.Fatal("rejected traces must not be written")
	}
}

func TestRecordAgentExecution(t *testing.T) {
	logic, _, _, _, agents := newTestObservability()

	if _, err := logic.RecordAgentExecution(types.RecordAgentExecutionArgs{AgentName: "router", PromptHash: "abc"}); err == nil {
		t.Fatal("expected error for missing agent id")
	}
	if _, err := logic.RecordAgentExecution(types.RecordAgentExecutionArgs{AgentID: "agent-7", AgentName: "router"}); err == nil {
		t.Fatal("expected error for missing prompt hash")
	}
	if len(agents.records) != 0 {
		t.Fatal("rejected executions must not be written")
	}

	id, err := logic.RecordAgentExecution(types.RecordAgentExecutionArgs{
		AgentID:           "agent-7",
		AgentName:         "router",
		PromptHash:        "abc",
		Response:          "ok",
		ExecutionMetadata: map[string]any{"tokens": 120},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(id, "agent_") {
		t.Fatalf("unexpected id shape: %s", id)
	}
	if agents.records[0].ExecutionMetadata["tokens"] != int64(120) {
		t.Fatalf("metadata should be sanitized: %#v", agents.records[0].ExecutionMetadata)
	}
}
