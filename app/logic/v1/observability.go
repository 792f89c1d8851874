package v1

import (
	"context"
	"net/http"
	"strings"

	"github.com/civitas-ai/civitas-ai/app/core"
	"github.com/civitas-ai/civitas-ai/app/store"
	"github.com/civitas-ai/civitas-ai/pkg/errors"
	"github.com/civitas-ai/civitas-ai/pkg/i18n"
	"github.com/civitas-ai/civitas-ai/pkg/sanitize"
	"github.com/civitas-ai/civitas-ai/pkg/types"
	"github.com/civitas-ai/civitas-ai/pkg/utils"
)

// DEFAULT_QUERY_LIMIT caps observability reads that do not ask for a
// specific page size.
const DEFAULT_QUERY_LIMIT = 100

type ObservabilityLogic struct {
	ctx  context.Context
	core *core.Core

	logs    store.PlatformLogStore
	metrics store.PlatformMetricStore
	traces  store.PlatformTraceStore
	agents  store.AgentExecutionStore
}

func NewObservabilityLogic(ctx context.Context, core *core.Core) *ObservabilityLogic {
	return &ObservabilityLogic{
		ctx:     ctx,
		core:    core,
		logs:    core.Store().PlatformLogStore(),
		metrics: core.Store().PlatformMetricStore(),
		traces:  core.Store().PlatformTraceStore(),
		agents:  core.Store().AgentExecutionStore(),
	}
}

func normalizePage(page, pageSize uint64) (uint64, uint64) {
	if pageSize == 0 {
		pageSize = DEFAULT_QUERY_LIMIT
	}
	if page == 0 {
		page = 1
	}
	return page, pageSize
}

// RecordPlatformLog validates the level, sanitizes the metadata tree
// and persists an immutable log record. Returns the record ID.
func (l *ObservabilityLogic) RecordPlatformLog(level, message, serviceName, traceID string, metadata map[string]any, userContext *types.UserContext) (string, error) {
	level = strings.ToLower(level)
	if !types.ValidLogLevels[level] {
		return "", errors.New("ObservabilityLogic.RecordPlatformLog.level", i18n.ERROR_INVALID_LOG_LEVEL, nil).Code(http.StatusBadRequest)
	}
	if message == "" || serviceName == "" {
		return "", errors.New("ObservabilityLogic.RecordPlatformLog.args", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	record := types.PlatformLog{
		ID:                 utils.GenHexID("log"),
		LogLevel:           level,
		Message:            message,
		ServiceName:        serviceName,
		TraceID:            utils.StringOrNil(traceID),
		DataClassification: types.DATA_CLASSIFICATION_PLATFORM,
		TenantID:           utils.StringOrNil(userContext.GetTenantID()),
		Metadata:           sanitize.SanitizeMap(metadata),
		Timestamp:          utils.TimeNowUnixMicro(),
	}
	if err := l.logs.Create(l.ctx, record); err != nil {
		return "", errors.New("ObservabilityLogic.RecordPlatformLog.Create", i18n.ERROR_INTERNAL, err)
	}
	return record.ID, nil
}

// GetPlatformLogs returns matching records newest first.
func (l *ObservabilityLogic) GetPlatformLogs(opts types.GetObservabilityOptions, page, pageSize uint64) ([]types.PlatformLog, error) {
	page, pageSize = normalizePage(page, pageSize)
	res, err := l.logs.List(l.ctx, opts, page, pageSize)
	if err != nil {
		return nil, errors.New("ObservabilityLogic.GetPlatformLogs.List", i18n.ERROR_INTERNAL, err)
	}
	return res, nil
}

func (l *ObservabilityLogic) RecordPlatformMetric(metricName string, metricValue float64, serviceName, traceID string, metadata map[string]any, userContext *types.UserContext) (string, error) {
	if metricName == "" || serviceName == "" {
		return "", errors.New("ObservabilityLogic.RecordPlatformMetric.args", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	record := types.PlatformMetric{
		ID:                 utils.GenHexID("metric"),
		MetricName:         metricName,
		MetricValue:        metricValue,
		ServiceName:        serviceName,
		TraceID:            utils.StringOrNil(traceID),
		DataClassification: types.DATA_CLASSIFICATION_PLATFORM,
		TenantID:           utils.StringOrNil(userContext.GetTenantID()),
		Metadata:           sanitize.SanitizeMap(metadata),
		Timestamp:          utils.TimeNowUnixMicro(),
	}
	if err := l.metrics.Create(l.ctx, record); err != nil {
		return "", errors.New("ObservabilityLogic.RecordPlatformMetric.Create", i18n.ERROR_INTERNAL, err)
	}
	return record.ID, nil
}

func (l *ObservabilityLogic) GetPlatformMetrics(opts types.GetObservabilityOptions, page, pageSize uint64) ([]types.PlatformMetric, error) {
	page, pageSize = normalizePage(page, pageSize)
	res, err := l.metrics.List(l.ctx, opts, page, pageSize)
	if err != nil {
		return nil, errors.New("ObservabilityLogic.GetPlatformMetrics.List", i18n.ERROR_INTERNAL, err)
	}
	return res, nil
}

// RecordPlatformTrace persists a trace span. Duration is derived from
// the end time when the caller did not compute it.
func (l *ObservabilityLogic) RecordPlatformTrace(args types.RecordTraceArgs) (string, error) {
	if args.TraceID == "" || args.SpanName == "" || args.ServiceName == "" {
		return "", errors.New("ObservabilityLogic.RecordPlatformTrace.args", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	status := args.Status
	if status == "" {
		status = types.TRACE_STATUS_OK
	}
	if status != types.TRACE_STATUS_OK && status != types.TRACE_STATUS_ERROR {
		return "", errors.New("ObservabilityLogic.RecordPlatformTrace.status", i18n.ERROR_INVALID_TRACE_STATUS, nil).Code(http.StatusBadRequest)
	}

	durationMS := args.DurationMS
	if durationMS == nil && args.EndTime != nil {
		durationMS = utils.Pointer(utils.FormatDurationMS(args.StartTime, *args.EndTime))
	}

	record := types.PlatformTrace{
		ID:                 utils.GenHexID("trace"),
		TraceID:            args.TraceID,
		SpanName:           args.SpanName,
		ServiceName:        args.ServiceName,
		StartTime:          args.StartTime,
		EndTime:            args.EndTime,
		DurationMS:         durationMS,
		Status:             status,
		DataClassification: types.DATA_CLASSIFICATION_PLATFORM,
		TenantID:           utils.StringOrNil(args.UserContext.GetTenantID()),
		Metadata:           sanitize.SanitizeMap(args.Metadata),
		Timestamp:          utils.TimeNowUnixMicro(),
	}
	if err := l.traces.Create(l.ctx, record); err != nil {
		return "", errors.New("ObservabilityLogic.RecordPlatformTrace.Create", i18n.ERROR_INTERNAL, err)
	}
	return record.ID, nil
}

func (l *ObservabilityLogic) GetPlatformTraces(opts types.GetObservabilityOptions, page, pageSize uint64) ([]types.PlatformTrace, error) {
	page, pageSize = normalizePage(page, pageSize)
	res, err := l.traces.List(l.ctx, opts, page, pageSize)
	if err != nil {
		return nil, errors.New("ObservabilityLogic.GetPlatformTraces.List", i18n.ERROR_INTERNAL, err)
	}
	return res, nil
}

func (l *ObservabilityLogic) RecordAgentExecution(args types.RecordAgentExecutionArgs) (string, error) {
	if args.AgentID == "" || args.AgentName == "" || args.PromptHash == "" {
		return "", errors.New("ObservabilityLogic.RecordAgentExecution.args", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	record := types.AgentExecution{
		ID:                 utils.GenHexID("agent"),
		AgentID:            args.AgentID,
		AgentName:          args.AgentName,
		PromptHash:         args.PromptHash,
		Response:           args.Response,
		TraceID:            utils.StringOrNil(args.TraceID),
		DataClassification: types.DATA_CLASSIFICATION_PLATFORM,
		ExecutionMetadata:  sanitize.SanitizeMap(args.ExecutionMetadata),
		TenantID:           utils.StringOrNil(args.UserContext.GetTenantID()),
		Timestamp:          utils.TimeNowUnixMicro(),
	}
	if err := l.agents.Create(l.ctx, record); err != nil {
		return "", errors.New("ObservabilityLogic.RecordAgentExecution.Create", i18n.ERROR_INTERNAL, err)
	}
	return record.ID, nil
}

func (l *ObservabilityLogic) GetAgentExecutions(opts types.GetObservabilityOptions, page, pageSize uint64) ([]types.AgentExecution, error) {
	page, pageSize = normalizePage(page, pageSize)
	res, err := l.agents.List(l.ctx, opts, page, pageSize)
	if err != nil {
		return nil, errors.New("ObservabilityLogic.GetAgentExecutions.List", i18n.ERROR_INTERNAL, err)
	}
	return res, nil
}
