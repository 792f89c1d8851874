package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/civitas-ai/civitas-ai/app/logic/v1"
	"github.com/civitas-ai/civitas-ai/app/response"
	"github.com/civitas-ai/civitas-ai/pkg/types"
	"github.com/civitas-ai/civitas-ai/pkg/utils"
)

type RecordLogRequest struct {
	LogLevel    string         `json:"log_level" binding:"required"`
	Message     string         `json:"message" binding:"required"`
	ServiceName string         `json:"service_name" binding:"required"`
	TraceID     string         `json:"trace_id"`
	Metadata    map[string]any `json:"metadata"`
}

func (s *HttpSrv) RecordPlatformLog(c *gin.Context) {
	var req RecordLogRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	id, err := v1.NewObservabilityLogic(c, s.Core).RecordPlatformLog(req.LogLevel, req.Message, req.ServiceName, req.TraceID, req.Metadata, v1.InjectUserContext(c))
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, gin.H{"id": id})
}

type ListObservabilityRequest struct {
	ServiceName string `json:"service_name" form:"service_name"`
	LogLevel    string `json:"log_level" form:"log_level"`
	MetricName  string `json:"metric_name" form:"metric_name"`
	TraceID     string `json:"trace_id" form:"trace_id"`
	SpanName    string `json:"span_name" form:"span_name"`
	Status      string `json:"status" form:"status"`
	AgentID     string `json:"agent_id" form:"agent_id"`
	AgentName   string `json:"agent_name" form:"agent_name"`
	Page        uint64 `json:"page" form:"page"`
	PageSize    uint64 `json:"pagesize" form:"pagesize"`
}

func (r *ListObservabilityRequest) options(c *gin.Context) types.GetObservabilityOptions {
	return types.GetObservabilityOptions{
		ServiceName: r.ServiceName,
		LogLevel:    r.LogLevel,
		MetricName:  r.MetricName,
		TraceID:     r.TraceID,
		SpanName:    r.SpanName,
		Status:      r.Status,
		AgentID:     r.AgentID,
		AgentName:   r.AgentName,
		TenantID:    v1.InjectUserContext(c).GetTenantID(),
	}
}

func (s *HttpSrv) ListPlatformLogs(c *gin.Context) {
	var req ListObservabilityRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	list, err := v1.NewObservabilityLogic(c, s.Core).GetPlatformLogs(req.options(c), req.Page, req.PageSize)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, gin.H{"list": list})
}

type RecordMetricRequest struct {
	MetricName  string         `json:"metric_name" binding:"required"`
	MetricValue float64        `json:"metric_value"`
	ServiceName string         `json:"service_name" binding:"required"`
	TraceID     string         `json:"trace_id"`
	Metadata    map[string]any `json:"metadata"`
}

func (s *HttpSrv) RecordPlatformMetric(c *gin.Context) {
	var req RecordMetricRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	id, err := v1.NewObservabilityLogic(c, s.Core).RecordPlatformMetric(req.MetricName, req.MetricValue, req.ServiceName, req.TraceID, req.Metadata, v1.InjectUserContext(c))
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, gin.H{"id": id})
}

func (s *HttpSrv) ListPlatformMetrics(c *gin.Context) {
	var req ListObservabilityRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	list, err := v1.NewObservabilityLogic(c, s.Core).GetPlatformMetrics(req.options(c), req.Page, req.PageSize)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, gin.H{"list": list})
}

type RecordTraceRequest struct {
	TraceID     string         `json:"trace_id" binding:"required"`
	SpanName    string         `json:"span_name" binding:"required"`
	ServiceName string         `json:"service_name"`
	StartTime   int64          `json:"start_time"`
	EndTime     *int64         `json:"end_time"`
	DurationMS  *float64       `json:"duration_ms"`
	Status      string         `json:"status"`
	Metadata    map[string]any `json:"metadata"`
}

func (s *HttpSrv) RecordPlatformTrace(c *gin.Context) {
	var req RecordTraceRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	id, err := v1.NewObservabilityLogic(c, s.Core).RecordPlatformTrace(types.RecordTraceArgs{
		TraceID:     req.TraceID,
		SpanName:    req.SpanName,
		ServiceName: req.ServiceName,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		DurationMS:  req.DurationMS,
		Status:      req.Status,
		UserContext: v1.InjectUserContext(c),
		Metadata:    req.Metadata,
	})
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, gin.H{"id": id})
}

func (s *HttpSrv) ListPlatformTraces(c *gin.Context) {
	var req ListObservabilityRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	list, err := v1.NewObservabilityLogic(c, s.Core).GetPlatformTraces(req.options(c), req.Page, req.PageSize)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, gin.H{"list": list})
}

type RecordAgentExecutionRequest struct {
	AgentID           string         `json:"agent_id" binding:"required"`
	AgentName         string         `json:"agent_name" binding:"required"`
	PromptHash        string         `json:"prompt_hash"`
	Response          string         `json:"response"`
	TraceID           string         `json:"trace_id"`
	ExecutionMetadata map[string]any `json:"execution_metadata"`
}

func (s *HttpSrv) RecordAgentExecution(c *gin.Context) {
	var req RecordAgentExecutionRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	id, err := v1.NewObservabilityLogic(c, s.Core).RecordAgentExecution(types.RecordAgentExecutionArgs{
		AgentID:           req.AgentID,
		AgentName:         req.AgentName,
		PromptHash:        req.PromptHash,
		Response:          req.Response,
		TraceID:           req.TraceID,
		ExecutionMetadata: req.ExecutionMetadata,
		UserContext:       v1.InjectUserContext(c),
	})
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, gin.H{"id": id})
}

func (s *HttpSrv) ListAgentExecutions(c *gin.Context) {
	var req ListObservabilityRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	list, err := v1.NewObservabilityLogic(c, s.Core).GetAgentExecutions(req.options(c), req.Page, req.PageSize)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, gin.H{"list": list})
}
