package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"github.com/civitas-ai/civitas-ai/app/core"
	"github.com/civitas-ai/civitas-ai/app/statemanager"
	"github.com/civitas-ai/civitas-ai/app/store"
	"github.com/civitas-ai/civitas-ai/pkg/promotion"
	"github.com/civitas-ai/civitas-ai/pkg/safe"
	"github.com/civitas-ai/civitas-ai/pkg/sanitize"
	"github.com/civitas-ai/civitas-ai/pkg/types"
	"github.com/civitas-ai/civitas-ai/pkg/utils"
)

// DataInfrastructureLogic composes the sanitizer, the promotion policy
// engine, the state manager and the stores into caller-facing
// workflows. Workflows never return Go errors; every outcome lands in
// a WorkflowResult.
type DataInfrastructureLogic struct {
	ctx  context.Context
	core *core.Core

	stateManager *statemanager.StateManager
	policies     store.GovernancePolicyStore
	lineage      store.DataLineageStore
	storage      core.FileStorage

	observability *ObservabilityLogic
}

func NewDataInfrastructureLogic(ctx context.Context, core *core.Core) *DataInfrastructureLogic {
	return &DataInfrastructureLogic{
		ctx:           ctx,
		core:          core,
		stateManager:  core.StateManager(),
		policies:      core.Store().GovernancePolicyStore(),
		lineage:       core.Store().DataLineageStore(),
		storage:       core.FileStorage(),
		observability: NewObservabilityLogic(ctx, core),
	}
}

// emitWorkflowTelemetry records the workflow outcome as platform
// telemetry. Telemetry failures never affect the workflow result.
func (l *DataInfrastructureLogic) emitWorkflowTelemetry(operation string, result *types.WorkflowResult, userContext *types.UserContext) {
	if l.core != nil && !result.Success && result.ErrorCode != "" {
		l.core.Metrics().WorkflowErrorInc(operation, result.ErrorCode)
	}
	if l.observability == nil {
		return
	}
	safe.RunWithLog(func() {
		level := types.LOG_LEVEL_INFO
		if result.ErrorCode != "" {
			level = types.LOG_LEVEL_ERROR
		}
		serviceName := "data-infrastructure"
		if l.core != nil {
			serviceName = l.core.ServiceName()
		}
		_, _ = l.observability.RecordPlatformLog(level, fmt.Sprintf("workflow %s finished", operation), serviceName, "", map[string]any{
			"operation":  operation,
			"success":    result.Success,
			"reason":     result.Reason,
			"error_code": result.ErrorCode,
		}, userContext)
		_, _ = l.observability.RecordPlatformMetric("workflow_executions", 1, serviceName, "", map[string]any{
			"operation": operation,
			"success":   result.Success,
		}, userContext)
	}, "DataInfrastructureLogic.emitWorkflowTelemetry")
}

// PromoteTrafficCopState sanitizes the state, evaluates the promotion
// policy and places the state in the decided backend.
func (l *DataInfrastructureLogic) PromoteTrafficCopState(stateID string, stateData, sessionContext map[string]any, userContext *types.UserContext) *types.WorkflowResult {
	result := l.promoteTrafficCopState(stateID, stateData, sessionContext, userContext)
	l.emitWorkflowTelemetry("promote_traffic_cop_state", result, userContext)
	return result
}

func (l *DataInfrastructureLogic) promoteTrafficCopState(stateID string, stateData, sessionContext map[string]any, userContext *types.UserContext) *types.WorkflowResult {
	if stateID == "" || stateData == nil {
		return types.WorkflowFailed(types.ERROR_CODE_STATE_PROMOTION, fmt.Errorf("state_id and state_data are required"))
	}

	sanitized := sanitize.SanitizeMap(stateData)
	decision := promotion.Evaluate(sanitized, sessionContext)

	if !decision.Promote {
		return types.WorkflowSkipped(types.REASON_PROMOTION_NOT_RECOMMENDED, map[string]any{
			"state_id": stateID,
			"strategy": decision.Strategy,
		})
	}

	meta := types.StateMetadata{
		Strategy:   decision.Strategy,
		Backend:    decision.Backend,
		Complexity: decision.Complexity,
		SizeClass:  decision.SizeClass,
		Importance: decision.Importance,
		TTLSeconds: int64(decision.TTL.Seconds()),
		PromotedAt: utils.TimeNowUnix(),
	}

	if err := l.stateManager.StoreState(l.ctx, stateID, sanitized, meta, utils.StringOrNil(userContext.GetTenantID())); err != nil {
		slog.Error("state promotion storage failed", slog.String("state_id", stateID), slog.String("backend", decision.Backend), slog.Any("error", err))
		return &types.WorkflowResult{
			Success:   false,
			Reason:    types.REASON_STORAGE_FAILED,
			Error:     err.Error(),
			ErrorCode: types.ERROR_CODE_STATE_PROMOTION,
		}
	}

	if l.core != nil {
		l.core.Metrics().StatePromotionInc(decision.Backend, decision.Strategy)
	}

	return types.WorkflowOK(map[string]any{
		"state_id":    stateID,
		"strategy":    decision.Strategy,
		"backend":     decision.Backend,
		"ttl_seconds": meta.TTLSeconds,
		"size_bytes":  decision.SizeBytes,
	})
}

// RetrieveTrafficCopState fetches a promoted state from whichever tier
// holds it.
func (l *DataInfrastructureLogic) RetrieveTrafficCopState(stateID string, userContext *types.UserContext) *types.WorkflowResult {
	result := l.retrieveTrafficCopState(stateID)
	l.emitWorkflowTelemetry("retrieve_traffic_cop_state", result, userContext)
	return result
}

func (l *DataInfrastructureLogic) retrieveTrafficCopState(stateID string) *types.WorkflowResult {
	if stateID == "" {
		return types.WorkflowFailed(types.ERROR_CODE_STATE_PROMOTION, fmt.Errorf("state_id is required"))
	}

	stored, err := l.stateManager.RetrieveState(l.ctx, stateID)
	if err != nil {
		return types.WorkflowFailed(types.ERROR_CODE_STATE_PROMOTION, err)
	}
	if stored == nil {
		return types.WorkflowSkipped(types.REASON_STATE_NOT_FOUND, map[string]any{"state_id": stateID})
	}

	return types.WorkflowOK(map[string]any{
		"state_id":   stored.StateID,
		"state_data": stored.StateData,
		"backend":    stored.Metadata.Backend,
		"strategy":   stored.Metadata.Strategy,
		"expires_at": stored.ExpiresAt,
	})
}

// CreateGovernancePolicy registers a named rule set for compliance
// enforcement.
func (l *DataInfrastructureLogic) CreateGovernancePolicy(policyName, policyType, description string, rules map[string]any, userContext *types.UserContext) *types.WorkflowResult {
	result := l.createGovernancePolicy(policyName, policyType, description, rules, userContext)
	l.emitWorkflowTelemetry("create_governance_policy", result, userContext)
	return result
}

func (l *DataInfrastructureLogic) createGovernancePolicy(policyName, policyType, description string, rules map[string]any, userContext *types.UserContext) *types.WorkflowResult {
	if policyName == "" || policyType == "" {
		return types.WorkflowFailed(types.ERROR_CODE_COMPLIANCE, fmt.Errorf("policy_name and policy_type are required"))
	}

	policy := types.GovernancePolicy{
		ID:          utils.GenUniqIDStr(),
		PolicyName:  policyName,
		PolicyType:  policyType,
		Description: utils.StringOrNil(description),
		Rules:       sanitize.SanitizeMap(rules),
		Status:      types.POLICY_STATUS_ACTIVE,
		TenantID:    utils.StringOrNil(userContext.GetTenantID()),
		CreatedAt:   utils.TimeNowUnix(),
		UpdatedAt:   utils.TimeNowUnix(),
	}
	if err := l.policies.Create(l.ctx, policy); err != nil {
		return types.WorkflowFailed(types.ERROR_CODE_COMPLIANCE, err)
	}

	return types.WorkflowOK(map[string]any{
		"policy_id":   policy.ID,
		"policy_name": policy.PolicyName,
		"status":      policy.Status,
	})
}

// TrackDataLineage records one hop of data movement between platform
// components.
func (l *DataInfrastructureLogic) TrackDataLineage(assetID, sourceSystem, targetSystem, operation, transformation string, metadata map[string]any, userContext *types.UserContext) *types.WorkflowResult {
	result := l.trackDataLineage(assetID, sourceSystem, targetSystem, operation, transformation, metadata, userContext)
	l.emitWorkflowTelemetry("track_data_lineage", result, userContext)
	return result
}

func (l *DataInfrastructureLogic) trackDataLineage(assetID, sourceSystem, targetSystem, operation, transformation string, metadata map[string]any, userContext *types.UserContext) *types.WorkflowResult {
	if assetID == "" || sourceSystem == "" || targetSystem == "" {
		return types.WorkflowFailed(types.ERROR_CODE_COMPLIANCE, fmt.Errorf("asset_id, source_system and target_system are required"))
	}

	record := types.DataLineage{
		ID:             utils.GenUniqIDStr(),
		AssetID:        assetID,
		SourceSystem:   sourceSystem,
		TargetSystem:   targetSystem,
		Operation:      operation,
		Transformation: utils.StringOrNil(transformation),
		Metadata:       sanitize.SanitizeMap(metadata),
		TenantID:       utils.StringOrNil(userContext.GetTenantID()),
		Timestamp:      utils.TimeNowUnixMicro(),
	}
	if err := l.lineage.Create(l.ctx, record); err != nil {
		return types.WorkflowFailed(types.ERROR_CODE_COMPLIANCE, err)
	}

	return types.WorkflowOK(map[string]any{
		"lineage_id": record.ID,
		"asset_id":   record.AssetID,
	})
}

// EnforceGovernanceCompliance evaluates the active policies against an
// asset's metadata. Supported rule keys: required_fields,
// forbidden_fields, max_size_bytes.
func (l *DataInfrastructureLogic) EnforceGovernanceCompliance(assetID string, assetData map[string]any, policyType string, userContext *types.UserContext) *types.WorkflowResult {
	result := l.enforceGovernanceCompliance(assetID, assetData, policyType, userContext)
	l.emitWorkflowTelemetry("enforce_governance_compliance", result, userContext)
	return result
}

func (l *DataInfrastructureLogic) enforceGovernanceCompliance(assetID string, assetData map[string]any, policyType string, userContext *types.UserContext) *types.WorkflowResult {
	if assetID == "" {
		return types.WorkflowFailed(types.ERROR_CODE_COMPLIANCE, fmt.Errorf("asset_id is required"))
	}

	policies, err := l.policies.List(l.ctx, types.GetGovernancePolicyOptions{
		PolicyType: policyType,
		Status:     types.POLICY_STATUS_ACTIVE,
		TenantID:   userContext.GetTenantID(),
	}, types.NO_PAGINATION, types.NO_PAGINATION)
	if err != nil {
		return types.WorkflowFailed(types.ERROR_CODE_COMPLIANCE, err)
	}

	var violations []map[string]any
	for _, policy := range policies {
		for _, violation := range evaluatePolicyRules(policy.Rules, assetData) {
			violations = append(violations, map[string]any{
				"policy_id":   policy.ID,
				"policy_name": policy.PolicyName,
				"violation":   violation,
			})
		}
	}

	return types.WorkflowOK(map[string]any{
		"asset_id":           assetID,
		"compliant":          len(violations) == 0,
		"violations":         violations,
		"policies_evaluated": len(policies),
	})
}

func evaluatePolicyRules(rules types.JSONMap, assetData map[string]any) []string {
	var violations []string

	if required, ok := rules["required_fields"].([]any); ok {
		for _, field := range required {
			name, _ := field.(string)
			if name == "" {
				continue
			}
			if _, present := assetData[name]; !present {
				violations = append(violations, fmt.Sprintf("missing required field %q", name))
			}
		}
	}

	if forbidden, ok := rules["forbidden_fields"].([]any); ok {
		for _, field := range forbidden {
			name, _ := field.(string)
			if name == "" {
				continue
			}
			if _, present := assetData[name]; present {
				violations = append(violations, fmt.Sprintf("forbidden field %q is present", name))
			}
		}
	}

	if maxSize, ok := rules["max_size_bytes"].(float64); ok && maxSize > 0 {
		raw, err := json.Marshal(assetData)
		if err == nil && float64(len(raw)) > maxSize {
			violations = append(violations, fmt.Sprintf("asset size %d exceeds limit %d", len(raw), int64(maxSize)))
		}
	}

	return violations
}

// ProcessContentUpload stores raw content in object storage and tracks
// the ingestion hop in the lineage log.
func (l *DataInfrastructureLogic) ProcessContentUpload(fileName string, content []byte, metadata map[string]any, userContext *types.UserContext) *types.WorkflowResult {
	result := l.processContentUpload(fileName, content, metadata, userContext)
	l.emitWorkflowTelemetry("process_content_upload", result, userContext)
	return result
}

func (l *DataInfrastructureLogic) processContentUpload(fileName string, content []byte, metadata map[string]any, userContext *types.UserContext) *types.WorkflowResult {
	if fileName == "" || len(content) == 0 {
		return types.WorkflowFailed(types.ERROR_CODE_CONTENT_PROCESSING, fmt.Errorf("file_name and content are required"))
	}

	contentID := utils.GenUniqIDStr()
	fileID := utils.GenHexID("file")
	fullPath := fmt.Sprintf("/contents/%s/%s", contentID, fileName)

	if err := l.storage.SaveFile(l.ctx, fullPath, content); err != nil {
		return types.WorkflowFailed(types.ERROR_CODE_CONTENT_PROCESSING, err)
	}

	lineageResult := l.trackDataLineage(contentID, "upload-gateway", "object-storage", "ingest", "", map[string]any{
		"file_name":  fileName,
		"file_id":    fileID,
		"size_bytes": len(content),
		"metadata":   sanitize.SanitizeMap(metadata),
	}, userContext)
	if !lineageResult.Success {
		slog.Warn("content upload lineage tracking failed", slog.String("content_id", contentID), slog.String("error", lineageResult.Error))
	}

	return types.WorkflowOK(map[string]any{
		"content_id": contentID,
		"file_id":    fileID,
		"path":       fullPath,
		"size_bytes": len(content),
	})
}

// CoordinateDataWorkflow runs a sequence of infrastructure operations,
// stopping at the first step that does not succeed.
func (l *DataInfrastructureLogic) CoordinateDataWorkflow(workflowID string, steps []types.WorkflowStep, userContext *types.UserContext) *types.WorkflowResult {
	result := l.coordinateDataWorkflow(workflowID, steps, userContext)
	l.emitWorkflowTelemetry("coordinate_data_workflow", result, userContext)
	return result
}

func (l *DataInfrastructureLogic) coordinateDataWorkflow(workflowID string, steps []types.WorkflowStep, userContext *types.UserContext) *types.WorkflowResult {
	if workflowID == "" || len(steps) == 0 {
		return types.WorkflowFailed(types.ERROR_CODE_WORKFLOW_COORDINATION, fmt.Errorf("workflow_id and at least one step are required"))
	}

	stepResults := make([]map[string]any, 0, len(steps))
	for i, step := range steps {
		var stepResult *types.WorkflowResult
		switch step.Operation {
		case "promote_state":
			stepResult = l.promoteTrafficCopState(
				paramString(step.Params, "state_id"),
				paramMap(step.Params, "state_data"),
				paramMap(step.Params, "session_context"),
				userContext,
			)
		case "retrieve_state":
			stepResult = l.retrieveTrafficCopState(paramString(step.Params, "state_id"))
		case "track_lineage":
			stepResult = l.trackDataLineage(
				paramString(step.Params, "asset_id"),
				paramString(step.Params, "source_system"),
				paramString(step.Params, "target_system"),
				paramString(step.Params, "operation"),
				paramString(step.Params, "transformation"),
				paramMap(step.Params, "metadata"),
				userContext,
			)
		case "enforce_compliance":
			stepResult = l.enforceGovernanceCompliance(
				paramString(step.Params, "asset_id"),
				paramMap(step.Params, "asset_data"),
				paramString(step.Params, "policy_type"),
				userContext,
			)
		default:
			return &types.WorkflowResult{
				Success:   false,
				ErrorCode: types.ERROR_CODE_WORKFLOW_COORDINATION,
				Error:     fmt.Sprintf("unknown workflow operation %q at step %d", step.Operation, i),
				Data:      map[string]any{"workflow_id": workflowID, "steps_completed": i},
			}
		}

		stepResults = append(stepResults, map[string]any{
			"operation": step.Operation,
			"success":   stepResult.Success,
			"reason":    stepResult.Reason,
			"data":      stepResult.Data,
		})

		if !stepResult.Success {
			detail := stepResult.Reason
			if stepResult.Error != "" {
				if detail != "" {
					detail += ": "
				}
				detail += stepResult.Error
			}
			return &types.WorkflowResult{
				Success:   false,
				ErrorCode: types.ERROR_CODE_WORKFLOW_COORDINATION,
				Error:     fmt.Sprintf("step %d (%s) failed: %s", i, step.Operation, detail),
				Data: map[string]any{
					"workflow_id":     workflowID,
					"steps_completed": i,
					"step_results":    stepResults,
				},
			}
		}
	}

	return types.WorkflowOK(map[string]any{
		"workflow_id":     workflowID,
		"steps_completed": len(steps),
		"step_results":    stepResults,
	})
}

func paramString(params map[string]any, key string) string {
	v, _ := params[key].(string)
	return v
}

func paramMap(params map[string]any, key string) map[string]any {
	v, _ := params[key].(map[string]any)
	return v
}

// GetInfrastructureStatus reports tier occupancy and component health
// for operations dashboards.
func (l *DataInfrastructureLogic) GetInfrastructureStatus(userContext *types.UserContext) *types.WorkflowResult {
	stats, err := l.stateManager.Statistics(l.ctx)
	if err != nil {
		return types.WorkflowFailed(types.ERROR_CODE_WORKFLOW_COORDINATION, err)
	}

	policies, err := l.policies.List(l.ctx, types.GetGovernancePolicyOptions{Status: types.POLICY_STATUS_ACTIVE}, types.NO_PAGINATION, types.NO_PAGINATION)
	if err != nil {
		return types.WorkflowFailed(types.ERROR_CODE_WORKFLOW_COORDINATION, err)
	}

	return types.WorkflowOK(map[string]any{
		"state": map[string]any{
			"memory_entries":   stats.MemoryEntries,
			"document_entries": stats.DocumentEntries,
			"tracked_locators": stats.TrackedLocators,
		},
		"active_policies": len(policies),
		"policy_names": lo.Map(policies, func(p types.GovernancePolicy, _ int) string {
			return p.PolicyName
		}),
	})
}
