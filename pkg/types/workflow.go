package types

// Stable machine-readable error codes reported in workflow results.
const (
	ERROR_CODE_STATE_PROMOTION       = "DATA_INFRASTRUCTURE_STATE_PROMOTION_ERROR"
	ERROR_CODE_COMPLIANCE            = "DATA_INFRASTRUCTURE_COMPLIANCE_ERROR"
	ERROR_CODE_CONTENT_PROCESSING    = "DATA_INFRASTRUCTURE_CONTENT_PROCESSING_ERROR"
	ERROR_CODE_WORKFLOW_COORDINATION = "DATA_INFRASTRUCTURE_WORKFLOW_COORDINATION_ERROR"
)

// Non-error reasons a workflow can finish unsuccessfully.
const (
	REASON_PROMOTION_NOT_RECOMMENDED = "promotion_not_recommended"
	REASON_STORAGE_FAILED            = "storage_failed"
	REASON_STATE_NOT_FOUND           = "state_not_found"
)

// WorkflowResult is the uniform envelope composition workflows return.
// Workflows never propagate errors to the caller; failures land here
// with a reason or an error code.
type WorkflowResult struct {
	Success   bool           `json:"success"`
	Data      map[string]any `json:"data,omitempty"`
	Reason    string         `json:"reason,omitempty"`
	Error     string         `json:"error,omitempty"`
	ErrorCode string         `json:"error_code,omitempty"`
}

func WorkflowOK(data map[string]any) *WorkflowResult {
	return &WorkflowResult{Success: true, Data: data}
}

func WorkflowSkipped(reason string, data map[string]any) *WorkflowResult {
	return &WorkflowResult{Success: false, Reason: reason, Data: data}
}

func WorkflowFailed(code string, err error) *WorkflowResult {
	res := &WorkflowResult{Success: false, ErrorCode: code}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}

// WorkflowStep is one operation of a coordinated workflow.
type WorkflowStep struct {
	Operation string         `json:"operation"`
	Params    map[string]any `json:"params"`
}
