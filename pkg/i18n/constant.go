package i18n

var ALLOW_LANG = map[string]bool{
	"en": true,
}

const DEFAULT_LANG = "en"

const (
	ERROR_INTERNAL        = "error.internal"
	ERROR_NOT_FOUND       = "error.notfound"
	ERROR_INVALIDARGUMENT = "error.invalidargument"
	ERROR_FORBIDDEN       = "error.forbidden"
	ERROR_EXIST           = "error.exist"

	ERROR_INVALID_LOG_LEVEL    = "error.observability.invalid_log_level"
	ERROR_INVALID_TRACE_STATUS = "error.observability.invalid_trace_status"

	ERROR_EMBEDDING_BATCH_INVALID = "error.semantic.embedding_batch_invalid"
	ERROR_GRAPH_NODE_INVALID      = "error.semantic.graph_node_invalid"
	ERROR_GRAPH_EDGE_UNRESOLVED   = "error.semantic.graph_edge_unresolved"
	ERROR_VECTOR_DIMENSION        = "error.semantic.vector_dimension"

	ERROR_STATE_NOT_FOUND      = "error.state.notfound"
	ERROR_STATE_BACKEND        = "error.state.backend_unavailable"
	ERROR_STATE_PROMOTION      = "error.state.promotion_failed"
	ERROR_POLICY_NOT_FOUND     = "error.governance.policy_notfound"
	ERROR_POLICY_RULES_INVALID = "error.governance.policy_rules_invalid"
)
