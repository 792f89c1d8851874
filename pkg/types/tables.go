package types

import "fmt"

type TableName string

func (s TableName) Name() string {
	return fmt.Sprintf("%s%s", TABLE_PREFIX, s)
}

const TABLE_PREFIX = "civitas_"

const (
	TABLE_PLATFORM_LOG         = TableName("platform_logs")
	TABLE_PLATFORM_METRIC      = TableName("platform_metrics")
	TABLE_PLATFORM_TRACE       = TableName("platform_traces")
	TABLE_AGENT_EXECUTION      = TableName("agent_executions")
	TABLE_STRUCTURED_EMBEDDING = TableName("structured_embeddings")
	TABLE_SEMANTIC_GRAPH_NODE  = TableName("semantic_graph_nodes")
	TABLE_SEMANTIC_GRAPH_EDGE  = TableName("semantic_graph_edges")
	TABLE_CORRELATION_MAP      = TableName("correlation_maps")
	TABLE_TRAFFIC_COP_STATE    = TableName("traffic_cop_states")
	TABLE_GOVERNANCE_POLICY    = TableName("governance_policies")
	TABLE_DATA_LINEAGE         = TableName("data_lineage")
)
