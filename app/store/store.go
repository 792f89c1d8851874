package store

import (
	"context"

	"github.com/pgvector/pgvector-go"

	"github.com/civitas-ai/civitas-ai/pkg/sqlstore"
	"github.com/civitas-ai/civitas-ai/pkg/types"
)

// PlatformLogStore persists immutable platform log records.
type PlatformLogStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.PlatformLog) error
	List(ctx context.Context, opts types.GetObservabilityOptions, page, pageSize uint64) ([]types.PlatformLog, error)
	Total(ctx context.Context, opts types.GetObservabilityOptions) (int64, error)
}

type PlatformMetricStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.PlatformMetric) error
	List(ctx context.Context, opts types.GetObservabilityOptions, page, pageSize uint64) ([]types.PlatformMetric, error)
	Total(ctx context.Context, opts types.GetObservabilityOptions) (int64, error)
}

type PlatformTraceStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.PlatformTrace) error
	List(ctx context.Context, opts types.GetObservabilityOptions, page, pageSize uint64) ([]types.PlatformTrace, error)
	Total(ctx context.Context, opts types.GetObservabilityOptions) (int64, error)
}

type AgentExecutionStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.AgentExecution) error
	List(ctx context.Context, opts types.GetObservabilityOptions, page, pageSize uint64) ([]types.AgentExecution, error)
	Total(ctx context.Context, opts types.GetObservabilityOptions) (int64, error)
}

// StructuredEmbeddingStore persists per-column and per-chunk embedding
// records and answers cosine-similarity queries over them.
type StructuredEmbeddingStore interface {
	sqlstore.SqlCommons
	BatchCreate(ctx context.Context, datas []types.StructuredEmbedding) error
	List(ctx context.Context, opts types.GetEmbeddingsOptions, page, pageSize uint64) ([]types.StructuredEmbedding, error)
	Query(ctx context.Context, opts types.GetEmbeddingsOptions, vector pgvector.Vector, limit uint64) ([]types.EmbeddingScore, error)
	DeleteByFile(ctx context.Context, contentID, fileID string) error
}

type SemanticGraphNodeStore interface {
	sqlstore.SqlCommons
	BatchCreate(ctx context.Context, datas []types.SemanticGraphNode) error
	List(ctx context.Context, opts types.GetGraphOptions, page, pageSize uint64) ([]types.SemanticGraphNode, error)
	GetByEntityID(ctx context.Context, contentID, fileID, entityID string) (*types.SemanticGraphNode, error)
	DeleteByFile(ctx context.Context, contentID, fileID string) error
}

type SemanticGraphEdgeStore interface {
	sqlstore.SqlCommons
	BatchCreate(ctx context.Context, datas []types.SemanticGraphEdge) error
	List(ctx context.Context, opts types.GetGraphOptions, page, pageSize uint64) ([]types.SemanticGraphEdge, error)
	DeleteByFile(ctx context.Context, contentID, fileID string) error
}

type CorrelationMapStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.CorrelationMap) error
	Get(ctx context.Context, contentID, fileID, tenantID string) (*types.CorrelationMap, error)
	DeleteByFile(ctx context.Context, contentID, fileID string) error
}

// TrafficCopStateStore is the document tier of the state backend.
// Save upserts with last-writer-wins semantics.
type TrafficCopStateStore interface {
	sqlstore.SqlCommons
	Save(ctx context.Context, data types.TrafficCopState) error
	Get(ctx context.Context, stateID string) (*types.TrafficCopState, error)
	Delete(ctx context.Context, stateID string) error
	List(ctx context.Context, opts types.ListTrafficCopStateOptions, page, pageSize uint64) ([]types.TrafficCopState, error)
	DeleteExpired(ctx context.Context, before int64) (int64, error)
	Total(ctx context.Context, opts types.ListTrafficCopStateOptions) (int64, error)
}

type GovernancePolicyStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.GovernancePolicy) error
	Get(ctx context.Context, id string) (*types.GovernancePolicy, error)
	List(ctx context.Context, opts types.GetGovernancePolicyOptions, page, pageSize uint64) ([]types.GovernancePolicy, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}

type DataLineageStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.DataLineage) error
	List(ctx context.Context, opts types.GetDataLineageOptions, page, pageSize uint64) ([]types.DataLineage, error)
}
