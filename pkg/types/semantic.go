package types

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

// StructuredEmbedding is one per-column (or per-chunk) embedding record.
// Parallel provenance fields keep previews reconstructable without
// re-running embedding.
type StructuredEmbedding struct {
	ID              string  `json:"id" db:"id"`
	ContentID       string  `json:"content_id" db:"content_id"`
	FileID          string  `json:"file_id" db:"file_id"`
	ParsedFileID    *string `json:"parsed_file_id" db:"parsed_file_id"`
	EmbeddingFileID *string `json:"embedding_file_id" db:"embedding_file_id"`
	ColumnName      string  `json:"column_name" db:"column_name"`

	MetadataEmbedding NullVector `json:"metadata_embedding" db:"metadata_embedding"`
	MeaningEmbedding  NullVector `json:"meaning_embedding" db:"meaning_embedding"`
	SamplesEmbedding  NullVector `json:"samples_embedding" db:"samples_embedding"`
	ChunkEmbedding    NullVector `json:"chunk_embedding" db:"chunk_embedding"`

	SemanticID                  *string        `json:"semantic_id" db:"semantic_id"`
	DataType                    *string        `json:"data_type" db:"data_type"`
	SemanticMeaning             *string        `json:"semantic_meaning" db:"semantic_meaning"`
	SampleValues                pq.StringArray `json:"sample_values" db:"sample_values"`
	RowCount                    *int64         `json:"row_count" db:"row_count"`
	ColumnPosition              *int64         `json:"column_position" db:"column_position"`
	SemanticModelRecommendation JSONMap        `json:"semantic_model_recommendation" db:"semantic_model_recommendation"`

	ChunkIndex    *int64  `json:"chunk_index" db:"chunk_index"`
	ChunkText     *string `json:"chunk_text" db:"chunk_text"`
	ChunkMetadata JSONMap `json:"chunk_metadata" db:"chunk_metadata"`
	TotalChunks   *int64  `json:"total_chunks" db:"total_chunks"`
	ContentType   *string `json:"content_type" db:"content_type"`
	FormatType    *string `json:"format_type" db:"format_type"`
	EmbeddingType *string `json:"embedding_type" db:"embedding_type"`

	TenantID  *string `json:"tenant_id" db:"tenant_id"`
	CreatedAt int64   `json:"created_at" db:"created_at"`
}

// EmbeddingScore is a vector_search hit; Cos is cosine similarity of the
// meaning embedding against the query vector.
type EmbeddingScore struct {
	ID         string  `json:"id" db:"id"`
	ContentID  string  `json:"content_id" db:"content_id"`
	FileID     string  `json:"file_id" db:"file_id"`
	ColumnName string  `json:"column_name" db:"column_name"`
	SemanticID *string `json:"semantic_id" db:"semantic_id"`
	Cos        float32 `json:"cos" db:"cos"`
}

type GetEmbeddingsOptions struct {
	ContentID       string
	FileID          string
	ParsedFileID    string
	EmbeddingFileID string
	ColumnName      string
	SemanticID      string
	EmbeddingType   string
	TenantID        string
}

func (opts GetEmbeddingsOptions) Apply(query *sq.SelectBuilder) {
	if opts.ContentID != "" {
		*query = query.Where(sq.Eq{"content_id": opts.ContentID})
	}
	if opts.FileID != "" {
		*query = query.Where(sq.Eq{"file_id": opts.FileID})
	}
	if opts.ParsedFileID != "" {
		*query = query.Where(sq.Eq{"parsed_file_id": opts.ParsedFileID})
	}
	if opts.EmbeddingFileID != "" {
		*query = query.Where(sq.Eq{"embedding_file_id": opts.EmbeddingFileID})
	}
	if opts.ColumnName != "" {
		*query = query.Where(sq.Eq{"column_name": opts.ColumnName})
	}
	if opts.SemanticID != "" {
		*query = query.Where(sq.Eq{"semantic_id": opts.SemanticID})
	}
	if opts.EmbeddingType != "" {
		*query = query.Where(sq.Eq{"embedding_type": opts.EmbeddingType})
	}
	if opts.TenantID != "" {
		*query = query.Where(sq.Eq{"tenant_id": opts.TenantID})
	}
}

// SemanticGraphNode is an extracted entity scoped to content_id+file_id.
type SemanticGraphNode struct {
	ID                  string     `json:"id" db:"id"`
	ContentID           string     `json:"content_id" db:"content_id"`
	FileID              string     `json:"file_id" db:"file_id"`
	EntityID            string     `json:"entity_id" db:"entity_id"`
	EntityName          string     `json:"entity_name" db:"entity_name"`
	EntityText          *string    `json:"entity_text" db:"entity_text"`
	EntityType          *string    `json:"entity_type" db:"entity_type"`
	SemanticID          *string    `json:"semantic_id" db:"semantic_id"`
	Embedding           NullVector `json:"embedding" db:"embedding"`
	Confidence          *float64   `json:"confidence" db:"confidence"`
	ConfidenceBreakdown JSONMap    `json:"confidence_breakdown" db:"confidence_breakdown"`
	TenantID            *string    `json:"tenant_id" db:"tenant_id"`
	CreatedAt           int64      `json:"created_at" db:"created_at"`
}

// SemanticGraphEdge is a directed edge; FromKey/ToKey reference node
// record keys resolved at insertion time.
type SemanticGraphEdge struct {
	ID               string   `json:"id" db:"id"`
	FromKey          string   `json:"from_key" db:"from_key"`
	ToKey            string   `json:"to_key" db:"to_key"`
	ContentID        string   `json:"content_id" db:"content_id"`
	FileID           string   `json:"file_id" db:"file_id"`
	SourceEntityID   string   `json:"source_entity_id" db:"source_entity_id"`
	TargetEntityID   string   `json:"target_entity_id" db:"target_entity_id"`
	RelationshipType *string  `json:"relationship_type" db:"relationship_type"`
	Confidence       *float64 `json:"confidence" db:"confidence"`
	TenantID         *string  `json:"tenant_id" db:"tenant_id"`
	CreatedAt        int64    `json:"created_at" db:"created_at"`
}

// CorrelationMap links the structured-embedding view and the
// semantic-graph view of the same source file.
type CorrelationMap struct {
	ID          string  `json:"id" db:"id"`
	ContentID   string  `json:"content_id" db:"content_id"`
	FileID      string  `json:"file_id" db:"file_id"`
	Correlation JSONMap `json:"correlation" db:"correlation"`
	TenantID    *string `json:"tenant_id" db:"tenant_id"`
	CreatedAt   int64   `json:"created_at" db:"created_at"`
}

type GetGraphOptions struct {
	ContentID string
	FileID    string
	TenantID  string
}

func (opts GetGraphOptions) Apply(query *sq.SelectBuilder) {
	if opts.ContentID != "" {
		*query = query.Where(sq.Eq{"content_id": opts.ContentID})
	}
	if opts.FileID != "" {
		*query = query.Where(sq.Eq{"file_id": opts.FileID})
	}
	if opts.TenantID != "" {
		*query = query.Where(sq.Eq{"tenant_id": opts.TenantID})
	}
}

// EmbeddingInput is the caller-facing embedding entry. Optional fields
// are stored as null, not rejected.
type EmbeddingInput struct {
	ColumnName      string `json:"column_name"`
	ParsedFileID    string `json:"parsed_file_id"`
	EmbeddingFileID string `json:"embedding_file_id"`

	MetadataEmbedding []float32 `json:"metadata_embedding"`
	MeaningEmbedding  []float32 `json:"meaning_embedding"`
	SamplesEmbedding  []float32 `json:"samples_embedding"`
	ChunkEmbedding    []float32 `json:"chunk_embedding"`

	SemanticID                  string         `json:"semantic_id"`
	DataType                    string         `json:"data_type"`
	SemanticMeaning             string         `json:"semantic_meaning"`
	SampleValues                []string       `json:"sample_values"`
	RowCount                    *int64         `json:"row_count"`
	ColumnPosition              *int64         `json:"column_position"`
	SemanticModelRecommendation map[string]any `json:"semantic_model_recommendation"`

	ChunkIndex    *int64         `json:"chunk_index"`
	ChunkText     string         `json:"chunk_text"`
	ChunkMetadata map[string]any `json:"chunk_metadata"`
	TotalChunks   *int64         `json:"total_chunks"`
	ContentType   string         `json:"content_type"`
	FormatType    string         `json:"format_type"`
	EmbeddingType string         `json:"embedding_type"`
}

type GraphNodeInput struct {
	EntityID            string         `json:"entity_id"`
	EntityName          string         `json:"entity_name"`
	EntityText          string         `json:"entity_text"`
	EntityType          string         `json:"entity_type"`
	SemanticID          string         `json:"semantic_id"`
	Embedding           []float32      `json:"embedding"`
	Confidence          *float64       `json:"confidence"`
	ConfidenceBreakdown map[string]any `json:"confidence_breakdown"`
}

type GraphEdgeInput struct {
	SourceEntityID   string   `json:"source_entity_id"`
	TargetEntityID   string   `json:"target_entity_id"`
	RelationshipType string   `json:"relationship_type"`
	Confidence       *float64 `json:"confidence"`
}

type SemanticGraphInput struct {
	Nodes []GraphNodeInput `json:"nodes"`
	Edges []GraphEdgeInput `json:"edges"`
}

type SemanticGraphResult struct {
	Nodes []SemanticGraphNode `json:"nodes"`
	Edges []SemanticGraphEdge `json:"edges"`
}

type StoreEmbeddingsResult struct {
	StoredCount int    `json:"stored_count"`
	ContentID   string `json:"content_id"`
	FileID      string `json:"file_id"`
}

type StoreGraphResult struct {
	StoredNodes int    `json:"stored_nodes"`
	StoredEdges int    `json:"stored_edges"`
	ContentID   string `json:"content_id"`
	FileID      string `json:"file_id"`
}
