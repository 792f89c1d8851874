package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pgvector/pgvector-go"

	"github.com/civitas-ai/civitas-ai/app/core"
	"github.com/civitas-ai/civitas-ai/app/store"
	"github.com/civitas-ai/civitas-ai/pkg/errors"
	"github.com/civitas-ai/civitas-ai/pkg/i18n"
	"github.com/civitas-ai/civitas-ai/pkg/sanitize"
	"github.com/civitas-ai/civitas-ai/pkg/types"
	"github.com/civitas-ai/civitas-ai/pkg/utils"
)

type SemanticLogic struct {
	ctx  context.Context
	core *core.Core

	embeddings   store.StructuredEmbeddingStore
	nodes        store.SemanticGraphNodeStore
	edges        store.SemanticGraphEdgeStore
	correlations store.CorrelationMapStore
}

func NewSemanticLogic(ctx context.Context, core *core.Core) *SemanticLogic {
	return &SemanticLogic{
		ctx:          ctx,
		core:         core,
		embeddings:   core.Store().StructuredEmbeddingStore(),
		nodes:        core.Store().SemanticGraphNodeStore(),
		edges:        core.Store().SemanticGraphEdgeStore(),
		correlations: core.Store().CorrelationMapStore(),
	}
}

// embeddingKey builds the record key. Column entries key on the column
// name, chunk entries on the chunk index.
func embeddingKey(fileID string, entry types.EmbeddingInput) string {
	part := entry.ColumnName
	if part == "" && entry.ChunkIndex != nil {
		part = fmt.Sprintf("%d", *entry.ChunkIndex)
	}
	return utils.GenSpecificIDStr("emb", fileID, part)
}

func nodeKey(fileID, entityID string) string {
	return utils.GenSpecificIDStr("node", fileID, entityID)
}

// StoreStructuredEmbeddings validates the whole batch before touching
// storage. One bad entry rejects the batch with zero records written.
func (l *SemanticLogic) StoreStructuredEmbeddings(contentID, fileID string, entries []types.EmbeddingInput, userContext *types.UserContext) (*types.StoreEmbeddingsResult, error) {
	if contentID == "" || fileID == "" {
		return nil, errors.New("SemanticLogic.StoreStructuredEmbeddings.scope", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}
	for i, entry := range entries {
		switch {
		case entry.ColumnName != "":
			if len(entry.MetadataEmbedding) == 0 && len(entry.MeaningEmbedding) == 0 {
				return nil, errors.New("SemanticLogic.StoreStructuredEmbeddings.validate", i18n.ERROR_EMBEDDING_BATCH_INVALID, fmt.Errorf("column entry %d has neither metadata_embedding nor meaning_embedding", i)).Code(http.StatusBadRequest)
			}
		case entry.ChunkIndex == nil:
			return nil, errors.New("SemanticLogic.StoreStructuredEmbeddings.validate", i18n.ERROR_EMBEDDING_BATCH_INVALID, fmt.Errorf("entry %d has neither column_name nor chunk_index", i)).Code(http.StatusBadRequest)
		}
	}

	tenantID := utils.StringOrNil(userContext.GetTenantID())
	now := utils.TimeNowUnix()

	records := make([]types.StructuredEmbedding, 0, len(entries))
	for _, entry := range entries {
		records = append(records, types.StructuredEmbedding{
			ID:              embeddingKey(fileID, entry),
			ContentID:       contentID,
			FileID:          fileID,
			ParsedFileID:    utils.StringOrNil(entry.ParsedFileID),
			EmbeddingFileID: utils.StringOrNil(entry.EmbeddingFileID),
			ColumnName:      entry.ColumnName,

			MetadataEmbedding: types.NewNullVector(entry.MetadataEmbedding),
			MeaningEmbedding:  types.NewNullVector(entry.MeaningEmbedding),
			SamplesEmbedding:  types.NewNullVector(entry.SamplesEmbedding),
			ChunkEmbedding:    types.NewNullVector(entry.ChunkEmbedding),

			SemanticID:                  utils.StringOrNil(entry.SemanticID),
			DataType:                    utils.StringOrNil(entry.DataType),
			SemanticMeaning:             utils.StringOrNil(entry.SemanticMeaning),
			SampleValues:                entry.SampleValues,
			RowCount:                    entry.RowCount,
			ColumnPosition:              entry.ColumnPosition,
			SemanticModelRecommendation: sanitize.SanitizeMap(entry.SemanticModelRecommendation),

			ChunkIndex:    entry.ChunkIndex,
			ChunkText:     utils.StringOrNil(entry.ChunkText),
			ChunkMetadata: sanitize.SanitizeMap(entry.ChunkMetadata),
			TotalChunks:   entry.TotalChunks,
			ContentType:   utils.StringOrNil(entry.ContentType),
			FormatType:    utils.StringOrNil(entry.FormatType),
			EmbeddingType: utils.StringOrNil(entry.EmbeddingType),

			TenantID:  tenantID,
			CreatedAt: now,
		})
	}

	if err := l.embeddings.BatchCreate(l.ctx, records); err != nil {
		return nil, errors.New("SemanticLogic.StoreStructuredEmbeddings.BatchCreate", i18n.ERROR_INTERNAL, err)
	}

	return &types.StoreEmbeddingsResult{
		StoredCount: len(records),
		ContentID:   contentID,
		FileID:      fileID,
	}, nil
}

func (l *SemanticLogic) GetStructuredEmbeddings(opts types.GetEmbeddingsOptions, page, pageSize uint64) ([]types.StructuredEmbedding, error) {
	page, pageSize = normalizePage(page, pageSize)
	res, err := l.embeddings.List(l.ctx, opts, page, pageSize)
	if err != nil {
		return nil, errors.New("SemanticLogic.GetStructuredEmbeddings.List", i18n.ERROR_INTERNAL, err)
	}
	return res, nil
}

// VECTOR_SEARCH_DEFAULT_LIMIT caps similarity hits when the caller
// does not ask for a specific count.
const VECTOR_SEARCH_DEFAULT_LIMIT = 10

// VectorSearch ranks stored meaning embeddings by cosine similarity
// against the query vector.
func (l *SemanticLogic) VectorSearch(queryVector []float32, opts types.GetEmbeddingsOptions, limit uint64) ([]types.EmbeddingScore, error) {
	if len(queryVector) == 0 {
		return nil, errors.New("SemanticLogic.VectorSearch.vector", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}
	if limit == 0 {
		limit = VECTOR_SEARCH_DEFAULT_LIMIT
	}

	res, err := l.embeddings.Query(l.ctx, opts, pgvector.NewVector(queryVector), limit)
	if err != nil {
		return nil, errors.New("SemanticLogic.VectorSearch.Query", i18n.ERROR_INTERNAL, err)
	}
	return res, nil
}

// StoreSemanticGraph stores entity nodes and their edges. Edge
// endpoints resolve against the incoming batch first, then against
// nodes already stored for this file scope; an endpoint that resolves
// nowhere rejects the whole call before anything is written.
func (l *SemanticLogic) StoreSemanticGraph(contentID, fileID string, graph types.SemanticGraphInput, userContext *types.UserContext) (*types.StoreGraphResult, error) {
	if contentID == "" || fileID == "" {
		return nil, errors.New("SemanticLogic.StoreSemanticGraph.scope", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}
	if len(graph.Nodes) == 0 && len(graph.Edges) == 0 {
		return nil, errors.New("SemanticLogic.StoreSemanticGraph.empty", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}
	for i, node := range graph.Nodes {
		if node.EntityID == "" || node.EntityName == "" {
			return nil, errors.New("SemanticLogic.StoreSemanticGraph.validate", i18n.ERROR_GRAPH_NODE_INVALID, fmt.Errorf("node %d is missing entity_id or entity_name", i)).Code(http.StatusBadRequest)
		}
	}

	tenantID := utils.StringOrNil(userContext.GetTenantID())
	now := utils.TimeNowUnix()

	keyByEntity := make(map[string]string, len(graph.Nodes))
	nodeRecords := make([]types.SemanticGraphNode, 0, len(graph.Nodes))
	for _, node := range graph.Nodes {
		key := nodeKey(fileID, node.EntityID)
		keyByEntity[node.EntityID] = key
		nodeRecords = append(nodeRecords, types.SemanticGraphNode{
			ID:                  key,
			ContentID:           contentID,
			FileID:              fileID,
			EntityID:            node.EntityID,
			EntityName:          node.EntityName,
			EntityText:          utils.StringOrNil(node.EntityText),
			EntityType:          utils.StringOrNil(node.EntityType),
			SemanticID:          utils.StringOrNil(node.SemanticID),
			Embedding:           types.NewNullVector(node.Embedding),
			Confidence:          node.Confidence,
			ConfidenceBreakdown: sanitize.SanitizeMap(node.ConfidenceBreakdown),
			TenantID:            tenantID,
			CreatedAt:           now,
		})
	}

	resolve := func(entityID string) (string, error) {
		if key, ok := keyByEntity[entityID]; ok {
			return key, nil
		}
		existing, err := l.nodes.GetByEntityID(l.ctx, contentID, fileID, entityID)
		if err != nil {
			return "", errors.New("SemanticLogic.StoreSemanticGraph.GetByEntityID", i18n.ERROR_INTERNAL, err)
		}
		if existing == nil {
			return "", errors.New("SemanticLogic.StoreSemanticGraph.resolve", i18n.ERROR_GRAPH_EDGE_UNRESOLVED, fmt.Errorf("entity %s has no node in %s/%s", entityID, contentID, fileID)).Code(http.StatusBadRequest)
		}
		keyByEntity[entityID] = existing.ID
		return existing.ID, nil
	}

	edgeRecords := make([]types.SemanticGraphEdge, 0, len(graph.Edges))
	for _, edge := range graph.Edges {
		fromKey, err := resolve(edge.SourceEntityID)
		if err != nil {
			return nil, err
		}
		toKey, err := resolve(edge.TargetEntityID)
		if err != nil {
			return nil, err
		}
		edgeRecords = append(edgeRecords, types.SemanticGraphEdge{
			ID:               utils.GenSpecificIDStr("edge", fileID, edge.SourceEntityID),
			FromKey:          fromKey,
			ToKey:            toKey,
			ContentID:        contentID,
			FileID:           fileID,
			SourceEntityID:   edge.SourceEntityID,
			TargetEntityID:   edge.TargetEntityID,
			RelationshipType: utils.StringOrNil(edge.RelationshipType),
			Confidence:       edge.Confidence,
			TenantID:         tenantID,
			CreatedAt:        now,
		})
	}

	if err := l.nodes.BatchCreate(l.ctx, nodeRecords); err != nil {
		return nil, errors.New("SemanticLogic.StoreSemanticGraph.nodes.BatchCreate", i18n.ERROR_INTERNAL, err)
	}
	if err := l.edges.BatchCreate(l.ctx, edgeRecords); err != nil {
		return nil, errors.New("SemanticLogic.StoreSemanticGraph.edges.BatchCreate", i18n.ERROR_INTERNAL, err)
	}

	return &types.StoreGraphResult{
		StoredNodes: len(nodeRecords),
		StoredEdges: len(edgeRecords),
		ContentID:   contentID,
		FileID:      fileID,
	}, nil
}

func (l *SemanticLogic) GetSemanticGraph(contentID, fileID string, userContext *types.UserContext) (*types.SemanticGraphResult, error) {
	opts := types.GetGraphOptions{
		ContentID: contentID,
		FileID:    fileID,
		TenantID:  userContext.GetTenantID(),
	}

	nodes, err := l.nodes.List(l.ctx, opts, types.NO_PAGINATION, types.NO_PAGINATION)
	if err != nil {
		return nil, errors.New("SemanticLogic.GetSemanticGraph.nodes.List", i18n.ERROR_INTERNAL, err)
	}
	edges, err := l.edges.List(l.ctx, opts, types.NO_PAGINATION, types.NO_PAGINATION)
	if err != nil {
		return nil, errors.New("SemanticLogic.GetSemanticGraph.edges.List", i18n.ERROR_INTERNAL, err)
	}

	return &types.SemanticGraphResult{Nodes: nodes, Edges: edges}, nil
}

func (l *SemanticLogic) StoreCorrelationMap(contentID, fileID string, correlation map[string]any, userContext *types.UserContext) (string, error) {
	if contentID == "" || fileID == "" {
		return "", errors.New("SemanticLogic.StoreCorrelationMap.scope", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	record := types.CorrelationMap{
		ID:          utils.GenHexID("corr"),
		ContentID:   contentID,
		FileID:      fileID,
		Correlation: sanitize.SanitizeMap(correlation),
		TenantID:    utils.StringOrNil(userContext.GetTenantID()),
		CreatedAt:   utils.TimeNowUnix(),
	}
	if err := l.correlations.Create(l.ctx, record); err != nil {
		return "", errors.New("SemanticLogic.StoreCorrelationMap.Create", i18n.ERROR_INTERNAL, err)
	}
	return record.ID, nil
}

// GetCorrelationMap returns the newest correlation tree for the file
// scope, or an empty map when none was ever stored.
func (l *SemanticLogic) GetCorrelationMap(contentID, fileID string, userContext *types.UserContext) (map[string]any, error) {
	record, err := l.correlations.Get(l.ctx, contentID, fileID, userContext.GetTenantID())
	if err != nil {
		return nil, errors.New("SemanticLogic.GetCorrelationMap.Get", i18n.ERROR_INTERNAL, err)
	}
	if record == nil || record.Correlation == nil {
		return map[string]any{}, nil
	}
	return record.Correlation, nil
}
