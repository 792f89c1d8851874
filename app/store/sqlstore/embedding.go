package sqlstore

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pgvector/pgvector-go"

	"github.com/civitas-ai/civitas-ai/pkg/register"
	"github.com/civitas-ai/civitas-ai/pkg/types"
	"github.com/civitas-ai/civitas-ai/pkg/utils"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.StructuredEmbeddingStore = NewStructuredEmbeddingStore(provider)
	})
}

type StructuredEmbeddingStore struct {
	CommonFields
}

func NewStructuredEmbeddingStore(provider SqlProviderAchieve) *StructuredEmbeddingStore {
	repo := &StructuredEmbeddingStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_STRUCTURED_EMBEDDING)
	repo.SetAllColumns("id", "content_id", "file_id", "parsed_file_id", "embedding_file_id", "column_name",
		"metadata_embedding", "meaning_embedding", "samples_embedding", "chunk_embedding",
		"semantic_id", "data_type", "semantic_meaning", "sample_values", "row_count", "column_position",
		"semantic_model_recommendation", "chunk_index", "chunk_text", "chunk_metadata", "total_chunks",
		"content_type", "format_type", "embedding_type", "tenant_id", "created_at")
	return repo
}

// BatchCreate inserts a validated batch in one statement. The caller
// guarantees the batch is all-or-nothing valid.
func (s *StructuredEmbeddingStore) BatchCreate(ctx context.Context, datas []types.StructuredEmbedding) error {
	if len(datas) == 0 {
		return nil
	}

	query := sq.Insert(s.GetTable()).Columns(s.GetAllColumns()...)
	for _, data := range datas {
		if data.CreatedAt == 0 {
			data.CreatedAt = utils.TimeNowUnix()
		}
		query = query.Values(data.ID, data.ContentID, data.FileID, data.ParsedFileID, data.EmbeddingFileID, data.ColumnName,
			data.MetadataEmbedding, data.MeaningEmbedding, data.SamplesEmbedding, data.ChunkEmbedding,
			data.SemanticID, data.DataType, data.SemanticMeaning, data.SampleValues, data.RowCount, data.ColumnPosition,
			data.SemanticModelRecommendation, data.ChunkIndex, data.ChunkText, data.ChunkMetadata, data.TotalChunks,
			data.ContentType, data.FormatType, data.EmbeddingType, data.TenantID, data.CreatedAt)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *StructuredEmbeddingStore) List(ctx context.Context, opts types.GetEmbeddingsOptions, page, pageSize uint64) ([]types.StructuredEmbedding, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).OrderBy("created_at DESC")
	if page != types.NO_PAGINATION && pageSize != types.NO_PAGINATION {
		query = query.Limit(pageSize).Offset((page - 1) * pageSize)
	}
	opts.Apply(&query)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.StructuredEmbedding
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

// Query ranks rows by cosine similarity of the meaning embedding.
// pgvector distance operators:
// <-> L2, <#> negative inner product, <=> cosine distance.
func (s *StructuredEmbeddingStore) Query(ctx context.Context, opts types.GetEmbeddingsOptions, vector pgvector.Vector, limit uint64) ([]types.EmbeddingScore, error) {
	cosColumn, vectorArgs, _ := sq.Expr("1 - (meaning_embedding <=> ?) as cos", vector).ToSql()
	query := sq.Select("id", "content_id", "file_id", "column_name", "semantic_id", cosColumn).
		From(s.GetTable()).
		Where("meaning_embedding IS NOT NULL").
		Limit(limit).
		OrderBy("cos DESC")
	opts.Apply(&query)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	args = append(vectorArgs, args...)

	var res []types.EmbeddingScore
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *StructuredEmbeddingStore) DeleteByFile(ctx context.Context, contentID, fileID string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"content_id": contentID, "file_id": fileID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}
