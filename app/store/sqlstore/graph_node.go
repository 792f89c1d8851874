package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/civitas-ai/civitas-ai/pkg/register"
	"github.com/civitas-ai/civitas-ai/pkg/types"
	"github.com/civitas-ai/civitas-ai/pkg/utils"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.SemanticGraphNodeStore = NewSemanticGraphNodeStore(provider)
	})
}

type SemanticGraphNodeStore struct {
	CommonFields
}

func NewSemanticGraphNodeStore(provider SqlProviderAchieve) *SemanticGraphNodeStore {
	repo := &SemanticGraphNodeStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_SEMANTIC_GRAPH_NODE)
	repo.SetAllColumns("id", "content_id", "file_id", "entity_id", "entity_name", "entity_text", "entity_type",
		"semantic_id", "embedding", "confidence", "confidence_breakdown", "tenant_id", "created_at")
	return repo
}

func (s *SemanticGraphNodeStore) BatchCreate(ctx context.Context, datas []types.SemanticGraphNode) error {
	if len(datas) == 0 {
		return nil
	}

	query := sq.Insert(s.GetTable()).Columns(s.GetAllColumns()...)
	for _, data := range datas {
		if data.CreatedAt == 0 {
			data.CreatedAt = utils.TimeNowUnix()
		}
		query = query.Values(data.ID, data.ContentID, data.FileID, data.EntityID, data.EntityName, data.EntityText, data.EntityType,
			data.SemanticID, data.Embedding, data.Confidence, data.ConfidenceBreakdown, data.TenantID, data.CreatedAt)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *SemanticGraphNodeStore) List(ctx context.Context, opts types.GetGraphOptions, page, pageSize uint64) ([]types.SemanticGraphNode, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).OrderBy("created_at DESC")
	if page != types.NO_PAGINATION && pageSize != types.NO_PAGINATION {
		query = query.Limit(pageSize).Offset((page - 1) * pageSize)
	}
	opts.Apply(&query)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.SemanticGraphNode
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

// GetByEntityID resolves edge endpoints. Returns nil without error when
// the entity has no node in this file scope.
func (s *SemanticGraphNodeStore) GetByEntityID(ctx context.Context, contentID, fileID, entityID string) (*types.SemanticGraphNode, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"content_id": contentID, "file_id": fileID, "entity_id": entityID}).
		Limit(1)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.SemanticGraphNode
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (s *SemanticGraphNodeStore) DeleteByFile(ctx context.Context, contentID, fileID string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"content_id": contentID, "file_id": fileID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}
