package sqlstore

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/civitas-ai/civitas-ai/pkg/register"
	"github.com/civitas-ai/civitas-ai/pkg/types"
	"github.com/civitas-ai/civitas-ai/pkg/utils"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.SemanticGraphEdgeStore = NewSemanticGraphEdgeStore(provider)
	})
}

type SemanticGraphEdgeStore struct {
	CommonFields
}

func NewSemanticGraphEdgeStore(provider SqlProviderAchieve) *SemanticGraphEdgeStore {
	repo := &SemanticGraphEdgeStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_SEMANTIC_GRAPH_EDGE)
	repo.SetAllColumns("id", "from_key", "to_key", "content_id", "file_id", "source_entity_id", "target_entity_id",
		"relationship_type", "confidence", "tenant_id", "created_at")
	return repo
}

func (s *SemanticGraphEdgeStore) BatchCreate(ctx context.Context, datas []types.SemanticGraphEdge) error {
	if len(datas) == 0 {
		return nil
	}

	query := sq.Insert(s.GetTable()).Columns(s.GetAllColumns()...)
	for _, data := range datas {
		if data.CreatedAt == 0 {
			data.CreatedAt = utils.TimeNowUnix()
		}
		query = query.Values(data.ID, data.FromKey, data.ToKey, data.ContentID, data.FileID, data.SourceEntityID, data.TargetEntityID,
			data.RelationshipType, data.Confidence, data.TenantID, data.CreatedAt)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *SemanticGraphEdgeStore) List(ctx context.Context, opts types.GetGraphOptions, page, pageSize uint64) ([]types.SemanticGraphEdge, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).OrderBy("created_at DESC")
	if page != types.NO_PAGINATION && pageSize != types.NO_PAGINATION {
		query = query.Limit(pageSize).Offset((page - 1) * pageSize)
	}
	opts.Apply(&query)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.SemanticGraphEdge
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *SemanticGraphEdgeStore) DeleteByFile(ctx context.Context, contentID, fileID string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"content_id": contentID, "file_id": fileID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}
