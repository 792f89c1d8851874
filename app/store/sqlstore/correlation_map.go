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
		provider.stores.CorrelationMapStore = NewCorrelationMapStore(provider)
	})
}

type CorrelationMapStore struct {
	CommonFields
}

func NewCorrelationMapStore(provider SqlProviderAchieve) *CorrelationMapStore {
	repo := &CorrelationMapStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_CORRELATION_MAP)
	repo.SetAllColumns("id", "content_id", "file_id", "correlation", "tenant_id", "created_at")
	return repo
}

func (s *CorrelationMapStore) Create(ctx context.Context, data types.CorrelationMap) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = utils.TimeNowUnix()
	}
	query := sq.Insert(s.GetTable()).
		Columns(s.GetAllColumns()...).
		Values(data.ID, data.ContentID, data.FileID, data.Correlation, data.TenantID, data.CreatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// Get returns the newest correlation map for the content, or nil when
// none exists. File and tenant filters apply only when set.
func (s *CorrelationMapStore) Get(ctx context.Context, contentID, fileID, tenantID string) (*types.CorrelationMap, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"content_id": contentID}).
		OrderBy("created_at DESC").
		Limit(1)
	if fileID != "" {
		query = query.Where(sq.Eq{"file_id": fileID})
	}
	if tenantID != "" {
		query = query.Where(sq.Eq{"tenant_id": tenantID})
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.CorrelationMap
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (s *CorrelationMapStore) DeleteByFile(ctx context.Context, contentID, fileID string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"content_id": contentID, "file_id": fileID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}
