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
		provider.stores.TrafficCopStateStore = NewTrafficCopStateStore(provider)
	})
}

type TrafficCopStateStore struct {
	CommonFields
}

func NewTrafficCopStateStore(provider SqlProviderAchieve) *TrafficCopStateStore {
	repo := &TrafficCopStateStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_TRAFFIC_COP_STATE)
	repo.SetAllColumns("state_id", "state_data", "metadata", "tenant_id", "expires_at", "created_at", "updated_at")
	return repo
}

// Save upserts a state record. Re-promoting an existing state replaces
// its data, metadata and expiry (last writer wins).
func (s *TrafficCopStateStore) Save(ctx context.Context, data types.TrafficCopState) error {
	now := utils.TimeNowUnix()
	if data.CreatedAt == 0 {
		data.CreatedAt = now
	}
	if data.UpdatedAt == 0 {
		data.UpdatedAt = now
	}
	query := sq.Insert(s.GetTable()).
		Columns(s.GetAllColumns()...).
		Values(data.StateID, data.StateData, data.Metadata, data.TenantID, data.ExpiresAt, data.CreatedAt, data.UpdatedAt).
		Suffix("ON CONFLICT (state_id) DO UPDATE SET state_data = EXCLUDED.state_data, metadata = EXCLUDED.metadata, tenant_id = EXCLUDED.tenant_id, expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at")

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *TrafficCopStateStore) Get(ctx context.Context, stateID string) (*types.TrafficCopState, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"state_id": stateID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.TrafficCopState
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (s *TrafficCopStateStore) Delete(ctx context.Context, stateID string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"state_id": stateID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *TrafficCopStateStore) List(ctx context.Context, opts types.ListTrafficCopStateOptions, page, pageSize uint64) ([]types.TrafficCopState, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).OrderBy("updated_at DESC")
	if page != types.NO_PAGINATION && pageSize != types.NO_PAGINATION {
		query = query.Limit(pageSize).Offset((page - 1) * pageSize)
	}
	if !opts.IncludeExpired {
		query = query.Where(sq.Or{
			sq.Eq{"expires_at": 0},
			sq.Gt{"expires_at": utils.TimeNowUnix()},
		})
	}
	opts.Apply(&query)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.TrafficCopState
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

// DeleteExpired removes document states whose expiry has passed.
// Records with expires_at = 0 never expire.
func (s *TrafficCopStateStore) DeleteExpired(ctx context.Context, before int64) (int64, error) {
	query := sq.Delete(s.GetTable()).Where(sq.And{
		sq.Gt{"expires_at": 0},
		sq.LtOrEq{"expires_at": before},
	})

	queryString, args, err := query.ToSql()
	if err != nil {
		return 0, ErrorSqlBuild(err)
	}

	result, err := s.GetMaster(ctx).Exec(queryString, args...)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return affected, nil
}

func (s *TrafficCopStateStore) Total(ctx context.Context, opts types.ListTrafficCopStateOptions) (int64, error) {
	query := sq.Select("COUNT(*)").From(s.GetTable())
	if !opts.IncludeExpired {
		query = query.Where(sq.Or{
			sq.Eq{"expires_at": 0},
			sq.Gt{"expires_at": utils.TimeNowUnix()},
		})
	}
	opts.Apply(&query)

	queryString, args, err := query.ToSql()
	if err != nil {
		return 0, ErrorSqlBuild(err)
	}

	var total int64
	if err = s.GetReplica(ctx).Get(&total, queryString, args...); err != nil {
		return 0, err
	}
	return total, nil
}
