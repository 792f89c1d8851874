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
		provider.stores.DataLineageStore = NewDataLineageStore(provider)
	})
}

type DataLineageStore struct {
	CommonFields
}

func NewDataLineageStore(provider SqlProviderAchieve) *DataLineageStore {
	repo := &DataLineageStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_DATA_LINEAGE)
	repo.SetAllColumns("id", "asset_id", "source_system", "target_system", "operation", "transformation", "metadata", "tenant_id", "timestamp")
	return repo
}

func (s *DataLineageStore) Create(ctx context.Context, data types.DataLineage) error {
	if data.Timestamp == 0 {
		data.Timestamp = utils.TimeNowUnixMicro()
	}
	query := sq.Insert(s.GetTable()).
		Columns(s.GetAllColumns()...).
		Values(data.ID, data.AssetID, data.SourceSystem, data.TargetSystem, data.Operation, data.Transformation, data.Metadata, data.TenantID, data.Timestamp)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *DataLineageStore) List(ctx context.Context, opts types.GetDataLineageOptions, page, pageSize uint64) ([]types.DataLineage, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).OrderBy("timestamp DESC")
	if page != types.NO_PAGINATION && pageSize != types.NO_PAGINATION {
		query = query.Limit(pageSize).Offset((page - 1) * pageSize)
	}
	opts.Apply(&query)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.DataLineage
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}
