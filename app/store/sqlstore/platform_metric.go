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
		provider.stores.PlatformMetricStore = NewPlatformMetricStore(provider)
	})
}

type PlatformMetricStore struct {
	CommonFields
}

func NewPlatformMetricStore(provider SqlProviderAchieve) *PlatformMetricStore {
	repo := &PlatformMetricStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_PLATFORM_METRIC)
	repo.SetAllColumns("id", "metric_name", "metric_value", "service_name", "trace_id", "data_classification", "tenant_id", "metadata", "timestamp")
	return repo
}

func (s *PlatformMetricStore) Create(ctx context.Context, data types.PlatformMetric) error {
	if data.Timestamp == 0 {
		data.Timestamp = utils.TimeNowUnixMicro()
	}
	if data.DataClassification == "" {
		data.DataClassification = types.DATA_CLASSIFICATION_PLATFORM
	}
	query := sq.Insert(s.GetTable()).
		Columns(s.GetAllColumns()...).
		Values(data.ID, data.MetricName, data.MetricValue, data.ServiceName, data.TraceID, data.DataClassification, data.TenantID, data.Metadata, data.Timestamp)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *PlatformMetricStore) List(ctx context.Context, opts types.GetObservabilityOptions, page, pageSize uint64) ([]types.PlatformMetric, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).OrderBy("timestamp DESC")
	if page != types.NO_PAGINATION && pageSize != types.NO_PAGINATION {
		query = query.Limit(pageSize).Offset((page - 1) * pageSize)
	}
	opts.Apply(&query)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.PlatformMetric
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *PlatformMetricStore) Total(ctx context.Context, opts types.GetObservabilityOptions) (int64, error) {
	query := sq.Select("COUNT(*)").From(s.GetTable())
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
