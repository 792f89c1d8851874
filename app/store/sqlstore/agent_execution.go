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
		provider.stores.AgentExecutionStore = NewAgentExecutionStore(provider)
	})
}

type AgentExecutionStore struct {
	CommonFields
}

func NewAgentExecutionStore(provider SqlProviderAchieve) *AgentExecutionStore {
	repo := &AgentExecutionStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_AGENT_EXECUTION)
	repo.SetAllColumns("id", "agent_id", "agent_name", "prompt_hash", "response", "trace_id", "data_classification", "execution_metadata", "tenant_id", "timestamp")
	return repo
}

func (s *AgentExecutionStore) Create(ctx context.Context, data types.AgentExecution) error {
	if data.Timestamp == 0 {
		data.Timestamp = utils.TimeNowUnixMicro()
	}
	if data.DataClassification == "" {
		data.DataClassification = types.DATA_CLASSIFICATION_PLATFORM
	}
	query := sq.Insert(s.GetTable()).
		Columns(s.GetAllColumns()...).
		Values(data.ID, data.AgentID, data.AgentName, data.PromptHash, data.Response, data.TraceID, data.DataClassification, data.ExecutionMetadata, data.TenantID, data.Timestamp)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *AgentExecutionStore) List(ctx context.Context, opts types.GetObservabilityOptions, page, pageSize uint64) ([]types.AgentExecution, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).OrderBy("timestamp DESC")
	if page != types.NO_PAGINATION && pageSize != types.NO_PAGINATION {
		query = query.Limit(pageSize).Offset((page - 1) * pageSize)
	}
	opts.Apply(&query)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.AgentExecution
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *AgentExecutionStore) Total(ctx context.Context, opts types.GetObservabilityOptions) (int64, error) {
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
