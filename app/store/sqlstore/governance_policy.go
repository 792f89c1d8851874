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
		provider.stores.GovernancePolicyStore = NewGovernancePolicyStore(provider)
	})
}

type GovernancePolicyStore struct {
	CommonFields
}

func NewGovernancePolicyStore(provider SqlProviderAchieve) *GovernancePolicyStore {
	repo := &GovernancePolicyStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_GOVERNANCE_POLICY)
	repo.SetAllColumns("id", "policy_name", "policy_type", "description", "rules", "status", "tenant_id", "created_at", "updated_at")
	return repo
}

func (s *GovernancePolicyStore) Create(ctx context.Context, data types.GovernancePolicy) error {
	now := utils.TimeNowUnix()
	if data.CreatedAt == 0 {
		data.CreatedAt = now
	}
	if data.UpdatedAt == 0 {
		data.UpdatedAt = now
	}
	if data.Status == "" {
		data.Status = types.POLICY_STATUS_ACTIVE
	}
	query := sq.Insert(s.GetTable()).
		Columns(s.GetAllColumns()...).
		Values(data.ID, data.PolicyName, data.PolicyType, data.Description, data.Rules, data.Status, data.TenantID, data.CreatedAt, data.UpdatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *GovernancePolicyStore) Get(ctx context.Context, id string) (*types.GovernancePolicy, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.GovernancePolicy
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (s *GovernancePolicyStore) List(ctx context.Context, opts types.GetGovernancePolicyOptions, page, pageSize uint64) ([]types.GovernancePolicy, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).OrderBy("created_at DESC")
	if page != types.NO_PAGINATION && pageSize != types.NO_PAGINATION {
		query = query.Limit(pageSize).Offset((page - 1) * pageSize)
	}
	opts.Apply(&query)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.GovernancePolicy
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *GovernancePolicyStore) UpdateStatus(ctx context.Context, id, status string) error {
	query := sq.Update(s.GetTable()).
		Set("status", status).
		Set("updated_at", utils.TimeNowUnix()).
		Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *GovernancePolicyStore) Delete(ctx context.Context, id string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}
