package types

import (
	sq "github.com/Masterminds/squirrel"
)

const (
	POLICY_STATUS_ACTIVE   = "active"
	POLICY_STATUS_DISABLED = "disabled"
)

// GovernancePolicy is a named rule set evaluated during compliance
// enforcement. Rules is an opaque sanitized tree interpreted by the
// enforcement pass.
type GovernancePolicy struct {
	ID          string  `json:"id" db:"id"`
	PolicyName  string  `json:"policy_name" db:"policy_name"`
	PolicyType  string  `json:"policy_type" db:"policy_type"`
	Description *string `json:"description" db:"description"`
	Rules       JSONMap `json:"rules" db:"rules"`
	Status      string  `json:"status" db:"status"`
	TenantID    *string `json:"tenant_id" db:"tenant_id"`
	CreatedAt   int64   `json:"created_at" db:"created_at"`
	UpdatedAt   int64   `json:"updated_at" db:"updated_at"`
}

type GetGovernancePolicyOptions struct {
	PolicyName string
	PolicyType string
	Status     string
	TenantID   string
}

func (opts GetGovernancePolicyOptions) Apply(query *sq.SelectBuilder) {
	if opts.PolicyName != "" {
		*query = query.Where(sq.Eq{"policy_name": opts.PolicyName})
	}
	if opts.PolicyType != "" {
		*query = query.Where(sq.Eq{"policy_type": opts.PolicyType})
	}
	if opts.Status != "" {
		*query = query.Where(sq.Eq{"status": opts.Status})
	}
	if opts.TenantID != "" {
		*query = query.Where(sq.Eq{"tenant_id": opts.TenantID})
	}
}

// DataLineage records one hop of data movement between platform
// components.
type DataLineage struct {
	ID             string  `json:"id" db:"id"`
	AssetID        string  `json:"asset_id" db:"asset_id"`
	SourceSystem   string  `json:"source_system" db:"source_system"`
	TargetSystem   string  `json:"target_system" db:"target_system"`
	Operation      string  `json:"operation" db:"operation"`
	Transformation *string `json:"transformation" db:"transformation"`
	Metadata       JSONMap `json:"metadata" db:"metadata"`
	TenantID       *string `json:"tenant_id" db:"tenant_id"`
	Timestamp      int64   `json:"timestamp" db:"timestamp"`
}

type GetDataLineageOptions struct {
	AssetID      string
	SourceSystem string
	TargetSystem string
	TenantID     string
}

func (opts GetDataLineageOptions) Apply(query *sq.SelectBuilder) {
	if opts.AssetID != "" {
		*query = query.Where(sq.Eq{"asset_id": opts.AssetID})
	}
	if opts.SourceSystem != "" {
		*query = query.Where(sq.Eq{"source_system": opts.SourceSystem})
	}
	if opts.TargetSystem != "" {
		*query = query.Where(sq.Eq{"target_system": opts.TargetSystem})
	}
	if opts.TenantID != "" {
		*query = query.Where(sq.Eq{"tenant_id": opts.TenantID})
	}
}
