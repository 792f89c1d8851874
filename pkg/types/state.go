package types

import (
	sq "github.com/Masterminds/squirrel"
)

// State lifecycle strategies decided by the promotion policy engine.
const (
	STATE_STRATEGY_EPHEMERAL = "ephemeral"
	STATE_STRATEGY_SESSION   = "session"
	STATE_STRATEGY_DURABLE   = "durable"
)

// Storage backends the state manager routes to.
const (
	STATE_BACKEND_MEMORY   = "memory"
	STATE_BACKEND_CACHE    = "cache"
	STATE_BACKEND_DOCUMENT = "document"
)

// STATE_CACHE_PREFIX namespaces promoted state keys in the cache tier.
const STATE_CACHE_PREFIX = "civitas:state:"

// TrafficCopState is a promoted workflow state record in the document
// tier. ExpiresAt of zero means the record never expires.
type TrafficCopState struct {
	StateID   string  `json:"state_id" db:"state_id"`
	StateData JSONMap `json:"state_data" db:"state_data"`
	Metadata  JSONMap `json:"metadata" db:"metadata"`
	TenantID  *string `json:"tenant_id" db:"tenant_id"`
	ExpiresAt int64   `json:"expires_at" db:"expires_at"`
	CreatedAt int64   `json:"created_at" db:"created_at"`
	UpdatedAt int64   `json:"updated_at" db:"updated_at"`
}

type ListTrafficCopStateOptions struct {
	TenantID       string
	ExpiresBefore  int64
	IncludeExpired bool
}

func (opts ListTrafficCopStateOptions) Apply(query *sq.SelectBuilder) {
	if opts.TenantID != "" {
		*query = query.Where(sq.Eq{"tenant_id": opts.TenantID})
	}
	if opts.ExpiresBefore > 0 {
		*query = query.Where(sq.And{
			sq.Gt{"expires_at": 0},
			sq.Lt{"expires_at": opts.ExpiresBefore},
		})
	}
}

// StateMetadata describes how a stored state was classified and routed.
// It is persisted alongside the state so retrieval does not have to
// re-run the policy engine.
type StateMetadata struct {
	Strategy   string `json:"strategy"`
	Backend    string `json:"backend"`
	Complexity string `json:"complexity"`
	SizeClass  string `json:"size_class"`
	Importance string `json:"importance"`
	TTLSeconds int64  `json:"ttl_seconds"`
	PromotedAt int64  `json:"promoted_at"`
}

// StoredState is what the state manager hands back on retrieval.
type StoredState struct {
	StateID   string         `json:"state_id"`
	StateData map[string]any `json:"state_data"`
	Metadata  StateMetadata  `json:"metadata"`
	ExpiresAt int64          `json:"expires_at"`
}

// StateStatistics summarizes the state manager tiers for status
// reporting.
type StateStatistics struct {
	MemoryEntries   int64 `json:"memory_entries"`
	DocumentEntries int64 `json:"document_entries"`
	TrackedLocators int64 `json:"tracked_locators"`
}
