// Package statemanager routes promoted workflow states to one of three
// tiers: an in-process memory map, the redis cache, or the document
// store. The promotion policy engine decides the tier; this package
// only executes the placement and keeps a locator index so retrieval
// does not probe every tier.
package statemanager

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/civitas-ai/civitas-ai/app/store"
	"github.com/civitas-ai/civitas-ai/pkg/types"
	"github.com/civitas-ai/civitas-ai/pkg/utils"
)

type memoryEntry struct {
	state     types.StoredState
	expiresAt int64
}

func (e memoryEntry) expired(now int64) bool {
	return e.expiresAt > 0 && e.expiresAt <= now
}

type StateManager struct {
	document store.TrafficCopStateStore
	cache    types.Cache

	memory   cmap.ConcurrentMap[string, memoryEntry]
	locators cmap.ConcurrentMap[string, string]
}

// New builds a state manager. cache and document may be nil; storing to
// a missing tier fails with an explicit error while the other tiers
// keep working.
func New(document store.TrafficCopStateStore, cache types.Cache) *StateManager {
	return &StateManager{
		document: document,
		cache:    cache,
		memory:   cmap.New[memoryEntry](),
		locators: cmap.New[string](),
	}
}

func cacheKey(stateID string) string {
	return types.STATE_CACHE_PREFIX + stateID
}

// StoreState places the state in the tier named by meta.Backend.
// Storing an existing state ID overwrites the previous version, in
// whichever tier it lived before.
func (m *StateManager) StoreState(ctx context.Context, stateID string, stateData map[string]any, meta types.StateMetadata, tenantID *string) error {
	now := utils.TimeNowUnix()
	var expiresAt int64
	if meta.TTLSeconds > 0 {
		expiresAt = now + meta.TTLSeconds
	}
	if meta.PromotedAt == 0 {
		meta.PromotedAt = now
	}

	stored := types.StoredState{
		StateID:   stateID,
		StateData: stateData,
		Metadata:  meta,
		ExpiresAt: expiresAt,
	}

	if prev, ok := m.locators.Get(stateID); ok && prev != meta.Backend {
		if err := m.deleteFromBackend(ctx, prev, stateID); err != nil {
			return err
		}
	}

	switch meta.Backend {
	case types.STATE_BACKEND_MEMORY:
		m.memory.Set(stateID, memoryEntry{state: stored, expiresAt: expiresAt})

	case types.STATE_BACKEND_CACHE:
		if m.cache == nil {
			return fmt.Errorf("cache backend is not configured")
		}
		raw, err := json.Marshal(stored)
		if err != nil {
			return err
		}
		ttl := time.Duration(meta.TTLSeconds) * time.Second
		if ttl <= 0 {
			ttl = time.Hour
		}
		if err := m.cache.SetEx(ctx, cacheKey(stateID), string(raw), ttl); err != nil {
			return err
		}

	case types.STATE_BACKEND_DOCUMENT:
		if m.document == nil {
			return fmt.Errorf("document backend is not configured")
		}
		metaTree, err := metadataTree(meta)
		if err != nil {
			return err
		}
		err = m.document.Save(ctx, types.TrafficCopState{
			StateID:   stateID,
			StateData: stateData,
			Metadata:  metaTree,
			TenantID:  tenantID,
			ExpiresAt: expiresAt,
		})
		if err != nil {
			return err
		}

	default:
		return fmt.Errorf("unknown state backend %q", meta.Backend)
	}

	m.locators.Set(stateID, meta.Backend)
	return nil
}

// RetrieveState returns the stored state or nil when it is missing or
// expired. Unknown IDs probe all tiers before giving up, since the
// locator index is process local.
func (m *StateManager) RetrieveState(ctx context.Context, stateID string) (*types.StoredState, error) {
	if backend, ok := m.locators.Get(stateID); ok {
		return m.retrieveFromBackend(ctx, backend, stateID)
	}

	for _, backend := range []string{types.STATE_BACKEND_MEMORY, types.STATE_BACKEND_CACHE, types.STATE_BACKEND_DOCUMENT} {
		state, err := m.retrieveFromBackend(ctx, backend, stateID)
		if err != nil {
			return nil, err
		}
		if state != nil {
			m.locators.Set(stateID, backend)
			return state, nil
		}
	}
	return nil, nil
}

func (m *StateManager) retrieveFromBackend(ctx context.Context, backend, stateID string) (*types.StoredState, error) {
	switch backend {
	case types.STATE_BACKEND_MEMORY:
		entry, ok := m.memory.Get(stateID)
		if !ok {
			return nil, nil
		}
		if entry.expired(utils.TimeNowUnix()) {
			m.memory.Remove(stateID)
			m.locators.Remove(stateID)
			return nil, nil
		}
		return &entry.state, nil

	case types.STATE_BACKEND_CACHE:
		if m.cache == nil {
			return nil, nil
		}
		// redis returns an error on miss
		raw, err := m.cache.Get(ctx, cacheKey(stateID))
		if err != nil || raw == "" {
			return nil, nil
		}
		var stored types.StoredState
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			return nil, err
		}
		return &stored, nil

	case types.STATE_BACKEND_DOCUMENT:
		if m.document == nil {
			return nil, nil
		}
		row, err := m.document.Get(ctx, stateID)
		if err != nil {
			return nil, err
		}
		if row == nil {
			return nil, nil
		}
		if row.ExpiresAt > 0 && row.ExpiresAt <= utils.TimeNowUnix() {
			return nil, nil
		}
		var meta types.StateMetadata
		raw, err := json.Marshal(row.Metadata)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &meta); err != nil {
			return nil, err
		}
		return &types.StoredState{
			StateID:   row.StateID,
			StateData: row.StateData,
			Metadata:  meta,
			ExpiresAt: row.ExpiresAt,
		}, nil
	}
	return nil, nil
}

// DeleteState removes the state from whichever tier holds it.
func (m *StateManager) DeleteState(ctx context.Context, stateID string) error {
	backend, ok := m.locators.Get(stateID)
	if !ok {
		// locator may be stale after restart, clear all tiers
		for _, b := range []string{types.STATE_BACKEND_MEMORY, types.STATE_BACKEND_CACHE, types.STATE_BACKEND_DOCUMENT} {
			if err := m.deleteFromBackend(ctx, b, stateID); err != nil {
				return err
			}
		}
		return nil
	}

	if err := m.deleteFromBackend(ctx, backend, stateID); err != nil {
		return err
	}
	m.locators.Remove(stateID)
	return nil
}

func (m *StateManager) deleteFromBackend(ctx context.Context, backend, stateID string) error {
	switch backend {
	case types.STATE_BACKEND_MEMORY:
		m.memory.Remove(stateID)
	case types.STATE_BACKEND_CACHE:
		if m.cache != nil {
			return m.cache.Del(ctx, cacheKey(stateID))
		}
	case types.STATE_BACKEND_DOCUMENT:
		if m.document != nil {
			return m.document.Delete(ctx, stateID)
		}
	}
	return nil
}

// CleanupExpiredStates sweeps the memory tier and the document tier.
// The cache tier expires natively.
func (m *StateManager) CleanupExpiredStates(ctx context.Context) (int64, error) {
	now := utils.TimeNowUnix()

	var removed int64
	for item := range m.memory.IterBuffered() {
		if item.Val.expired(now) {
			m.memory.Remove(item.Key)
			m.locators.Remove(item.Key)
			removed++
		}
	}

	if m.document != nil {
		affected, err := m.document.DeleteExpired(ctx, now)
		if err != nil {
			return removed, err
		}
		removed += affected
	}
	return removed, nil
}

// Statistics reports tier occupancy for status endpoints.
func (m *StateManager) Statistics(ctx context.Context) (types.StateStatistics, error) {
	stats := types.StateStatistics{
		MemoryEntries:   int64(m.memory.Count()),
		TrackedLocators: int64(m.locators.Count()),
	}
	if m.document != nil {
		total, err := m.document.Total(ctx, types.ListTrafficCopStateOptions{})
		if err != nil {
			return stats, err
		}
		stats.DocumentEntries = total
	}
	return stats, nil
}

func metadataTree(meta types.StateMetadata) (types.JSONMap, error) {
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}
	var tree types.JSONMap
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}
