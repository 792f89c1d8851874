package sqlstore

import (
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"github.com/civitas-ai/civitas-ai/app/store"
	"github.com/civitas-ai/civitas-ai/pkg/register"
	"github.com/civitas-ai/civitas-ai/pkg/sqlstore"
	"github.com/civitas-ai/civitas-ai/pkg/types"
)

func init() {
	sq.StatementBuilder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

var provider = &Provider{
	stores: &Stores{},
}

func GetProvider() *Provider {
	return provider
}

type Provider struct {
	*sqlstore.SqlProvider
	stores *Stores
}

type Stores struct {
	store.PlatformLogStore
	store.PlatformMetricStore
	store.PlatformTraceStore
	store.AgentExecutionStore
	store.StructuredEmbeddingStore
	store.SemanticGraphNodeStore
	store.SemanticGraphEdgeStore
	store.CorrelationMapStore
	store.TrafficCopStateStore
	store.GovernancePolicyStore
	store.DataLineageStore
}

// RegisterKey resolves the store constructors each store file registers
// in its init().
type RegisterKey struct{}

func MustSetup(m sqlstore.ConnectConfig, s ...sqlstore.ConnectConfig) func() *Provider {
	provider.SqlProvider = sqlstore.MustSetupProvider(m, s...)

	for _, f := range register.ResolveFuncHandlers[*Provider](RegisterKey{}) {
		f(provider)
	}

	return func() *Provider {
		return provider
	}
}

// Install enables required extensions and applies the embedded schema
// migrations that have not run yet.
func (p *Provider) Install() error {
	if err := p.enableExtensions(); err != nil {
		return err
	}

	if err := p.ensureMigrationTable(); err != nil {
		return err
	}

	files, err := CreateTableFiles.ReadDir(".")
	if err != nil {
		return err
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		if executed, err := p.isFileExecuted(file.Name()); err != nil {
			return err
		} else if executed {
			continue
		}

		raw, err := CreateTableFiles.ReadFile(file.Name())
		if err != nil {
			return err
		}

		if _, err = p.SqlProvider.GetMaster().Exec(string(raw)); err != nil {
			return fmt.Errorf("failed to apply migration %s, %w", file.Name(), err)
		}

		if err = p.markFileExecuted(file.Name()); err != nil {
			return err
		}
	}
	return nil
}

func (p *Provider) enableExtensions() error {
	extensions := []string{
		"CREATE EXTENSION IF NOT EXISTS vector;",
	}

	for _, ext := range extensions {
		if _, err := p.SqlProvider.GetMaster().Exec(ext); err != nil {
			return fmt.Errorf("failed to enable extension: %w\nSQL: %s", err, ext)
		}
	}
	return nil
}

func (p *Provider) ensureMigrationTable() error {
	createTableSQL := `
CREATE TABLE IF NOT EXISTS ` + types.TABLE_PREFIX + `schema_migrations (
    filename VARCHAR(255) PRIMARY KEY,
    executed_at BIGINT NOT NULL
);`
	_, err := p.SqlProvider.GetMaster().Exec(createTableSQL)
	return err
}

func (p *Provider) isFileExecuted(filename string) (bool, error) {
	var count int
	err := p.SqlProvider.GetReplica().Get(&count,
		"SELECT COUNT(*) FROM "+types.TABLE_PREFIX+"schema_migrations WHERE filename = $1", filename)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (p *Provider) markFileExecuted(filename string) error {
	_, err := p.SqlProvider.GetMaster().Exec(
		"INSERT INTO "+types.TABLE_PREFIX+"schema_migrations (filename, executed_at) VALUES ($1, $2) ON CONFLICT (filename) DO NOTHING",
		filename, time.Now().Unix())
	return err
}

func (p *Provider) PlatformLogStore() store.PlatformLogStore {
	return p.stores.PlatformLogStore
}

func (p *Provider) PlatformMetricStore() store.PlatformMetricStore {
	return p.stores.PlatformMetricStore
}

func (p *Provider) PlatformTraceStore() store.PlatformTraceStore {
	return p.stores.PlatformTraceStore
}

func (p *Provider) AgentExecutionStore() store.AgentExecutionStore {
	return p.stores.AgentExecutionStore
}

func (p *Provider) StructuredEmbeddingStore() store.StructuredEmbeddingStore {
	return p.stores.StructuredEmbeddingStore
}

func (p *Provider) SemanticGraphNodeStore() store.SemanticGraphNodeStore {
	return p.stores.SemanticGraphNodeStore
}

func (p *Provider) SemanticGraphEdgeStore() store.SemanticGraphEdgeStore {
	return p.stores.SemanticGraphEdgeStore
}

func (p *Provider) CorrelationMapStore() store.CorrelationMapStore {
	return p.stores.CorrelationMapStore
}

func (p *Provider) TrafficCopStateStore() store.TrafficCopStateStore {
	return p.stores.TrafficCopStateStore
}

func (p *Provider) GovernancePolicyStore() store.GovernancePolicyStore {
	return p.stores.GovernancePolicyStore
}

func (p *Provider) DataLineageStore() store.DataLineageStore {
	return p.stores.DataLineageStore
}
