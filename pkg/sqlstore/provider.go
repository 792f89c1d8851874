// Package sqlstore wires master/replica postgres connections and
// carries transactions through context.
package sqlstore

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/civitas-ai/civitas-ai/pkg/utils"
)

type SqlCommons interface {
	GetTable(...interface{}) string
}

type ConnectConfig interface {
	FormatDSN() string
}

type SqlProvider struct {
	master   *sqlx.DB
	replicas []*sqlx.DB
	dbname   string
}

// TransactionKey marks an in-flight transaction in a context.
type TransactionKey struct{}

func (s *SqlProvider) GetTxFromCtx(ctx context.Context) *sqlx.Tx {
	if driver, ok := ctx.Value(TransactionKey{}).(*sqlx.Tx); ok {
		return driver
	}
	return nil
}

func (s *SqlProvider) GetMaster() *sqlx.DB {
	return s.master
}

func (s *SqlProvider) GetReplica() *sqlx.DB {
	return s.replicas[utils.Random(0, len(s.replicas)-1)]
}

// Transaction runs next inside a transaction. Nested calls reuse the
// transaction already bound to the context.
func (s *SqlProvider) Transaction(ctx context.Context, next func(ctx context.Context) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if _, ok := ctx.Value(TransactionKey{}).(*sqlx.Tx); ok {
		return next(ctx)
	}

	tx, err := s.GetMaster().BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil || err != nil {
			slog.Error("transaction rolled back", slog.Any("recover", r), slog.Any("error", err))
			_ = tx.Rollback()
		}
	}()

	if err = next(context.WithValue(ctx, TransactionKey{}, tx)); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SqlProvider) initConnection(conf ConnectConfig) *sqlx.DB {
	return sqlx.MustOpen("postgres", conf.FormatDSN())
}

// MustSetupProvider connects the master and any replicas. With no
// replica configured the master doubles as the read endpoint.
func MustSetupProvider(m ConnectConfig, replicas ...ConnectConfig) *SqlProvider {
	provider := &SqlProvider{}
	provider.master = provider.initConnection(m)

	if len(replicas) == 0 {
		replicas = append(replicas, m)
	}
	for _, v := range replicas {
		provider.replicas = append(provider.replicas, provider.initConnection(v))
	}

	return provider
}

func (s *SqlProvider) GetTx() (*sqlx.Tx, error) {
	return s.GetMaster().Beginx()
}

func (s *SqlProvider) GetDBName() (string, error) {
	if s.dbname == "" {
		var dbName string
		if err := s.GetMaster().QueryRow("SELECT current_database()").Scan(&dbName); err != nil {
			return "", err
		}
		s.dbname = dbName
	}
	return s.dbname, nil
}
