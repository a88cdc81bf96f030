package uow

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// DBTX é o subconjunto de database/sql que os repositórios usam, satisfeito
// tanto por *sql.DB quanto por *sql.Tx
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Runner executa fn dentro de uma fronteira transacional: toda mutação de ledger
// e de status de aposta feita via tx comita ou desfaz junto
type Runner interface {
	Do(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}

// New sonda a capacidade transacional do storage na subida do serviço.
// Se BeginTx falhar (ex: deployment single-node sem suporte), cai para o modo
// best-effort: mesma lógica sem atomicidade, com warning emitido uma única vez.
func New(db *sql.DB, log *zap.Logger) Runner {
	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		return NewBestEffort(db, log)
	}
	_ = tx.Rollback()
	return NewTransactional(db)
}

// NewTransactional força o modo transacional
func NewTransactional(db *sql.DB) Runner { return &txRunner{db: db} }

// NewBestEffort força o modo sem atomicidade
func NewBestEffort(db *sql.DB, log *zap.Logger) Runner { return &bestEffortRunner{db: db, log: log} }

type txRunner struct{ db *sql.DB }

func (r *txRunner) Do(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// bestEffortRunner executa sem transação. Modo aceito conscientemente para
// deployments fora de produção; em caso de erro o estado fica como chegou.
type bestEffortRunner struct {
	db   *sql.DB
	log  *zap.Logger
	warn sync.Once
}

func (r *bestEffortRunner) Do(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	r.warn.Do(func() {
		r.log.Warn("storage without multi-record transactions; running in best-effort mode (reduced safety)")
	})
	// db nil vira interface nil, não um ponteiro nil embrulhado: quem recebe
	// pode testar tx == nil
	var tx DBTX
	if r.db != nil {
		tx = r.db
	}
	return fn(ctx, tx)
}
