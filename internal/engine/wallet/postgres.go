package wallet

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/bet-exchange-core/internal/engine/uow"
)

// Postgres implementa as primitivas de ledger sobre Postgres.
// Toda primitiva que move fundos recebe o tx da fronteira transacional e
// serializa escritas por carteira com SELECT ... FOR UPDATE.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// GetOrCreate retorna a carteira do usuário, criando-a zerada se não existir
func (p *Postgres) GetOrCreate(ctx context.Context, tx uow.DBTX, userID, currency string) (*Wallet, error) {
	w, err := scanWallet(tx.QueryRowContext(ctx, walletSelect+` WHERE user_id=$1`, userID))
	if err == nil {
		return w, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	w = &Wallet{
		ID:       uuid.NewString(),
		UserID:   userID,
		Currency: currency,
		Active:   true,
		Version:  1,
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO wallets (id, user_id, currency, available_cents, locked_cents, active, ops_locked, version)
		VALUES ($1,$2,$3,0,0,TRUE,FALSE,1)`,
		w.ID, w.UserID, w.Currency); err != nil {
		return nil, fmt.Errorf("create wallet: %w", err)
	}
	return w, nil
}

// forUpdate carrega a carteira com lock pessimista na linha
func (p *Postgres) forUpdate(ctx context.Context, tx uow.DBTX, userID string) (*Wallet, error) {
	w, err := scanWallet(tx.QueryRowContext(ctx, walletSelect+` WHERE user_id=$1 FOR UPDATE`, userID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	return w, err
}

// LockExposure move fundos do pool disponível para o bloqueado e registra o
// lançamento exposure_lock na mesma fronteira
func (p *Postgres) LockExposure(ctx context.Context, tx uow.DBTX, userID string, amountCents int64, betID, actor string) (*Wallet, error) {
	w, err := p.forUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if !w.available() {
		return nil, fmt.Errorf("%w: wallet %s", ErrWalletUnavailable, w.ID)
	}
	if w.AvailableCents < amountCents {
		return nil, fmt.Errorf("%w: available=%d need=%d", ErrInsufficientFunds, w.AvailableCents, amountCents)
	}

	before := w.AvailableCents
	w.AvailableCents -= amountCents
	w.LockedCents += amountCents
	if err := p.update(ctx, tx, w); err != nil {
		return nil, err
	}
	if err := p.insertEntry(ctx, tx, w.ID, Debit, amountCents, before, w.AvailableCents,
		TagExposureLock, "exposure lock bet:"+betID, actor); err != nil {
		return nil, err
	}
	return w, nil
}

// ReleaseExposure devolve exposição do pool bloqueado para o disponível.
// Saldo bloqueado insuficiente é fatal: indica bug anterior, nunca é absorvido.
func (p *Postgres) ReleaseExposure(ctx context.Context, tx uow.DBTX, userID string, amountCents int64, betID, actor string) (*Wallet, error) {
	w, err := p.forUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if w.LockedCents < amountCents {
		return nil, fmt.Errorf("%w: locked=%d release=%d bet=%s", ErrLedgerInconsistency, w.LockedCents, amountCents, betID)
	}

	before := w.AvailableCents
	w.LockedCents -= amountCents
	w.AvailableCents += amountCents
	if err := p.update(ctx, tx, w); err != nil {
		return nil, err
	}
	if err := p.insertEntry(ctx, tx, w.ID, Credit, amountCents, before, w.AvailableCents,
		TagExposureUnlock, "exposure unlock bet:"+betID, actor); err != nil {
		return nil, err
	}
	return w, nil
}

// ApplyNet aplica o resultado líquido da liquidação sobre o pool disponível.
// net > 0 credita (settlement_credit), net < 0 debita (settlement_debit),
// net == 0 não gera lançamento (caso do stake devolvido ou void).
func (p *Postgres) ApplyNet(ctx context.Context, tx uow.DBTX, userID string, netCents int64, betID, actor string) (*Wallet, error) {
	if netCents == 0 {
		return p.forUpdate(ctx, tx, userID)
	}

	w, err := p.forUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	before := w.AvailableCents
	if netCents > 0 {
		w.AvailableCents += netCents
		if err := p.update(ctx, tx, w); err != nil {
			return nil, err
		}
		if err := p.insertEntry(ctx, tx, w.ID, Credit, netCents, before, w.AvailableCents,
			TagSettlementCredit, "settlement credit bet:"+betID, actor); err != nil {
			return nil, err
		}
		return w, nil
	}

	loss := -netCents
	if w.AvailableCents < loss {
		// a exposição liberada no mesmo ciclo deveria cobrir a perda
		return nil, fmt.Errorf("%w: available=%d debit=%d bet=%s", ErrLedgerInconsistency, w.AvailableCents, loss, betID)
	}
	w.AvailableCents -= loss
	if err := p.update(ctx, tx, w); err != nil {
		return nil, err
	}
	if err := p.insertEntry(ctx, tx, w.ID, Debit, loss, before, w.AvailableCents,
		TagSettlementDebit, "settlement debit bet:"+betID, actor); err != nil {
		return nil, err
	}
	return w, nil
}

// Deposit credita o pool disponível
func (p *Postgres) Deposit(ctx context.Context, tx uow.DBTX, userID string, amountCents int64, ref, actor string) (*Wallet, error) {
	w, err := p.forUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if !w.available() {
		return nil, fmt.Errorf("%w: wallet %s", ErrWalletUnavailable, w.ID)
	}

	before := w.AvailableCents
	w.AvailableCents += amountCents
	if err := p.update(ctx, tx, w); err != nil {
		return nil, err
	}
	if err := p.insertEntry(ctx, tx, w.ID, Credit, amountCents, before, w.AvailableCents,
		TagDeposit, "deposit:"+ref, actor); err != nil {
		return nil, err
	}
	return w, nil
}

// Withdraw debita o pool disponível
func (p *Postgres) Withdraw(ctx context.Context, tx uow.DBTX, userID string, amountCents int64, ref, actor string) (*Wallet, error) {
	w, err := p.forUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if !w.available() {
		return nil, fmt.Errorf("%w: wallet %s", ErrWalletUnavailable, w.ID)
	}
	if w.AvailableCents < amountCents {
		return nil, fmt.Errorf("%w: available=%d withdraw=%d", ErrInsufficientFunds, w.AvailableCents, amountCents)
	}

	before := w.AvailableCents
	w.AvailableCents -= amountCents
	if err := p.update(ctx, tx, w); err != nil {
		return nil, err
	}
	if err := p.insertEntry(ctx, tx, w.ID, Debit, amountCents, before, w.AvailableCents,
		TagWithdrawal, "withdrawal:"+ref, actor); err != nil {
		return nil, err
	}
	return w, nil
}

// Get é o read model da carteira, fora de transação
func (p *Postgres) Get(ctx context.Context, userID string) (*Wallet, error) {
	w, err := scanWallet(p.db.QueryRowContext(ctx, walletSelect+` WHERE user_id=$1`, userID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	return w, err
}

// SetFlags ajusta as flags administrativas da carteira
func (p *Postgres) SetFlags(ctx context.Context, userID string, active, opsLocked bool) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE wallets SET active=$1, ops_locked=$2, version=version+1, updated_at=NOW()
		WHERE user_id=$3`, active, opsLocked, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	return nil
}

// Entries consulta o extrato append-only por carteira, faixa de tempo e tag
func (p *Postgres) Entries(ctx context.Context, walletID string, f EntryFilter) ([]Entry, error) {
	q := `
		SELECT id, wallet_id, direction, amount_cents, balance_before_cents, balance_after_cents,
		       tag, description, actor, created_at
		FROM wallet_ledger
		WHERE wallet_id=$1`
	args := []any{walletID}

	if f.From != nil {
		args = append(args, *f.From)
		q += ` AND created_at >= $` + strconv.Itoa(len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		q += ` AND created_at < $` + strconv.Itoa(len(args))
	}
	if f.Tag != "" {
		args = append(args, f.Tag)
		q += ` AND tag = $` + strconv.Itoa(len(args))
	}
	q += ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += ` LIMIT $` + strconv.Itoa(len(args))
	}

	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.WalletID, &e.Direction, &e.AmountCents,
			&e.BalanceBeforeCents, &e.BalanceAfterCents, &e.Tag, &e.Description, &e.Actor, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

const walletSelect = `
	SELECT id, user_id, currency, available_cents, locked_cents, active, ops_locked, version, created_at, updated_at
	FROM wallets`

func scanWallet(row *sql.Row) (*Wallet, error) {
	var w Wallet
	if err := row.Scan(&w.ID, &w.UserID, &w.Currency, &w.AvailableCents, &w.LockedCents,
		&w.Active, &w.OpsLocked, &w.Version, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}

func (p *Postgres) update(ctx context.Context, tx uow.DBTX, w *Wallet) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE wallets SET available_cents=$1, locked_cents=$2, version=version+1, updated_at=NOW()
		WHERE id=$3`, w.AvailableCents, w.LockedCents, w.ID)
	return err
}

func (p *Postgres) insertEntry(ctx context.Context, tx uow.DBTX, walletID string, dir Direction, amount, before, after int64, tag EntryTag, desc, actor string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO wallet_ledger (id, wallet_id, direction, amount_cents, balance_before_cents, balance_after_cents, tag, description, actor, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		uuid.NewString(), walletID, dir, amount, before, after, tag, desc, actor, time.Now().UTC())
	return err
}
