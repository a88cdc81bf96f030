package bet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/radieske/bet-exchange-core/internal/engine/market"
	"github.com/radieske/bet-exchange-core/internal/engine/uow"
)

var ErrNotFound = errors.New("bet not found")

// Postgres persiste apostas. O preço é gravado como valor numérico e a variante
// de Quote é reconstruída pelo market_type na leitura.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// Insert grava a aposta recém-criada dentro da fronteira transacional da colocação
func (p *Postgres) Insert(ctx context.Context, tx uow.DBTX, b *Bet) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO bets (id, user_id, sport, event_id, market_id, market_type, selection_id, selection_name,
		                  side, price, stake_cents, exposure_cents, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		b.ID, b.UserID, b.Sport, b.EventID, b.MarketID, b.MarketType, b.SelectionID, b.SelectionName,
		b.Side, b.Quote.Value(), b.StakeCents, b.ExposureCents, b.Status, b.CreatedAt)
	return err
}

// Get carrega uma aposta pelo id
func (p *Postgres) Get(ctx context.Context, id string) (*Bet, error) {
	b, err := scanBet(p.db.QueryRowContext(ctx, betSelect+` WHERE id=$1`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return b, err
}

// OpenByMarket lista as apostas ainda não-terminais de um mercado.
// Lista vazia significa mercado já liquidado: a reliquidação é trivialmente idempotente.
func (p *Postgres) OpenByMarket(ctx context.Context, marketID string) ([]*Bet, error) {
	rows, err := p.db.QueryContext(ctx,
		betSelect+` WHERE market_id=$1 AND status NOT IN ($2,$3) ORDER BY created_at`,
		marketID, StatusSettled, StatusCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBets(rows)
}

// ByUser lista as apostas de um usuário, mais recentes primeiro
func (p *Postgres) ByUser(ctx context.Context, userID string, limit int) ([]*Bet, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := p.db.QueryContext(ctx,
		betSelect+` WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBets(rows)
}

// MarkSettled grava o desfecho. O guard de status garante liquidação única:
// aposta já terminal não é tocada e a chamada vira no-op.
func (p *Postgres) MarkSettled(ctx context.Context, tx uow.DBTX, betID string, r Result, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE bets SET status=$1, settlement_result=$2, settled_at=$3
		WHERE id=$4 AND status NOT IN ($5,$6)`,
		StatusSettled, r, at, betID, StatusSettled, StatusCancelled)
	return err
}

// Cancel flipa a aposta para CANCELLED; só é legal enquanto OPEN
func (p *Postgres) Cancel(ctx context.Context, tx uow.DBTX, betID string) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE bets SET status=$1 WHERE id=$2 AND status=$3`,
		StatusCancelled, betID, StatusOpen)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: bet %s not open", ErrInvalidTransition, betID)
	}
	return nil
}

const betSelect = `
	SELECT id, user_id, sport, event_id, market_id, market_type, selection_id, selection_name,
	       side, price, stake_cents, exposure_cents, status, COALESCE(settlement_result,''), created_at, settled_at
	FROM bets`

type rowScanner interface{ Scan(dest ...any) error }

func scanBet(row rowScanner) (*Bet, error) {
	var b Bet
	var price float64
	if err := row.Scan(&b.ID, &b.UserID, &b.Sport, &b.EventID, &b.MarketID, &b.MarketType,
		&b.SelectionID, &b.SelectionName, &b.Side, &price, &b.StakeCents, &b.ExposureCents,
		&b.Status, &b.Result, &b.CreatedAt, &b.SettledAt); err != nil {
		return nil, err
	}
	q, err := market.QuoteFor(b.MarketType, price)
	if err != nil {
		return nil, err
	}
	b.Quote = q
	return &b, nil
}

func scanBets(rows *sql.Rows) ([]*Bet, error) {
	var out []*Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
