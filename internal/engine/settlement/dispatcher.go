package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/bet-exchange-core/internal/engine/bet"
	"github.com/radieske/bet-exchange-core/internal/engine/market"
	"github.com/radieske/bet-exchange-core/internal/engine/uow"
	"github.com/radieske/bet-exchange-core/internal/engine/wallet"
	"github.com/radieske/bet-exchange-core/internal/shared/metrics"
)

// BetStore é o que o dispatcher precisa do repositório de apostas
type BetStore interface {
	OpenByMarket(ctx context.Context, marketID string) ([]*bet.Bet, error)
	MarkSettled(ctx context.Context, tx uow.DBTX, betID string, r bet.Result, at time.Time) error
}

// Ledger são as primitivas de carteira usadas na reconciliação
type Ledger interface {
	ReleaseExposure(ctx context.Context, tx uow.DBTX, userID string, amountCents int64, betID, actor string) (*wallet.Wallet, error)
	ApplyNet(ctx context.Context, tx uow.DBTX, userID string, netCents int64, betID, actor string) (*wallet.Wallet, error)
}

// Summary é o retorno agregado da liquidação de um mercado
type Summary struct {
	Settled int `json:"settled"`
	Won     int `json:"won"`
	Lost    int `json:"lost"`
	Void    int `json:"void"`
	Failed  int `json:"failed"`
}

// Dispatcher resolve todas as apostas abertas de um mercado encerrado.
// Cada aposta é sua própria sub-unidade transacional: um crash no meio deixa as
// já processadas SETTLED e as demais OPEN, e a re-chamada retoma sem duplo crédito.
type Dispatcher struct {
	log    *zap.Logger
	runner uow.Runner
	bets   BetStore
	ledger Ledger
}

func NewDispatcher(log *zap.Logger, runner uow.Runner, bets BetStore, ledger Ledger) *Dispatcher {
	return &Dispatcher{log: log, runner: runner, bets: bets, ledger: ledger}
}

// SettleMarket carrega as apostas não-terminais do mercado e reconcilia uma a uma.
// Mercado sem apostas abertas retorna sucesso trivial (idempotência em nível de mercado).
// Falha em uma aposta não interrompe as demais, exceto inconsistência de ledger,
// que aborta o mercado inteiro para revisão manual.
func (d *Dispatcher) SettleMarket(ctx context.Context, out Outcome) (Summary, error) {
	var sum Summary

	if err := out.Validate(); err != nil {
		return sum, err
	}

	open, err := d.bets.OpenByMarket(ctx, out.MarketID)
	if err != nil {
		return sum, fmt.Errorf("load open bets: %w", err)
	}
	if len(open) == 0 {
		d.log.Info("market already settled", zap.String("marketId", out.MarketID))
		return sum, nil
	}

	actor := "settlement:" + out.MarketID
	for _, b := range open {
		// o outcome declara um tipo; aposta persistida com tipo divergente indica
		// dado corrompido ou pedido errado, nunca entra no resolve (que assume a
		// variante de Quote do tipo declarado)
		if b.MarketType != out.MarketType {
			d.log.Error("bet market type mismatch",
				zap.String("betId", b.ID),
				zap.String("betType", string(b.MarketType)),
				zap.String("outcomeType", string(out.MarketType)))
			sum.Failed++
			continue
		}

		res, net := resolve(b, out)

		err := d.runner.Do(ctx, func(ctx context.Context, tx uow.DBTX) error {
			if _, err := d.ledger.ReleaseExposure(ctx, tx, b.UserID, b.ExposureCents, b.ID, actor); err != nil {
				return err
			}
			if _, err := d.ledger.ApplyNet(ctx, tx, b.UserID, net, b.ID, actor); err != nil {
				return err
			}
			return d.bets.MarkSettled(ctx, tx, b.ID, res, time.Now().UTC())
		})
		if err != nil {
			if errors.Is(err, wallet.ErrLedgerInconsistency) {
				d.log.Error("ledger inconsistency; halting market settlement",
					zap.String("marketId", out.MarketID), zap.String("betId", b.ID), zap.Error(err))
				return sum, err
			}
			d.log.Error("settle bet", zap.String("betId", b.ID), zap.Error(err))
			sum.Failed++
			continue
		}

		sum.Settled++
		switch res {
		case bet.ResultWon:
			sum.Won++
		case bet.ResultLost:
			sum.Lost++
		default:
			sum.Void++
		}
		metrics.BetsSettled.WithLabelValues(string(res)).Inc()
	}

	metrics.MarketsSettled.Inc()
	d.log.Info("market settled",
		zap.String("marketId", out.MarketID),
		zap.Int("settled", sum.Settled), zap.Int("won", sum.Won),
		zap.Int("lost", sum.Lost), zap.Int("void", sum.Void), zap.Int("failed", sum.Failed))
	return sum, nil
}

// resolve é pura: mapeia (aposta, outcome) para (desfecho, resultado líquido em centavos).
// O líquido é relativo à exposição já bloqueada: a liberação da exposição acontece
// sempre, e o líquido é aplicado por cima (perda == -exposição zera a devolução).
func resolve(b *bet.Bet, out Outcome) (bet.Result, int64) {
	switch b.MarketType {
	case market.FixedOdds:
		won := b.SelectionID == out.WinnerSelectionID
		if b.Side == market.Back {
			if won {
				o := float64(b.Quote.(market.Odds))
				return bet.ResultWon, market.RoundCents(float64(b.StakeCents) * (o - 1))
			}
			return bet.ResultLost, -b.ExposureCents
		}
		// lay ganha se a seleção perde; lucro é o stake do backer
		if !won {
			return bet.ResultWon, b.StakeCents
		}
		return bet.ResultLost, -b.ExposureCents

	case market.Session:
		r, ok := out.SessionResults[b.SelectionID]
		if !ok {
			// mapa de resultados sem a seleção: anula, exposição devolvida integral
			return bet.ResultVoid, 0
		}
		if b.Side == market.Yes {
			if r == SessionYes {
				rate := float64(b.Quote.(market.Rate))
				return bet.ResultWon, market.RoundCents(float64(b.StakeCents) * rate / 100)
			}
			return bet.ResultLost, -b.ExposureCents
		}
		if r == SessionNo {
			// lado NO vencedor recupera o stake, sem lucro
			return bet.ResultWon, 0
		}
		return bet.ResultLost, -b.ExposureCents

	case market.Line, market.Meter:
		v := *out.FinalValue
		l := float64(b.Quote.(market.LineValue))
		var won bool
		if b.Side == market.Over {
			// LINE exige estritamente acima; METER fecha no empate a favor do over
			if b.MarketType == market.Meter {
				won = v >= l
			} else {
				won = v > l
			}
		} else {
			won = v < l
		}
		if won {
			return bet.ResultWon, b.StakeCents
		}
		return bet.ResultLost, -b.ExposureCents

	default: // Binary
		if b.SelectionID == out.WinnerSelectionID {
			m := float64(b.Quote.(market.Multiplier))
			return bet.ResultWon, market.RoundCents(float64(b.StakeCents) * (m - 1))
		}
		return bet.ResultLost, -b.ExposureCents
	}
}
