package placement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/bet-exchange-core/internal/engine/bet"
	"github.com/radieske/bet-exchange-core/internal/engine/market"
	"github.com/radieske/bet-exchange-core/internal/engine/snapshot"
	"github.com/radieske/bet-exchange-core/internal/engine/uow"
	"github.com/radieske/bet-exchange-core/internal/engine/wallet"
	"github.com/radieske/bet-exchange-core/internal/shared/metrics"
	"github.com/radieske/bet-exchange-core/pkg/contracts/events"
)

// PriceChecker é a validação de integridade de preço contra o snapshot
type PriceChecker interface {
	Tradable(ctx context.Context, marketID, selectionID string) (*snapshot.Section, error)
	Validate(ctx context.Context, marketID, selectionID string, side market.Side, label string, quoted float64) error
}

// Ledger são as primitivas de carteira usadas pela colocação
type Ledger interface {
	LockExposure(ctx context.Context, tx uow.DBTX, userID string, amountCents int64, betID, actor string) (*wallet.Wallet, error)
	ReleaseExposure(ctx context.Context, tx uow.DBTX, userID string, amountCents int64, betID, actor string) (*wallet.Wallet, error)
}

// BetStore é o que a colocação precisa do repositório de apostas
type BetStore interface {
	Insert(ctx context.Context, tx uow.DBTX, b *bet.Bet) error
	Get(ctx context.Context, id string) (*bet.Bet, error)
	Cancel(ctx context.Context, tx uow.DBTX, betID string) error
}

// Publisher emite o evento bet_placed após o commit
type Publisher interface {
	PublishBetPlaced(ctx context.Context, e events.BetPlaced) error
}

// Request é a colocação já convertida para o domínio (Quote como união etiquetada)
type Request struct {
	UserID        string
	Sport         string
	EventID       string
	MarketID      string
	MarketType    market.Type
	SelectionID   string
	SelectionName string
	Side          market.Side
	PriceLabel    string
	Quote         market.Quote
	StakeCents    int64
}

// Service orquestra o fluxo de colocação: valida preço, calcula exposição e,
// numa única fronteira transacional, bloqueia fundos e persiste a aposta OPEN.
// Nenhuma aposta parcial sobrevive a uma falha.
type Service struct {
	log     *zap.Logger
	runner  uow.Runner
	pricing PriceChecker
	ledger  Ledger
	bets    BetStore
	publ    Publisher
}

func NewService(log *zap.Logger, runner uow.Runner, pricing PriceChecker, ledger Ledger, bets BetStore, publ Publisher) *Service {
	return &Service{log: log, runner: runner, pricing: pricing, ledger: ledger, bets: bets, publ: publ}
}

// Place executa o fluxo completo e retorna a aposta criada
func (s *Service) Place(ctx context.Context, req Request) (*bet.Bet, error) {
	exposure, err := market.Exposure(req.MarketType, req.Side, req.StakeCents, req.Quote)
	if err != nil {
		return nil, err
	}

	// mercado BINARY não carrega preço do feed; valida só negociabilidade
	if req.MarketType == market.Binary {
		if _, err := s.pricing.Tradable(ctx, req.MarketID, req.SelectionID); err != nil {
			return nil, err
		}
	} else {
		if err := s.pricing.Validate(ctx, req.MarketID, req.SelectionID, req.Side, req.PriceLabel, req.Quote.Value()); err != nil {
			return nil, err
		}
	}

	b := &bet.Bet{
		ID:            uuid.NewString(),
		UserID:        req.UserID,
		Sport:         req.Sport,
		EventID:       req.EventID,
		MarketID:      req.MarketID,
		MarketType:    req.MarketType,
		SelectionID:   req.SelectionID,
		SelectionName: req.SelectionName,
		Side:          req.Side,
		Quote:         req.Quote,
		StakeCents:    req.StakeCents,
		ExposureCents: exposure,
		Status:        bet.StatusOpen,
		CreatedAt:     time.Now().UTC(),
	}

	err = s.runner.Do(ctx, func(ctx context.Context, tx uow.DBTX) error {
		if _, err := s.ledger.LockExposure(ctx, tx, b.UserID, b.ExposureCents, b.ID, "placement"); err != nil {
			return err
		}
		return s.bets.Insert(ctx, tx, b)
	})
	if err != nil {
		return nil, err
	}

	metrics.BetsPlaced.Inc()

	// evento é best-effort: a aposta já está durável
	if perr := s.publ.PublishBetPlaced(ctx, events.BetPlaced{
		BetID:         b.ID,
		UserID:        b.UserID,
		EventID:       b.EventID,
		MarketID:      b.MarketID,
		MarketType:    string(b.MarketType),
		SelectionID:   b.SelectionID,
		Side:          string(b.Side),
		Price:         b.Quote.Value(),
		StakeCents:    b.StakeCents,
		ExposureCents: b.ExposureCents,
	}); perr != nil {
		s.log.Warn("publish bet_placed", zap.String("betId", b.ID), zap.Error(perr))
	}

	return b, nil
}

// Cancel desfaz uma aposta ainda OPEN: libera a exposição e flipa para CANCELLED
// na mesma fronteira transacional
func (s *Service) Cancel(ctx context.Context, betID, userID string) (*bet.Bet, error) {
	b, err := s.bets.Get(ctx, betID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, fmt.Errorf("%w: %s", bet.ErrNotFound, betID)
	}
	if !bet.CanTransition(b.Status, bet.StatusCancelled) {
		return nil, fmt.Errorf("%w: bet %s is %s", bet.ErrInvalidTransition, betID, b.Status)
	}

	err = s.runner.Do(ctx, func(ctx context.Context, tx uow.DBTX) error {
		if err := s.bets.Cancel(ctx, tx, betID); err != nil {
			return err
		}
		_, err := s.ledger.ReleaseExposure(ctx, tx, b.UserID, b.ExposureCents, b.ID, "cancel")
		return err
	})
	if err != nil {
		return nil, err
	}

	b.Status = bet.StatusCancelled
	return b, nil
}
