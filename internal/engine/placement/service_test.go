package placement_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/radieske/bet-exchange-core/internal/engine/bet"
	"github.com/radieske/bet-exchange-core/internal/engine/market"
	"github.com/radieske/bet-exchange-core/internal/engine/placement"
	"github.com/radieske/bet-exchange-core/internal/engine/pricing"
	"github.com/radieske/bet-exchange-core/internal/engine/snapshot"
	"github.com/radieske/bet-exchange-core/internal/engine/uow"
	"github.com/radieske/bet-exchange-core/internal/engine/wallet"
	"github.com/radieske/bet-exchange-core/pkg/contracts/events"
)

// fakeLedger mantém um único usuário em memória com a mesma regra de fundos do Postgres
type fakeLedger struct {
	available int64
	locked    int64
}

func (f *fakeLedger) LockExposure(_ context.Context, _ uow.DBTX, _ string, amount int64, betID, _ string) (*wallet.Wallet, error) {
	if f.available < amount {
		return nil, fmt.Errorf("%w: available=%d need=%d bet=%s", wallet.ErrInsufficientFunds, f.available, amount, betID)
	}
	f.available -= amount
	f.locked += amount
	return &wallet.Wallet{AvailableCents: f.available, LockedCents: f.locked}, nil
}

func (f *fakeLedger) ReleaseExposure(_ context.Context, _ uow.DBTX, _ string, amount int64, _, _ string) (*wallet.Wallet, error) {
	if f.locked < amount {
		return nil, wallet.ErrLedgerInconsistency
	}
	f.locked -= amount
	f.available += amount
	return &wallet.Wallet{AvailableCents: f.available, LockedCents: f.locked}, nil
}

// fakeBets registra inserts e cancelamentos
type fakeBets struct {
	byID map[string]*bet.Bet
}

func newFakeBets() *fakeBets { return &fakeBets{byID: map[string]*bet.Bet{}} }

func (f *fakeBets) Insert(_ context.Context, _ uow.DBTX, b *bet.Bet) error {
	f.byID[b.ID] = b
	return nil
}

func (f *fakeBets) Get(_ context.Context, id string) (*bet.Bet, error) {
	b, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", bet.ErrNotFound, id)
	}
	return b, nil
}

func (f *fakeBets) Cancel(_ context.Context, _ uow.DBTX, betID string) error {
	b, ok := f.byID[betID]
	if !ok || b.Status != bet.StatusOpen {
		return bet.ErrInvalidTransition
	}
	b.Status = bet.StatusCancelled
	return nil
}

type noopPublisher struct{}

func (noopPublisher) PublishBetPlaced(context.Context, events.BetPlaced) error { return nil }

// provider com um mercado FIXED_ODDS aberto e um BINARY sem linhas de preço
type stubProvider struct{}

func (stubProvider) Snapshot(_ context.Context, marketID string) (*snapshot.Market, bool, error) {
	switch marketID {
	case "mk-fo":
		return &snapshot.Market{
			MarketID:   "mk-fo",
			MarketType: market.FixedOdds,
			Status:     snapshot.StatusOpen,
			Sections: []snapshot.Section{{
				SelectionID: "sel-a",
				Active:      true,
				Prices: []snapshot.PriceRow{
					{Side: market.Back, Label: "back1", Value: 4.70},
					{Side: market.Lay, Label: "lay1", Value: 4.80},
				},
			}},
		}, true, nil
	case "mk-bin":
		return &snapshot.Market{
			MarketID:   "mk-bin",
			MarketType: market.Binary,
			Status:     snapshot.StatusOpen,
			Sections:   []snapshot.Section{{SelectionID: "sel-a", Active: true}},
		}, true, nil
	}
	return nil, false, nil
}

func newService(ledger *fakeLedger, bets *fakeBets) *placement.Service {
	runner := uow.NewBestEffort(nil, zap.NewNop())
	return placement.NewService(zap.NewNop(), runner, pricing.NewValidator(stubProvider{}), ledger, bets, noopPublisher{})
}

func backRequest(stake int64) placement.Request {
	return placement.Request{
		UserID:      "u1",
		EventID:     "ev-1",
		MarketID:    "mk-fo",
		MarketType:  market.FixedOdds,
		SelectionID: "sel-a",
		Side:        market.Back,
		PriceLabel:  "back1",
		Quote:       market.Odds(4.70),
		StakeCents:  stake,
	}
}

func TestPlace_ExactBalanceBoundary(t *testing.T) {
	l := &fakeLedger{available: 10000}
	bets := newFakeBets()

	// exposição back == stake: deve passar consumindo o saldo inteiro
	b, err := newService(l, bets).Place(context.Background(), backRequest(10000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Status != bet.StatusOpen || b.ExposureCents != 10000 {
		t.Errorf("bet: status=%s exposure=%d", b.Status, b.ExposureCents)
	}
	if l.available != 0 || l.locked != 10000 {
		t.Errorf("wallet: available=%d locked=%d", l.available, l.locked)
	}
}

func TestPlace_OneCentOver(t *testing.T) {
	l := &fakeLedger{available: 10000}
	bets := newFakeBets()

	_, err := newService(l, bets).Place(context.Background(), backRequest(10001))
	if !errors.Is(err, wallet.ErrInsufficientFunds) {
		t.Fatalf("got %v, want ErrInsufficientFunds", err)
	}
	if l.available != 10000 || l.locked != 0 {
		t.Errorf("rejection must not touch the wallet: available=%d locked=%d", l.available, l.locked)
	}
	if len(bets.byID) != 0 {
		t.Errorf("rejection must not persist a bet, got %d", len(bets.byID))
	}
}

func TestPlace_PriceMismatchBlocksBeforeLock(t *testing.T) {
	l := &fakeLedger{available: 100000}
	bets := newFakeBets()

	req := backRequest(10000)
	req.Quote = market.Odds(4.90) // cliente viu preço que já mudou
	_, err := newService(l, bets).Place(context.Background(), req)
	if !errors.Is(err, pricing.ErrPriceMismatch) {
		t.Fatalf("got %v, want ErrPriceMismatch", err)
	}
	if l.locked != 0 || len(bets.byID) != 0 {
		t.Errorf("price rejection must leave no trace: locked=%d bets=%d", l.locked, len(bets.byID))
	}
}

func TestPlace_BinarySkipsPriceCheck(t *testing.T) {
	l := &fakeLedger{available: 10000}
	bets := newFakeBets()

	b, err := newService(l, bets).Place(context.Background(), placement.Request{
		UserID:      "u1",
		MarketID:    "mk-bin",
		MarketType:  market.Binary,
		SelectionID: "sel-a",
		Side:        market.Back,
		Quote:       market.DefaultMultiplier,
		StakeCents:  5000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.ExposureCents != 5000 {
		t.Errorf("binary exposure: got %d, want stake", b.ExposureCents)
	}
}

func TestCancel_RestoresExactSplit(t *testing.T) {
	l := &fakeLedger{available: 50000}
	bets := newFakeBets()
	svc := newService(l, bets)

	// lay @ 4.80 gera exposição com arredondamento; ida e volta repetida
	// não pode derivar um centavo sequer
	for i := 0; i < 5; i++ {
		req := backRequest(10000)
		req.Side = market.Lay
		req.PriceLabel = "lay1"
		req.Quote = market.Odds(4.80)

		b, err := svc.Place(context.Background(), req)
		if err != nil {
			t.Fatalf("iteration %d place: %v", i, err)
		}
		if _, err := svc.Cancel(context.Background(), b.ID, "u1"); err != nil {
			t.Fatalf("iteration %d cancel: %v", i, err)
		}
	}
	if l.available != 50000 || l.locked != 0 {
		t.Errorf("drift after place/cancel cycles: available=%d locked=%d", l.available, l.locked)
	}
}

func TestCancel_WrongOwner(t *testing.T) {
	l := &fakeLedger{available: 50000}
	bets := newFakeBets()
	svc := newService(l, bets)

	b, err := svc.Place(context.Background(), backRequest(10000))
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if _, err := svc.Cancel(context.Background(), b.ID, "u2"); !errors.Is(err, bet.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound for foreign bet", err)
	}
}

func TestCancel_NonOpenRejected(t *testing.T) {
	l := &fakeLedger{available: 50000}
	bets := newFakeBets()
	svc := newService(l, bets)

	b, err := svc.Place(context.Background(), backRequest(10000))
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	bets.byID[b.ID].Status = bet.StatusMatched

	if _, err := svc.Cancel(context.Background(), b.ID, "u1"); !errors.Is(err, bet.ErrInvalidTransition) {
		t.Errorf("got %v, want ErrInvalidTransition", err)
	}
	if l.locked != b.ExposureCents {
		t.Errorf("failed cancel must keep exposure locked: locked=%d", l.locked)
	}
}
