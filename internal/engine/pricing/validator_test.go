package pricing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/radieske/bet-exchange-core/internal/engine/market"
	"github.com/radieske/bet-exchange-core/internal/engine/pricing"
	"github.com/radieske/bet-exchange-core/internal/engine/snapshot"
)

// fakeProvider devolve snapshots fixos por marketID
type fakeProvider struct {
	snaps map[string]*snapshot.Market
}

func (f *fakeProvider) Snapshot(_ context.Context, marketID string) (*snapshot.Market, bool, error) {
	s, ok := f.snaps[marketID]
	return s, ok, nil
}

func testProvider() *fakeProvider {
	return &fakeProvider{snaps: map[string]*snapshot.Market{
		"mk-1": {
			MarketID:   "mk-1",
			EventID:    "ev-1",
			MarketType: market.FixedOdds,
			Status:     snapshot.StatusOpen,
			Sections: []snapshot.Section{
				{
					SelectionID: "sel-home",
					Active:      true,
					Prices: []snapshot.PriceRow{
						{Side: market.Back, Label: "back1", Value: 4.70},
						{Side: market.Back, Label: "back2", Value: 4.60},
						{Side: market.Lay, Label: "lay1", Value: 4.80},
					},
				},
				{SelectionID: "sel-injured", Active: false},
			},
		},
		"mk-suspended": {
			MarketID: "mk-suspended",
			Status:   snapshot.StatusSuspended,
			Sections: []snapshot.Section{{SelectionID: "sel-x", Active: true}},
		},
	}}
}

func TestValidate_OK(t *testing.T) {
	v := pricing.NewValidator(testProvider())
	if err := v.Validate(context.Background(), "mk-1", "sel-home", market.Back, "back1", 4.70); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_ToleranceAccepted(t *testing.T) {
	v := pricing.NewValidator(testProvider())
	if err := v.Validate(context.Background(), "mk-1", "sel-home", market.Back, "back1", 4.7001); err != nil {
		t.Fatalf("within tolerance should pass, got: %v", err)
	}
}

func TestValidate_MarketAbsent(t *testing.T) {
	v := pricing.NewValidator(testProvider())
	err := v.Validate(context.Background(), "mk-ghost", "sel-home", market.Back, "", 4.70)
	if !errors.Is(err, pricing.ErrMarketUnavailable) {
		t.Errorf("got %v, want ErrMarketUnavailable", err)
	}
}

func TestValidate_MarketSuspended(t *testing.T) {
	v := pricing.NewValidator(testProvider())
	err := v.Validate(context.Background(), "mk-suspended", "sel-x", market.Back, "", 2.0)
	if !errors.Is(err, pricing.ErrMarketUnavailable) {
		t.Errorf("got %v, want ErrMarketUnavailable", err)
	}
}

func TestValidate_SelectionUnknown(t *testing.T) {
	v := pricing.NewValidator(testProvider())
	err := v.Validate(context.Background(), "mk-1", "sel-nope", market.Back, "", 4.70)
	if !errors.Is(err, pricing.ErrSelectionUnavailable) {
		t.Errorf("got %v, want ErrSelectionUnavailable", err)
	}
}

func TestValidate_SelectionInactive(t *testing.T) {
	v := pricing.NewValidator(testProvider())
	err := v.Validate(context.Background(), "mk-1", "sel-injured", market.Back, "", 4.70)
	if !errors.Is(err, pricing.ErrSelectionUnavailable) {
		t.Errorf("got %v, want ErrSelectionUnavailable", err)
	}
}

func TestValidate_PriceMoved(t *testing.T) {
	v := pricing.NewValidator(testProvider())
	// cliente viu 4.90, mercado já está em 4.70
	err := v.Validate(context.Background(), "mk-1", "sel-home", market.Back, "back1", 4.90)
	if !errors.Is(err, pricing.ErrPriceMismatch) {
		t.Errorf("got %v, want ErrPriceMismatch", err)
	}
}

func TestValidate_LabelMismatch(t *testing.T) {
	v := pricing.NewValidator(testProvider())
	// valor existe em back2, mas o cliente aponta pra back1
	err := v.Validate(context.Background(), "mk-1", "sel-home", market.Back, "back1", 4.60)
	if !errors.Is(err, pricing.ErrPriceMismatch) {
		t.Errorf("got %v, want ErrPriceMismatch", err)
	}
}

func TestValidate_NoLabelMatchesAnyRow(t *testing.T) {
	v := pricing.NewValidator(testProvider())
	if err := v.Validate(context.Background(), "mk-1", "sel-home", market.Back, "", 4.60); err != nil {
		t.Fatalf("label-less match should pass, got: %v", err)
	}
}

func TestValidate_WrongSide(t *testing.T) {
	v := pricing.NewValidator(testProvider())
	err := v.Validate(context.Background(), "mk-1", "sel-home", market.Lay, "", 4.70)
	if !errors.Is(err, pricing.ErrPriceMismatch) {
		t.Errorf("got %v, want ErrPriceMismatch", err)
	}
}
