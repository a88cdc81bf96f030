package market_test

import (
	"errors"
	"testing"

	"github.com/radieske/bet-exchange-core/internal/engine/market"
)

func TestExposure_FixedOddsBack(t *testing.T) {
	got, err := market.Exposure(market.FixedOdds, market.Back, 10000, market.Odds(4.70))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 10000 {
		t.Errorf("back exposure: got %d, want stake 10000", got)
	}
}

func TestExposure_FixedOddsLay(t *testing.T) {
	cases := []struct {
		odds market.Odds
		want int64
	}{
		{2.0, 10000},
		{4.70, 37000},
		{1.01, 100},
		{3.333, 23330},
	}
	for _, c := range cases {
		got, err := market.Exposure(market.FixedOdds, market.Lay, 10000, c.odds)
		if err != nil {
			t.Fatalf("odds %v: unexpected error: %v", c.odds, err)
		}
		if got != c.want {
			t.Errorf("lay exposure @ %v: got %d, want %d", c.odds, got, c.want)
		}
	}
}

func TestExposure_FullStakeMarkets(t *testing.T) {
	cases := []struct {
		name string
		t    market.Type
		s    market.Side
		q    market.Quote
	}{
		{"session yes", market.Session, market.Yes, market.Rate(95)},
		{"session no", market.Session, market.No, market.Rate(95)},
		{"line over", market.Line, market.Over, market.LineValue(160.5)},
		{"line under", market.Line, market.Under, market.LineValue(160.5)},
		{"meter over", market.Meter, market.Over, market.LineValue(45)},
		{"binary", market.Binary, market.Back, market.Multiplier(2)},
		{"binary default multiplier", market.Binary, market.Back, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := market.Exposure(c.t, c.s, 5000, c.q)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != 5000 {
				t.Errorf("got %d, want full stake 5000", got)
			}
		})
	}
}

func TestExposure_InvalidInput(t *testing.T) {
	cases := []struct {
		name  string
		t     market.Type
		s     market.Side
		stake int64
		q     market.Quote
	}{
		{"unknown market type", market.Type("PARLAY"), market.Back, 100, market.Odds(2)},
		{"zero stake", market.FixedOdds, market.Back, 0, market.Odds(2)},
		{"negative stake", market.FixedOdds, market.Back, -100, market.Odds(2)},
		{"side illegal for type", market.FixedOdds, market.Yes, 100, market.Odds(2)},
		{"lay on session", market.Session, market.Lay, 100, market.Rate(95)},
		{"odds at 1", market.FixedOdds, market.Lay, 100, market.Odds(1)},
		{"missing odds", market.FixedOdds, market.Back, 100, nil},
		{"wrong quote variant", market.FixedOdds, market.Back, 100, market.Rate(95)},
		{"non-positive rate", market.Session, market.Yes, 100, market.Rate(0)},
		{"non-positive line", market.Line, market.Over, 100, market.LineValue(0)},
		{"multiplier at 1", market.Binary, market.Back, 100, market.Multiplier(1)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := market.Exposure(c.t, c.s, c.stake, c.q)
			if !errors.Is(err, market.ErrInvalidMarketInput) {
				t.Errorf("got %v, want ErrInvalidMarketInput", err)
			}
		})
	}
}

func TestQuoteFor_RoundTrip(t *testing.T) {
	q, err := market.QuoteFor(market.FixedOdds, 4.70)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := q.(market.Odds); !ok {
		t.Errorf("got %T, want market.Odds", q)
	}

	q, err = market.QuoteFor(market.Binary, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q != market.DefaultMultiplier {
		t.Errorf("binary zero price: got %v, want default multiplier", q)
	}

	if _, err := market.QuoteFor(market.Type("BOGUS"), 1); !errors.Is(err, market.ErrInvalidMarketInput) {
		t.Errorf("got %v, want ErrInvalidMarketInput", err)
	}
}
