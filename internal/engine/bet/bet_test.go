package bet_test

import (
	"testing"

	"github.com/radieske/bet-exchange-core/internal/engine/bet"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to bet.Status
		want     bool
	}{
		{bet.StatusOpen, bet.StatusSettled, true}, // variante sem matching
		{bet.StatusOpen, bet.StatusCancelled, true},
		{bet.StatusOpen, bet.StatusPartiallyMatched, true},
		{bet.StatusOpen, bet.StatusMatched, true},
		{bet.StatusPartiallyMatched, bet.StatusMatched, true},
		{bet.StatusPartiallyMatched, bet.StatusSettled, true},
		{bet.StatusMatched, bet.StatusSettled, true},

		{bet.StatusPartiallyMatched, bet.StatusCancelled, false},
		{bet.StatusMatched, bet.StatusCancelled, false},
		{bet.StatusSettled, bet.StatusOpen, false},
		{bet.StatusSettled, bet.StatusSettled, false},
		{bet.StatusCancelled, bet.StatusSettled, false},
		{bet.StatusMatched, bet.StatusOpen, false},
	}
	for _, c := range cases {
		if got := bet.CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestTerminal(t *testing.T) {
	for _, s := range []bet.Status{bet.StatusSettled, bet.StatusCancelled} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []bet.Status{bet.StatusOpen, bet.StatusPartiallyMatched, bet.StatusMatched} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}
