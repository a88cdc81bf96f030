package market

import (
	"fmt"
	"math"
)

// Exposure calcula quanto do saldo precisa ser reservado no momento em que a
// aposta é aceita. Função pura: toda aritmética monetária é em centavos (int64);
// valores derivados de odds são arredondados para o centavo mais próximo.
//
//	FIXED_ODDS back  -> stake
//	FIXED_ODDS lay   -> stake * (odds - 1)  (responsabilidade do layer)
//	demais mercados  -> stake (todo o stake em risco)
func Exposure(t Type, s Side, stakeCents int64, q Quote) (int64, error) {
	if !t.Valid() {
		return 0, fmt.Errorf("%w: unknown market type %q", ErrInvalidMarketInput, t)
	}
	if stakeCents <= 0 {
		return 0, fmt.Errorf("%w: stake must be positive", ErrInvalidMarketInput)
	}
	if !t.AllowsSide(s) {
		return 0, fmt.Errorf("%w: side %q not allowed for market type %q", ErrInvalidMarketInput, s, t)
	}

	switch t {
	case FixedOdds:
		o, ok := q.(Odds)
		if !ok || o <= 1 {
			return 0, fmt.Errorf("%w: fixed-odds market requires odds > 1", ErrInvalidMarketInput)
		}
		if s == Back {
			return stakeCents, nil
		}
		return RoundCents(float64(stakeCents) * (float64(o) - 1)), nil

	case Session:
		r, ok := q.(Rate)
		if !ok || r <= 0 {
			return 0, fmt.Errorf("%w: session market requires positive rate", ErrInvalidMarketInput)
		}
		return stakeCents, nil

	case Line, Meter:
		l, ok := q.(LineValue)
		if !ok || l <= 0 {
			return 0, fmt.Errorf("%w: line market requires positive line value", ErrInvalidMarketInput)
		}
		return stakeCents, nil

	default: // Binary
		m, ok := q.(Multiplier)
		if q == nil {
			m, ok = DefaultMultiplier, true
		}
		if !ok || m <= 1 {
			return 0, fmt.Errorf("%w: binary market requires multiplier > 1", ErrInvalidMarketInput)
		}
		return stakeCents, nil
	}
}

// RoundCents arredonda um valor derivado de float para centavos inteiros
func RoundCents(v float64) int64 { return int64(math.Round(v)) }
