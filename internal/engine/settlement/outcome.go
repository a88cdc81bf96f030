package settlement

import (
	"fmt"

	"github.com/radieske/bet-exchange-core/internal/engine/market"
)

// SessionResult é o desfecho de uma seleção num mercado de sessão
type SessionResult string

const (
	SessionYes SessionResult = "YES"
	SessionNo  SessionResult = "NO"
)

// Outcome descreve o resultado final de um mercado encerrado.
// Os campos usados dependem do tipo:
//
//	FIXED_ODDS, BINARY -> WinnerSelectionID
//	SESSION            -> SessionResults (seleção ausente do mapa => aposta anulada)
//	LINE, METER        -> FinalValue
type Outcome struct {
	MarketType        market.Type
	MarketID          string
	EventID           string
	WinnerSelectionID string
	SessionResults    map[string]SessionResult
	FinalValue        *float64
}

// Validate confirma que o outcome traz os dados exigidos pelo tipo de mercado
func (o Outcome) Validate() error {
	if !o.MarketType.Valid() {
		return fmt.Errorf("%w: unknown market type %q", market.ErrInvalidMarketInput, o.MarketType)
	}
	if o.MarketID == "" {
		return fmt.Errorf("%w: market id required", market.ErrInvalidMarketInput)
	}
	switch o.MarketType {
	case market.FixedOdds, market.Binary:
		if o.WinnerSelectionID == "" {
			return fmt.Errorf("%w: winner selection required", market.ErrInvalidMarketInput)
		}
	case market.Session:
		if o.SessionResults == nil {
			return fmt.Errorf("%w: session result map required", market.ErrInvalidMarketInput)
		}
	case market.Line, market.Meter:
		if o.FinalValue == nil {
			return fmt.Errorf("%w: final value required", market.ErrInvalidMarketInput)
		}
	}
	return nil
}
