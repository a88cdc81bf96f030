package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/radieske/bet-exchange-core/internal/engine/market"
	"github.com/radieske/bet-exchange-core/internal/engine/snapshot"
)

var (
	ErrMarketUnavailable    = errors.New("market unavailable")
	ErrSelectionUnavailable = errors.New("selection unavailable")
	ErrPriceMismatch        = errors.New("price mismatch")
)

// Tolerância numérica ao casar o preço enviado com a linha cotada.
// As odds do feed mudam em cadência sub-segundo; divergência acima disso
// significa que o cliente está tentando apostar num preço que já se moveu.
const priceTolerance = 0.001

// Validator cruza a requisição de aposta com o snapshot corrente do mercado
// antes de qualquer movimentação de fundos
type Validator struct {
	prov snapshot.Provider
}

func NewValidator(p snapshot.Provider) *Validator { return &Validator{prov: p} }

// Tradable confirma que o mercado existe e está negociável e que a seleção está ativa
func (v *Validator) Tradable(ctx context.Context, marketID, selectionID string) (*snapshot.Section, error) {
	snap, ok, err := v.prov.Snapshot(ctx, marketID)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if !ok || snap.Status != snapshot.StatusOpen {
		return nil, fmt.Errorf("%w: market %s", ErrMarketUnavailable, marketID)
	}
	sec, ok := snap.Section(selectionID)
	if !ok || !sec.Active {
		return nil, fmt.Errorf("%w: selection %s", ErrSelectionUnavailable, selectionID)
	}
	return sec, nil
}

// Validate confirma que a linha de preço que o cliente diz ter visto ainda está cotada.
// O casamento é por lado, label opcional e igualdade com tolerância.
func (v *Validator) Validate(ctx context.Context, marketID, selectionID string, side market.Side, label string, quoted float64) error {
	sec, err := v.Tradable(ctx, marketID, selectionID)
	if err != nil {
		return err
	}
	for _, row := range sec.Prices {
		if row.Side != side {
			continue
		}
		if label != "" && row.Label != label {
			continue
		}
		if math.Abs(row.Value-quoted) <= priceTolerance {
			return nil
		}
	}
	return fmt.Errorf("%w: %s %s @ %v no longer quoted", ErrPriceMismatch, selectionID, side, quoted)
}
