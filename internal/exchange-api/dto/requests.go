package dto

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/radieske/bet-exchange-core/internal/engine/market"
	"github.com/radieske/bet-exchange-core/internal/engine/settlement"
)

var validate = validator.New()

// PlaceBetRequest é a colocação como chega na API. Exatamente um campo de preço
// deve vir preenchido: odd_value (fixed-odds e session) ou line_value (line/meter);
// multiplier é opcional em mercados BINARY (default 2).
type PlaceBetRequest struct {
	UserID        string   `json:"user_id" validate:"required"`
	Sport         string   `json:"sport"`
	EventID       string   `json:"event_id" validate:"required"`
	MarketID      string   `json:"market_id" validate:"required"`
	MarketType    string   `json:"market_type" validate:"required"`
	SelectionID   string   `json:"selection_id" validate:"required"`
	SelectionName string   `json:"selection_name"`
	Side          string   `json:"side" validate:"required"`
	PriceLabel    string   `json:"price_label,omitempty"`
	OddValue      *float64 `json:"odd_value,omitempty"`
	LineValue     *float64 `json:"line_value,omitempty"`
	Multiplier    *float64 `json:"multiplier,omitempty"`
	StakeCents    int64    `json:"stake_cents" validate:"required,gt=0"`
}

func (r *PlaceBetRequest) Validate() error { return validate.Struct(r) }

// Quote converte o campo de preço na variante do domínio conforme o tipo de mercado
func (r *PlaceBetRequest) Quote() (market.Quote, error) {
	if r.OddValue != nil && r.LineValue != nil {
		return nil, fmt.Errorf("%w: odd_value and line_value are mutually exclusive", market.ErrInvalidMarketInput)
	}

	switch market.Type(r.MarketType) {
	case market.FixedOdds:
		if r.OddValue == nil {
			return nil, fmt.Errorf("%w: odd_value required for fixed-odds market", market.ErrInvalidMarketInput)
		}
		return market.Odds(*r.OddValue), nil
	case market.Session:
		if r.OddValue == nil {
			return nil, fmt.Errorf("%w: odd_value (rate) required for session market", market.ErrInvalidMarketInput)
		}
		return market.Rate(*r.OddValue), nil
	case market.Line, market.Meter:
		if r.LineValue == nil {
			return nil, fmt.Errorf("%w: line_value required for line market", market.ErrInvalidMarketInput)
		}
		return market.LineValue(*r.LineValue), nil
	case market.Binary:
		if r.Multiplier == nil {
			return market.DefaultMultiplier, nil
		}
		return market.Multiplier(*r.Multiplier), nil
	default:
		return nil, fmt.Errorf("%w: unknown market type %q", market.ErrInvalidMarketInput, r.MarketType)
	}
}

// SettleMarketRequest é a chamada administrativa de liquidação
type SettleMarketRequest struct {
	MarketType        string            `json:"market_type" validate:"required"`
	MarketID          string            `json:"market_id" validate:"required"`
	EventID           string            `json:"event_id"`
	WinnerSelectionID string            `json:"winner_selection_id,omitempty"`
	ResultMap         map[string]string `json:"result_map,omitempty"`
	FinalValue        *float64          `json:"final_value,omitempty"`
	FinalMeterValue   *float64          `json:"final_meter_value,omitempty"`
}

func (r *SettleMarketRequest) Validate() error { return validate.Struct(r) }

// Outcome monta o outcome de domínio a partir da requisição
func (r *SettleMarketRequest) Outcome() settlement.Outcome {
	out := settlement.Outcome{
		MarketType:        market.Type(r.MarketType),
		MarketID:          r.MarketID,
		EventID:           r.EventID,
		WinnerSelectionID: r.WinnerSelectionID,
		FinalValue:        r.FinalValue,
	}
	if out.FinalValue == nil {
		out.FinalValue = r.FinalMeterValue
	}
	if r.ResultMap != nil {
		out.SessionResults = make(map[string]settlement.SessionResult, len(r.ResultMap))
		for sel, res := range r.ResultMap {
			out.SessionResults[sel] = settlement.SessionResult(strings.ToUpper(res))
		}
	}
	return out
}

type DepositRequest struct {
	UserID      string `json:"user_id" validate:"required"`
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
	ExternalRef string `json:"external_ref,omitempty"`
}

func (r *DepositRequest) Validate() error { return validate.Struct(r) }

type WithdrawRequest struct {
	UserID      string `json:"user_id" validate:"required"`
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
	ExternalRef string `json:"external_ref,omitempty"`
}

func (r *WithdrawRequest) Validate() error { return validate.Struct(r) }

// WalletFlagsRequest ajusta as flags administrativas da carteira
type WalletFlagsRequest struct {
	UserID    string `json:"user_id" validate:"required"`
	Active    bool   `json:"active"`
	OpsLocked bool   `json:"ops_locked"`
}

func (r *WalletFlagsRequest) Validate() error { return validate.Struct(r) }
