package events

import "time"

// Pedido de liquidação vindo do feed de resultados ou de tooling administrativo,
// consumido pelo settlement-worker. Os campos de outcome seguem o tipo de mercado.
type SettlementRequested struct {
	MarketType        string            `json:"market_type"`
	MarketID          string            `json:"market_id"`
	EventID           string            `json:"event_id"`
	WinnerSelectionID string            `json:"winner_selection_id,omitempty"`
	ResultMap         map[string]string `json:"result_map,omitempty"`
	FinalValue        *float64          `json:"final_value,omitempty"`
	Ts                time.Time         `json:"ts"`
}
