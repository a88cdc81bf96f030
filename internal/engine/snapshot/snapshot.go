package snapshot

import (
	"context"
	"time"

	"github.com/radieske/bet-exchange-core/internal/engine/market"
)

// Status do mercado no snapshot vindo do feed upstream
type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusSuspended Status = "SUSPENDED"
	StatusClosed    Status = "CLOSED"
)

// PriceRow é uma cotação publicada para um lado de uma seleção.
// Label é um rótulo opaco do feed (ex: "back1", "lay2") usado para casar a linha exata.
type PriceRow struct {
	Side  market.Side `json:"side"`
	Label string      `json:"label,omitempty"`
	Value float64     `json:"value"`
}

// Section é uma seleção/sessão dentro do mercado
type Section struct {
	SelectionID   string     `json:"selection_id"`
	SelectionName string     `json:"selection_name,omitempty"`
	Active        bool       `json:"active"`
	Prices        []PriceRow `json:"prices"`
}

// Market é a visão point-in-time de um mercado, atualizada pelo pipeline de odds.
// O motor só lê; a escrita fica com o ingestor de feed (ou o simulador, em dev).
type Market struct {
	MarketID   string      `json:"market_id"`
	EventID    string      `json:"event_id"`
	MarketType market.Type `json:"market_type"`
	Status     Status      `json:"status"`
	UpdatedAt  time.Time   `json:"updated_at"`
	Sections   []Section   `json:"sections"`
}

// Section localiza uma seleção pelo id
func (m *Market) Section(selectionID string) (*Section, bool) {
	for i := range m.Sections {
		if m.Sections[i].SelectionID == selectionID {
			return &m.Sections[i], true
		}
	}
	return nil, false
}

// Provider entrega o snapshot corrente de um mercado.
// O segundo retorno indica ausência (mercado desconhecido ou cache expirado).
type Provider interface {
	Snapshot(ctx context.Context, marketID string) (*Market, bool, error)
}
