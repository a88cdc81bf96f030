package dto

import (
	"time"

	"github.com/radieske/bet-exchange-core/internal/engine/bet"
	"github.com/radieske/bet-exchange-core/internal/engine/settlement"
	"github.com/radieske/bet-exchange-core/internal/engine/wallet"
)

// ErrorResponse carrega um código estável legível por máquina + mensagem humana
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type BetResponse struct {
	BetID         string     `json:"bet_id"`
	UserID        string     `json:"user_id"`
	Sport         string     `json:"sport,omitempty"`
	EventID       string     `json:"event_id"`
	MarketID      string     `json:"market_id"`
	MarketType    string     `json:"market_type"`
	SelectionID   string     `json:"selection_id"`
	SelectionName string     `json:"selection_name,omitempty"`
	Side          string     `json:"side"`
	Price         float64    `json:"price"`
	StakeCents    int64      `json:"stake_cents"`
	ExposureCents int64      `json:"exposure_cents"`
	Status        string     `json:"status"`
	Result        string     `json:"settlement_result,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	SettledAt     *time.Time `json:"settled_at,omitempty"`
}

func FromBet(b *bet.Bet) BetResponse {
	return BetResponse{
		BetID:         b.ID,
		UserID:        b.UserID,
		Sport:         b.Sport,
		EventID:       b.EventID,
		MarketID:      b.MarketID,
		MarketType:    string(b.MarketType),
		SelectionID:   b.SelectionID,
		SelectionName: b.SelectionName,
		Side:          string(b.Side),
		Price:         b.Quote.Value(),
		StakeCents:    b.StakeCents,
		ExposureCents: b.ExposureCents,
		Status:        string(b.Status),
		Result:        string(b.Result),
		CreatedAt:     b.CreatedAt,
		SettledAt:     b.SettledAt,
	}
}

// WalletResponse é o read model da carteira: total é derivado, nunca armazenado
type WalletResponse struct {
	UserID         string `json:"user_id"`
	WalletID       string `json:"wallet_id"`
	Currency       string `json:"currency"`
	AvailableCents int64  `json:"available_cents"`
	LockedCents    int64  `json:"locked_cents"`
	TotalCents     int64  `json:"total_cents"`
	Active         bool   `json:"active"`
	OpsLocked      bool   `json:"ops_locked"`
}

func FromWallet(w *wallet.Wallet) WalletResponse {
	return WalletResponse{
		UserID:         w.UserID,
		WalletID:       w.ID,
		Currency:       w.Currency,
		AvailableCents: w.AvailableCents,
		LockedCents:    w.LockedCents,
		TotalCents:     w.TotalCents(),
		Active:         w.Active,
		OpsLocked:      w.OpsLocked,
	}
}

type LedgerEntryResponse struct {
	ID                 string    `json:"id"`
	WalletID           string    `json:"wallet_id"`
	Direction          string    `json:"direction"`
	AmountCents        int64     `json:"amount_cents"`
	BalanceBeforeCents int64     `json:"balance_before_cents"`
	BalanceAfterCents  int64     `json:"balance_after_cents"`
	Tag                string    `json:"tag"`
	Description        string    `json:"description,omitempty"`
	Actor              string    `json:"actor,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

func FromEntries(entries []wallet.Entry) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, LedgerEntryResponse{
			ID:                 e.ID,
			WalletID:           e.WalletID,
			Direction:          string(e.Direction),
			AmountCents:        e.AmountCents,
			BalanceBeforeCents: e.BalanceBeforeCents,
			BalanceAfterCents:  e.BalanceAfterCents,
			Tag:                string(e.Tag),
			Description:        e.Description,
			Actor:              e.Actor,
			CreatedAt:          e.CreatedAt,
		})
	}
	return out
}

type SettlementResponse struct {
	Status string `json:"status"`
	settlement.Summary
}
