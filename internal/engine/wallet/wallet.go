package wallet

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("wallet not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrWalletUnavailable = errors.New("wallet unavailable")

	// ErrLedgerInconsistency indica saldo bloqueado menor que a exposição a liberar.
	// Isso aponta bug anterior no fluxo; nunca é corrigido silenciosamente.
	ErrLedgerInconsistency = errors.New("ledger inconsistency")
)

// Wallet é a carteira de um usuário: pool disponível + pool bloqueado (exposição),
// sempre em centavos. Mutada apenas pelas primitivas deste pacote, dentro de uma
// fronteira transacional.
type Wallet struct {
	ID             string
	UserID         string
	Currency       string
	AvailableCents int64
	LockedCents    int64
	Active         bool
	OpsLocked      bool
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TotalCents é o patrimônio da carteira: disponível + bloqueado
func (w *Wallet) TotalCents() int64 { return w.AvailableCents + w.LockedCents }

// available informa se a carteira pode movimentar fundos
func (w *Wallet) available() bool { return w.Active && !w.OpsLocked }

// Direction de um lançamento no ledger
type Direction string

const (
	Credit Direction = "CREDIT"
	Debit  Direction = "DEBIT"
)

// EntryTag é a etiqueta semântica do lançamento
type EntryTag string

const (
	TagExposureLock     EntryTag = "exposure_lock"
	TagExposureUnlock   EntryTag = "exposure_unlock"
	TagSettlementCredit EntryTag = "settlement_credit"
	TagSettlementDebit  EntryTag = "settlement_debit"
	TagDeposit          EntryTag = "deposit"
	TagWithdrawal       EntryTag = "withdrawal"
)

// Entry é um lançamento imutável do ledger: uma linha por mutação de saldo,
// criada na mesma fronteira transacional da mutação. Before/after rastreiam o
// pool disponível; o pool bloqueado é reconstruível pelas tags lock/unlock.
type Entry struct {
	ID                 string
	WalletID           string
	Direction          Direction
	AmountCents        int64
	BalanceBeforeCents int64
	BalanceAfterCents  int64
	Tag                EntryTag
	Description        string
	Actor              string
	CreatedAt          time.Time
}

// EntryFilter restringe a consulta do extrato
type EntryFilter struct {
	From  *time.Time
	To    *time.Time
	Tag   EntryTag
	Limit int
}
