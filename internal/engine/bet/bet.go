package bet

import (
	"errors"
	"time"

	"github.com/radieske/bet-exchange-core/internal/engine/market"
)

// Status do ciclo de vida de uma aposta
type Status string

const (
	StatusOpen             Status = "OPEN"
	StatusPartiallyMatched Status = "PARTIALLY_MATCHED"
	StatusMatched          Status = "MATCHED"
	StatusSettled          Status = "SETTLED"
	StatusCancelled        Status = "CANCELLED"
)

// Result é o desfecho da liquidação; vazio até status=SETTLED
type Result string

const (
	ResultWon  Result = "WON"
	ResultLost Result = "LOST"
	ResultVoid Result = "VOID"
)

var ErrInvalidTransition = errors.New("invalid bet status transition")

// Terminal informa se o status é final (nenhuma transição sai dele)
func (s Status) Terminal() bool { return s == StatusSettled || s == StatusCancelled }

var transitions = map[Status][]Status{
	StatusOpen:             {StatusPartiallyMatched, StatusMatched, StatusSettled, StatusCancelled},
	StatusPartiallyMatched: {StatusMatched, StatusSettled},
	StatusMatched:          {StatusSettled},
}

// CanTransition informa se a mudança de status é legal.
// Cancelamento só é permitido enquanto a aposta está OPEN (nada casado);
// liquidação acontece exatamente uma vez, SETTLED nunca é revisitado.
func CanTransition(from, to Status) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Bet é o registro de uma aposta. Criada pelo fluxo de colocação depois da
// exposição reservada; mutada apenas pela liquidação/cancelamento; nunca apagada.
type Bet struct {
	ID            string
	UserID        string
	Sport         string
	EventID       string
	MarketID      string
	MarketType    market.Type
	SelectionID   string
	SelectionName string
	Side          market.Side
	Quote         market.Quote
	StakeCents    int64
	ExposureCents int64
	Status        Status
	Result        Result
	CreatedAt     time.Time
	SettledAt     *time.Time
}
