package market

import (
	"errors"
	"fmt"
)

// Type identifica o formato do mercado e define qual variante de Quote a aposta carrega
type Type string

const (
	FixedOdds Type = "FIXED_ODDS" // back/lay com odd decimal
	Session   Type = "SESSION"    // yes/no liquidado contra rate
	Line      Type = "LINE"       // over/under contra um limiar
	Meter     Type = "METER"      // over/under progressivo (over ganha no empate)
	Binary    Type = "BINARY"     // multiplicador fixo, lado vencedor leva stake*(m-1)
)

// Side é o lado da aposta; o significado depende do tipo de mercado
type Side string

const (
	Back  Side = "BACK"
	Lay   Side = "LAY"
	Yes   Side = "YES"
	No    Side = "NO"
	Over  Side = "OVER"
	Under Side = "UNDER"
)

var ErrInvalidMarketInput = errors.New("invalid market input")

var allowedSides = map[Type][]Side{
	FixedOdds: {Back, Lay},
	Session:   {Yes, No},
	Line:      {Over, Under},
	Meter:     {Over, Under},
	Binary:    {Back},
}

// Valid informa se o tipo de mercado é conhecido
func (t Type) Valid() bool {
	_, ok := allowedSides[t]
	return ok
}

// AllowsSide informa se o lado é legal para o tipo de mercado
func (t Type) AllowsSide(s Side) bool {
	for _, a := range allowedSides[t] {
		if a == s {
			return true
		}
	}
	return false
}

// Quote é a união etiquetada do campo de preço: cada tipo de mercado carrega
// exatamente uma variante (odds, rate, linha ou multiplicador)
type Quote interface {
	isQuote()
	Value() float64
}

type Odds float64       // odd decimal (FIXED_ODDS)
type Rate float64       // rate de sessão, pago como stake*rate/100 (SESSION)
type LineValue float64  // limiar over/under (LINE, METER)
type Multiplier float64 // multiplicador de pagamento (BINARY)

func (Odds) isQuote()       {}
func (Rate) isQuote()       {}
func (LineValue) isQuote()  {}
func (Multiplier) isQuote() {}

func (q Odds) Value() float64       { return float64(q) }
func (q Rate) Value() float64       { return float64(q) }
func (q LineValue) Value() float64  { return float64(q) }
func (q Multiplier) Value() float64 { return float64(q) }

// DefaultMultiplier é usado quando a requisição de mercado BINARY omite o multiplicador
const DefaultMultiplier = Multiplier(2)

// QuoteFor reconstrói a variante de Quote a partir do valor numérico persistido
func QuoteFor(t Type, v float64) (Quote, error) {
	switch t {
	case FixedOdds:
		return Odds(v), nil
	case Session:
		return Rate(v), nil
	case Line, Meter:
		return LineValue(v), nil
	case Binary:
		if v == 0 {
			return DefaultMultiplier, nil
		}
		return Multiplier(v), nil
	default:
		return nil, fmt.Errorf("%w: unknown market type %q", ErrInvalidMarketInput, t)
	}
}
