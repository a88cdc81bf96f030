package events

// Evento publicado no tópico "bet_placed" após a exposição reservada e a aposta durável
type BetPlaced struct {
	BetID         string  `json:"bet_id"`
	UserID        string  `json:"user_id"`
	EventID       string  `json:"event_id"`
	MarketID      string  `json:"market_id"`
	MarketType    string  `json:"market_type"`
	SelectionID   string  `json:"selection_id"`
	Side          string  `json:"side"`
	Price         float64 `json:"price"`
	StakeCents    int64   `json:"stake_cents"`
	ExposureCents int64   `json:"exposure_cents"`
	TsUnixMs      int64   `json:"ts_unix_ms"`
}
