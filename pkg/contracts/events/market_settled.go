package events

import "time"

// Evento emitido após a liquidação de um mercado
type MarketSettled struct {
	MarketID   string    `json:"market_id"`
	EventID    string    `json:"event_id"`
	MarketType string    `json:"market_type"`
	Settled    int       `json:"settled"`
	Won        int       `json:"won"`
	Lost       int       `json:"lost"`
	Void       int       `json:"void"`
	Failed     int       `json:"failed"`
	Ts         time.Time `json:"ts"`
}
