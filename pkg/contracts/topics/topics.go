package topics

const (
	// Bets
	BetPlaced = "bet_placed"

	// Settlement
	SettlementRequested = "settlement_requested"
	MarketSettled       = "market_settled"

	// DLQs
	SettlementRequestedDLQ = "settlement_requested_dlq"
)
