package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/bet-exchange-core/pkg/contracts/events"
)

// KafkaPublisher emite os eventos do exchange-api em seus tópicos
type KafkaPublisher struct {
	BetPlacedWriter     *kafka.Writer
	MarketSettledWriter *kafka.Writer
}

func NewKafkaPublisher(betPlaced, marketSettled *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{BetPlacedWriter: betPlaced, MarketSettledWriter: marketSettled}
}

func (p *KafkaPublisher) PublishBetPlaced(ctx context.Context, e events.BetPlaced) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(e)
	return p.BetPlacedWriter.WriteMessages(ctx, kafka.Message{Key: []byte(e.BetID), Value: b})
}

func (p *KafkaPublisher) PublishMarketSettled(ctx context.Context, e events.MarketSettled) error {
	e.Ts = time.Now().UTC()
	b, _ := json.Marshal(e)
	return p.MarketSettledWriter.WriteMessages(ctx, kafka.Message{Key: []byte(e.MarketID), Value: b})
}
