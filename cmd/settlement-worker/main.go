package main

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/bet-exchange-core/internal/engine/bet"
	"github.com/radieske/bet-exchange-core/internal/engine/market"
	"github.com/radieske/bet-exchange-core/internal/engine/settlement"
	"github.com/radieske/bet-exchange-core/internal/engine/uow"
	"github.com/radieske/bet-exchange-core/internal/engine/wallet"
	"github.com/radieske/bet-exchange-core/internal/shared/config"
	"github.com/radieske/bet-exchange-core/internal/shared/db"
	"github.com/radieske/bet-exchange-core/internal/shared/kafka"
	"github.com/radieske/bet-exchange-core/internal/shared/logger"
	"github.com/radieske/bet-exchange-core/internal/shared/metrics"
	ev "github.com/radieske/bet-exchange-core/pkg/contracts/events"
)

// settlement-worker consome pedidos de liquidação (feed de resultados ou tooling
// administrativo) e dirige o dispatcher; falha vai pra DLQ depois de retries
func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicSettlementRequested, "settlement-worker")
	defer reader.Close()

	settledWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMarketSettled)
	defer settledWriter.Close()

	var dlqWriter *kafkago.Writer
	if cfg.TopicSettlementRequestedDLQ != "" {
		dlqWriter = kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicSettlementRequestedDLQ)
		defer dlqWriter.Close()
	}

	runner := uow.New(pg, log)
	dispatcher := settlement.NewDispatcher(log, runner, bet.NewPostgres(pg), wallet.NewPostgres(pg))

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})

	log.Info("settlement-worker started",
		zap.String("consume", cfg.TopicSettlementRequested),
		zap.String("publish", cfg.TopicMarketSettled),
	)

	ctx := context.Background()

	for {
		_, value, err := kafka.ReadNext(ctx, reader)
		if err != nil {
			log.Warn("kafka read", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		var req ev.SettlementRequested
		if jerr := json.Unmarshal(value, &req); jerr != nil {
			log.Error("unmarshal settlement_requested", zap.Error(jerr))
			continue
		}

		if err := processOne(ctx, log, dispatcher, settledWriter, &req); err != nil {
			log.Error("settle market", zap.String("marketId", req.MarketID), zap.Error(err))
			if dlqWriter != nil {
				_ = kafka.WriteJSON(ctx, dlqWriter, req.MarketID, mustJSON(req))
			}
			// Backoff simples para evitar flood em caso de erro
			time.Sleep(500 * time.Millisecond)
		}
	}
}

// processOne liquida um mercado com retries; inconsistência de ledger não é
// retentada, o mercado fica parado pra revisão manual
func processOne(
	ctx context.Context,
	log *zap.Logger,
	dispatcher *settlement.Dispatcher,
	settledWriter *kafkago.Writer,
	req *ev.SettlementRequested,
) error {
	out := toOutcome(req)

	sum, err := dispatcher.SettleMarket(ctx, out)
	if err != nil && !errors.Is(err, wallet.ErrLedgerInconsistency) {
		const retries = 3
		for i := 0; i < retries && err != nil; i++ {
			time.Sleep(time.Duration(300*(i+1)) * time.Millisecond)
			sum, err = dispatcher.SettleMarket(ctx, out)
		}
	}
	if err != nil {
		return err
	}

	evt := ev.MarketSettled{
		MarketID:   req.MarketID,
		EventID:    req.EventID,
		MarketType: req.MarketType,
		Settled:    sum.Settled,
		Won:        sum.Won,
		Lost:       sum.Lost,
		Void:       sum.Void,
		Failed:     sum.Failed,
		Ts:         time.Now().UTC(),
	}
	return kafka.WriteJSON(ctx, settledWriter, req.MarketID, mustJSON(evt))
}

func toOutcome(req *ev.SettlementRequested) settlement.Outcome {
	out := settlement.Outcome{
		MarketType:        market.Type(req.MarketType),
		MarketID:          req.MarketID,
		EventID:           req.EventID,
		WinnerSelectionID: req.WinnerSelectionID,
		FinalValue:        req.FinalValue,
	}
	if req.ResultMap != nil {
		out.SessionResults = make(map[string]settlement.SessionResult, len(req.ResultMap))
		for sel, res := range req.ResultMap {
			out.SessionResults[sel] = settlement.SessionResult(strings.ToUpper(res))
		}
	}
	return out
}

func mustJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}
