package main

import (
	"context"
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/bet-exchange-core/internal/engine/market"
	"github.com/radieske/bet-exchange-core/internal/engine/snapshot"
	"github.com/radieske/bet-exchange-core/internal/shared/cache"
	"github.com/radieske/bet-exchange-core/internal/shared/config"
	"github.com/radieske/bet-exchange-core/internal/shared/logger"
	"github.com/radieske/bet-exchange-core/internal/shared/metrics"
)

// Catálogo fixo de mercados simulados, um de cada tipo, para desenvolvimento
// local: o exchange-api valida colocações contra os snapshots escritos aqui
var marketCatalog = []snapshot.Market{
	{
		MarketID:   "MKT_FO_001",
		EventID:    "MATCH_001",
		MarketType: market.FixedOdds,
		Status:     snapshot.StatusOpen,
		Sections: []snapshot.Section{
			{SelectionID: "SEL_HOME", SelectionName: "Flamengo", Active: true},
			{SelectionID: "SEL_DRAW", SelectionName: "Empate", Active: true},
			{SelectionID: "SEL_AWAY", SelectionName: "Palmeiras", Active: true},
		},
	},
	{
		MarketID:   "MKT_SES_001",
		EventID:    "MATCH_002",
		MarketType: market.Session,
		Status:     snapshot.StatusOpen,
		Sections: []snapshot.Section{
			{SelectionID: "SEL_RUNS_6OV", SelectionName: "Corre 6 overs", Active: true},
		},
	},
	{
		MarketID:   "MKT_LINE_001",
		EventID:    "MATCH_002",
		MarketType: market.Line,
		Status:     snapshot.StatusOpen,
		Sections: []snapshot.Section{
			{SelectionID: "SEL_TOTAL", SelectionName: "Total de pontos", Active: true},
		},
	},
	{
		MarketID:   "MKT_MTR_001",
		EventID:    "MATCH_003",
		MarketType: market.Meter,
		Status:     snapshot.StatusOpen,
		Sections: []snapshot.Section{
			{SelectionID: "SEL_METER", SelectionName: "Medidor de escanteios", Active: true},
		},
	},
	{
		MarketID:   "MKT_BIN_001",
		EventID:    "MATCH_004",
		MarketType: market.Binary,
		Status:     snapshot.StatusOpen,
		Sections: []snapshot.Section{
			{SelectionID: "SEL_YES", SelectionName: "Sim", Active: true},
			{SelectionID: "SEL_NO", SelectionName: "Não", Active: true},
		},
	},
}

var snapshotsWritten = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "simulator_snapshots_written_total",
	Help: "Total de snapshots de mercado escritos no Redis",
})

// gera número aleatório entre min e max
func rnd(min, max float64) float64 {
	return (rand.Float64() * (max - min)) + min
}

// prices gera as linhas de preço do tick corrente conforme o tipo do mercado
func prices(t market.Type) []snapshot.PriceRow {
	switch t {
	case market.FixedOdds:
		back := rnd(1.40, 5.00)
		return []snapshot.PriceRow{
			{Side: market.Back, Label: "back1", Value: back},
			{Side: market.Back, Label: "back2", Value: back - 0.05},
			{Side: market.Lay, Label: "lay1", Value: back + 0.10},
		}
	case market.Session:
		rate := rnd(80, 98)
		return []snapshot.PriceRow{
			{Side: market.Yes, Value: rate},
			{Side: market.No, Value: rate},
		}
	case market.Line, market.Meter:
		line := rnd(140, 180)
		return []snapshot.PriceRow{
			{Side: market.Over, Value: line},
			{Side: market.Under, Value: line},
		}
	default:
		// BINARY não carrega preço do feed; só negociabilidade
		return nil
	}
}

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	prometheus.MustRegister(snapshotsWritten)

	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connection failed", zap.Error(err))
	}
	writer := snapshot.NewRedisWriter(rdb, 30*time.Second)

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})

	log.Info("market simulator running",
		zap.Int("markets", len(marketCatalog)),
		zap.String("redis", cfg.RedisAddr))

	ticker := time.NewTicker(3 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now().UTC()
		for i := range marketCatalog {
			m := marketCatalog[i]
			m.UpdatedAt = now
			for j := range m.Sections {
				m.Sections[j].Prices = prices(m.MarketType)
			}
			if err := writer.Write(context.Background(), &m); err != nil {
				log.Warn("snapshot write failed", zap.String("marketId", m.MarketID), zap.Error(err))
				continue
			}
			snapshotsWritten.Inc()
		}
	}
}
