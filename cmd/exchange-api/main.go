package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/radieske/bet-exchange-core/internal/engine/bet"
	"github.com/radieske/bet-exchange-core/internal/engine/placement"
	"github.com/radieske/bet-exchange-core/internal/engine/pricing"
	"github.com/radieske/bet-exchange-core/internal/engine/settlement"
	"github.com/radieske/bet-exchange-core/internal/engine/snapshot"
	"github.com/radieske/bet-exchange-core/internal/engine/uow"
	"github.com/radieske/bet-exchange-core/internal/engine/wallet"
	xhttp "github.com/radieske/bet-exchange-core/internal/exchange-api/http"
	kpub "github.com/radieske/bet-exchange-core/internal/exchange-api/producer"
	"github.com/radieske/bet-exchange-core/internal/shared/cache"
	"github.com/radieske/bet-exchange-core/internal/shared/config"
	"github.com/radieske/bet-exchange-core/internal/shared/db"
	"github.com/radieske/bet-exchange-core/internal/shared/kafka"
	"github.com/radieske/bet-exchange-core/internal/shared/logger"
	"github.com/radieske/bet-exchange-core/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()

	// Redis (snapshots de mercado)
	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}

	// Kafka writers
	betPlacedWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetPlaced)
	defer betPlacedWriter.Close()
	marketSettledWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMarketSettled)
	defer marketSettledWriter.Close()

	// deps
	runner := uow.New(pg, log)
	wallets := wallet.NewPostgres(pg)
	bets := bet.NewPostgres(pg)
	validator := pricing.NewValidator(snapshot.NewRedisProvider(rdb))
	publ := kpub.NewKafkaPublisher(betPlacedWriter, marketSettledWriter)

	placer := placement.NewService(log, runner, validator, wallets, bets, publ)
	dispatcher := settlement.NewDispatcher(log, runner, bets, wallets)

	api := xhttp.NewServer(log, placer, dispatcher, wallets, bets, runner, publ, cfg.DefaultCurrency)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return rdb.Ping(ctx).Err()
	})

	log.Info("exchange-api listening", zap.String("addr", fmt.Sprintf(":%s", cfg.HTTPPort)))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
