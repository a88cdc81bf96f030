package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Contadores de negócio expostos em /metrics
var (
	BetsPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "exchange_bets_placed_total",
		Help: "Apostas aceitas com exposicao reservada.",
	})

	BetsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "exchange_bets_rejected_total",
		Help: "Colocacoes rejeitadas, por motivo.",
	}, []string{"reason"})

	BetsSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "exchange_bets_settled_total",
		Help: "Apostas liquidadas, por desfecho.",
	}, []string{"result"})

	MarketsSettled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "exchange_markets_settled_total",
		Help: "Chamadas de liquidacao de mercado concluidas.",
	})
)
