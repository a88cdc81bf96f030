package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/radieske/bet-exchange-core/internal/engine/bet"
	"github.com/radieske/bet-exchange-core/internal/engine/market"
	"github.com/radieske/bet-exchange-core/internal/engine/placement"
	"github.com/radieske/bet-exchange-core/internal/engine/pricing"
	"github.com/radieske/bet-exchange-core/internal/engine/settlement"
	"github.com/radieske/bet-exchange-core/internal/engine/uow"
	"github.com/radieske/bet-exchange-core/internal/engine/wallet"
	"github.com/radieske/bet-exchange-core/internal/exchange-api/dto"
	"github.com/radieske/bet-exchange-core/internal/shared/metrics"
	"github.com/radieske/bet-exchange-core/pkg/contracts/events"
)

// Placer é o fluxo de colocação/cancelamento
type Placer interface {
	Place(ctx context.Context, req placement.Request) (*bet.Bet, error)
	Cancel(ctx context.Context, betID, userID string) (*bet.Bet, error)
}

// Settler é o dispatcher de liquidação
type Settler interface {
	SettleMarket(ctx context.Context, out settlement.Outcome) (settlement.Summary, error)
}

// WalletRepo são as operações de carteira expostas pela API
type WalletRepo interface {
	GetOrCreate(ctx context.Context, tx uow.DBTX, userID, currency string) (*wallet.Wallet, error)
	Deposit(ctx context.Context, tx uow.DBTX, userID string, amountCents int64, ref, actor string) (*wallet.Wallet, error)
	Withdraw(ctx context.Context, tx uow.DBTX, userID string, amountCents int64, ref, actor string) (*wallet.Wallet, error)
	Get(ctx context.Context, userID string) (*wallet.Wallet, error)
	SetFlags(ctx context.Context, userID string, active, opsLocked bool) error
	Entries(ctx context.Context, walletID string, f wallet.EntryFilter) ([]wallet.Entry, error)
}

// BetReader é a consulta de apostas
type BetReader interface {
	Get(ctx context.Context, id string) (*bet.Bet, error)
	ByUser(ctx context.Context, userID string, limit int) ([]*bet.Bet, error)
}

// Publisher emite market_settled depois da liquidação síncrona
type Publisher interface {
	PublishMarketSettled(ctx context.Context, e events.MarketSettled) error
}

// Server expõe a API pública do exchange + endpoints administrativos
type Server struct {
	log      *zap.Logger
	place    Placer
	settle   Settler
	wallets  WalletRepo
	bets     BetReader
	runner   uow.Runner
	publ     Publisher
	currency string
}

func NewServer(log *zap.Logger, place Placer, settle Settler, wallets WalletRepo, bets BetReader, runner uow.Runner, publ Publisher, currency string) *Server {
	return &Server{log: log, place: place, settle: settle, wallets: wallets, bets: bets, runner: runner, publ: publ, currency: currency}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/v1/bets", s.placeBet)
	r.Get("/v1/bets/{id}", s.getBet)
	r.Post("/v1/bets/{id}/cancel", s.cancelBet)
	r.Get("/v1/users/{userId}/bets", s.listBets)

	r.Get("/v1/wallets/{userId}", s.getWallet)
	r.Get("/v1/wallets/{userId}/ledger", s.getLedger)
	r.Post("/v1/wallets/deposit", s.deposit)
	r.Post("/v1/wallets/withdraw", s.withdraw)

	// admin; autorização fica no gateway, fora deste núcleo
	r.Post("/v1/admin/settlements", s.settleMarket)
	r.Post("/v1/admin/wallets/flags", s.setWalletFlags)

	return r
}

func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_JSON", "malformed request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PAYLOAD", err.Error())
		return
	}

	quote, err := req.Quote()
	if err != nil {
		s.reject(w, err)
		return
	}

	b, err := s.place.Place(r.Context(), placement.Request{
		UserID:        req.UserID,
		Sport:         req.Sport,
		EventID:       req.EventID,
		MarketID:      req.MarketID,
		MarketType:    market.Type(req.MarketType),
		SelectionID:   req.SelectionID,
		SelectionName: req.SelectionName,
		Side:          market.Side(req.Side),
		PriceLabel:    req.PriceLabel,
		Quote:         quote,
		StakeCents:    req.StakeCents,
	})
	if err != nil {
		s.reject(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.FromBet(b))
}

// reject responde uma falha de colocação e conta o motivo na métrica
func (s *Server) reject(w http.ResponseWriter, err error) {
	status, code := mapError(err)
	metrics.BetsRejected.WithLabelValues(code).Inc()
	if status >= 500 {
		s.log.Error("place bet", zap.Error(err))
	}
	writeError(w, status, code, err.Error())
}

func (s *Server) getBet(w http.ResponseWriter, r *http.Request) {
	b, err := s.bets.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeMapped(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromBet(b))
}

func (s *Server) cancelBet(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "userId required")
		return
	}
	b, err := s.place.Cancel(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		s.writeMapped(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromBet(b))
}

func (s *Server) listBets(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := s.bets.ByUser(r.Context(), chi.URLParam(r, "userId"), limit)
	if err != nil {
		s.writeMapped(w, err)
		return
	}
	out := make([]dto.BetResponse, 0, len(list))
	for _, b := range list {
		out = append(out, dto.FromBet(b))
	}
	writeJSON(w, http.StatusOK, out)
}

// getWallet retorna (ou cria) a carteira do usuário
func (s *Server) getWallet(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	var wlt *wallet.Wallet
	err := s.runner.Do(r.Context(), func(ctx context.Context, tx uow.DBTX) error {
		var err error
		wlt, err = s.wallets.GetOrCreate(ctx, tx, userID, s.currency)
		return err
	})
	if err != nil {
		s.writeMapped(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromWallet(wlt))
}

// getLedger consulta o extrato append-only por faixa de tempo e tag
func (s *Server) getLedger(w http.ResponseWriter, r *http.Request) {
	wlt, err := s.wallets.Get(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		s.writeMapped(w, err)
		return
	}

	var f wallet.EntryFilter
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "from must be RFC3339")
			return
		}
		f.From = &t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "to must be RFC3339")
			return
		}
		f.To = &t
	}
	f.Tag = wallet.EntryTag(r.URL.Query().Get("tag"))
	f.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := s.wallets.Entries(r.Context(), wlt.ID, f)
	if err != nil {
		s.writeMapped(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromEntries(entries))
}

func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_JSON", "malformed request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PAYLOAD", err.Error())
		return
	}

	var wlt *wallet.Wallet
	err := s.runner.Do(r.Context(), func(ctx context.Context, tx uow.DBTX) error {
		if _, err := s.wallets.GetOrCreate(ctx, tx, req.UserID, s.currency); err != nil {
			return err
		}
		var err error
		wlt, err = s.wallets.Deposit(ctx, tx, req.UserID, req.AmountCents, req.ExternalRef, "api")
		return err
	})
	if err != nil {
		s.writeMapped(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromWallet(wlt))
}

func (s *Server) withdraw(w http.ResponseWriter, r *http.Request) {
	var req dto.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_JSON", "malformed request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PAYLOAD", err.Error())
		return
	}

	var wlt *wallet.Wallet
	err := s.runner.Do(r.Context(), func(ctx context.Context, tx uow.DBTX) error {
		var err error
		wlt, err = s.wallets.Withdraw(ctx, tx, req.UserID, req.AmountCents, req.ExternalRef, "api")
		return err
	})
	if err != nil {
		s.writeMapped(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromWallet(wlt))
}

// settleMarket liquida o mercado de forma síncrona e emite market_settled.
// A resposta não traz detalhe por aposta: o efeito é observável nas próprias
// apostas e no ledger.
func (s *Server) settleMarket(w http.ResponseWriter, r *http.Request) {
	var req dto.SettleMarketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_JSON", "malformed request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PAYLOAD", err.Error())
		return
	}

	sum, err := s.settle.SettleMarket(r.Context(), req.Outcome())
	if err != nil {
		s.writeMapped(w, err)
		return
	}

	if perr := s.publ.PublishMarketSettled(r.Context(), events.MarketSettled{
		MarketID:   req.MarketID,
		EventID:    req.EventID,
		MarketType: req.MarketType,
		Settled:    sum.Settled,
		Won:        sum.Won,
		Lost:       sum.Lost,
		Void:       sum.Void,
		Failed:     sum.Failed,
	}); perr != nil {
		s.log.Warn("publish market_settled", zap.String("marketId", req.MarketID), zap.Error(perr))
	}

	writeJSON(w, http.StatusOK, dto.SettlementResponse{Status: "SETTLED", Summary: sum})
}

func (s *Server) setWalletFlags(w http.ResponseWriter, r *http.Request) {
	var req dto.WalletFlagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_JSON", "malformed request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PAYLOAD", err.Error())
		return
	}
	if err := s.wallets.SetFlags(r.Context(), req.UserID, req.Active, req.OpsLocked); err != nil {
		s.writeMapped(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"OK"}`))
}

func (s *Server) writeMapped(w http.ResponseWriter, err error) {
	status, code := mapError(err)
	if status >= 500 {
		s.log.Error("request failed", zap.String("code", code), zap.Error(err))
	}
	writeError(w, status, code, err.Error())
}

// mapError traduz sentinelas do domínio em status HTTP + código estável
func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, market.ErrInvalidMarketInput):
		return http.StatusBadRequest, "INVALID_MARKET_INPUT"
	case errors.Is(err, pricing.ErrMarketUnavailable):
		return http.StatusConflict, "MARKET_UNAVAILABLE"
	case errors.Is(err, pricing.ErrSelectionUnavailable):
		return http.StatusConflict, "SELECTION_UNAVAILABLE"
	case errors.Is(err, pricing.ErrPriceMismatch):
		return http.StatusConflict, "PRICE_MISMATCH"
	case errors.Is(err, wallet.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS"
	case errors.Is(err, wallet.ErrWalletUnavailable):
		return http.StatusConflict, "WALLET_UNAVAILABLE"
	case errors.Is(err, wallet.ErrLedgerInconsistency):
		return http.StatusInternalServerError, "LEDGER_INCONSISTENCY"
	case errors.Is(err, bet.ErrInvalidTransition):
		return http.StatusConflict, "INVALID_TRANSITION"
	case errors.Is(err, wallet.ErrNotFound), errors.Is(err, bet.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, dto.ErrorResponse{Code: code, Message: msg})
}
