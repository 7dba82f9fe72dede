package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/KotFed0t/paper_trading_api/config"
	"github.com/KotFed0t/paper_trading_api/internal/ledger"
	"github.com/KotFed0t/paper_trading_api/internal/model"
	"github.com/KotFed0t/paper_trading_api/internal/model/finnhubModel"
	"github.com/KotFed0t/paper_trading_api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type TradingService interface {
	RegisterUser(ctx context.Context, email string) (int64, error)
	ExecuteOrder(ctx context.Context, order model.Order) (model.OrderResult, error)
	GetPortfolio(ctx context.Context, userID int64) (model.PortfolioView, error)
	GetTransactions(ctx context.Context, userID int64) ([]model.Transaction, error)
	UpdateTransaction(ctx context.Context, trx model.Transaction) error
	DeleteTransaction(ctx context.Context, transactionID string) error
	AddToWatchlist(ctx context.Context, userID int64, symbol, companyName string) error
	GetWatchlist(ctx context.Context, userID int64) ([]model.WatchlistItemView, error)
	RemoveFromWatchlist(ctx context.Context, userID int64, symbol string) error
	GetStockQuote(ctx context.Context, symbol string) (finnhubModel.Quote, error)
	SearchStocks(ctx context.Context, query string) ([]finnhubModel.SearchResult, error)
	GeneratePortfolioReport(ctx context.Context, userID int64) (string, error)
}

type Controller struct {
	cfg *config.Config
	srv TradingService
}

func NewController(cfg *config.Config, srv TradingService) *Controller {
	return &Controller{cfg: cfg, srv: srv}
}

type registerUserRequest struct {
	Email string `json:"email"`
}

func (c *Controller) RegisterUser(w http.ResponseWriter, r *http.Request) {
	req := registerUserRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	userID, err := c.srv.RegisterUser(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyExists) {
			writeError(w, http.StatusConflict, "user already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	writeData(w, http.StatusCreated, map[string]int64{"userId": userID})
}

type orderRequest struct {
	UserID      int64           `json:"userId"`
	Type        string          `json:"type"`
	Symbol      string          `json:"symbol"`
	CompanyName string          `json:"companyName"`
	Shares      decimal.Decimal `json:"shares"`
	Price       decimal.Decimal `json:"price"`
}

func (c *Controller) ExecuteOrder(w http.ResponseWriter, r *http.Request) {
	req := orderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.UserID == 0 || req.Symbol == "" {
		writeError(w, http.StatusBadRequest, "userId and symbol are required")
		return
	}

	result, err := c.srv.ExecuteOrder(r.Context(), model.Order{
		UserID:        req.UserID,
		Type:          model.OrderType(req.Type),
		Symbol:        req.Symbol,
		CompanyName:   req.CompanyName,
		Shares:        req.Shares,
		PricePerShare: req.Price,
	})
	if err != nil {
		c.writeOrderError(w, err)
		return
	}

	writeData(w, http.StatusOK, result)
}

func (c *Controller) writeOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds):
		writeError(w, http.StatusUnprocessableEntity, "insufficient funds")
	case errors.Is(err, ledger.ErrInsufficientShares):
		writeError(w, http.StatusUnprocessableEntity, "insufficient shares")
	case errors.Is(err, ledger.ErrNoSuchHolding):
		writeError(w, http.StatusUnprocessableEntity, "no holding for symbol")
	case errors.Is(err, ledger.ErrInvalidOrderType):
		writeError(w, http.StatusBadRequest, "order type must be buy or sell")
	case errors.Is(err, ledger.ErrInvalidOrder):
		writeError(w, http.StatusBadRequest, "shares and price must be positive")
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "portfolio not found")
	default:
		writeError(w, http.StatusInternalServerError, "order failed")
	}
}

func (c *Controller) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromURL(w, r)
	if !ok {
		return
	}

	view, err := c.srv.GetPortfolio(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeError(w, http.StatusNotFound, "portfolio not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch portfolio")
		return
	}

	writeData(w, http.StatusOK, view)
}

func (c *Controller) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromURL(w, r)
	if !ok {
		return
	}

	transactions, err := c.srv.GetTransactions(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch transactions")
		return
	}

	if transactions == nil {
		transactions = []model.Transaction{}
	}

	writeData(w, http.StatusOK, transactions)
}

type updateTransactionRequest struct {
	Type        string          `json:"type"`
	Symbol      string          `json:"symbol"`
	CompanyName string          `json:"companyName"`
	Shares      decimal.Decimal `json:"shares"`
	Price       decimal.Decimal `json:"pricePerShare"`
}

func (c *Controller) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionID")

	req := updateTransactionRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := c.srv.UpdateTransaction(r.Context(), model.Transaction{
		ID:            transactionID,
		Type:          model.OrderType(req.Type),
		Symbol:        req.Symbol,
		CompanyName:   req.CompanyName,
		Shares:        req.Shares,
		PricePerShare: req.Price,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTransaction):
			writeError(w, http.StatusBadRequest, "invalid transaction")
		case errors.Is(err, service.ErrNotFound):
			writeError(w, http.StatusNotFound, "transaction not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update transaction")
		}
		return
	}

	writeData(w, http.StatusOK, nil)
}

func (c *Controller) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionID")

	err := c.srv.DeleteTransaction(r.Context(), transactionID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}

	writeData(w, http.StatusOK, nil)
}

type watchlistRequest struct {
	UserID      int64  `json:"userId"`
	Symbol      string `json:"symbol"`
	CompanyName string `json:"companyName"`
}

func (c *Controller) AddToWatchlist(w http.ResponseWriter, r *http.Request) {
	req := watchlistRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == 0 || req.Symbol == "" {
		writeError(w, http.StatusBadRequest, "userId and symbol are required")
		return
	}

	if err := c.srv.AddToWatchlist(r.Context(), req.UserID, req.Symbol, req.CompanyName); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to add to watchlist")
		return
	}

	writeData(w, http.StatusCreated, nil)
}

func (c *Controller) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromURL(w, r)
	if !ok {
		return
	}

	items, err := c.srv.GetWatchlist(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch watchlist")
		return
	}

	if items == nil {
		items = []model.WatchlistItemView{}
	}

	writeData(w, http.StatusOK, items)
}

func (c *Controller) RemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromURL(w, r)
	if !ok {
		return
	}
	symbol := chi.URLParam(r, "symbol")

	err := c.srv.RemoveFromWatchlist(r.Context(), userID, symbol)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeError(w, http.StatusNotFound, "symbol not in watchlist")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to remove from watchlist")
		return
	}

	writeData(w, http.StatusOK, nil)
}

func (c *Controller) GetStockQuote(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	quote, err := c.srv.GetStockQuote(r.Context(), symbol)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			writeError(w, http.StatusNotFound, "symbol not found")
		case errors.Is(err, service.ErrQuoteUnavailable):
			writeError(w, http.StatusBadGateway, "quote source unavailable")
		default:
			writeError(w, http.StatusInternalServerError, "failed to fetch quote")
		}
		return
	}

	writeData(w, http.StatusOK, quote)
}

func (c *Controller) SearchStocks(w http.ResponseWriter, r *http.Request) {
	results, err := c.srv.SearchStocks(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to search stocks")
		return
	}

	writeData(w, http.StatusOK, results)
}

func (c *Controller) GeneratePortfolioReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromURL(w, r)
	if !ok {
		return
	}

	link, err := c.srv.GeneratePortfolioReport(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeError(w, http.StatusNotFound, "portfolio not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to generate report")
		return
	}

	writeData(w, http.StatusOK, map[string]string{"downloadLink": link})
}

func userIDFromURL(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return userID, true
}
