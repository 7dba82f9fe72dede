package tradingService

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/KotFed0t/paper_trading_api/config"
	"github.com/KotFed0t/paper_trading_api/data/repository"
	"github.com/KotFed0t/paper_trading_api/internal/ledger"
	"github.com/KotFed0t/paper_trading_api/internal/model"
	"github.com/KotFed0t/paper_trading_api/internal/model/finnhubModel"
	"github.com/KotFed0t/paper_trading_api/internal/service"
	"github.com/KotFed0t/paper_trading_api/utils"
	"github.com/shopspring/decimal"
)

type QuoteApi interface {
	GetQuote(ctx context.Context, symbol string) (finnhubModel.Quote, error)
	GetQuotes(ctx context.Context, symbols []string) (map[string]finnhubModel.Quote, error)
	SearchSymbol(ctx context.Context, query string) ([]finnhubModel.SearchResult, error)
	GetCompanyName(ctx context.Context, symbol string) (string, error)
}

type Cache interface {
	GetQuote(ctx context.Context, symbol string) (finnhubModel.Quote, error)
	GetQuotes(ctx context.Context, symbols []string) (map[string]finnhubModel.Quote, error)
	SetQuotes(ctx context.Context, quotes []finnhubModel.Quote) error
}

type Repository interface {
	WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error
	InsertUser(ctx context.Context, email string) (userID int64, err error)
	CreatePortfolio(ctx context.Context, userID int64, initialBalance decimal.Decimal) error
	GetPortfolio(ctx context.Context, userID int64) (model.Portfolio, error)
	GetPortfolioForUpdate(ctx context.Context, userID int64) (model.Portfolio, error)
	UpsertHolding(ctx context.Context, userID int64, holding model.Holding) error
	DeleteHolding(ctx context.Context, userID int64, symbol string) error
	UpdateCashBalance(ctx context.Context, userID int64, cashBalance decimal.Decimal) error
	InsertTransaction(ctx context.Context, trx model.Transaction) error
	GetTransactions(ctx context.Context, userID int64) ([]model.Transaction, error)
	GetTransaction(ctx context.Context, transactionID string) (model.Transaction, error)
	UpdateTransaction(ctx context.Context, trx model.Transaction) error
	DeleteTransaction(ctx context.Context, transactionID string) error
	InsertWatchlistItem(ctx context.Context, item model.WatchlistItem) error
	GetWatchlist(ctx context.Context, userID int64) ([]model.WatchlistItem, error)
	DeleteWatchlistItem(ctx context.Context, userID int64, symbol string) error
	GetTrackedSymbols(ctx context.Context) ([]string, error)
}

type ReportGenerator interface {
	Generate(ctx context.Context, portfolio model.PortfolioView, transactions []model.Transaction) (fileBytes []byte, fileExtension string, err error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
}

type TradingService struct {
	cfg          *config.Config
	repo         Repository
	cache        Cache
	quoteApi     QuoteApi
	reportGen    ReportGenerator
	cloudStorage CloudStorage
}

func New(cfg *config.Config, repo Repository, cache Cache, quoteApi QuoteApi, reportGen ReportGenerator, cloudStorage CloudStorage) *TradingService {
	return &TradingService{
		cfg:          cfg,
		repo:         repo,
		cache:        cache,
		quoteApi:     quoteApi,
		reportGen:    reportGen,
		cloudStorage: cloudStorage,
	}
}

// RegisterUser creates the user together with a portfolio seeded with
// the configured starting cash, in one transaction.
func (s *TradingService) RegisterUser(ctx context.Context, email string) (userID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TradingService.RegisterUser"

	slog.Debug("RegisterUser start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("RegisterUser finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		userID, err = s.repo.InsertUser(ctx, email)
		if err != nil {
			return err
		}
		return s.repo.CreatePortfolio(ctx, userID, s.cfg.Trading.InitialBalance)
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return 0, service.ErrAlreadyExists
		}
		slog.Error("got error from repo in RegisterUser", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return 0, err
	}

	return userID, nil
}

// ExecuteOrder settles an order against the user's portfolio. The
// portfolio row is locked for the duration of the transaction, so
// concurrent orders for one user validate against committed state, and
// the holdings/cash update commits together with the log append.
func (s *TradingService) ExecuteOrder(ctx context.Context, order model.Order) (result model.OrderResult, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TradingService.ExecuteOrder"

	slog.Debug("ExecuteOrder start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", order.UserID), slog.String("symbol", order.Symbol))
	defer func() {
		slog.Debug("ExecuteOrder finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", order.UserID))
	}()

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		portfolio, err := s.repo.GetPortfolioForUpdate(ctx, order.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return service.ErrNotFound
			}
			return err
		}

		updated, trx, err := ledger.ExecuteOrder(portfolio, order, time.Now().UTC())
		if err != nil {
			return err
		}

		if holding, ok := updated.Holding(order.Symbol); ok {
			if err := s.repo.UpsertHolding(ctx, order.UserID, holding); err != nil {
				return err
			}
		} else if _, existed := portfolio.Holding(order.Symbol); existed {
			if err := s.repo.DeleteHolding(ctx, order.UserID, order.Symbol); err != nil {
				return err
			}
		}

		if err := s.repo.UpdateCashBalance(ctx, order.UserID, updated.CashBalance); err != nil {
			return err
		}

		if err := s.repo.InsertTransaction(ctx, trx); err != nil {
			return err
		}

		result = model.OrderResult{CashBalance: updated.CashBalance, Transaction: trx}
		return nil
	})
	if err != nil {
		if isLedgerErr(err) || errors.Is(err, service.ErrNotFound) {
			slog.Warn("order rejected", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Error("got error from repo in ExecuteOrder", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
		return model.OrderResult{}, err
	}

	return result, nil
}

func isLedgerErr(err error) bool {
	return errors.Is(err, ledger.ErrInsufficientFunds) ||
		errors.Is(err, ledger.ErrInsufficientShares) ||
		errors.Is(err, ledger.ErrNoSuchHolding) ||
		errors.Is(err, ledger.ErrInvalidOrderType) ||
		errors.Is(err, ledger.ErrInvalidOrder)
}
