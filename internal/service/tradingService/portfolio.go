package tradingService

import (
	"context"
	"errors"
	"log/slog"

	"github.com/KotFed0t/paper_trading_api/data/repository"
	"github.com/KotFed0t/paper_trading_api/internal/model"
	"github.com/KotFed0t/paper_trading_api/internal/model/finnhubModel"
	"github.com/KotFed0t/paper_trading_api/internal/service"
	"github.com/KotFed0t/paper_trading_api/internal/valuation"
	"github.com/KotFed0t/paper_trading_api/utils"
)

// GetPortfolio returns the user's portfolio valuated against fresh
// quotes. Symbols that cannot be quoted degrade to unpriced holdings,
// the view is produced regardless.
func (s *TradingService) GetPortfolio(ctx context.Context, userID int64) (model.PortfolioView, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TradingService.GetPortfolio"

	slog.Debug("GetPortfolio start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("GetPortfolio finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	portfolio, err := s.repo.GetPortfolio(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.PortfolioView{}, service.ErrNotFound
		}
		slog.Error("got error from repo.GetPortfolio", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PortfolioView{}, err
	}

	symbols := make([]string, 0, len(portfolio.Holdings))
	for _, h := range portfolio.Holdings {
		symbols = append(symbols, h.Symbol)
	}

	quotes := s.getQuotes(ctx, symbols)

	return valuation.Valuate(portfolio, quotes), nil
}

// getQuotes gathers quotes cache-first, falling back to the API for
// misses. Failures shrink the result instead of propagating.
func (s *TradingService) getQuotes(ctx context.Context, symbols []string) map[string]finnhubModel.Quote {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TradingService.getQuotes"

	if len(symbols) == 0 {
		return map[string]finnhubModel.Quote{}
	}

	quotes, err := s.cache.GetQuotes(ctx, symbols)
	if err != nil {
		slog.Warn("can't get quotes from cache", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		quotes = map[string]finnhubModel.Quote{}
	}

	missing := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		if _, ok := quotes[symbol]; !ok {
			missing = append(missing, symbol)
		}
	}

	if len(missing) == 0 {
		return quotes
	}

	fresh, err := s.quoteApi.GetQuotes(ctx, missing)
	if err != nil {
		slog.Warn("can't get quotes from quoteApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return quotes
	}

	if len(fresh) > 0 {
		freshSlice := make([]finnhubModel.Quote, 0, len(fresh))
		for _, q := range fresh {
			freshSlice = append(freshSlice, q)
		}
		go s.cache.SetQuotes(context.WithoutCancel(ctx), freshSlice)
	}

	for symbol, quote := range fresh {
		quotes[symbol] = quote
	}

	return quotes
}
