package tradingService

import (
	"context"
	"errors"
	"log/slog"

	"github.com/KotFed0t/paper_trading_api/internal/externalApi"
	"github.com/KotFed0t/paper_trading_api/internal/model/finnhubModel"
	"github.com/KotFed0t/paper_trading_api/internal/service"
	"github.com/KotFed0t/paper_trading_api/utils"
)

// GetStockQuote returns the current quote for one symbol, cache-first.
func (s *TradingService) GetStockQuote(ctx context.Context, symbol string) (finnhubModel.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TradingService.GetStockQuote"

	slog.Debug("GetStockQuote start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	defer func() {
		slog.Debug("GetStockQuote finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	}()

	quote, err := s.cache.GetQuote(ctx, symbol)
	if err == nil {
		return quote, nil
	}

	slog.Warn("can't get quote from cache", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))

	quote, err = s.quoteApi.GetQuote(ctx, symbol)
	if err != nil {
		if errors.Is(err, externalApi.ErrNotFound) {
			slog.Warn("symbol not found in quoteApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
			return finnhubModel.Quote{}, service.ErrNotFound
		}
		slog.Error("can't get quote from quoteApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return finnhubModel.Quote{}, service.ErrQuoteUnavailable
	}

	go s.cache.SetQuotes(context.WithoutCancel(ctx), []finnhubModel.Quote{quote})

	return quote, nil
}

func (s *TradingService) SearchStocks(ctx context.Context, query string) ([]finnhubModel.SearchResult, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TradingService.SearchStocks"

	slog.Debug("SearchStocks start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		slog.Debug("SearchStocks finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	}()

	if query == "" {
		return []finnhubModel.SearchResult{}, nil
	}

	results, err := s.quoteApi.SearchSymbol(ctx, query)
	if err != nil {
		slog.Error("got error from quoteApi.SearchSymbol", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return results, nil
}

// RefreshQuoteCache re-fetches every held or watched symbol and warms
// the cache. Runs as a scheduled job, replacing client-side polling.
func (s *TradingService) RefreshQuoteCache(ctx context.Context) error {
	ctx = utils.CtxWithRqID(ctx, "")
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TradingService.RefreshQuoteCache"

	slog.Debug("RefreshQuoteCache start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("RefreshQuoteCache finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	symbols, err := s.repo.GetTrackedSymbols(ctx)
	if err != nil {
		slog.Error("got error from repo.GetTrackedSymbols", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	if len(symbols) == 0 {
		return nil
	}

	quotes, err := s.quoteApi.GetQuotes(ctx, symbols)
	if err != nil {
		slog.Error("got error from quoteApi.GetQuotes", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	quotesSlice := make([]finnhubModel.Quote, 0, len(quotes))
	for _, quote := range quotes {
		quotesSlice = append(quotesSlice, quote)
	}

	return s.cache.SetQuotes(ctx, quotesSlice)
}
