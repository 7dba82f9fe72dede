package tradingService

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/KotFed0t/paper_trading_api/data/repository"
	"github.com/KotFed0t/paper_trading_api/internal/model"
	"github.com/KotFed0t/paper_trading_api/internal/service"
	"github.com/KotFed0t/paper_trading_api/utils"
)

// AddToWatchlist is idempotent: adding a symbol twice is not an error.
func (s *TradingService) AddToWatchlist(ctx context.Context, userID int64, symbol, companyName string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TradingService.AddToWatchlist"

	slog.Debug("AddToWatchlist start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	defer func() {
		slog.Debug("AddToWatchlist finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	}()

	if companyName == "" {
		name, err := s.quoteApi.GetCompanyName(ctx, symbol)
		if err != nil {
			slog.Warn("can't resolve company name", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			companyName = name
		}
	}

	err := s.repo.InsertWatchlistItem(ctx, model.WatchlistItem{
		UserID:      userID,
		Symbol:      symbol,
		CompanyName: companyName,
		AddedAt:     time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil
		}
		slog.Error("got error from repo.InsertWatchlistItem", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

// GetWatchlist returns the user's watchlist priced best-effort.
func (s *TradingService) GetWatchlist(ctx context.Context, userID int64) ([]model.WatchlistItemView, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TradingService.GetWatchlist"

	slog.Debug("GetWatchlist start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("GetWatchlist finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	items, err := s.repo.GetWatchlist(ctx, userID)
	if err != nil {
		slog.Error("got error from repo.GetWatchlist", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	symbols := make([]string, 0, len(items))
	for _, item := range items {
		symbols = append(symbols, item.Symbol)
	}

	quotes := s.getQuotes(ctx, symbols)

	views := make([]model.WatchlistItemView, 0, len(items))
	for _, item := range items {
		view := model.WatchlistItemView{WatchlistItem: item}
		if quote, ok := quotes[item.Symbol]; ok {
			view.Priced = true
			view.CurrentPrice = quote.Price
			view.Change = quote.Change
			view.ChangePercent = quote.ChangePercent
		}
		views = append(views, view)
	}

	return views, nil
}

func (s *TradingService) RemoveFromWatchlist(ctx context.Context, userID int64, symbol string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TradingService.RemoveFromWatchlist"

	slog.Debug("RemoveFromWatchlist start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	defer func() {
		slog.Debug("RemoveFromWatchlist finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	}()

	err := s.repo.DeleteWatchlistItem(ctx, userID, symbol)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return service.ErrNotFound
		}
		slog.Error("got error from repo.DeleteWatchlistItem", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}
