package tradingService

import (
	"context"
	"errors"
	"log/slog"

	"github.com/KotFed0t/paper_trading_api/data/repository"
	"github.com/KotFed0t/paper_trading_api/internal/model"
	"github.com/KotFed0t/paper_trading_api/internal/service"
	"github.com/KotFed0t/paper_trading_api/utils"
)

func (s *TradingService) GetTransactions(ctx context.Context, userID int64) ([]model.Transaction, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TradingService.GetTransactions"

	slog.Debug("GetTransactions start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("GetTransactions finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	transactions, err := s.repo.GetTransactions(ctx, userID)
	if err != nil {
		slog.Error("got error from repo.GetTransactions", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return transactions, nil
}

// UpdateTransaction is an administrative override over the log. It never
// replays settlement: holdings and cash stay untouched, the portfolio
// record remains canonical.
func (s *TradingService) UpdateTransaction(ctx context.Context, trx model.Transaction) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TradingService.UpdateTransaction"

	slog.Debug("UpdateTransaction start", slog.String("rqID", rqID), slog.String("op", op), slog.String("transactionID", trx.ID))
	defer func() {
		slog.Debug("UpdateTransaction finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("transactionID", trx.ID))
	}()

	if trx.Type != model.OrderTypeBuy && trx.Type != model.OrderTypeSell {
		return service.ErrInvalidTransaction
	}
	if !trx.Shares.IsPositive() || !trx.PricePerShare.IsPositive() {
		return service.ErrInvalidTransaction
	}

	trx.TotalAmount = trx.Shares.Mul(trx.PricePerShare)

	err := s.repo.UpdateTransaction(ctx, trx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return service.ErrNotFound
		}
		slog.Error("got error from repo.UpdateTransaction", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Warn("transaction log edited administratively", slog.String("rqID", rqID), slog.String("transactionID", trx.ID))

	return nil
}

// DeleteTransaction removes a log record without reversing its effects.
func (s *TradingService) DeleteTransaction(ctx context.Context, transactionID string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TradingService.DeleteTransaction"

	slog.Debug("DeleteTransaction start", slog.String("rqID", rqID), slog.String("op", op), slog.String("transactionID", transactionID))
	defer func() {
		slog.Debug("DeleteTransaction finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("transactionID", transactionID))
	}()

	err := s.repo.DeleteTransaction(ctx, transactionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return service.ErrNotFound
		}
		slog.Error("got error from repo.DeleteTransaction", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Warn("transaction log record deleted administratively", slog.String("rqID", rqID), slog.String("transactionID", transactionID))

	return nil
}
