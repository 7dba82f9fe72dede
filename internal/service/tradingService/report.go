package tradingService

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KotFed0t/paper_trading_api/utils"
)

// GeneratePortfolioReport builds an xlsx statement (valuated holdings
// plus transaction history), uploads it to cloud storage and returns a
// public download link.
func (s *TradingService) GeneratePortfolioReport(ctx context.Context, userID int64) (downloadLink string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TradingService.GeneratePortfolioReport"

	slog.Debug("GeneratePortfolioReport start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("GeneratePortfolioReport finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	portfolioView, err := s.GetPortfolio(ctx, userID)
	if err != nil {
		return "", err
	}

	transactions, err := s.GetTransactions(ctx, userID)
	if err != nil {
		return "", err
	}

	fileBytes, fileExtension, err := s.reportGen.Generate(ctx, portfolioView, transactions)
	if err != nil {
		slog.Error("got error from reportGen.Generate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	filename := fmt.Sprintf("portfolio_statement_%d_%s%s", userID, time.Now().UTC().Format("2006-01-02"), fileExtension)

	downloadLink, err = s.cloudStorage.UploadFile(ctx, bytes.NewReader(fileBytes), filename)
	if err != nil {
		slog.Error("got error from cloudStorage.UploadFile", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	return downloadLink, nil
}
