package xslsxGenerator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/paper_trading_api/internal/model"
	"github.com/KotFed0t/paper_trading_api/utils"
	"github.com/xuri/excelize/v2"
)

const (
	holdingsSheet     = "Holdings"
	transactionsSheet = "Transactions"
)

type XSLSXGenerator struct{}

func New() *XSLSXGenerator {
	return &XSLSXGenerator{}
}

// Generate builds a portfolio statement: one sheet with valuated
// holdings and totals, one with the transaction history.
func (g *XSLSXGenerator) Generate(ctx context.Context, portfolio model.PortfolioView, transactions []model.Transaction) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XSLSXGenerator.Generate"

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	if err := g.fillHoldingsSheet(f, portfolio); err != nil {
		slog.Error("failed to fill holdings sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	if err := g.fillTransactionsSheet(f, transactions); err != nil {
		slog.Error("failed to fill transactions sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	// Drop the default "Sheet1".
	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while Saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XSLSXGenerator) fillHoldingsSheet(f *excelize.File, portfolio model.PortfolioView) error {
	if _, err := f.NewSheet(holdingsSheet); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return err
	}

	headers := []string{"Symbol", "Company", "Shares", "Avg cost", "Current price", "Market value", "Unrealized gain", "Gain %"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		f.SetCellValue(holdingsSheet, cell, header)
		f.SetCellStyle(holdingsSheet, cell, cell, headerStyle)
	}

	row := 2
	for _, h := range portfolio.Holdings {
		f.SetCellValue(holdingsSheet, fmt.Sprintf("A%d", row), h.Symbol)
		f.SetCellValue(holdingsSheet, fmt.Sprintf("B%d", row), h.CompanyName)
		f.SetCellValue(holdingsSheet, fmt.Sprintf("C%d", row), h.Shares.InexactFloat64())
		f.SetCellValue(holdingsSheet, fmt.Sprintf("D%d", row), h.AvgCost.InexactFloat64())
		if h.Priced {
			f.SetCellValue(holdingsSheet, fmt.Sprintf("E%d", row), h.CurrentPrice.InexactFloat64())
			f.SetCellValue(holdingsSheet, fmt.Sprintf("F%d", row), h.MarketValue.InexactFloat64())
			f.SetCellValue(holdingsSheet, fmt.Sprintf("G%d", row), h.UnrealizedGain.InexactFloat64())
			f.SetCellValue(holdingsSheet, fmt.Sprintf("H%d", row), h.UnrealizedGainPercent.InexactFloat64())
		} else {
			f.SetCellValue(holdingsSheet, fmt.Sprintf("E%d", row), "n/a")
		}
		row++
	}

	row++
	f.SetCellValue(holdingsSheet, fmt.Sprintf("A%d", row), "Cash balance")
	f.SetCellValue(holdingsSheet, fmt.Sprintf("B%d", row), portfolio.CashBalance.InexactFloat64())
	row++
	f.SetCellValue(holdingsSheet, fmt.Sprintf("A%d", row), "Total value")
	f.SetCellValue(holdingsSheet, fmt.Sprintf("B%d", row), portfolio.TotalValue.InexactFloat64())
	row++
	f.SetCellValue(holdingsSheet, fmt.Sprintf("A%d", row), "Total gain/loss")
	f.SetCellValue(holdingsSheet, fmt.Sprintf("B%d", row), portfolio.TotalGainLoss.InexactFloat64())

	return nil
}

func (g *XSLSXGenerator) fillTransactionsSheet(f *excelize.File, transactions []model.Transaction) error {
	if _, err := f.NewSheet(transactionsSheet); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return err
	}

	headers := []string{"Date", "Type", "Symbol", "Company", "Shares", "Price per share", "Total amount"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		f.SetCellValue(transactionsSheet, cell, header)
		f.SetCellStyle(transactionsSheet, cell, cell, headerStyle)
	}

	for i, trx := range transactions {
		row := i + 2
		f.SetCellValue(transactionsSheet, fmt.Sprintf("A%d", row), trx.Timestamp.Format("2006-01-02 15:04:05"))
		f.SetCellValue(transactionsSheet, fmt.Sprintf("B%d", row), string(trx.Type))
		f.SetCellValue(transactionsSheet, fmt.Sprintf("C%d", row), trx.Symbol)
		f.SetCellValue(transactionsSheet, fmt.Sprintf("D%d", row), trx.CompanyName)
		f.SetCellValue(transactionsSheet, fmt.Sprintf("E%d", row), trx.Shares.InexactFloat64())
		f.SetCellValue(transactionsSheet, fmt.Sprintf("F%d", row), trx.PricePerShare.InexactFloat64())
		f.SetCellValue(transactionsSheet, fmt.Sprintf("G%d", row), trx.TotalAmount.InexactFloat64())
	}

	return nil
}
