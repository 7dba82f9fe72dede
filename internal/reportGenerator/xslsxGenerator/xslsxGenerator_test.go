package xslsxGenerator

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/KotFed0t/paper_trading_api/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestGenerate(t *testing.T) {
	portfolio := model.PortfolioView{
		UserID:      1,
		CashBalance: dec("500"),
		Holdings: []model.HoldingView{
			{
				Holding:        model.Holding{Symbol: "AAPL", CompanyName: "Apple Inc", Shares: dec("10"), AvgCost: dec("100")},
				Priced:         true,
				CurrentPrice:   dec("150"),
				MarketValue:    dec("1500"),
				UnrealizedGain: dec("500"),
			},
			{
				Holding: model.Holding{Symbol: "MSFT", CompanyName: "Microsoft", Shares: dec("5"), AvgCost: dec("200")},
				Priced:  false,
			},
		},
		TotalValue:    dec("2000"),
		TotalGainLoss: dec("500"),
	}

	transactions := []model.Transaction{
		{
			ID:            "t1",
			Type:          model.OrderTypeBuy,
			Symbol:        "AAPL",
			CompanyName:   "Apple Inc",
			Shares:        dec("10"),
			PricePerShare: dec("100"),
			TotalAmount:   dec("1000"),
			Timestamp:     time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
		},
	}

	gen := New()
	fileBytes, ext, err := gen.Generate(context.Background(), portfolio, transactions)
	require.NoError(t, err)
	assert.Equal(t, ".xlsx", ext)
	require.NotEmpty(t, fileBytes)

	f, err := excelize.OpenReader(bytes.NewReader(fileBytes))
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Holdings", "Transactions"}, f.GetSheetList())

	symbol, err := f.GetCellValue("Holdings", "A2")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", symbol)

	unpriced, err := f.GetCellValue("Holdings", "E3")
	require.NoError(t, err)
	assert.Equal(t, "n/a", unpriced)

	trxSymbol, err := f.GetCellValue("Transactions", "C2")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", trxSymbol)
}
