package valuation

import (
	"testing"

	"github.com/KotFed0t/paper_trading_api/internal/model"
	"github.com/KotFed0t/paper_trading_api/internal/model/finnhubModel"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func quote(price string) finnhubModel.Quote {
	return finnhubModel.Quote{Price: dec(price)}
}

func TestValuate_SingleHolding(t *testing.T) {
	p := model.Portfolio{
		UserID:      1,
		CashBalance: dec("500"),
		Holdings: []model.Holding{
			{Symbol: "A", Shares: dec("10"), AvgCost: dec("10")},
		},
	}

	view := Valuate(p, map[string]finnhubModel.Quote{"A": quote("15")})

	require.Len(t, view.Holdings, 1)
	hv := view.Holdings[0]
	assert.True(t, hv.Priced)
	assert.True(t, hv.MarketValue.Equal(dec("150")))
	assert.True(t, hv.UnrealizedGain.Equal(dec("50")))
	assert.True(t, hv.UnrealizedGainPercent.Equal(dec("50")))
	assert.True(t, view.TotalValue.Equal(dec("650")))
	assert.True(t, view.TotalGainLoss.Equal(dec("50")))
	assert.True(t, view.TotalGainLossPercent.Equal(dec("50")))
}

func TestValuate_MissingQuoteDegradesOnlyThatHolding(t *testing.T) {
	p := model.Portfolio{
		CashBalance: dec("100"),
		Holdings: []model.Holding{
			{Symbol: "A", Shares: dec("10"), AvgCost: dec("10")},
			{Symbol: "B", Shares: dec("5"), AvgCost: dec("20")},
		},
	}

	view := Valuate(p, map[string]finnhubModel.Quote{"A": quote("12")})

	require.Len(t, view.Holdings, 2)

	assert.True(t, view.Holdings[0].Priced)
	assert.True(t, view.Holdings[0].MarketValue.Equal(dec("120")))

	assert.False(t, view.Holdings[1].Priced)
	assert.True(t, view.Holdings[1].MarketValue.IsZero())
	assert.True(t, view.Holdings[1].Shares.Equal(dec("5")), "unpriced holding passes through unchanged")

	// Aggregates cover priced holdings plus cash only.
	assert.True(t, view.TotalValue.Equal(dec("220")))
	assert.True(t, view.TotalGainLoss.Equal(dec("20")))
	assert.True(t, view.TotalGainLossPercent.Equal(dec("20")))
}

func TestValuate_EmptyPortfolio(t *testing.T) {
	view := Valuate(model.Portfolio{CashBalance: dec("1234.56")}, nil)

	assert.Empty(t, view.Holdings)
	assert.True(t, view.TotalValue.Equal(dec("1234.56")))
	assert.True(t, view.TotalGainLoss.IsZero())
	assert.True(t, view.TotalGainLossPercent.IsZero())
}

func TestValuate_ZeroCostBasisYieldsZeroPercent(t *testing.T) {
	p := model.Portfolio{
		Holdings: []model.Holding{
			{Symbol: "A", Shares: dec("10"), AvgCost: dec("0")},
		},
	}

	view := Valuate(p, map[string]finnhubModel.Quote{"A": quote("5")})

	assert.True(t, view.Holdings[0].UnrealizedGainPercent.IsZero())
	assert.True(t, view.TotalGainLossPercent.IsZero())
	assert.True(t, view.TotalValue.Equal(dec("50")))
}

func TestValuate_LossReportedNegative(t *testing.T) {
	p := model.Portfolio{
		Holdings: []model.Holding{
			{Symbol: "A", Shares: dec("4"), AvgCost: dec("100")},
		},
	}

	view := Valuate(p, map[string]finnhubModel.Quote{"A": quote("75")})

	assert.True(t, view.Holdings[0].UnrealizedGain.Equal(dec("-100")))
	assert.True(t, view.TotalGainLossPercent.Equal(dec("-25")))
}

func TestValuate_Idempotent(t *testing.T) {
	p := model.Portfolio{
		CashBalance: dec("10"),
		Holdings: []model.Holding{
			{Symbol: "A", Shares: dec("3"), AvgCost: dec("7")},
			{Symbol: "B", Shares: dec("2"), AvgCost: dec("11")},
		},
	}
	quotes := map[string]finnhubModel.Quote{"A": quote("8"), "B": quote("9")}

	first := Valuate(p, quotes)
	second := Valuate(p, quotes)

	assert.Equal(t, first, second)
}
