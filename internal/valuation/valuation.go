// Package valuation computes display-ready portfolio views by blending
// ledger state with fresh quotes. It is pure and read-only; quote
// gathering is the caller's concern.
package valuation

import (
	"github.com/KotFed0t/paper_trading_api/internal/model"
	"github.com/KotFed0t/paper_trading_api/internal/model/finnhubModel"
	"github.com/shopspring/decimal"
)

const percentPlaces = 4

// Valuate prices each holding against quotesBySymbol. Holdings without a
// quote are passed through unpriced rather than failing the whole view;
// aggregates sum only the priced holdings, plus cash.
func Valuate(portfolio model.Portfolio, quotesBySymbol map[string]finnhubModel.Quote) model.PortfolioView {
	view := model.PortfolioView{
		UserID:      portfolio.UserID,
		CashBalance: portfolio.CashBalance,
		Holdings:    make([]model.HoldingView, 0, len(portfolio.Holdings)),
		TotalValue:  portfolio.CashBalance,
	}

	totalCostBasis := decimal.Zero

	for _, h := range portfolio.Holdings {
		hv := model.HoldingView{Holding: h}

		quote, ok := quotesBySymbol[h.Symbol]
		if ok {
			costBasis := h.AvgCost.Mul(h.Shares)

			hv.Priced = true
			hv.CurrentPrice = quote.Price
			hv.MarketValue = quote.Price.Mul(h.Shares)
			hv.UnrealizedGain = hv.MarketValue.Sub(costBasis)
			if costBasis.IsPositive() {
				hv.UnrealizedGainPercent = hv.UnrealizedGain.Div(costBasis).Mul(decimal.NewFromInt(100)).Round(percentPlaces)
			}

			view.TotalValue = view.TotalValue.Add(hv.MarketValue)
			view.TotalGainLoss = view.TotalGainLoss.Add(hv.UnrealizedGain)
			totalCostBasis = totalCostBasis.Add(costBasis)
		}

		view.Holdings = append(view.Holdings, hv)
	}

	if totalCostBasis.IsPositive() {
		view.TotalGainLossPercent = view.TotalGainLoss.Div(totalCostBasis).Mul(decimal.NewFromInt(100)).Round(percentPlaces)
	}

	return view
}
