package model

import (
	"github.com/shopspring/decimal"
)

// Holding is one open position: shares held and the weighted-average
// price they were bought at. A holding with zero shares is never stored.
type Holding struct {
	Symbol      string          `json:"symbol"`
	CompanyName string          `json:"companyName"`
	Shares      decimal.Decimal `json:"shares"`
	AvgCost     decimal.Decimal `json:"avgCost"`
}

// Portfolio is the canonical per-user ledger state. CashBalance is the
// single source of truth for the user's cash.
type Portfolio struct {
	UserID      int64
	CashBalance decimal.Decimal
	Holdings    []Holding
}

// Holding returns the position for symbol, or false when none is held.
func (p Portfolio) Holding(symbol string) (Holding, bool) {
	for _, h := range p.Holdings {
		if h.Symbol == symbol {
			return h, true
		}
	}
	return Holding{}, false
}

// HoldingView is a Holding enriched with quote-derived fields. Priced is
// false when no quote was available for the symbol, in which case the
// derived fields are zero and must not be summed into aggregates.
type HoldingView struct {
	Holding
	Priced                bool            `json:"priced"`
	CurrentPrice          decimal.Decimal `json:"currentPrice"`
	MarketValue           decimal.Decimal `json:"marketValue"`
	UnrealizedGain        decimal.Decimal `json:"unrealizedGain"`
	UnrealizedGainPercent decimal.Decimal `json:"unrealizedGainPercent"`
}

type PortfolioView struct {
	UserID               int64           `json:"userId"`
	CashBalance          decimal.Decimal `json:"cashBalance"`
	Holdings             []HoldingView   `json:"holdings"`
	TotalValue           decimal.Decimal `json:"totalValue"`
	TotalGainLoss        decimal.Decimal `json:"totalGainLoss"`
	TotalGainLossPercent decimal.Decimal `json:"totalGainLossPercent"`
}
