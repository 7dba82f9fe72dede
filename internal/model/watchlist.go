package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type WatchlistItem struct {
	UserID      int64     `json:"userId"`
	Symbol      string    `json:"symbol"`
	CompanyName string    `json:"companyName"`
	AddedAt     time.Time `json:"addedAt"`
}

// WatchlistItemView carries best-effort quote fields; Priced is false
// when the symbol could not be quoted.
type WatchlistItemView struct {
	WatchlistItem
	Priced        bool            `json:"priced"`
	CurrentPrice  decimal.Decimal `json:"currentPrice"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"changePercent"`
}
