package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is an immutable record of a settled order. Administrative
// edits and deletes touch only the log, never holdings or cash.
type Transaction struct {
	ID            string          `json:"id"`
	UserID        int64           `json:"userId"`
	Type          OrderType       `json:"type"`
	Symbol        string          `json:"symbol"`
	CompanyName   string          `json:"companyName"`
	Shares        decimal.Decimal `json:"shares"`
	PricePerShare decimal.Decimal `json:"pricePerShare"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Timestamp     time.Time       `json:"timestamp"`
}
