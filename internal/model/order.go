package model

import (
	"github.com/shopspring/decimal"
)

type OrderType string

const (
	OrderTypeBuy  OrderType = "buy"
	OrderTypeSell OrderType = "sell"
)

// Order is an immediate market order against the user's portfolio.
type Order struct {
	UserID        int64
	Type          OrderType
	Symbol        string
	CompanyName   string
	Shares        decimal.Decimal
	PricePerShare decimal.Decimal
}

// OrderResult is what the caller gets back after settlement.
type OrderResult struct {
	CashBalance decimal.Decimal `json:"cashBalance"`
	Transaction Transaction     `json:"transaction"`
}
