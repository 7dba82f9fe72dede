package finnhubModel

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawQuote is the /quote payload: single-letter keys per the provider.
type RawQuote struct {
	Current       decimal.Decimal `json:"c"`
	Change        decimal.Decimal `json:"d"`
	ChangePercent decimal.Decimal `json:"dp"`
	High          decimal.Decimal `json:"h"`
	Low           decimal.Decimal `json:"l"`
	Open          decimal.Decimal `json:"o"`
	PrevClose     decimal.Decimal `json:"pc"`
	Timestamp     int64           `json:"t"`
}

type RawSearchResult struct {
	Count  int `json:"count"`
	Result []struct {
		Description   string `json:"description"`
		DisplaySymbol string `json:"displaySymbol"`
		Symbol        string `json:"symbol"`
		Type          string `json:"type"`
	} `json:"result"`
}

type RawCompanyProfile struct {
	Name     string `json:"name"`
	Ticker   string `json:"ticker"`
	Currency string `json:"currency"`
	Exchange string `json:"exchange"`
}

type Quote struct {
	Symbol        string          `json:"symbol"`
	Price         decimal.Decimal `json:"price"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"changePercent"`
	High          decimal.Decimal `json:"high"`
	Low           decimal.Decimal `json:"low"`
	Open          decimal.Decimal `json:"open"`
	PrevClose     decimal.Decimal `json:"previousClose"`
	Timestamp     time.Time       `json:"timestamp"`
}

type SearchResult struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Type   string `json:"type"`
}
