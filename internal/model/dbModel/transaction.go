package dbModel

import (
	"time"

	"github.com/shopspring/decimal"
)

type Transaction struct {
	ID            string          `db:"transaction_id"`
	UserID        int64           `db:"user_id"`
	Type          string          `db:"type"`
	Symbol        string          `db:"symbol"`
	CompanyName   string          `db:"company_name"`
	Shares        decimal.Decimal `db:"shares"`
	PricePerShare decimal.Decimal `db:"price_per_share"`
	TotalAmount   decimal.Decimal `db:"total_amount"`
	CreatedAt     time.Time       `db:"dt_create"`
}

type WatchlistItem struct {
	UserID      int64     `db:"user_id"`
	Symbol      string    `db:"symbol"`
	CompanyName string    `db:"company_name"`
	CreatedAt   time.Time `db:"dt_create"`
}
