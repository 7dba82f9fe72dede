package dbModel

import (
	"github.com/shopspring/decimal"
)

type Portfolio struct {
	UserID      int64           `db:"user_id"`
	CashBalance decimal.Decimal `db:"cash_balance"`
}

type Holding struct {
	UserID      int64           `db:"user_id"`
	Symbol      string          `db:"symbol"`
	CompanyName string          `db:"company_name"`
	Shares      decimal.Decimal `db:"shares"`
	AvgCost     decimal.Decimal `db:"avg_cost"`
}
