// Package ledger settles immediate market orders against a portfolio
// snapshot. It is pure: callers load the snapshot, apply an order and
// persist the result atomically together with the emitted transaction.
package ledger

import (
	"errors"
	"time"

	"github.com/KotFed0t/paper_trading_api/internal/model"
	"github.com/google/uuid"
)

var (
	ErrInsufficientFunds  = errors.New("buy cost exceeds cash balance")
	ErrInsufficientShares = errors.New("sell quantity exceeds held shares")
	ErrNoSuchHolding      = errors.New("no holding for symbol")
	ErrInvalidOrderType   = errors.New("invalid order type")
	ErrInvalidOrder       = errors.New("shares and price must be positive")
)

// ExecuteOrder applies order to a copy of portfolio and returns the
// updated snapshot plus the transaction record. On any error the
// returned portfolio is the input unchanged and the transaction is zero.
func ExecuteOrder(portfolio model.Portfolio, order model.Order, now time.Time) (model.Portfolio, model.Transaction, error) {
	if !order.Shares.IsPositive() || !order.PricePerShare.IsPositive() {
		return portfolio, model.Transaction{}, ErrInvalidOrder
	}

	var err error
	updated := clone(portfolio)

	switch order.Type {
	case model.OrderTypeBuy:
		updated, err = applyBuy(updated, order)
	case model.OrderTypeSell:
		updated, err = applySell(updated, order)
	default:
		err = ErrInvalidOrderType
	}

	if err != nil {
		return portfolio, model.Transaction{}, err
	}

	trx := model.Transaction{
		ID:            uuid.NewString(),
		UserID:        order.UserID,
		Type:          order.Type,
		Symbol:        order.Symbol,
		CompanyName:   order.CompanyName,
		Shares:        order.Shares,
		PricePerShare: order.PricePerShare,
		TotalAmount:   order.Shares.Mul(order.PricePerShare),
		Timestamp:     now,
	}

	return updated, trx, nil
}

func applyBuy(p model.Portfolio, order model.Order) (model.Portfolio, error) {
	cost := order.Shares.Mul(order.PricePerShare)

	if cost.GreaterThan(p.CashBalance) {
		return p, ErrInsufficientFunds
	}

	p.CashBalance = p.CashBalance.Sub(cost)

	for i, h := range p.Holdings {
		if h.Symbol != order.Symbol {
			continue
		}
		// Weighted-average merge: the only rule that perturbs avg cost.
		newShares := h.Shares.Add(order.Shares)
		newAvgCost := h.Shares.Mul(h.AvgCost).Add(cost).Div(newShares)
		p.Holdings[i].Shares = newShares
		p.Holdings[i].AvgCost = newAvgCost
		if order.CompanyName != "" {
			p.Holdings[i].CompanyName = order.CompanyName
		}
		return p, nil
	}

	p.Holdings = append(p.Holdings, model.Holding{
		Symbol:      order.Symbol,
		CompanyName: order.CompanyName,
		Shares:      order.Shares,
		AvgCost:     order.PricePerShare,
	})

	return p, nil
}

func applySell(p model.Portfolio, order model.Order) (model.Portfolio, error) {
	for i, h := range p.Holdings {
		if h.Symbol != order.Symbol {
			continue
		}

		if order.Shares.GreaterThan(h.Shares) {
			return p, ErrInsufficientShares
		}

		p.CashBalance = p.CashBalance.Add(order.Shares.Mul(order.PricePerShare))

		remaining := h.Shares.Sub(order.Shares)
		if remaining.IsZero() {
			// Zero-share rows are never kept.
			p.Holdings = append(p.Holdings[:i], p.Holdings[i+1:]...)
		} else {
			// Selling never changes the remaining lot's average cost.
			p.Holdings[i].Shares = remaining
		}

		return p, nil
	}

	return p, ErrNoSuchHolding
}

func clone(p model.Portfolio) model.Portfolio {
	holdings := make([]model.Holding, len(p.Holdings))
	copy(holdings, p.Holdings)
	p.Holdings = holdings
	return p
}
