package dbConverter

import (
	"github.com/KotFed0t/paper_trading_api/internal/model"
	"github.com/KotFed0t/paper_trading_api/internal/model/dbModel"
)

func ConvertHolding(h dbModel.Holding) model.Holding {
	return model.Holding{
		Symbol:      h.Symbol,
		CompanyName: h.CompanyName,
		Shares:      h.Shares,
		AvgCost:     h.AvgCost,
	}
}

func ConvertHoldings(holdings []dbModel.Holding) []model.Holding {
	res := make([]model.Holding, 0, len(holdings))
	for _, h := range holdings {
		res = append(res, ConvertHolding(h))
	}
	return res
}

func ConvertTransaction(t dbModel.Transaction) model.Transaction {
	return model.Transaction{
		ID:            t.ID,
		UserID:        t.UserID,
		Type:          model.OrderType(t.Type),
		Symbol:        t.Symbol,
		CompanyName:   t.CompanyName,
		Shares:        t.Shares,
		PricePerShare: t.PricePerShare,
		TotalAmount:   t.TotalAmount,
		Timestamp:     t.CreatedAt,
	}
}

func ConvertWatchlistItem(w dbModel.WatchlistItem) model.WatchlistItem {
	return model.WatchlistItem{
		UserID:      w.UserID,
		Symbol:      w.Symbol,
		CompanyName: w.CompanyName,
		AddedAt:     w.CreatedAt,
	}
}
