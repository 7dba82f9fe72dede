package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/KotFed0t/paper_trading_api/data/repository"
	"github.com/KotFed0t/paper_trading_api/internal/converter/dbConverter"
	"github.com/KotFed0t/paper_trading_api/internal/model"
	"github.com/KotFed0t/paper_trading_api/internal/model/dbModel"
	"github.com/KotFed0t/paper_trading_api/utils"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/shopspring/decimal"
)

func (r *Postgres) InsertUser(ctx context.Context, email string) (userID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `INSERT INTO users(email) VALUES($1) RETURNING user_id`

	slog.Debug("InsertUser start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertUser failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertUser completed", slog.String("rqID", rqID))
		}
	}()

	err = r.txOrDb(ctx).QueryRowContext(ctx, query, email).Scan(&userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return 0, repository.ErrAlreadyExists
			}
		}
		return 0, err
	}

	return userID, nil
}

func (r *Postgres) CreatePortfolio(ctx context.Context, userID int64, initialBalance decimal.Decimal) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `INSERT INTO portfolios(user_id, cash_balance) VALUES($1, $2)`

	slog.Debug("CreatePortfolio start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("CreatePortfolio failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("CreatePortfolio completed", slog.String("rqID", rqID))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, userID, initialBalance)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return repository.ErrAlreadyExists
			}
		}
		return err
	}

	return nil
}

func (r *Postgres) getPortfolio(ctx context.Context, userID int64, query string) (portfolio model.Portfolio, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("getPortfolio start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("getPortfolio failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("getPortfolio completed", slog.String("rqID", rqID))
		}
	}()

	dbPortfolio := dbModel.Portfolio{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, userID).StructScan(&dbPortfolio)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Portfolio{}, repository.ErrNotFound
		}
		return model.Portfolio{}, err
	}

	holdings, err := r.GetHoldings(ctx, userID)
	if err != nil {
		return model.Portfolio{}, err
	}

	return model.Portfolio{
		UserID:      dbPortfolio.UserID,
		CashBalance: dbPortfolio.CashBalance,
		Holdings:    holdings,
	}, nil
}

func (r *Postgres) GetPortfolio(ctx context.Context, userID int64) (model.Portfolio, error) {
	query := `SELECT user_id, cash_balance FROM portfolios WHERE user_id = $1`
	return r.getPortfolio(ctx, userID, query)
}

// GetPortfolioForUpdate locks the portfolio row until the surrounding
// transaction commits. Concurrent orders for the same user serialize on
// this lock, so every settlement validates against committed state.
func (r *Postgres) GetPortfolioForUpdate(ctx context.Context, userID int64) (model.Portfolio, error) {
	query := `SELECT user_id, cash_balance FROM portfolios WHERE user_id = $1 FOR UPDATE`
	return r.getPortfolio(ctx, userID, query)
}

func (r *Postgres) GetHoldings(ctx context.Context, userID int64) (holdings []model.Holding, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT user_id, symbol, company_name, shares, avg_cost
		FROM holdings
		WHERE user_id = $1
		`

	slog.Debug("GetHoldings start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetHoldings failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetHoldings completed", slog.String("rqID", rqID))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var holding dbModel.Holding
		err = rows.StructScan(&holding)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, dbConverter.ConvertHolding(holding))
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return holdings, nil
}

func (r *Postgres) UpsertHolding(ctx context.Context, userID int64, holding model.Holding) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO holdings(user_id, symbol, company_name, shares, avg_cost)
		VALUES($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, symbol)
		DO UPDATE SET company_name = EXCLUDED.company_name, shares = EXCLUDED.shares, avg_cost = EXCLUDED.avg_cost
		`

	slog.Debug("UpsertHolding start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("UpsertHolding failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpsertHolding completed", slog.String("rqID", rqID))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, userID, holding.Symbol, holding.CompanyName, holding.Shares, holding.AvgCost)
	return err
}

func (r *Postgres) DeleteHolding(ctx context.Context, userID int64, symbol string) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `DELETE FROM holdings WHERE user_id = $1 AND symbol = $2`

	slog.Debug("DeleteHolding start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("DeleteHolding failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("DeleteHolding completed", slog.String("rqID", rqID))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, userID, symbol)
	return err
}

func (r *Postgres) UpdateCashBalance(ctx context.Context, userID int64, cashBalance decimal.Decimal) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `UPDATE portfolios SET cash_balance = $2 WHERE user_id = $1`

	slog.Debug("UpdateCashBalance start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("UpdateCashBalance failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpdateCashBalance completed", slog.String("rqID", rqID))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, userID, cashBalance)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// GetTrackedSymbols returns every distinct symbol that is currently held
// or watched by any user. Used by the quote cache refresh job.
func (r *Postgres) GetTrackedSymbols(ctx context.Context) (symbols []string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT symbol FROM holdings
		UNION
		SELECT symbol FROM watchlist
		`

	slog.Debug("GetTrackedSymbols start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetTrackedSymbols failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetTrackedSymbols completed", slog.String("rqID", rqID))
		}
	}()

	err = r.txOrDb(ctx).SelectContext(ctx, &symbols, query)
	if err != nil {
		return nil, err
	}

	return symbols, nil
}
