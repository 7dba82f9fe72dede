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
)

func (r *Postgres) InsertTransaction(ctx context.Context, trx model.Transaction) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO transactions(transaction_id, user_id, type, symbol, company_name, shares, price_per_share, total_amount, dt_create)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`

	slog.Debug("InsertTransaction start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertTransaction failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertTransaction completed", slog.String("rqID", rqID))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(
		ctx,
		query,
		trx.ID,
		trx.UserID,
		string(trx.Type),
		trx.Symbol,
		trx.CompanyName,
		trx.Shares,
		trx.PricePerShare,
		trx.TotalAmount,
		trx.Timestamp,
	)
	return err
}

func (r *Postgres) GetTransactions(ctx context.Context, userID int64) (transactions []model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT transaction_id, user_id, type, symbol, company_name, shares, price_per_share, total_amount, dt_create
		FROM transactions
		WHERE user_id = $1
		ORDER BY dt_create DESC
		`

	slog.Debug("GetTransactions start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetTransactions failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetTransactions completed", slog.String("rqID", rqID))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var trx dbModel.Transaction
		err = rows.StructScan(&trx)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, dbConverter.ConvertTransaction(trx))
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return transactions, nil
}

func (r *Postgres) GetTransaction(ctx context.Context, transactionID string) (trx model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT transaction_id, user_id, type, symbol, company_name, shares, price_per_share, total_amount, dt_create
		FROM transactions
		WHERE transaction_id = $1
		`

	slog.Debug("GetTransaction start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetTransaction failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetTransaction completed", slog.String("rqID", rqID))
		}
	}()

	dbTrx := dbModel.Transaction{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, transactionID).StructScan(&dbTrx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Transaction{}, repository.ErrNotFound
		}
		return model.Transaction{}, err
	}

	return dbConverter.ConvertTransaction(dbTrx), nil
}

// UpdateTransaction rewrites a log record in place. Administrative
// override: settlement is never re-run for the edited record.
func (r *Postgres) UpdateTransaction(ctx context.Context, trx model.Transaction) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		UPDATE transactions
		SET type = $2, symbol = $3, company_name = $4, shares = $5, price_per_share = $6, total_amount = $7
		WHERE transaction_id = $1
		`

	slog.Debug("UpdateTransaction start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("UpdateTransaction failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpdateTransaction completed", slog.String("rqID", rqID))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(
		ctx,
		query,
		trx.ID,
		string(trx.Type),
		trx.Symbol,
		trx.CompanyName,
		trx.Shares,
		trx.PricePerShare,
		trx.TotalAmount,
	)
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

func (r *Postgres) DeleteTransaction(ctx context.Context, transactionID string) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `DELETE FROM transactions WHERE transaction_id = $1`

	slog.Debug("DeleteTransaction start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("DeleteTransaction failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("DeleteTransaction completed", slog.String("rqID", rqID))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, transactionID)
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
