package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/KotFed0t/paper_trading_api/data/repository"
	"github.com/KotFed0t/paper_trading_api/internal/converter/dbConverter"
	"github.com/KotFed0t/paper_trading_api/internal/model"
	"github.com/KotFed0t/paper_trading_api/internal/model/dbModel"
	"github.com/KotFed0t/paper_trading_api/utils"
	"github.com/jackc/pgx/v5/pgconn"
)

func (r *Postgres) InsertWatchlistItem(ctx context.Context, item model.WatchlistItem) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO watchlist(user_id, symbol, company_name, dt_create)
		VALUES($1, $2, $3, $4)
		`

	slog.Debug("InsertWatchlistItem start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertWatchlistItem failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertWatchlistItem completed", slog.String("rqID", rqID))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, item.UserID, item.Symbol, item.CompanyName, item.AddedAt)
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

func (r *Postgres) GetWatchlist(ctx context.Context, userID int64) (items []model.WatchlistItem, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT user_id, symbol, company_name, dt_create
		FROM watchlist
		WHERE user_id = $1
		ORDER BY dt_create
		`

	slog.Debug("GetWatchlist start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetWatchlist failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetWatchlist completed", slog.String("rqID", rqID))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var item dbModel.WatchlistItem
		err = rows.StructScan(&item)
		if err != nil {
			return nil, err
		}
		items = append(items, dbConverter.ConvertWatchlistItem(item))
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *Postgres) DeleteWatchlistItem(ctx context.Context, userID int64, symbol string) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `DELETE FROM watchlist WHERE user_id = $1 AND symbol = $2`

	slog.Debug("DeleteWatchlistItem start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("DeleteWatchlistItem failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("DeleteWatchlistItem completed", slog.String("rqID", rqID))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, userID, symbol)
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
