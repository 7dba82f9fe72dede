package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/KotFed0t/paper_trading_api/config"
	"github.com/KotFed0t/paper_trading_api/internal/model/finnhubModel"
	"github.com/KotFed0t/paper_trading_api/utils"
	"github.com/redis/go-redis/v9"
)

const quoteKeyPrefix = "quote:"

type RedisCache struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisCache(redisClient *redis.Client, cfg *config.Config) *RedisCache {
	return &RedisCache{redis: redisClient, cfg: cfg}
}

func (r *RedisCache) SetQuotes(ctx context.Context, quotes []finnhubModel.Quote) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("SetQuotes start", slog.String("rqID", rqID))

	pipe := r.redis.Pipeline()
	for _, quote := range quotes {
		quoteJson, err := json.Marshal(quote)
		if err != nil {
			slog.Error(
				"can't marshall quote in SetQuotes",
				slog.String("rqID", rqID),
				slog.String("err", err.Error()),
				slog.Any("quote", quote),
			)
			return errors.New("can't marshall quote")
		}

		pipe.Set(ctx, quoteKeyPrefix+quote.Symbol, quoteJson, r.cfg.Cache.QuotesExpiration)
	}

	_, err := pipe.Exec(ctx)
	if err != nil {
		slog.Error("failed on pipe.Exec", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("SetQuotes completed", slog.String("rqID", rqID))

	return nil
}

func (r *RedisCache) GetQuote(ctx context.Context, symbol string) (finnhubModel.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetQuote start", slog.String("rqID", rqID), slog.String("symbol", symbol))

	res, err := r.redis.Get(ctx, quoteKeyPrefix+symbol).Result()
	if err != nil {
		return finnhubModel.Quote{}, err
	}

	quote := finnhubModel.Quote{}
	err = json.Unmarshal([]byte(res), &quote)
	if err != nil {
		slog.Error(
			"can't unmarshall quote in GetQuote",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.String("resultFromRedis", res),
		)
		return finnhubModel.Quote{}, errors.New("can't unmarshall quote")
	}

	slog.Debug("GetQuote finished", slog.String("rqID", rqID))

	return quote, nil
}

// GetQuotes returns the cached subset of symbols. Misses are simply
// absent from the map, the caller decides whether to hit the API.
func (r *RedisCache) GetQuotes(ctx context.Context, symbols []string) (map[string]finnhubModel.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetQuotes start", slog.String("rqID", rqID), slog.Int("symbols", len(symbols)))

	if len(symbols) == 0 {
		return map[string]finnhubModel.Quote{}, nil
	}

	keys := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		keys = append(keys, quoteKeyPrefix+symbol)
	}

	values, err := r.redis.MGet(ctx, keys...).Result()
	if err != nil {
		slog.Error("failed on redis.MGet", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return nil, err
	}

	quotes := make(map[string]finnhubModel.Quote, len(symbols))
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue // cache miss
		}

		quote := finnhubModel.Quote{}
		if err := json.Unmarshal([]byte(raw), &quote); err != nil {
			slog.Error(
				"can't unmarshall quote in GetQuotes",
				slog.String("rqID", rqID),
				slog.String("err", err.Error()),
				slog.String("symbol", symbols[i]),
			)
			continue
		}

		quotes[symbols[i]] = quote
	}

	slog.Debug("GetQuotes finished", slog.String("rqID", rqID), slog.Int("hits", len(quotes)))

	return quotes, nil
}
