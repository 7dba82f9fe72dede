package finnhubApi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/KotFed0t/paper_trading_api/config"
	"github.com/KotFed0t/paper_trading_api/internal/externalApi"
	"github.com/KotFed0t/paper_trading_api/internal/model/finnhubModel"
	"github.com/KotFed0t/paper_trading_api/utils"
	"github.com/go-resty/resty/v2"
)

type FinnhubApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *FinnhubApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.FinnhubApi.Url).
		SetQueryParam("token", cfg.API.FinnhubApi.Token)
	return &FinnhubApi{client: client}
}

func (a *FinnhubApi) GetQuote(ctx context.Context, symbol string) (finnhubModel.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("start FinnhubApi.GetQuote request", slog.String("rqID", rqID), slog.String("symbol", symbol))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParam("symbol", symbol).
		Get("/quote")

	if err != nil {
		slog.Error("error while dialing FinnhubApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return finnhubModel.Quote{}, err
	}

	if resp.StatusCode() == http.StatusNotFound {
		return finnhubModel.Quote{}, externalApi.ErrNotFound
	}

	rawQuote := finnhubModel.RawQuote{}
	err = json.Unmarshal(resp.Body(), &rawQuote)
	if err != nil {
		slog.Error("can't unmarshall response into finnhubModel.RawQuote", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return finnhubModel.Quote{}, err
	}

	// The provider answers unknown symbols with an all-zero payload.
	if rawQuote.Current.IsZero() && rawQuote.Timestamp == 0 {
		return finnhubModel.Quote{}, externalApi.ErrNotFound
	}

	slog.Debug("FinnhubApi.GetQuote request complete", slog.String("rqID", rqID))

	return finnhubModel.Quote{
		Symbol:        symbol,
		Price:         rawQuote.Current,
		Change:        rawQuote.Change,
		ChangePercent: rawQuote.ChangePercent,
		High:          rawQuote.High,
		Low:           rawQuote.Low,
		Open:          rawQuote.Open,
		PrevClose:     rawQuote.PrevClose,
		Timestamp:     time.Unix(rawQuote.Timestamp, 0).UTC(),
	}, nil
}

// GetQuotes fetches each symbol independently. Failed symbols are left
// out of the result instead of failing the whole batch.
func (a *FinnhubApi) GetQuotes(ctx context.Context, symbols []string) (map[string]finnhubModel.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("start FinnhubApi.GetQuotes request", slog.String("rqID", rqID), slog.Int("symbols", len(symbols)))

	quotes := make(map[string]finnhubModel.Quote, len(symbols))
	for _, symbol := range symbols {
		quote, err := a.GetQuote(ctx, symbol)
		if err != nil {
			if ctx.Err() != nil {
				return quotes, ctx.Err()
			}
			slog.Warn("skipping symbol in GetQuotes", slog.String("rqID", rqID), slog.String("symbol", symbol), slog.String("err", err.Error()))
			continue
		}
		quotes[symbol] = quote
	}

	slog.Debug("FinnhubApi.GetQuotes request complete", slog.String("rqID", rqID), slog.Int("fetched", len(quotes)))

	return quotes, nil
}

func (a *FinnhubApi) SearchSymbol(ctx context.Context, query string) ([]finnhubModel.SearchResult, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("start FinnhubApi.SearchSymbol request", slog.String("rqID", rqID), slog.String("query", query))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParam("q", query).
		Get("/search")

	if err != nil {
		slog.Error("error while dialing FinnhubApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return nil, err
	}

	rawResult := finnhubModel.RawSearchResult{}
	err = json.Unmarshal(resp.Body(), &rawResult)
	if err != nil {
		slog.Error("can't unmarshall response into finnhubModel.RawSearchResult", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return nil, err
	}

	results := make([]finnhubModel.SearchResult, 0, len(rawResult.Result))
	for _, r := range rawResult.Result {
		results = append(results, finnhubModel.SearchResult{
			Symbol: r.Symbol,
			Name:   r.Description,
			Type:   r.Type,
		})
	}

	slog.Debug("FinnhubApi.SearchSymbol request complete", slog.String("rqID", rqID), slog.Int("results", len(results)))

	return results, nil
}

func (a *FinnhubApi) GetCompanyName(ctx context.Context, symbol string) (string, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("start FinnhubApi.GetCompanyName request", slog.String("rqID", rqID), slog.String("symbol", symbol))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParam("symbol", symbol).
		Get("/stock/profile2")

	if err != nil {
		slog.Error("error while dialing FinnhubApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return "", err
	}

	profile := finnhubModel.RawCompanyProfile{}
	err = json.Unmarshal(resp.Body(), &profile)
	if err != nil {
		slog.Error("can't unmarshall response into finnhubModel.RawCompanyProfile", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return "", err
	}

	if profile.Name == "" {
		return "", externalApi.ErrNotFound
	}

	slog.Debug("FinnhubApi.GetCompanyName request complete", slog.String("rqID", rqID))

	return profile.Name, nil
}
