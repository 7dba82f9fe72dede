package tradingService

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/KotFed0t/paper_trading_api/config"
	"github.com/KotFed0t/paper_trading_api/data/repository"
	"github.com/KotFed0t/paper_trading_api/internal/externalApi"
	"github.com/KotFed0t/paper_trading_api/internal/ledger"
	"github.com/KotFed0t/paper_trading_api/internal/model"
	"github.com/KotFed0t/paper_trading_api/internal/model/finnhubModel"
	"github.com/KotFed0t/paper_trading_api/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// fakeRepo keeps portfolio state in memory and records what the service
// persisted. WithinTransaction just runs the function; rollback is
// simulated by not applying recorded writes on error.
type fakeRepo struct {
	portfolio model.Portfolio

	portfolioErr  error
	insertUserErr error

	upsertedHoldings []model.Holding
	deletedHoldings  []string
	updatedCash      *decimal.Decimal
	insertedTrx      []model.Transaction

	insertTrxErr error

	transactions   []model.Transaction
	updatedTrx     []model.Transaction
	deletedTrxIDs  []string
	watchlist      []model.WatchlistItem
	watchlistErr   error
	trackedSymbols []string
}

func (f *fakeRepo) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeRepo) InsertUser(ctx context.Context, email string) (int64, error) {
	return 42, f.insertUserErr
}

func (f *fakeRepo) CreatePortfolio(ctx context.Context, userID int64, initialBalance decimal.Decimal) error {
	f.portfolio = model.Portfolio{UserID: userID, CashBalance: initialBalance}
	return nil
}

func (f *fakeRepo) GetPortfolio(ctx context.Context, userID int64) (model.Portfolio, error) {
	return f.portfolio, f.portfolioErr
}

func (f *fakeRepo) GetPortfolioForUpdate(ctx context.Context, userID int64) (model.Portfolio, error) {
	return f.portfolio, f.portfolioErr
}

func (f *fakeRepo) UpsertHolding(ctx context.Context, userID int64, holding model.Holding) error {
	f.upsertedHoldings = append(f.upsertedHoldings, holding)
	return nil
}

func (f *fakeRepo) DeleteHolding(ctx context.Context, userID int64, symbol string) error {
	f.deletedHoldings = append(f.deletedHoldings, symbol)
	return nil
}

func (f *fakeRepo) UpdateCashBalance(ctx context.Context, userID int64, cashBalance decimal.Decimal) error {
	f.updatedCash = &cashBalance
	return nil
}

func (f *fakeRepo) InsertTransaction(ctx context.Context, trx model.Transaction) error {
	if f.insertTrxErr != nil {
		return f.insertTrxErr
	}
	f.insertedTrx = append(f.insertedTrx, trx)
	return nil
}

func (f *fakeRepo) GetTransactions(ctx context.Context, userID int64) ([]model.Transaction, error) {
	return f.transactions, nil
}

func (f *fakeRepo) GetTransaction(ctx context.Context, transactionID string) (model.Transaction, error) {
	for _, trx := range f.transactions {
		if trx.ID == transactionID {
			return trx, nil
		}
	}
	return model.Transaction{}, repository.ErrNotFound
}

func (f *fakeRepo) UpdateTransaction(ctx context.Context, trx model.Transaction) error {
	f.updatedTrx = append(f.updatedTrx, trx)
	return nil
}

func (f *fakeRepo) DeleteTransaction(ctx context.Context, transactionID string) error {
	f.deletedTrxIDs = append(f.deletedTrxIDs, transactionID)
	return nil
}

func (f *fakeRepo) InsertWatchlistItem(ctx context.Context, item model.WatchlistItem) error {
	if f.watchlistErr != nil {
		return f.watchlistErr
	}
	f.watchlist = append(f.watchlist, item)
	return nil
}

func (f *fakeRepo) GetWatchlist(ctx context.Context, userID int64) ([]model.WatchlistItem, error) {
	return f.watchlist, nil
}

func (f *fakeRepo) DeleteWatchlistItem(ctx context.Context, userID int64, symbol string) error {
	return nil
}

func (f *fakeRepo) GetTrackedSymbols(ctx context.Context) ([]string, error) {
	return f.trackedSymbols, nil
}

type fakeCache struct {
	quotes map[string]finnhubModel.Quote
	setErr error
	set    [][]finnhubModel.Quote
}

func (f *fakeCache) GetQuote(ctx context.Context, symbol string) (finnhubModel.Quote, error) {
	if q, ok := f.quotes[symbol]; ok {
		return q, nil
	}
	return finnhubModel.Quote{}, errors.New("cache miss")
}

func (f *fakeCache) GetQuotes(ctx context.Context, symbols []string) (map[string]finnhubModel.Quote, error) {
	res := map[string]finnhubModel.Quote{}
	for _, s := range symbols {
		if q, ok := f.quotes[s]; ok {
			res[s] = q
		}
	}
	return res, nil
}

func (f *fakeCache) SetQuotes(ctx context.Context, quotes []finnhubModel.Quote) error {
	f.set = append(f.set, quotes)
	return f.setErr
}

type fakeQuoteApi struct {
	quotes map[string]finnhubModel.Quote
	err    error
}

func (f *fakeQuoteApi) GetQuote(ctx context.Context, symbol string) (finnhubModel.Quote, error) {
	if f.err != nil {
		return finnhubModel.Quote{}, f.err
	}
	if q, ok := f.quotes[symbol]; ok {
		return q, nil
	}
	return finnhubModel.Quote{}, externalApi.ErrNotFound
}

func (f *fakeQuoteApi) GetQuotes(ctx context.Context, symbols []string) (map[string]finnhubModel.Quote, error) {
	if f.err != nil {
		return nil, f.err
	}
	res := map[string]finnhubModel.Quote{}
	for _, s := range symbols {
		if q, ok := f.quotes[s]; ok {
			res[s] = q
		}
	}
	return res, nil
}

func (f *fakeQuoteApi) SearchSymbol(ctx context.Context, query string) ([]finnhubModel.SearchResult, error) {
	return []finnhubModel.SearchResult{{Symbol: "AAPL", Name: "Apple Inc"}}, f.err
}

func (f *fakeQuoteApi) GetCompanyName(ctx context.Context, symbol string) (string, error) {
	return symbol + " Inc", nil
}

type fakeReportGen struct{}

func (fakeReportGen) Generate(ctx context.Context, portfolio model.PortfolioView, transactions []model.Transaction) ([]byte, string, error) {
	return []byte("xlsx"), ".xlsx", nil
}

type fakeCloudStorage struct{ uploaded []string }

func (f *fakeCloudStorage) UploadFile(ctx context.Context, reader io.Reader, filename string) (string, error) {
	f.uploaded = append(f.uploaded, filename)
	return "https://drive.google.com/file/d/abc/view", nil
}

func newService(repo *fakeRepo, c *fakeCache, api *fakeQuoteApi) *TradingService {
	cfg := &config.Config{}
	cfg.Trading.InitialBalance = dec("100000")
	return New(cfg, repo, c, api, fakeReportGen{}, &fakeCloudStorage{})
}

func quote(symbol, price string) finnhubModel.Quote {
	return finnhubModel.Quote{Symbol: symbol, Price: dec(price)}
}

func TestRegisterUser_SeedsPortfolioWithInitialBalance(t *testing.T) {
	repo := &fakeRepo{}
	srv := newService(repo, &fakeCache{}, &fakeQuoteApi{})

	userID, err := srv.RegisterUser(context.Background(), "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
	assert.True(t, repo.portfolio.CashBalance.Equal(dec("100000")))
}

func TestRegisterUser_DuplicateEmail(t *testing.T) {
	repo := &fakeRepo{insertUserErr: repository.ErrAlreadyExists}
	srv := newService(repo, &fakeCache{}, &fakeQuoteApi{})

	_, err := srv.RegisterUser(context.Background(), "user@example.com")
	require.ErrorIs(t, err, service.ErrAlreadyExists)
}

func TestExecuteOrder_BuyPersistsHoldingCashAndTransaction(t *testing.T) {
	repo := &fakeRepo{portfolio: model.Portfolio{UserID: 1, CashBalance: dec("1000")}}
	srv := newService(repo, &fakeCache{}, &fakeQuoteApi{})

	result, err := srv.ExecuteOrder(context.Background(), model.Order{
		UserID:        1,
		Type:          model.OrderTypeBuy,
		Symbol:        "AAPL",
		Shares:        dec("4"),
		PricePerShare: dec("100"),
	})
	require.NoError(t, err)

	assert.True(t, result.CashBalance.Equal(dec("600")))
	require.Len(t, repo.upsertedHoldings, 1)
	assert.True(t, repo.upsertedHoldings[0].Shares.Equal(dec("4")))
	require.NotNil(t, repo.updatedCash)
	assert.True(t, repo.updatedCash.Equal(dec("600")))
	require.Len(t, repo.insertedTrx, 1)
	assert.True(t, repo.insertedTrx[0].TotalAmount.Equal(dec("400")))
	assert.Empty(t, repo.deletedHoldings)
}

func TestExecuteOrder_SellAllDeletesHolding(t *testing.T) {
	repo := &fakeRepo{portfolio: model.Portfolio{
		UserID:      1,
		CashBalance: dec("0"),
		Holdings:    []model.Holding{{Symbol: "AAPL", Shares: dec("4"), AvgCost: dec("100")}},
	}}
	srv := newService(repo, &fakeCache{}, &fakeQuoteApi{})

	result, err := srv.ExecuteOrder(context.Background(), model.Order{
		UserID:        1,
		Type:          model.OrderTypeSell,
		Symbol:        "AAPL",
		Shares:        dec("4"),
		PricePerShare: dec("110"),
	})
	require.NoError(t, err)

	assert.True(t, result.CashBalance.Equal(dec("440")))
	assert.Equal(t, []string{"AAPL"}, repo.deletedHoldings)
	assert.Empty(t, repo.upsertedHoldings)
}

func TestExecuteOrder_ValidationFailurePersistsNothing(t *testing.T) {
	repo := &fakeRepo{portfolio: model.Portfolio{UserID: 1, CashBalance: dec("100")}}
	srv := newService(repo, &fakeCache{}, &fakeQuoteApi{})

	_, err := srv.ExecuteOrder(context.Background(), model.Order{
		UserID:        1,
		Type:          model.OrderTypeBuy,
		Symbol:        "AAPL",
		Shares:        dec("10"),
		PricePerShare: dec("100"),
	})
	require.ErrorIs(t, err, ledger.ErrInsufficientFunds)

	assert.Empty(t, repo.upsertedHoldings)
	assert.Nil(t, repo.updatedCash)
	assert.Empty(t, repo.insertedTrx)
}

func TestExecuteOrder_UnknownPortfolio(t *testing.T) {
	repo := &fakeRepo{portfolioErr: repository.ErrNotFound}
	srv := newService(repo, &fakeCache{}, &fakeQuoteApi{})

	_, err := srv.ExecuteOrder(context.Background(), model.Order{
		UserID:        99,
		Type:          model.OrderTypeBuy,
		Symbol:        "AAPL",
		Shares:        dec("1"),
		PricePerShare: dec("1"),
	})
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestGetPortfolio_MergesCacheAndApiQuotes(t *testing.T) {
	repo := &fakeRepo{portfolio: model.Portfolio{
		UserID:      1,
		CashBalance: dec("500"),
		Holdings: []model.Holding{
			{Symbol: "A", Shares: dec("10"), AvgCost: dec("10")},
			{Symbol: "B", Shares: dec("5"), AvgCost: dec("20")},
		},
	}}
	c := &fakeCache{quotes: map[string]finnhubModel.Quote{"A": quote("A", "15")}}
	api := &fakeQuoteApi{quotes: map[string]finnhubModel.Quote{"B": quote("B", "30")}}
	srv := newService(repo, c, api)

	view, err := srv.GetPortfolio(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, view.Holdings, 2)
	assert.True(t, view.Holdings[0].Priced)
	assert.True(t, view.Holdings[1].Priced)
	// 10*15 + 5*30 + 500 cash
	assert.True(t, view.TotalValue.Equal(dec("800")), "totalValue = %s", view.TotalValue)
}

func TestGetPortfolio_QuoteFailureDegradesHolding(t *testing.T) {
	repo := &fakeRepo{portfolio: model.Portfolio{
		UserID:      1,
		CashBalance: dec("100"),
		Holdings: []model.Holding{
			{Symbol: "A", Shares: dec("10"), AvgCost: dec("10")},
			{Symbol: "MISSING", Shares: dec("1"), AvgCost: dec("1")},
		},
	}}
	c := &fakeCache{}
	api := &fakeQuoteApi{quotes: map[string]finnhubModel.Quote{"A": quote("A", "15")}}
	srv := newService(repo, c, api)

	view, err := srv.GetPortfolio(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, view.Holdings[0].Priced)
	assert.False(t, view.Holdings[1].Priced)
	assert.True(t, view.TotalValue.Equal(dec("250")))
}

func TestGetPortfolio_NotFound(t *testing.T) {
	repo := &fakeRepo{portfolioErr: repository.ErrNotFound}
	srv := newService(repo, &fakeCache{}, &fakeQuoteApi{})

	_, err := srv.GetPortfolio(context.Background(), 1)
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestAddToWatchlist_IdempotentOnDuplicate(t *testing.T) {
	repo := &fakeRepo{watchlistErr: repository.ErrAlreadyExists}
	srv := newService(repo, &fakeCache{}, &fakeQuoteApi{})

	err := srv.AddToWatchlist(context.Background(), 1, "AAPL", "Apple Inc")
	require.NoError(t, err)
}

func TestUpdateTransaction_RejectsInvalidInput(t *testing.T) {
	srv := newService(&fakeRepo{}, &fakeCache{}, &fakeQuoteApi{})

	tests := []struct {
		name string
		trx  model.Transaction
	}{
		{"bad type", model.Transaction{ID: "t1", Type: "short", Shares: dec("1"), PricePerShare: dec("1")}},
		{"zero shares", model.Transaction{ID: "t1", Type: model.OrderTypeBuy, Shares: dec("0"), PricePerShare: dec("1")}},
		{"negative price", model.Transaction{ID: "t1", Type: model.OrderTypeSell, Shares: dec("1"), PricePerShare: dec("-1")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := srv.UpdateTransaction(context.Background(), tt.trx)
			require.ErrorIs(t, err, service.ErrInvalidTransaction)
		})
	}
}

func TestUpdateTransaction_RecomputesTotalAmount(t *testing.T) {
	repo := &fakeRepo{}
	srv := newService(repo, &fakeCache{}, &fakeQuoteApi{})

	err := srv.UpdateTransaction(context.Background(), model.Transaction{
		ID:            "t1",
		Type:          model.OrderTypeBuy,
		Symbol:        "AAPL",
		Shares:        dec("3"),
		PricePerShare: dec("7"),
	})
	require.NoError(t, err)

	require.Len(t, repo.updatedTrx, 1)
	assert.True(t, repo.updatedTrx[0].TotalAmount.Equal(dec("21")))
}

func TestGetStockQuote_FallsBackToApiOnCacheMiss(t *testing.T) {
	api := &fakeQuoteApi{quotes: map[string]finnhubModel.Quote{"AAPL": quote("AAPL", "190")}}
	srv := newService(&fakeRepo{}, &fakeCache{}, api)

	q, err := srv.GetStockQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, q.Price.Equal(dec("190")))
}

func TestGetStockQuote_UnknownSymbol(t *testing.T) {
	srv := newService(&fakeRepo{}, &fakeCache{}, &fakeQuoteApi{})

	_, err := srv.GetStockQuote(context.Background(), "NOPE")
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestGetStockQuote_ProviderDown(t *testing.T) {
	srv := newService(&fakeRepo{}, &fakeCache{}, &fakeQuoteApi{err: errors.New("timeout")})

	_, err := srv.GetStockQuote(context.Background(), "AAPL")
	require.ErrorIs(t, err, service.ErrQuoteUnavailable)
}

func TestRefreshQuoteCache_WarmsTrackedSymbols(t *testing.T) {
	repo := &fakeRepo{trackedSymbols: []string{"A", "B"}}
	c := &fakeCache{}
	api := &fakeQuoteApi{quotes: map[string]finnhubModel.Quote{
		"A": quote("A", "1"),
		"B": quote("B", "2"),
	}}
	srv := newService(repo, c, api)

	err := srv.RefreshQuoteCache(context.Background())
	require.NoError(t, err)

	require.Len(t, c.set, 1)
	assert.Len(t, c.set[0], 2)
}

func TestGeneratePortfolioReport_ReturnsDownloadLink(t *testing.T) {
	repo := &fakeRepo{portfolio: model.Portfolio{UserID: 1, CashBalance: dec("100")}}
	srv := newService(repo, &fakeCache{}, &fakeQuoteApi{})

	link, err := srv.GeneratePortfolioReport(context.Background(), 1)
	require.NoError(t, err)
	assert.Contains(t, link, "drive.google.com")
}
