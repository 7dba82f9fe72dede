package rest

import (
	"net/http"

	mw "github.com/KotFed0t/paper_trading_api/internal/transport/rest/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(c *Controller) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(mw.RequestID)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/users", c.RegisterUser)

		r.Post("/orders", c.ExecuteOrder)

		r.Get("/portfolio/{userID}", c.GetPortfolio)
		r.Get("/portfolio/{userID}/report", c.GeneratePortfolioReport)

		r.Get("/transactions/{userID}", c.GetTransactions)
		r.Put("/transactions/id/{transactionID}", c.UpdateTransaction)
		r.Delete("/transactions/id/{transactionID}", c.DeleteTransaction)

		r.Get("/watchlist/{userID}", c.GetWatchlist)
		r.Post("/watchlist", c.AddToWatchlist)
		r.Delete("/watchlist/{userID}/{symbol}", c.RemoveFromWatchlist)

		r.Get("/stocks/search", c.SearchStocks)
		r.Get("/stocks/quote/{symbol}", c.GetStockQuote)
	})

	return r
}
