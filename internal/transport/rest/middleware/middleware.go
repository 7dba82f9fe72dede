package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/KotFed0t/paper_trading_api/utils"
	"github.com/google/uuid"
)

// RequestID assigns every request a uuid, puts it into the context and
// logs the request duration on the way out.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()

		rqID := uuid.NewString()
		ctx := utils.CtxWithRqID(r.Context(), rqID)
		w.Header().Set("X-Request-Id", rqID)

		slog.Info(
			"start request",
			slog.String("rqID", rqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)

		defer func() {
			slog.Info(
				"request finished",
				slog.String("rqID", rqID),
				slog.String("request duration", fmt.Sprintf("%.2fs", time.Since(now).Seconds())),
			)
		}()

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
