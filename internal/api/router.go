package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/AlexZinkM/guest-wallet/docs"
	"github.com/AlexZinkM/guest-wallet/internal/handler"
	"github.com/AlexZinkM/guest-wallet/internal/logger"
	"github.com/AlexZinkM/guest-wallet/near"
)

// SetupRouter sets up router with handlers
func SetupRouter(app *near.App) http.Handler {
	guestHandler := handler.NewGuestHandler(app)
	contractHandler := handler.NewContractHandler(app)

	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	// Guest session endpoints
	mux.HandleFunc("/guest/access", guestHandler.RequestAccess)
	mux.HandleFunc("/guest/signin", guestHandler.SignIn)
	mux.HandleFunc("/guest/signout", guestHandler.SignOut)
	mux.HandleFunc("/guest/revoke", guestHandler.Revoke)
	mux.HandleFunc("/guest/status", guestHandler.Status)

	// Wallet session endpoints
	mux.HandleFunc("/wallet/signin", guestHandler.WalletSignIn)
	mux.HandleFunc("/wallet/signout", guestHandler.WalletSignOut)

	// Contract endpoints
	mux.HandleFunc("/contract/mint", contractHandler.Mint)
	mux.HandleFunc("/contract/transfer", contractHandler.Transfer)
	mux.HandleFunc("/contract/price", contractHandler.SetPrice)
	mux.HandleFunc("/contract/purchase", contractHandler.Purchase)
	mux.HandleFunc("/contract/withdraw", contractHandler.Withdraw)
	mux.HandleFunc("/contract/tokens", contractHandler.Tokens)
	mux.HandleFunc("/contract/proceeds", contractHandler.Proceeds)

	return requestLogger(mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestLogger logs every request with a request id.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		lg := logger.Get()
		lg.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}
