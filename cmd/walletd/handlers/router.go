package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/iov-one/custody/cmd/walletd/app"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/wallet"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendermint/tendermint/libs/log"
)

// NewRouter returns the HTTP API of walletd serving a.
func NewRouter(a *app.Application, logger log.Logger, debug bool) http.Handler {
	e := &env{App: a, Logger: logger, Debug: debug, Seen: NewSeenSignatures()}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(instrument(logger))

	r.Method("GET", "/info", &InfoHandler{e})
	r.Method("GET", "/metrics", promhttp.Handler())
	r.Route("/v1", func(r chi.Router) {
		r.Method("GET", "/wallet", &WalletHandler{e})
		r.Method("GET", "/owners/{address}", &OwnerHandler{e})
		r.Method("GET", "/transactions", &TransactionsHandler{e})
		r.Method("GET", "/transactions/{index}", &TransactionHandler{e})
		r.Method("GET", "/transactions/{index}/confirmations", &ConfirmationsHandler{e})
		r.Method("GET", "/transactions/{index}/confirmations/{owner}", &ConfirmationHandler{e})
		r.Method("GET", "/cash/{address}", &CashBalanceHandler{e})
		r.Method("GET", "/token", &TokenInfoHandler{e})
		r.Method("GET", "/token/{address}", &TokenBalanceHandler{e})
		r.Method("GET", "/events", &EventsHandler{e})

		r.Group(func(r chi.Router) {
			r.Use(RequireSignature(logger, debug, time.Now, e.Seen))
			r.Method("POST", "/transactions", &SubmitHandler{e})
			r.Method("POST", "/transactions/{index}/confirm", &ActionHandler{env: e, Action: (*wallet.Wallet).Confirm})
			r.Method("POST", "/transactions/{index}/revoke", &ActionHandler{env: e, Action: (*wallet.Wallet).Revoke})
			r.Method("POST", "/transactions/{index}/execute", &ActionHandler{env: e, Action: (*wallet.Wallet).Execute})
			r.Method("POST", "/cash/transfer", &CashTransferHandler{e})
			r.Method("POST", "/token/transfer", &TokenTransferHandler{e})
		})
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		JSONErr(w, logger, debug, errors.Wrapf(errors.ErrNotFound, "no route %s %s", r.Method, r.URL.Path))
	})
	return r
}

var requestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "custody",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of walletd HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"route", "method", "code"},
)

// instrument measures and logs every request.
func instrument(logger log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := "unknown"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			delta := time.Since(start)
			requestDuration.WithLabelValues(route, r.Method, strconv.Itoa(status)).Observe(delta.Seconds())
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", status, "duration", delta)
		})
	}
}
