package httpapi

import (
	"net/http"

	"github.com/riskibarqy/league-tracker/internal/platform/logging"
)

func NewRouter(handler *Handler, logger *logging.Logger, corsAllowedOrigins []string) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("POST /v1/collections/trigger", handler.TriggerCollection)
	mux.HandleFunc("GET /v1/collections/status", handler.GetCollectionStatus)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/standings", handler.GetLeagueStandings)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/top-scorers", handler.GetTopScorers)

	return RequestTracing(RequestLogging(logger, CORS(corsAllowedOrigins, recoverPanic(logger, mux))))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
