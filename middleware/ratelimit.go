package middleware

import (
	"fmt"
	"net/http"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"

	"webpush-backend/constants"
	"webpush-backend/utils"
)

// RateLimit limite le nombre de requêtes par IP. rate suit le format de limiter
// ("30-M" = 30 requêtes par minute). Une chaîne vide désactive la limite.
func RateLimit(rate string, log *zap.Logger) (func(http.Handler) http.Handler, error) {
	if rate == "" {
		return func(next http.Handler) http.Handler { return next }, nil
	}

	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("limite de débit invalide %q: %w", rate, err)
	}

	instance := limiter.New(memory.NewStore(), parsed, limiter.WithTrustForwardHeader(true))
	mw := stdlib.NewMiddleware(instance,
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			log.Warn("⚠️ Limite de débit atteinte", zap.String("uri", r.RequestURI), zap.String("remote", r.RemoteAddr))
			utils.RespondError(w, http.StatusTooManyRequests, constants.ErrTooManyRequests)
		}),
		stdlib.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			log.Error("Erreur du limiteur de débit", zap.Error(err))
			utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		}),
	)

	return mw.Handler, nil
}
