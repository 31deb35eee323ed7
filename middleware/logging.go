package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// responseWriter wrapper pour capturer le code de statut
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Logging enregistre les requêtes HTTP : debug pour les succès, warn pour les 4xx, error pour les 5xx
func Logging(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Créer un wrapper pour capturer le code de statut
			rw := newResponseWriter(w)

			// Traiter la requête
			next.ServeHTTP(rw, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("uri", r.RequestURI),
				zap.Int("status", rw.statusCode),
				zap.Duration("duration", time.Since(start)),
			}

			switch {
			case rw.statusCode >= http.StatusInternalServerError:
				log.Error("❌ Requête en erreur", fields...)
			case rw.statusCode >= http.StatusBadRequest:
				log.Warn("⚠️ Requête refusée", fields...)
			default:
				log.Debug("Requête traitée", fields...)
			}
		})
	}
}
