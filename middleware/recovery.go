package middleware

import (
	"net/http"

	"github.com/gorilla/handlers"
	"go.uber.org/zap"
)

// Recovery transforme une panique dans un handler en réponse 500 et la journalise
func Recovery(log *zap.Logger) func(http.Handler) http.Handler {
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(zap.NewStdLog(log)),
		handlers.PrintRecoveryStack(true),
	)
}
