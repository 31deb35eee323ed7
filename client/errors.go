package client

import (
	"errors"
	"fmt"
)

var (
	// ErrSigningKeyMissing : Subscribe appelé avant que la clé du serveur soit récupérée
	ErrSigningKeyMissing = errors.New("clé de signature du serveur non disponible")
	// ErrPermissionDenied : l'utilisateur a refusé les notifications
	ErrPermissionDenied = errors.New("permission de notification refusée")
	// ErrUnsubscribeRejected : la plateforme a refusé le désabonnement
	ErrUnsubscribeRejected = errors.New("désabonnement refusé par la plateforme")
)

// HTTPError est une réponse non-2xx du backend
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus retourne true si err (ou une erreur encapsulée) est une HTTPError avec ce code
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// SyncError signale une divergence entre la plateforme et le backend après un échec partiel
type SyncError struct {
	Op       string
	Endpoint string
	Err      error
	// Compensated indique que l'action compensatoire a réussi
	Compensated bool
}

func (e *SyncError) Error() string {
	state := "non compensé"
	if e.Compensated {
		state = "compensé"
	}
	return fmt.Sprintf("%s: plateforme et backend divergent pour %s (%s): %v", e.Op, e.Endpoint, state, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}
