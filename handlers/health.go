package handlers

import (
	"net/http"
	"runtime"
	"time"

	"webpush-backend/database"
	"webpush-backend/utils"
)

var startTime = time.Now()

// HealthHandler gère les endpoints de santé
type HealthHandler struct {
	environment string
	driver      string
	store       database.SubscriptionStore
}

// NewHealthHandler crée un nouveau HealthHandler
func NewHealthHandler(environment, driver string, store database.SubscriptionStore) *HealthHandler {
	return &HealthHandler{environment: environment, driver: driver, store: store}
}

// Health retourne l'état de santé du serveur avec métriques
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(startTime).String()

	details := map[string]interface{}{
		"status":       "ok",
		"env":          h.environment,
		"store":        h.driver,
		"store_status": "ok",
		"uptime":       uptime,
		"go_version":   runtime.Version(),
	}

	// Vérifier le stockage des abonnements
	if err := h.store.Ping(r.Context()); err != nil {
		details["status"] = "degraded"
		details["store_status"] = "error"
		details["message"] = "Le stockage des abonnements est indisponible"
		utils.RespondJSON(w, http.StatusServiceUnavailable, details)
		return
	}

	utils.RespondSuccess(w, "Le serveur fonctionne correctement", details)
}
