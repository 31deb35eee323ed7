package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"webpush-backend/constants"
	"webpush-backend/middleware"
	"webpush-backend/utils"
)

// apiPrefix préfixe les routes de l'API push
const apiPrefix = "/api/v1"

// Routes regroupe les handlers montés sur le routeur
type Routes struct {
	Subscriptions *SubscriptionHandler
	Health        *HealthHandler
	// SendLimit limite /api/v1/send (nil : pas de limite)
	SendLimit func(http.Handler) http.Handler
	// Metrics expose /metrics si non nil
	Metrics http.Handler
	// Static sert la page de démo et les scripts si non nil
	Static http.Handler
}

// NewRouter crée le routeur de l'API avec ses middlewares globaux
func NewRouter(routes Routes, corsOrigins []string, log *zap.Logger) *mux.Router {
	router := mux.NewRouter()

	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logging(log))
	router.Use(middleware.CORS(corsOrigins))

	sendLimit := routes.SendLimit
	if sendLimit == nil {
		sendLimit = func(next http.Handler) http.Handler { return next }
	}

	// Routes à plat : un sous-routeur mux efface l'erreur de méthode dès la route suivante
	router.HandleFunc(apiPrefix+"/publicSigningKey", routes.Subscriptions.PublicSigningKey).Methods("GET", "OPTIONS")
	router.HandleFunc(apiPrefix+"/subscribe", routes.Subscriptions.Subscribe).Methods("POST", "OPTIONS")
	router.HandleFunc(apiPrefix+"/unsubscribe", routes.Subscriptions.Unsubscribe).Methods("POST", "OPTIONS")
	router.HandleFunc(apiPrefix+"/isSubscribed", routes.Subscriptions.IsSubscribed).Methods("POST", "OPTIONS")
	router.Handle(apiPrefix+"/send", sendLimit(http.HandlerFunc(routes.Subscriptions.Send))).Methods("POST", "OPTIONS")

	// Route de santé (health check)
	router.HandleFunc("/api/health", routes.Health.Health).Methods("GET")

	if routes.Metrics != nil {
		router.Handle("/metrics", routes.Metrics).Methods("GET")
	}

	// Les fichiers statiques ne répondent jamais sous /api/
	if routes.Static != nil {
		router.MatcherFunc(notAPI).PathPrefix("/").Handler(routes.Static).Methods("GET", "HEAD")
	}

	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	router.NotFoundHandler = http.HandlerFunc(notFound)

	return router
}

func notAPI(r *http.Request, _ *mux.RouteMatch) bool {
	return !strings.HasPrefix(r.URL.Path, "/api/")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	utils.RespondError(w, http.StatusMethodNotAllowed, constants.ErrMethodNotAllowed)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	utils.RespondError(w, http.StatusNotFound, constants.ErrRouteNotFound)
}
