package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"webpush-backend/config"
	"webpush-backend/database"
	"webpush-backend/handlers"
	"webpush-backend/logger"
	"webpush-backend/middleware"
	"webpush-backend/services"
	"webpush-backend/web"
)

func main() {
	// Charger la configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Erreur lors du chargement de la configuration: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer zlog.Sync()

	// Clés du serveur (générées au premier démarrage)
	keys, err := services.NewServerKeysService(cfg.PublicKeyPath, cfg.PrivateKeyPath, zlog)
	if err != nil {
		zlog.Fatal("❌ Erreur lors du chargement des clés du serveur", zap.Error(err))
	}

	// Stockage des abonnements
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := database.Open(ctx, cfg, zlog)
	cancel()
	if err != nil {
		zlog.Fatal("❌ Erreur de connexion au stockage", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer store.Close()

	messageService := services.NewMessageService(store, keys, cfg.VAPIDSubject, cfg.PushTTL, nil, zlog)

	// Purge périodique des abonnements expirés
	pruner := services.NewSubscriptionPruner(store, cfg.PruneSchedule, zlog)
	if err := pruner.Start(); err != nil {
		zlog.Fatal("❌ Erreur lors du démarrage de la purge", zap.Error(err))
	}
	defer pruner.Stop()

	sendLimit, err := middleware.RateLimit(cfg.SendRateLimit, zlog)
	if err != nil {
		zlog.Fatal("❌ SEND_RATE_LIMIT invalide", zap.Error(err))
	}

	// Créer le routeur
	router := handlers.NewRouter(handlers.Routes{
		Subscriptions: handlers.NewSubscriptionHandler(store, keys, messageService, zlog),
		Health:        handlers.NewHealthHandler(cfg.Environment, cfg.StoreDriver, store),
		SendLimit:     sendLimit,
		Metrics:       promhttp.Handler(),
		Static:        web.Handler(),
	}, cfg.CORSOrigins, zlog)

	// Démarrer le serveur
	addr := cfg.Addr()
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Gérer l'arrêt gracieux du serveur
	go func() {
		zlog.Info("🚀 Serveur démarré sur http://" + addr)
		zlog.Info("📝 Environnement: " + cfg.Environment)
		zlog.Info("🗄️  Stockage: " + cfg.StoreDriver)
		zlog.Info("🔑 Clé publique: " + keys.PublicKeyBase64())
		zlog.Info("📋 Routes disponibles:\n" +
			"   GET    /api/v1/publicSigningKey - Clé publique du serveur (65 octets)\n" +
			"   POST   /api/v1/subscribe        - S'abonner\n" +
			"   POST   /api/v1/unsubscribe      - Se désabonner\n" +
			"   POST   /api/v1/isSubscribed     - Vérifier un abonnement\n" +
			"   POST   /api/v1/send             - Envoyer à tous les abonnés\n" +
			"   GET    /api/health              - Health check\n" +
			"   GET    /metrics                 - Métriques Prometheus\n" +
			"   GET    /                        - Page de démo")
		zlog.Info("✨ Le serveur est prêt à recevoir des requêtes!")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("❌ Erreur du serveur", zap.Error(err))
		}
	}()

	// Attendre le signal d'arrêt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("🛑 Arrêt du serveur...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error("❌ Erreur lors de l'arrêt du serveur", zap.Error(err))
	}
	zlog.Info("✓ Serveur arrêté proprement")
}
