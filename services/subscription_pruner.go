package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"webpush-backend/database"
	"webpush-backend/metrics"
)

// SubscriptionPruner supprime périodiquement les abonnements expirés
type SubscriptionPruner struct {
	store    database.SubscriptionStore
	schedule string
	cron     *cron.Cron
	log      *zap.Logger
}

// NewSubscriptionPruner crée une nouvelle instance
func NewSubscriptionPruner(store database.SubscriptionStore, schedule string, log *zap.Logger) *SubscriptionPruner {
	return &SubscriptionPruner{
		store:    store,
		schedule: schedule,
		cron:     cron.New(),
		log:      log,
	}
}

// Start démarre le cron job
func (p *SubscriptionPruner) Start() error {
	_, err := p.cron.AddFunc(p.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_, _ = p.Prune(ctx)
	})
	if err != nil {
		return fmt.Errorf("planification invalide %q: %w", p.schedule, err)
	}
	p.cron.Start()
	p.log.Info("✓ Cron job nettoyage des abonnements démarré", zap.String("schedule", p.schedule))
	return nil
}

// Stop arrête le cron job et attend la fin d'un nettoyage en cours
func (p *SubscriptionPruner) Stop() {
	<-p.cron.Stop().Done()
}

// Prune supprime les abonnements dont la date d'expiration est passée
func (p *SubscriptionPruner) Prune(ctx context.Context) (int64, error) {
	removed, err := p.store.DeleteExpired(ctx, time.Now())
	if err != nil {
		p.log.Error("Erreur lors du nettoyage des abonnements expirés", zap.Error(err))
		return 0, err
	}
	if removed > 0 {
		metrics.PushSubscriptionsRemoved.WithLabelValues("expired").Add(float64(removed))
		p.log.Info("🧹 Abonnements expirés supprimés", zap.Int64("count", removed))
	}

	remaining, err := p.store.FindAll(ctx)
	if err != nil {
		p.log.Warn("Comptage des abonnements impossible après nettoyage", zap.Error(err))
		return removed, nil
	}
	metrics.PushSubscriptions.Set(float64(len(remaining)))
	return removed, nil
}
