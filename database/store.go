package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"webpush-backend/config"
	"webpush-backend/models"
)

// SubscriptionStore persiste les abonnements push, indexés par endpoint
type SubscriptionStore interface {
	// Save insère ou met à jour l'abonnement ayant le même endpoint.
	// L'ID et la date de création d'un abonnement existant sont conservés.
	Save(ctx context.Context, subscription *models.PushSubscription) error
	// FindByEndpoint retourne nil, nil si l'endpoint est inconnu
	FindByEndpoint(ctx context.Context, endpoint string) (*models.PushSubscription, error)
	Exists(ctx context.Context, endpoint string) (bool, error)
	FindAll(ctx context.Context) ([]models.PushSubscription, error)
	// Delete ne renvoie pas d'erreur si l'endpoint est inconnu
	Delete(ctx context.Context, endpoint string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// Open ouvre le stockage choisi par STORE_DRIVER
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (SubscriptionStore, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Info("✓ Stockage des abonnements en mémoire")
		return NewMemoryStore(), nil

	case config.StoreMongo:
		db, err := Connect(ctx, cfg.MongoURI, cfg.MongoDB, log)
		if err != nil {
			return nil, err
		}
		return NewMongoSubscriptionStore(db), nil

	case config.StoreRedis:
		store := NewRedisStore(RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, err
		}
		log.Info("✓ Connexion à Redis établie", zap.String("addr", cfg.RedisAddr))
		return store, nil

	case config.StoreSQLite, config.StorePostgres:
		store, err := OpenSQL(ctx, cfg.StoreDriver, cfg.SQLDSN)
		if err != nil {
			return nil, err
		}
		log.Info("✓ Connexion SQL établie", zap.String("driver", cfg.StoreDriver))
		return store, nil
	}

	return nil, fmt.Errorf("pilote de stockage inconnu: %s", cfg.StoreDriver)
}
