package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"webpush-backend/models"
)

// RedisSubscriptionsKey est le hash endpoint -> abonnement JSON
const RedisSubscriptionsKey = "webpush:subscriptions"

// RedisOptions contient les paramètres de connexion Redis
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore stocke les abonnements dans un hash Redis
type RedisStore struct {
	Client *redis.Client
}

// NewRedisStore crée un client Redis
func NewRedisStore(opts RedisOptions) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	return &RedisStore{Client: rdb}
}

func (s *RedisStore) Save(ctx context.Context, subscription *models.PushSubscription) error {
	existing, err := s.FindByEndpoint(ctx, subscription.Endpoint)
	if err != nil {
		return err
	}
	if existing != nil {
		subscription.ID = existing.ID
		subscription.Created = existing.Created
	}

	data, err := json.Marshal(subscription)
	if err != nil {
		return fmt.Errorf("erreur lors de l'encodage de l'abonnement: %w", err)
	}
	if err := s.Client.HSet(ctx, RedisSubscriptionsKey, subscription.Endpoint, data).Err(); err != nil {
		return fmt.Errorf("erreur lors de l'enregistrement de l'abonnement: %w", err)
	}
	return nil
}

func (s *RedisStore) FindByEndpoint(ctx context.Context, endpoint string) (*models.PushSubscription, error) {
	data, err := s.Client.HGet(ctx, RedisSubscriptionsKey, endpoint).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la recherche de l'abonnement: %w", err)
	}

	var subscription models.PushSubscription
	if err := json.Unmarshal(data, &subscription); err != nil {
		return nil, fmt.Errorf("erreur lors du décodage de l'abonnement: %w", err)
	}
	return &subscription, nil
}

func (s *RedisStore) Exists(ctx context.Context, endpoint string) (bool, error) {
	ok, err := s.Client.HExists(ctx, RedisSubscriptionsKey, endpoint).Result()
	if err != nil {
		return false, fmt.Errorf("erreur lors de la vérification de l'abonnement: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) FindAll(ctx context.Context) ([]models.PushSubscription, error) {
	values, err := s.Client.HGetAll(ctx, RedisSubscriptionsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la recherche des abonnements: %w", err)
	}

	subscriptions := make([]models.PushSubscription, 0, len(values))
	for endpoint, data := range values {
		var subscription models.PushSubscription
		if err := json.Unmarshal([]byte(data), &subscription); err != nil {
			return nil, fmt.Errorf("erreur lors du décodage de l'abonnement %s: %w", endpoint, err)
		}
		subscriptions = append(subscriptions, subscription)
	}

	sort.Slice(subscriptions, func(i, j int) bool {
		return subscriptions[i].Created.Before(subscriptions[j].Created)
	})
	return subscriptions, nil
}

func (s *RedisStore) Delete(ctx context.Context, endpoint string) error {
	if err := s.Client.HDel(ctx, RedisSubscriptionsKey, endpoint).Err(); err != nil {
		return fmt.Errorf("erreur lors de la suppression de l'abonnement: %w", err)
	}
	return nil
}

func (s *RedisStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	subscriptions, err := s.FindAll(ctx)
	if err != nil {
		return 0, err
	}

	var expired []string
	for _, subscription := range subscriptions {
		if subscription.Expired(now) {
			expired = append(expired, subscription.Endpoint)
		}
	}
	if len(expired) == 0 {
		return 0, nil
	}

	removed, err := s.Client.HDel(ctx, RedisSubscriptionsKey, expired...).Result()
	if err != nil {
		return 0, fmt.Errorf("erreur lors de la suppression des abonnements expirés: %w", err)
	}
	return removed, nil
}

// Ping vérifie la connexion Redis
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close ferme la connexion Redis
func (s *RedisStore) Close() error {
	if s.Client != nil {
		return s.Client.Close()
	}
	return nil
}
