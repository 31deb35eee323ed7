package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"webpush-backend/models"
)

// MemoryStore garde les abonnements dans une map protégée par un verrou
type MemoryStore struct {
	mu            sync.RWMutex
	subscriptions map[string]models.PushSubscription
}

// NewMemoryStore crée un stockage en mémoire vide
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{subscriptions: make(map[string]models.PushSubscription)}
}

func (s *MemoryStore) Save(_ context.Context, subscription *models.PushSubscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.subscriptions[subscription.Endpoint]; ok {
		subscription.ID = existing.ID
		subscription.Created = existing.Created
	}
	s.subscriptions[subscription.Endpoint] = *subscription
	return nil
}

func (s *MemoryStore) FindByEndpoint(_ context.Context, endpoint string) (*models.PushSubscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subscription, ok := s.subscriptions[endpoint]
	if !ok {
		return nil, nil
	}
	return &subscription, nil
}

func (s *MemoryStore) Exists(_ context.Context, endpoint string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.subscriptions[endpoint]
	return ok, nil
}

// FindAll retourne les abonnements triés par date de création
func (s *MemoryStore) FindAll(_ context.Context) ([]models.PushSubscription, error) {
	s.mu.RLock()
	subscriptions := make([]models.PushSubscription, 0, len(s.subscriptions))
	for _, subscription := range s.subscriptions {
		subscriptions = append(subscriptions, subscription)
	}
	s.mu.RUnlock()

	sort.Slice(subscriptions, func(i, j int) bool {
		return subscriptions[i].Created.Before(subscriptions[j].Created)
	})
	return subscriptions, nil
}

func (s *MemoryStore) Delete(_ context.Context, endpoint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.subscriptions, endpoint)
	return nil
}

func (s *MemoryStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for endpoint, subscription := range s.subscriptions {
		if subscription.Expired(now) {
			delete(s.subscriptions, endpoint)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
