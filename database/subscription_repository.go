package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"webpush-backend/models"
)

// MongoSubscriptionStore gère les abonnements push dans MongoDB
type MongoSubscriptionStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoSubscriptionStore crée une nouvelle instance de MongoSubscriptionStore
func NewMongoSubscriptionStore(db *mongo.Database) *MongoSubscriptionStore {
	return &MongoSubscriptionStore{
		client:     db.Client(),
		collection: db.Collection(SubscriptionsCollection),
	}
}

// Save crée ou met à jour un abonnement
func (r *MongoSubscriptionStore) Save(ctx context.Context, subscription *models.PushSubscription) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		BSONSet: bson.M{
			FieldExpirationTime: subscription.ExpirationTime,
			FieldKeys:           subscription.Keys,
		},
		BSONSetOnInsert: bson.M{
			FieldID:        subscription.ID,
			FieldCreatedAt: subscription.Created,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{FieldEndpoint: subscription.Endpoint}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("erreur lors de l'enregistrement de l'abonnement: %w", err)
	}

	// Abonnement existant : récupérer l'ID et la date de création conservés
	if result.UpsertedCount == 0 {
		var stored models.PushSubscription
		if err := r.collection.FindOne(ctx, bson.M{FieldEndpoint: subscription.Endpoint}).Decode(&stored); err != nil {
			return fmt.Errorf("erreur lors de la relecture de l'abonnement: %w", err)
		}
		subscription.ID = stored.ID
		subscription.Created = stored.Created
	}

	return nil
}

// FindAll retourne tous les abonnements
func (r *MongoSubscriptionStore) FindAll(ctx context.Context) ([]models.PushSubscription, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	subscriptions := []models.PushSubscription{}
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{FieldCreatedAt: 1}))
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la recherche des abonnements: %w", err)
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &subscriptions); err != nil {
		return nil, fmt.Errorf("erreur lors du décodage des abonnements: %w", err)
	}

	return subscriptions, nil
}

// FindByEndpoint recherche un abonnement par endpoint
func (r *MongoSubscriptionStore) FindByEndpoint(ctx context.Context, endpoint string) (*models.PushSubscription, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var subscription models.PushSubscription
	err := r.collection.FindOne(ctx, bson.M{FieldEndpoint: endpoint}).Decode(&subscription)

	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("erreur lors de la recherche de l'abonnement: %w", err)
	}

	return &subscription, nil
}

// Exists indique si un abonnement existe pour cet endpoint
func (r *MongoSubscriptionStore) Exists(ctx context.Context, endpoint string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{FieldEndpoint: endpoint}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("erreur lors de la vérification de l'abonnement: %w", err)
	}
	return count > 0, nil
}

// Delete supprime un abonnement par endpoint
func (r *MongoSubscriptionStore) Delete(ctx context.Context, endpoint string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.collection.DeleteOne(ctx, bson.M{FieldEndpoint: endpoint})
	if err != nil {
		return fmt.Errorf("erreur lors de la suppression de l'abonnement: %w", err)
	}

	return nil
}

// DeleteExpired supprime les abonnements dont la date d'expiration est passée
func (r *MongoSubscriptionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{FieldExpirationTime: bson.M{BSONLt: now.UnixMilli()}})
	if err != nil {
		return 0, fmt.Errorf("erreur lors de la suppression des abonnements expirés: %w", err)
	}

	return result.DeletedCount, nil
}

// Ping vérifie que la connexion MongoDB est active
func (r *MongoSubscriptionStore) Ping(ctx context.Context) error {
	if r.client == nil {
		return fmt.Errorf("client MongoDB non initialisé")
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.client.Ping(ctx, nil)
}

// Close ferme la connexion à la base de données
func (r *MongoSubscriptionStore) Close() error {
	if r.client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return r.client.Disconnect(ctx)
	}
	return nil
}
