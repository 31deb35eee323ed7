package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// SubscriptionsCollection est le nom de la collection des abonnements push
const SubscriptionsCollection = "subscriptions"

// Connect établit la connexion à la base de données MongoDB
func Connect(ctx context.Context, uri, dbName string, log *zap.Logger) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// Options de connexion
	clientOptions := options.Client().ApplyURI(uri)

	// Connexion à MongoDB
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la connexion à MongoDB: %w", err)
	}

	// Vérifier la connexion
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("erreur lors du ping MongoDB: %w", err)
	}

	log.Info("✓ Connexion à MongoDB établie", zap.String("database", dbName))

	db := client.Database(dbName)

	// Créer les index
	if err = createIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("erreur lors de la création des index: %w", err)
	}

	log.Info("✓ Index MongoDB créés")
	return db, nil
}

// createIndexes crée les index nécessaires
func createIndexes(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection(SubscriptionsCollection)

	// Index unique sur l'endpoint
	endpointIndex := mongo.IndexModel{
		Keys:    map[string]interface{}{FieldEndpoint: 1},
		Options: options.Index().SetUnique(true),
	}
	if _, err := collection.Indexes().CreateOne(ctx, endpointIndex); err != nil {
		return fmt.Errorf("erreur lors de la création de l'index endpoint: %w", err)
	}

	// Index sur l'expiration pour le nettoyage périodique
	expirationIndex := mongo.IndexModel{
		Keys: map[string]interface{}{FieldExpirationTime: 1},
	}
	if _, err := collection.Indexes().CreateOne(ctx, expirationIndex); err != nil {
		return fmt.Errorf("erreur lors de la création de l'index expiration_time: %w", err)
	}

	return nil
}
