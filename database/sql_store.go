package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"webpush-backend/config"
	"webpush-backend/models"
)

const createSubscriptionsTable = `CREATE TABLE IF NOT EXISTS push_subscriptions (
	id TEXT PRIMARY KEY,
	endpoint TEXT NOT NULL UNIQUE,
	expiration_time BIGINT,
	p256dh TEXT NOT NULL,
	auth TEXT NOT NULL,
	created_at BIGINT NOT NULL
)`

const (
	upsertSubscription = `INSERT INTO push_subscriptions (id, endpoint, expiration_time, p256dh, auth, created_at) ` +
		`VALUES (?, ?, ?, ?, ?, ?) ON CONFLICT (endpoint) DO UPDATE SET ` +
		`expiration_time = excluded.expiration_time, p256dh = excluded.p256dh, auth = excluded.auth`
	selectSubscriptions = `SELECT id, endpoint, expiration_time, p256dh, auth, created_at FROM push_subscriptions`
	selectByEndpoint    = selectSubscriptions + ` WHERE endpoint = ?`
	selectAllOrdered    = selectSubscriptions + ` ORDER BY created_at`
	existsByEndpoint    = `SELECT COUNT(1) FROM push_subscriptions WHERE endpoint = ?`
	deleteByEndpoint    = `DELETE FROM push_subscriptions WHERE endpoint = ?`
	deleteExpiredBefore = `DELETE FROM push_subscriptions WHERE expiration_time IS NOT NULL AND expiration_time < ?`
)

// SQLStore stocke les abonnements dans SQLite ou PostgreSQL
type SQLStore struct {
	db      *sql.DB
	dialect string
}

// OpenSQL ouvre la base et crée la table des abonnements
func OpenSQL(ctx context.Context, dialect, dsn string) (*SQLStore, error) {
	driverName := "sqlite"
	if dialect == config.StorePostgres {
		driverName = "postgres"
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de l'ouverture de la base %s: %w", dialect, err)
	}

	store, err := NewSQLStore(ctx, db, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLStore utilise une connexion existante et applique le schéma
func NewSQLStore(ctx context.Context, db *sql.DB, dialect string) (*SQLStore, error) {
	if dialect == config.StoreSQLite {
		// SQLite sérialise les écritures, et ":memory:" est propre à chaque connexion
		db.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, createSubscriptionsTable); err != nil {
		return nil, fmt.Errorf("erreur lors de la création de la table push_subscriptions: %w", err)
	}

	return &SQLStore{db: db, dialect: dialect}, nil
}

// rebind remplace les "?" par "$1, $2..." pour PostgreSQL
func (s *SQLStore) rebind(query string) string {
	if s.dialect != config.StorePostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSubscription(row rowScanner) (*models.PushSubscription, error) {
	var (
		subscription models.PushSubscription
		expiration   sql.NullInt64
		createdAt    int64
	)
	err := row.Scan(&subscription.ID, &subscription.Endpoint, &expiration,
		&subscription.Keys.P256dh, &subscription.Keys.Auth, &createdAt)
	if err != nil {
		return nil, err
	}
	if expiration.Valid {
		value := expiration.Int64
		subscription.ExpirationTime = &value
	}
	subscription.Created = time.UnixMilli(createdAt).UTC()
	return &subscription, nil
}

func (s *SQLStore) Save(ctx context.Context, subscription *models.PushSubscription) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var expiration sql.NullInt64
	if subscription.ExpirationTime != nil {
		expiration = sql.NullInt64{Int64: *subscription.ExpirationTime, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, s.rebind(upsertSubscription),
		subscription.ID, subscription.Endpoint, expiration,
		subscription.Keys.P256dh, subscription.Keys.Auth, subscription.Created.UnixMilli())
	if err != nil {
		return fmt.Errorf("erreur lors de l'enregistrement de l'abonnement: %w", err)
	}

	stored, err := s.FindByEndpoint(ctx, subscription.Endpoint)
	if err != nil {
		return err
	}
	if stored != nil {
		subscription.ID = stored.ID
		subscription.Created = stored.Created
	}
	return nil
}

func (s *SQLStore) FindByEndpoint(ctx context.Context, endpoint string) (*models.PushSubscription, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	subscription, err := scanSubscription(s.db.QueryRowContext(ctx, s.rebind(selectByEndpoint), endpoint))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la recherche de l'abonnement: %w", err)
	}
	return subscription, nil
}

func (s *SQLStore) Exists(ctx context.Context, endpoint string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var count int64
	if err := s.db.QueryRowContext(ctx, s.rebind(existsByEndpoint), endpoint).Scan(&count); err != nil {
		return false, fmt.Errorf("erreur lors de la vérification de l'abonnement: %w", err)
	}
	return count > 0, nil
}

func (s *SQLStore) FindAll(ctx context.Context) ([]models.PushSubscription, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, selectAllOrdered)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la recherche des abonnements: %w", err)
	}
	defer rows.Close()

	subscriptions := []models.PushSubscription{}
	for rows.Next() {
		subscription, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("erreur lors du décodage des abonnements: %w", err)
		}
		subscriptions = append(subscriptions, *subscription)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erreur lors du parcours des abonnements: %w", err)
	}
	return subscriptions, nil
}

func (s *SQLStore) Delete(ctx context.Context, endpoint string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, s.rebind(deleteByEndpoint), endpoint); err != nil {
		return fmt.Errorf("erreur lors de la suppression de l'abonnement: %w", err)
	}
	return nil
}

func (s *SQLStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := s.db.ExecContext(ctx, s.rebind(deleteExpiredBefore), now.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("erreur lors de la suppression des abonnements expirés: %w", err)
	}
	return result.RowsAffected()
}

func (s *SQLStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
