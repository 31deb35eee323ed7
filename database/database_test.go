package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"webpush-backend/config"
	"webpush-backend/models"
)

func TestPing_clientNil(t *testing.T) {
	store := &MongoSubscriptionStore{}

	err := store.Ping(context.Background())
	if err == nil {
		t.Error("Ping() devrait échouer quand le client est nil")
	}
	if err != nil && err.Error() != "client MongoDB non initialisé" {
		t.Errorf("Ping() erreur = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("Close() erreur = %v", err)
	}
}

func TestOpen_memory(t *testing.T) {
	store, err := Open(context.Background(), &config.Config{StoreDriver: config.StoreMemory}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)
}

func TestOpen_sqlite(t *testing.T) {
	store, err := Open(context.Background(), &config.Config{StoreDriver: config.StoreSQLite, SQLDSN: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	defer store.Close()
	assert.IsType(t, &SQLStore{}, store)
}

func TestOpen_unknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{StoreDriver: "cassandra"}, zap.NewNop())
	assert.EqualError(t, err, "pilote de stockage inconnu: cassandra")
}

func TestRebind(t *testing.T) {
	pg := &SQLStore{dialect: config.StorePostgres}
	lite := &SQLStore{dialect: config.StoreSQLite}

	query := "DELETE FROM t WHERE a = ? AND b = ?"
	assert.Equal(t, "DELETE FROM t WHERE a = $1 AND b = $2", pg.rebind(query))
	assert.Equal(t, query, lite.rebind(query))
}

func TestSQLStore_postgresDialect(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS push_subscriptions`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	store, err := NewSQLStore(context.Background(), db, config.StorePostgres)
	require.NoError(t, err)

	created := time.UnixMilli(1_700_000_000_000)
	mock.ExpectExec(`INSERT INTO push_subscriptions .* VALUES \(\$1, \$2, \$3, \$4, \$5, \$6\) ON CONFLICT \(endpoint\) DO UPDATE`).
		WithArgs("id-1", "https://push.example.com/1", nil, "p", "a", created.UnixMilli()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT id, endpoint, expiration_time, p256dh, auth, created_at FROM push_subscriptions WHERE endpoint = \$1`).
		WithArgs("https://push.example.com/1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "endpoint", "expiration_time", "p256dh", "auth", "created_at"}).
			AddRow("id-1", "https://push.example.com/1", nil, "p", "a", created.UnixMilli()))

	subscription := &models.PushSubscription{
		ID:       "id-1",
		Endpoint: "https://push.example.com/1",
		Keys:     models.SubscriptionKeys{P256dh: "p", Auth: "a"},
		Created:  created,
	}
	require.NoError(t, store.Save(context.Background(), subscription))

	mock.ExpectExec(`DELETE FROM push_subscriptions WHERE expiration_time IS NOT NULL AND expiration_time < \$1`).
		WithArgs(created.UnixMilli()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	removed, err := store.DeleteExpired(context.Background(), created)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	assert.NoError(t, mock.ExpectationsWereMet())
}
