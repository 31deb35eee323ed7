package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Pilotes de stockage des abonnements supportés
const (
	StoreMemory   = "memory"
	StoreMongo    = "mongo"
	StoreRedis    = "redis"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config contient toutes les configurations de l'application
type Config struct {
	Port           string
	Host           string
	Environment    string
	LogLevel       string
	LogFormat      string
	PublicKeyPath  string
	PrivateKeyPath string
	VAPIDSubject   string
	PushTTL        int
	StoreDriver    string
	MongoURI       string
	MongoDB        string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	SQLDSN         string
	CORSOrigins    []string
	SendRateLimit  string
	PruneSchedule  string

	// Utilisés par la démo (cmd/pushdemo)
	BackendURL string
	PushListen string
	DemoLog    string
}

var defaults = map[string]interface{}{
	"PORT":                 "8090",
	"HOST":                 "0.0.0.0",
	"ENVIRONMENT":          "development",
	"LOG_LEVEL":            "info",
	"LOG_FORMAT":           "console",
	"PUBLIC_KEY_PATH":      "server-public.der",
	"PRIVATE_KEY_PATH":     "server-private.der",
	"VAPID_SUBJECT":        "mailto:example@example.com",
	"PUSH_TTL":             180,
	"STORE_DRIVER":         StoreMemory,
	"MONGO_URI":            "mongodb://localhost:27017",
	"MONGO_DB":             "webpush",
	"REDIS_ADDR":           "localhost:6379",
	"REDIS_PASSWORD":       "",
	"REDIS_DB":             0,
	"SQL_DSN":              "file:webpush.db?_pragma=busy_timeout(5000)",
	"CORS_ALLOWED_ORIGINS": "http://localhost:8090",
	"SEND_RATE_LIMIT":      "30-M",
	"PRUNE_SCHEDULE":       "@every 1m",
	"BACKEND_URL":          "http://localhost:8090",
	"PUSH_LISTEN":          "127.0.0.1:8091",
	"DEMO_LOG":             "pushdemo.log",
}

// Load charge la configuration depuis le fichier .env puis les variables d'environnement
func Load() (*Config, error) {
	// Charger le fichier .env s'il existe
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	config := &Config{
		Port:           v.GetString("PORT"),
		Host:           v.GetString("HOST"),
		Environment:    v.GetString("ENVIRONMENT"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFormat:      v.GetString("LOG_FORMAT"),
		PublicKeyPath:  v.GetString("PUBLIC_KEY_PATH"),
		PrivateKeyPath: v.GetString("PRIVATE_KEY_PATH"),
		VAPIDSubject:   v.GetString("VAPID_SUBJECT"),
		PushTTL:        v.GetInt("PUSH_TTL"),
		StoreDriver:    strings.ToLower(v.GetString("STORE_DRIVER")),
		MongoURI:       v.GetString("MONGO_URI"),
		MongoDB:        v.GetString("MONGO_DB"),
		RedisAddr:      v.GetString("REDIS_ADDR"),
		RedisPassword:  v.GetString("REDIS_PASSWORD"),
		RedisDB:        v.GetInt("REDIS_DB"),
		SQLDSN:         v.GetString("SQL_DSN"),
		SendRateLimit:  v.GetString("SEND_RATE_LIMIT"),
		PruneSchedule:  v.GetString("PRUNE_SCHEDULE"),
		BackendURL:     strings.TrimRight(v.GetString("BACKEND_URL"), "/"),
		PushListen:     v.GetString("PUSH_LISTEN"),
		DemoLog:        v.GetString("DEMO_LOG"),
	}

	// Parser les origines CORS
	origins := v.GetString("CORS_ALLOWED_ORIGINS")
	originsList := strings.Split(origins, ",")
	// Nettoyer les espaces autour de chaque origine
	config.CORSOrigins = make([]string, 0, len(originsList))
	for _, origin := range originsList {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			config.CORSOrigins = append(config.CORSOrigins, trimmed)
		}
	}

	// Valider les configurations critiques
	switch config.StoreDriver {
	case StoreMemory, StoreMongo, StoreRedis, StoreSQLite, StorePostgres:
	default:
		return nil, fmt.Errorf("STORE_DRIVER invalide: %s", config.StoreDriver)
	}

	if config.PushTTL <= 0 {
		return nil, fmt.Errorf("PUSH_TTL doit être positif")
	}

	if config.PublicKeyPath == "" || config.PrivateKeyPath == "" {
		return nil, fmt.Errorf("PUBLIC_KEY_PATH et PRIVATE_KEY_PATH sont requis")
	}

	return config, nil
}

// Addr retourne l'adresse d'écoute du serveur HTTP
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}
