package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Backends soportados para el almacén local del ranking.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreLevelDB  = "leveldb"
	StoreFile     = "file"
)

type Config struct {
	HTTPPort string
	LogLevel string

	StoreBackend  string
	RedisAddr     string
	SQLitePath    string
	PostgresDSN   string
	LevelDBPath   string
	FileStorePath string

	MongoURI         string
	MongoDB          string
	PlacesCollection string
	RankingField     string

	TopLimit          int
	CacheTTL          time.Duration
	CacheSingleFlight bool

	UseKafka     bool
	KafkaBrokers []string
	KafkaTopic   string

	ClickHouseAddr string
	ClickHouseDB   string
}

// LoadConfig combina valores por defecto, un fichero YAML opcional
// (TOPLACES_CONFIG) y variables de entorno, en ese orden de prioridad creciente.
func LoadConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if file := v.GetString("toplaces_config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		HTTPPort:          v.GetString("http_port"),
		LogLevel:          v.GetString("log_level"),
		StoreBackend:      strings.ToLower(v.GetString("store_backend")),
		RedisAddr:         v.GetString("redis_addr"),
		SQLitePath:        v.GetString("sqlite_path"),
		PostgresDSN:       v.GetString("postgres_dsn"),
		LevelDBPath:       v.GetString("leveldb_path"),
		FileStorePath:     v.GetString("file_store_path"),
		MongoURI:          v.GetString("mongo_uri"),
		MongoDB:           v.GetString("mongo_db"),
		PlacesCollection:  v.GetString("places_collection"),
		RankingField:      v.GetString("ranking_field"),
		TopLimit:          v.GetInt("top_limit"),
		CacheTTL:          v.GetDuration("cache_ttl"),
		CacheSingleFlight: v.GetBool("cache_single_flight"),
		UseKafka:          v.GetBool("use_kafka"),
		KafkaBrokers:      splitList(v.GetString("kafka_brokers")),
		KafkaTopic:        v.GetString("kafka_topic"),
		ClickHouseAddr:    v.GetString("clickhouse_addr"),
		ClickHouseDB:      v.GetString("clickhouse_db"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("toplaces_config", "")
	v.SetDefault("http_port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("store_backend", StoreRedis)
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("sqlite_path", "./toplaces_cache.db")
	v.SetDefault("postgres_dsn", "")
	v.SetDefault("leveldb_path", "./toplaces_cache.ldb")
	v.SetDefault("file_store_path", "./toplaces_cache.json")
	v.SetDefault("mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("mongo_db", "toplaces")
	v.SetDefault("places_collection", "places")
	v.SetDefault("ranking_field", "popularity")
	v.SetDefault("top_limit", 10)
	v.SetDefault("cache_ttl", 5*time.Minute)
	v.SetDefault("cache_single_flight", false)
	v.SetDefault("use_kafka", false)
	v.SetDefault("kafka_brokers", "localhost:9092")
	v.SetDefault("kafka_topic", "places")
	v.SetDefault("clickhouse_addr", "")
	v.SetDefault("clickhouse_db", "default")
}

// Validate comprueba los valores que no tienen un fallback razonable.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreMemory, StoreRedis, StoreSQLite, StoreLevelDB, StoreFile:
	case StorePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required when STORE_BACKEND=%s", StorePostgres)
		}
	default:
		return fmt.Errorf("unsupported STORE_BACKEND %q", c.StoreBackend)
	}

	if c.TopLimit <= 0 {
		return fmt.Errorf("TOP_LIMIT must be positive, got %d", c.TopLimit)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL must not be negative, got %s", c.CacheTTL)
	}
	if c.UseKafka && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when USE_KAFKA=true")
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
