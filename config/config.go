package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Store    StoreConfig
	Sync     SyncConfig
	Remote   RemoteConfig
	Kafka    KafkaConfig
	Redis    RedisConfig
	Terminal TerminalConfig
}

type ServerConfig struct {
	AppEnv         string
	IngestGRPCPort string
	IngestLedger   string // redis or memory
	// IngestConsumeOrders makes the ingest server also claim OrderCreated events from Kafka.
	IngestConsumeOrders bool
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	Filename          string
	DisableCaller     bool
	DisableStacktrace bool
}

type StoreConfig struct {
	Driver      string // bolt or sqlite
	Path        string
	OpenTimeout time.Duration
}

type SyncConfig struct {
	Sink          string // grpc or kafka
	PushTimeout   time.Duration
	RetrySchedule string
	TaxRate       string
}

type RemoteConfig struct {
	GRPCTarget string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// TerminalConfig identifies this POS terminal.
type TerminalConfig struct {
	NodeID     int64
	MerchantID string
	StoreID    string
	Locale     string
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:         getEnv("APP_ENV", "dev"),
			IngestGRPCPort: getEnv("INGEST_GRPC_PORT", ":8090"),
			IngestLedger:   getEnv("INGEST_LEDGER", "redis"),

			IngestConsumeOrders: getEnvBool("INGEST_CONSUME_ORDERS", false),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			Filename:          getEnv("LOGGER_FILE", ""),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Store: StoreConfig{
			Driver:      getEnv("STORE_DRIVER", "bolt"),
			Path:        getEnv("STORE_PATH", "omnipos-pos.db"),
			OpenTimeout: getEnvDuration("STORE_OPEN_TIMEOUT", 2*time.Second),
		},
		Sync: SyncConfig{
			Sink:          getEnv("SYNC_SINK", "grpc"),
			PushTimeout:   getEnvDuration("SYNC_PUSH_TIMEOUT", 10*time.Second),
			RetrySchedule: getEnv("SYNC_RETRY_SCHEDULE", "@every 1m"),
			TaxRate:       getEnv("SYNC_TAX_RATE", "0"),
		},
		Remote: RemoteConfig{
			GRPCTarget: getEnv("REMOTE_GRPC_TARGET", "localhost:8090"),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   getEnv("KAFKA_TOPIC_ORDERS", "orders.events"),
			GroupID: getEnv("KAFKA_GROUP_ID", "omnipos-ingest"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Terminal: TerminalConfig{
			NodeID:     int64(getEnvInt("POS_NODE_ID", 1)),
			MerchantID: getEnv("POS_MERCHANT_ID", ""),
			StoreID:    getEnv("POS_STORE_ID", ""),
			Locale:     getEnv("POS_LOCALE", "en"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.Split(value, ",")
	}
	return fallback
}
