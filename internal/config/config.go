package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/nezferoz/fashion-park-sub001/pkg/kafka"
	"github.com/nezferoz/fashion-park-sub001/pkg/postgres"
)

// CheckoutServiceConfig is named after the microservice, not the service struct!
type CheckoutServiceConfig struct {
	HTTPPort          int      `yaml:"http_port" env:"HTTP_PORT" env-default:"8080"`
	OriginCityID      string   `yaml:"origin_city_id" env:"ORIGIN_CITY_ID"`
	DefaultCouriers   []string `yaml:"default_couriers" env:"DEFAULT_COURIERS" env-separator:"," env-default:"jne,tiki,pos"`
	ExternalTimeoutMS int      `yaml:"external_timeout_ms" env:"EXTERNAL_TIMEOUT_MS" env-default:"10000"`
	QuoteCacheTTLSec  int      `yaml:"quote_cache_ttl_sec" env:"QUOTE_CACHE_TTL_SEC" env-default:"600"`
	PaidEventsTopic   string   `yaml:"paid_events_topic" env:"PAID_EVENTS_TOPIC" env-default:"fashionpark.orders.paid"`
}

// NotificationWorkerConfig configures the paid-order e-mail worker
type NotificationWorkerConfig struct {
	KafkaGroupID  string `yaml:"kafka_group_id" env:"KAFKA_GROUP_ID" env-default:"notification-worker"`
	DedupTTLHours int    `yaml:"dedup_ttl_hours" env:"DEDUP_TTL_HOURS" env-default:"24"`
}

// MidtransConfig holds the payment gateway credentials and endpoint
type MidtransConfig struct {
	BaseURL   string `yaml:"base_url" env:"BASE_URL" env-default:"https://app.sandbox.midtrans.com"`
	ServerKey string `yaml:"server_key" env:"SERVER_KEY"`
}

// RajaOngkirConfig holds the shipping rate API credentials and endpoint
type RajaOngkirConfig struct {
	BaseURL string `yaml:"base_url" env:"BASE_URL" env-default:"https://api.rajaongkir.com/starter"`
	APIKey  string `yaml:"api_key" env:"API_KEY"`
}

// RedisConfig describes the quote cache connection
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB" env-default:"0"`
}

type Config struct {
	CheckoutService    CheckoutServiceConfig    `yaml:"checkout_service" env-prefix:"CHECKOUT_SERVICE_"`
	NotificationWorker NotificationWorkerConfig `yaml:"notification_worker" env-prefix:"NOTIFICATION_WORKER_"`
	Midtrans           MidtransConfig           `yaml:"midtrans" env-prefix:"MIDTRANS_"`
	RajaOngkir         RajaOngkirConfig         `yaml:"rajaongkir" env-prefix:"RAJAONGKIR_"`
	Redis              RedisConfig              `yaml:"redis" env-prefix:"REDIS_"`
	Kafka              kafka.Config             `yaml:"kafka" env-prefix:"KAFKA_"`
	Postgres           postgres.Config          `yaml:"postgres" env-prefix:"POSTGRES_"`
}

func TryRead() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{},
			fmt.Errorf("failed to read env variables after accessing .env: %w", err)
	}
	return cfg, nil
}
