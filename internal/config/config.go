package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port           string        `yaml:"port"`
	DBDSN          string        `yaml:"db_dsn"`
	LogFile        string        `yaml:"log_file"`
	TemplatesDir   string        `yaml:"templates_dir"`
	StaticDir      string        `yaml:"static_dir"`
	CatalogBaseURL string        `yaml:"catalog_base_url"`
	CatalogTimeout time.Duration `yaml:"catalog_timeout"`
	RabbitMQURL    string        `yaml:"rabbitmq_url"`
	OrderQueue     string        `yaml:"order_queue"`
	CartIdle       time.Duration `yaml:"cart_idle"` // carts untouched this long are dropped
}

func Defaults() Config {
	return Config{
		Port:           "8080",
		DBDSN:          ":memory:", // receipts live as long as the process
		TemplatesDir:   "./web/templates",
		StaticDir:      "./web/static",
		CatalogBaseURL: "https://fakestoreapi.com",
		CatalogTimeout: 10 * time.Second,
		OrderQueue:     "shopmart_orders",
		CartIdle:       2 * time.Hour,
	}
}

// Load starts from Defaults, overlays the YAML file named by SHOPMART_CONFIG
// (if any) and then the environment.
func Load() Config {
	cfg := Defaults()
	if path := os.Getenv("SHOPMART_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			log.Printf("[warn] config file %s ignored: %v", path, err)
		}
	}
	cfg.mergeEnv(os.Getenv)
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s CATALOG_BASE_URL=%s CATALOG_TIMEOUT=%s ORDER_QUEUE=%s AMQP=%t",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.CatalogBaseURL, cfg.CatalogTimeout, cfg.OrderQueue, cfg.RabbitMQURL != "")
	return cfg
}

func (c *Config) mergeFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Port, "PORT")
	set(&c.DBDSN, "DB_DSN")
	set(&c.LogFile, "LOG_FILE")
	set(&c.TemplatesDir, "TEMPLATES_DIR")
	set(&c.StaticDir, "STATIC_DIR")
	set(&c.CatalogBaseURL, "CATALOG_BASE_URL")
	set(&c.RabbitMQURL, "RABBITMQ_URL")
	set(&c.OrderQueue, "ORDER_QUEUE")
	setDuration(&c.CatalogTimeout, "CATALOG_TIMEOUT", getenv)
	setDuration(&c.CartIdle, "CART_IDLE", getenv)
}

func setDuration(dst *time.Duration, key string, getenv func(string) string) {
	v := getenv(key)
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		*dst = d
		return
	}
	log.Printf("[warn] %s=%q is not a duration, keeping %s", key, v, *dst)
}
