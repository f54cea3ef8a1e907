package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendHTTP   = "http"
	BackendMemory = "memory"

	StateFile   = "file"
	StateMongo  = "mongo"
	StateMemory = "memory"
)

type Config struct {
	GRPC    GRPCConfig
	Tenant  string
	Backend BackendConfig
	State   StateConfig
	Mongo   MongoConfig
	NATS    NATSConfig
	Log     LogConfig
}

type GRPCConfig struct {
	Port string
}

type BackendConfig struct {
	Driver         string
	OrdersURL      string
	FulfillmentURL string
	StatusURL      string
	UsersURL       string
	Timeout        time.Duration
	// CatalogFile seeds the offline backend; empty uses the built-in menu.
	CatalogFile string
	SigningKey  string
}

type StateConfig struct {
	Driver    string
	Dir       string
	Namespace string
}

type MongoConfig struct {
	URI string
	DB  string
}

type NATSConfig struct {
	URL           string
	StatusSubject string
}

type LogConfig struct {
	Level string
}

// Load reads envFile when it exists, then the environment. Variables
// already set in the environment win over the file. Callers apply their
// overrides and then call Validate.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
		}
	}

	timeout, err := time.ParseDuration(getEnv("API_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_TIMEOUT: %w", err)
	}

	cfg := &Config{
		GRPC: GRPCConfig{
			Port: getEnv("GRPC_PORT", "50051"),
		},
		Tenant: getEnv("TENANT_ID", "CHINAWOK_LIMA_CENTRO"),
		Backend: BackendConfig{
			Driver:         strings.ToLower(getEnv("BACKEND", BackendHTTP)),
			OrdersURL:      getEnv("ORDERS_API_URL", ""),
			FulfillmentURL: getEnv("FULFILLMENT_API_URL", ""),
			StatusURL:      getEnv("STATUS_API_URL", ""),
			UsersURL:       getEnv("USERS_API_URL", ""),
			Timeout:        timeout,
			CatalogFile:    getEnv("CATALOG_FILE", ""),
			SigningKey:     getEnv("OFFLINE_SIGNING_KEY", ""),
		},
		State: StateConfig{
			Driver:    strings.ToLower(getEnv("STATE_DRIVER", StateFile)),
			Dir:       getEnv("STATE_DIR", defaultStateDir()),
			Namespace: getEnv("STATE_NAMESPACE", "default"),
		},
		Mongo: MongoConfig{
			URI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
			DB:  getEnv("MONGO_DB", "storefront"),
		},
		NATS: NATSConfig{
			URL:           getEnv("NATS_URL", ""),
			StatusSubject: getEnv("NATS_STATUS_SUBJECT", "order.status.changed"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.GRPC.Port == "" {
		return fmt.Errorf("GRPC_PORT is required")
	}
	if c.Tenant == "" {
		return fmt.Errorf("TENANT_ID is required")
	}

	switch c.Backend.Driver {
	case BackendHTTP:
		for key, value := range map[string]string{
			"ORDERS_API_URL":      c.Backend.OrdersURL,
			"FULFILLMENT_API_URL": c.Backend.FulfillmentURL,
			"STATUS_API_URL":      c.Backend.StatusURL,
			"USERS_API_URL":       c.Backend.UsersURL,
		} {
			if value == "" {
				return fmt.Errorf("%s is required when BACKEND=%s", key, BackendHTTP)
			}
		}
		if c.Backend.Timeout <= 0 {
			return fmt.Errorf("API_TIMEOUT must be positive")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown BACKEND %q", c.Backend.Driver)
	}

	switch c.State.Driver {
	case StateFile:
		if c.State.Dir == "" {
			return fmt.Errorf("STATE_DIR is required when STATE_DRIVER=%s", StateFile)
		}
	case StateMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("MONGO_URI is required when STATE_DRIVER=%s", StateMongo)
		}
		if c.Mongo.DB == "" {
			return fmt.Errorf("MONGO_DB is required when STATE_DRIVER=%s", StateMongo)
		}
	case StateMemory:
	default:
		return fmt.Errorf("unknown STATE_DRIVER %q", c.State.Driver)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func defaultStateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".storefront"
	}
	return filepath.Join(dir, "storefront")
}
