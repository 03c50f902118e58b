package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

var (
	ErrInvalidStorage = errors.New("unknown storage driver")
	ErrInvalidPort    = errors.New("invalid port")
)

type Config struct {
	Env           string           `yaml:"env"            env-default:"local"`      // Env is the current environment: local, development, production.
	Storage       string           `yaml:"storage"        env-default:"postgres"`   // Storage selects the employee store: postgres or memory.
	MigrationsDir string           `yaml:"migrations_dir" env-default:"migrations"` // MigrationsDir is the goose migrations directory.
	Postgres      PostgresConfig   `yaml:"postgres"`                                // Postgres holds the database configuration
	HTTP          HTTPConfig       `yaml:"http"`                                    // HTTP holds the API server configuration
	Monitoring    MonitoringConfig `yaml:"monitoring"`                              // Monitoring holds the health/metrics server configuration
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `yaml:"host"`                        // Host is the database server address.
	Port     string `yaml:"port"     env-default:"5432"` // Port is the database server port.
	User     string `yaml:"user"`                        // User is the database user.
	Password string `yaml:"password"`                    // Password is the database user's password.
	Dbname   string `yaml:"db_name"`                     // Dbname is the name of the database.
}

// HTTPConfig struct holds the configuration of the employees API listener.
type HTTPConfig struct {
	Port            int           `yaml:"port"             env-default:"8080"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

// MonitoringConfig struct holds the configuration of the /healthz and /metrics listener.
type MonitoringConfig struct {
	Port int `yaml:"port" env-default:"9090"`
}

// envBindings maps configuration keys to the environment variables overriding them.
var envBindings = map[string]string{
	"env":                   "HESTIA_ENV",
	"storage":               "HESTIA_STORAGE",
	"migrations_dir":        "MIGRATIONS_DIR",
	"postgres.host":         "DB_HOST",
	"postgres.port":         "DB_PORT",
	"postgres.user":         "DB_USERNAME",
	"postgres.password":     "DB_PASSWORD",
	"postgres.db_name":      "DB_NAME",
	"http.port":             "HTTP_PORT",
	"http.shutdown_timeout": "HESTIA_SHUTDOWN_TIMEOUT",
	"monitoring.port":       "MONITORING_PORT",
}

// MustLoad loads the configuration and panics if it is invalid.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err.Error())
	}

	return cfg
}

// Load reads an optional .env file, an optional YAML file pointed to by CONFIG_PATH
// and the environment, in increasing order of precedence.
func Load() (*Config, error) {
	// .env is optional, real environment variables always win
	_ = godotenv.Load()

	vpr := viper.New()
	setDefaults(vpr)

	for key, env := range envBindings {
		if err := vpr.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s to %s: %w", key, env, err)
		}
	}

	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		// check if file exists
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", configPath)
		}

		vpr.SetConfigFile(configPath)
		vpr.SetConfigType("yaml")
		if err := vpr.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
	}

	shutdownTimeout, err := time.ParseDuration(vpr.GetString("http.shutdown_timeout"))
	if err != nil {
		return nil, errors.New("failed to parse shutdown timeout from configuration")
	}

	httpPort, err := parsePort(vpr.GetString("http.port"))
	if err != nil {
		return nil, fmt.Errorf("http.port: %w", err)
	}

	monitoringPort, err := parsePort(vpr.GetString("monitoring.port"))
	if err != nil {
		return nil, fmt.Errorf("monitoring.port: %w", err)
	}

	storage := vpr.GetString("storage")
	if storage != StoragePostgres && storage != StorageMemory {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStorage, storage)
	}

	return &Config{
		Env:           vpr.GetString("env"),
		Storage:       storage,
		MigrationsDir: vpr.GetString("migrations_dir"),
		Postgres: PostgresConfig{
			Host:     vpr.GetString("postgres.host"),
			Port:     vpr.GetString("postgres.port"),
			User:     vpr.GetString("postgres.user"),
			Password: vpr.GetString("postgres.password"),
			Dbname:   vpr.GetString("postgres.db_name"),
		},
		HTTP: HTTPConfig{
			Port:            httpPort,
			ShutdownTimeout: shutdownTimeout,
		},
		Monitoring: MonitoringConfig{
			Port: monitoringPort,
		},
	}, nil
}

func setDefaults(vpr *viper.Viper) {
	vpr.SetDefault("env", "local")
	vpr.SetDefault("storage", StoragePostgres)
	vpr.SetDefault("migrations_dir", "migrations")
	vpr.SetDefault("postgres.port", "5432")
	vpr.SetDefault("http.port", "8080")
	vpr.SetDefault("http.shutdown_timeout", "10s")
	vpr.SetDefault("monitoring.port", "9090")
}

func parsePort(raw string) (int, error) {
	const maxPort = 65535

	port, err := strconv.Atoi(raw)
	if err != nil || port <= 0 || port > maxPort {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPort, raw)
	}

	return port, nil
}
