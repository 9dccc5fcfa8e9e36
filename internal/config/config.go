package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

const (
	defaultConfigPath = "config/config.yaml"
	envPrefix         = "HOMEFIX"
)

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Env             string        `yaml:"env"`
	LogLevel        string        `yaml:"log_level" split_words:"true"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" split_words:"true"`
	CORSOrigins     []string      `yaml:"cors_origins" envconfig:"CORS_ORIGINS"`
}

type DatabaseConfig struct {
	Driver       string `yaml:"driver"` // postgres | mysql
	DSN          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns" split_words:"true"`
	MaxIdleConns int    `yaml:"max_idle_conns" split_words:"true"`
	AutoMigrate  bool   `yaml:"auto_migrate" split_words:"true"`
}

type JWTConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

type RealtimeConfig struct {
	PushTimeout time.Duration `yaml:"push_timeout" split_words:"true"`
	SendBuffer  int           `yaml:"send_buffer" split_words:"true"`
	// RedisRelay включает fan-out через Redis pub/sub (несколько инстансов)
	RedisRelay bool `yaml:"redis_relay" split_words:"true"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

func (r RedisConfig) Enabled() bool { return r.Addr != "" }

type BrokerConfig struct {
	URL           string `yaml:"url"`
	Exchange      string `yaml:"exchange"`
	PaymentQueue  string `yaml:"payment_queue" split_words:"true"`
	PaymentSource string `yaml:"payment_exchange" split_words:"true"`
}

func (b BrokerConfig) Enabled() bool { return b.URL != "" }

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

func (s SMTPConfig) Enabled() bool { return s.Host != "" }

type JobsConfig struct {
	AvailabilitySweep     string        `yaml:"availability_sweep" split_words:"true"`
	NotificationPurge     string        `yaml:"notification_purge" split_words:"true"`
	NotificationRetention time.Duration `yaml:"notification_retention" split_words:"true"`
}

type PaymentConfig struct {
	MaxFailures   int           `yaml:"max_failures" split_words:"true"`
	FailureWindow time.Duration `yaml:"failure_window" split_words:"true"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Realtime RealtimeConfig `yaml:"realtime"`
	Redis    RedisConfig    `yaml:"redis"`
	Broker   BrokerConfig   `yaml:"broker"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Jobs     JobsConfig     `yaml:"jobs"`
	Payment  PaymentConfig  `yaml:"payment"`
}

// Default — значения, которые перекрываются YAML и переменными окружения
func Default() Config {
	var cfg Config
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8080
	cfg.Server.Env = "development"
	cfg.Server.ShutdownTimeout = 10 * time.Second
	cfg.Server.CORSOrigins = []string{"*"}
	cfg.Database.Driver = "postgres"
	cfg.Database.MaxOpenConns = 25
	cfg.Database.MaxIdleConns = 5
	cfg.Database.AutoMigrate = true
	cfg.JWT.TTL = 24 * time.Hour
	cfg.Realtime.PushTimeout = 2 * time.Second
	cfg.Realtime.SendBuffer = 32
	cfg.Broker.Exchange = "booking.exchange"
	cfg.Broker.PaymentSource = "payment.exchange"
	cfg.Broker.PaymentQueue = "homefix.payment.q"
	cfg.SMTP.Port = 587
	cfg.Jobs.AvailabilitySweep = "@every 5m"
	cfg.Jobs.NotificationPurge = "0 3 * * *"
	cfg.Jobs.NotificationRetention = 30 * 24 * time.Hour
	cfg.Payment.MaxFailures = 5
	cfg.Payment.FailureWindow = 15 * time.Minute
	return cfg
}

// Load собирает конфиг: defaults -> YAML -> .env -> окружение (HOMEFIX_*).
// Отсутствие файла по умолчанию не ошибка, явно указанного CONFIG_PATH — ошибка.
func Load() (*Config, error) {
	cfg := Default()

	path := os.Getenv("CONFIG_PATH")
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}

	if err := loadFile(path, &cfg); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			// работаем только на окружении
		} else {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("parse config file at %s: %w", path, err)
	}
	return nil
}

// Validate проверяет обязательные поля
func (c *Config) Validate() error {
	var problems []string

	switch c.Database.Driver {
	case "postgres", "mysql":
	default:
		problems = append(problems, fmt.Sprintf("database.driver %q is not supported", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		problems = append(problems, "database.url is required")
	}
	if c.JWT.Secret == "" {
		problems = append(problems, "jwt.secret is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, "server.port must be in 1..65535")
	}
	if c.Realtime.PushTimeout <= 0 {
		problems = append(problems, "realtime.push_timeout must be positive")
	}
	if c.Realtime.RedisRelay && !c.Redis.Enabled() {
		problems = append(problems, "realtime.redis_relay requires redis.addr")
	}
	if c.Payment.MaxFailures <= 0 {
		problems = append(problems, "payment.max_failures must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Addr — адрес для http.Server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}
