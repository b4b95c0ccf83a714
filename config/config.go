package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/juju/errors"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment overrides, e.g. DOMORA_AUTH_JWT_SECRET.
const EnvPrefix = "DOMORA"

type Config struct {
	HTTP     HTTPConfig     `yaml:"http" envconfig:"http"`
	Log      LogConfig      `yaml:"log" envconfig:"log"`
	Database DatabaseConfig `yaml:"database" envconfig:"database"`
	Redis    RedisConfig    `yaml:"redis" envconfig:"redis"`
	Events   EventsConfig   `yaml:"events" envconfig:"events"`
	Auth     AuthConfig     `yaml:"auth" envconfig:"auth"`
	Pricing  PricingConfig  `yaml:"pricing" envconfig:"pricing"`
	Payments PaymentsConfig `yaml:"payments" envconfig:"payments"`
	Stripe   StripeConfig   `yaml:"stripe" envconfig:"stripe"`
	Maps     MapsConfig     `yaml:"maps" envconfig:"maps"`
	SMTP     SMTPConfig     `yaml:"smtp" envconfig:"smtp"`
}

type HTTPConfig struct {
	Address    string `yaml:"address" envconfig:"address"`
	SwaggerDir string `yaml:"swagger_dir" envconfig:"swagger_dir"`
	// PublicURL is used to build checkout return URLs. When empty the
	// request host is used.
	PublicURL string `yaml:"public_url" envconfig:"public_url"`
}

type LogConfig struct {
	// Level is a loggo specification, e.g. "<root>=INFO;domora.payment=DEBUG".
	Level string `yaml:"level" envconfig:"level"`
}

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

type DatabaseConfig struct {
	Driver      string `yaml:"driver" envconfig:"driver"`
	Host        string `yaml:"host" envconfig:"host"`
	Port        int    `yaml:"port" envconfig:"port"`
	User        string `yaml:"user" envconfig:"user"`
	Password    string `yaml:"password" envconfig:"password"`
	Name        string `yaml:"name" envconfig:"name"`
	SSLMode     string `yaml:"ssl_mode" envconfig:"ssl_mode"`
	AutoMigrate bool   `yaml:"auto_migrate" envconfig:"auto_migrate"`
	MongoURI    string `yaml:"mongo_uri" envconfig:"mongo_uri"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// MigrationURL is the golang-migrate URL for the pgx/v5 driver.
func (d DatabaseConfig) MigrationURL() string {
	u := url.URL{
		Scheme:   "pgx5",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}

type RedisConfig struct {
	Addr     string `yaml:"addr" envconfig:"addr"`
	Password string `yaml:"password" envconfig:"password"`
	DB       int    `yaml:"db" envconfig:"db"`
}

const (
	EventsKafka    = "kafka"
	EventsRabbitMQ = "rabbitmq"
	EventsNone     = "none"
)

type EventsConfig struct {
	Driver             string   `yaml:"driver" envconfig:"driver"`
	Brokers            []string `yaml:"brokers" envconfig:"brokers"`
	AMQPURL            string   `yaml:"amqp_url" envconfig:"amqp_url"`
	Exchange           string   `yaml:"exchange" envconfig:"exchange"`
	BookingEventsTopic string   `yaml:"booking_events_topic" envconfig:"booking_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic" envconfig:"notifications_topic"`
	GroupID            string   `yaml:"group_id" envconfig:"group_id"`
}

type AuthConfig struct {
	JWTSecret        string        `yaml:"jwt_secret" envconfig:"jwt_secret"`
	TokenTTL         time.Duration `yaml:"token_ttl" envconfig:"token_ttl"`
	AllowAdminSignup bool          `yaml:"allow_admin_signup" envconfig:"allow_admin_signup"`
}

type PricingConfig struct {
	FreeRadiusKm float64       `yaml:"free_radius_km" envconfig:"free_radius_km"`
	FeePerKm     float64       `yaml:"fee_per_km" envconfig:"fee_per_km"`
	Currency     string        `yaml:"currency" envconfig:"currency"`
	GeoTimeout   time.Duration `yaml:"geo_timeout" envconfig:"geo_timeout"`
}

type PaymentsConfig struct {
	CheckoutLockTTL time.Duration `yaml:"checkout_lock_ttl" envconfig:"checkout_lock_ttl"`
	WebhookDedupTTL time.Duration `yaml:"webhook_dedup_ttl" envconfig:"webhook_dedup_ttl"`
}

type StripeConfig struct {
	SecretKey      string        `yaml:"secret_key" envconfig:"secret_key"`
	WebhookSecret  string        `yaml:"webhook_secret" envconfig:"webhook_secret"`
	SuccessPath    string        `yaml:"success_path" envconfig:"success_path"`
	CancelPath     string        `yaml:"cancel_path" envconfig:"cancel_path"`
	RequestTimeout time.Duration `yaml:"request_timeout" envconfig:"request_timeout"`
}

type MapsConfig struct {
	APIKey string `yaml:"api_key" envconfig:"api_key"`
}

type SMTPConfig struct {
	Host     string `yaml:"host" envconfig:"host"`
	Port     int    `yaml:"port" envconfig:"port"`
	Username string `yaml:"username" envconfig:"username"`
	Password string `yaml:"password" envconfig:"password"`
	Sender   string `yaml:"sender" envconfig:"sender"`
}

// Default returns the configuration used when a key is absent from the file.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{Address: ":8080"},
		Log:  LogConfig{Level: "<root>=INFO"},
		Database: DatabaseConfig{
			Driver:  DriverPostgres,
			Host:    "localhost",
			Port:    5432,
			SSLMode: "disable",
			Name:    "domora",
		},
		Events: EventsConfig{
			Driver:             EventsNone,
			Exchange:           "domora.events",
			BookingEventsTopic: "booking_events",
			NotificationsTopic: "notifications",
			GroupID:            "domora-worker",
		},
		Auth: AuthConfig{TokenTTL: 7 * 24 * time.Hour},
		Pricing: PricingConfig{
			FreeRadiusKm: 15,
			FeePerKm:     0.50,
			Currency:     "EUR",
			GeoTimeout:   5 * time.Second,
		},
		Payments: PaymentsConfig{
			CheckoutLockTTL: 30 * time.Second,
			WebhookDedupTTL: 72 * time.Hour,
		},
		Stripe: StripeConfig{
			SuccessPath:    "/payment-success?session_id={CHECKOUT_SESSION_ID}",
			CancelPath:     "/payment-cancel",
			RequestTimeout: 15 * time.Second,
		},
		SMTP: SMTPConfig{Port: 587},
	}
}

// LoadConfig reads an optional .env file, the YAML file at path and then
// applies DOMORA_* environment overrides.
func LoadConfig(path string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.NotValidf("empty auth.jwt_secret")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.NotValidf("auth.token_ttl %v", c.Auth.TokenTTL)
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverMongo:
	default:
		return errors.NotValidf("database.driver %q", c.Database.Driver)
	}
	switch c.Events.Driver {
	case EventsKafka, EventsRabbitMQ, EventsNone, "":
	default:
		return errors.NotValidf("events.driver %q", c.Events.Driver)
	}
	if c.Pricing.FreeRadiusKm < 0 || c.Pricing.FeePerKm < 0 {
		return errors.NotValidf("negative pricing.free_radius_km or pricing.fee_per_km")
	}
	return nil
}
