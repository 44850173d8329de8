package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	Database      Database      `envPrefix:"DB_"`
	Auth          Auth          `envPrefix:"AUTH_"`
	BrainTree     Braintree     `envPrefix:"BRAINTREE_"`
	Payments      Payments      `envPrefix:"PAYMENTS_"`
	Mailer        Mailer        `envPrefix:"MAILER_"`
	Notifications Notifications `envPrefix:"NOTIFICATIONS_"`
	Users         Users         `envPrefix:"USERS_"`
	Kafka         Kafka         `envPrefix:"KAFKA_"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

func (e Environment) IsProduction() bool {
	return e.Name == "production"
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

type Database struct {
	Driver          string        `env:"DRIVER" envDefault:"sqlite"` // sqlite | mysql
	DSN             string        `env:"DSN" envDefault:"learnhub.db"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"50"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"10"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"1h"`
}

type Auth struct {
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
}

type Braintree struct {
	Environment       string `env:"ENVIRONMENT" envDefault:"sandbox"`
	MerchantID        string `env:"MERCHANT_ID"`
	PublicKey         string `env:"PUBLIC_KEY"`
	PrivateKey        string `env:"PRIVATE_KEY"`
	MerchantAccountID string `env:"MERCHANT_ACCOUNT_ID"`
}

type Payments struct {
	Currency         string        `env:"CURRENCY" envDefault:"USD"`
	AuthorizeTimeout time.Duration `env:"AUTHORIZE_TIMEOUT" envDefault:"30s"`
}

// Mailer points at an HTTP mail API. An empty BaseURL logs messages instead of sending them.
type Mailer struct {
	BaseURL string        `env:"BASE_URL"`
	Domain  string        `env:"DOMAIN"`
	APIKey  string        `env:"API_KEY"`
	From    string        `env:"FROM" envDefault:"noreply@learnhub.local"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

type Notifications struct {
	Offset          time.Duration `env:"OFFSET" envDefault:"4h"`
	Grace           time.Duration `env:"GRACE" envDefault:"30s"`
	PollInterval    time.Duration `env:"POLL_INTERVAL" envDefault:"5s"`
	BatchSize       int           `env:"BATCH_SIZE" envDefault:"100"`
	SendConcurrency int           `env:"SEND_CONCURRENCY" envDefault:"8"`
	SendAttempts    uint          `env:"SEND_ATTEMPTS" envDefault:"3"`
	SendDelay       time.Duration `env:"SEND_DELAY" envDefault:"200ms"`
}

type Users struct {
	InactiveAfter         time.Duration `env:"INACTIVE_AFTER" envDefault:"720h"`
	ActivityCheckInterval time.Duration `env:"ACTIVITY_CHECK_INTERVAL" envDefault:"24h"`
}

// Kafka publishing is disabled when Brokers is empty.
type Kafka struct {
	Brokers []string `env:"BROKERS" envSeparator:","`
	Topic   string   `env:"TOPIC" envDefault:"payment_events"`
}
