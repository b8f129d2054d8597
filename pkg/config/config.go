package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	OpenAI        OpenAIConfig
	Translation   TranslationConfig
	Stripe        StripeConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FEEDBACKFIX_APP_ENV" required:"true"`
	Port         string `envconfig:"FEEDBACKFIX_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FEEDBACKFIX_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FEEDBACKFIX_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FEEDBACKFIX_DB_DSN"`
	Driver string `envconfig:"FEEDBACKFIX_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FEEDBACKFIX_DB_HOST"`
	LegacyPort     int    `envconfig:"FEEDBACKFIX_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FEEDBACKFIX_DB_USER"`
	LegacyPassword string `envconfig:"FEEDBACKFIX_DB_PASSWORD"`
	LegacyName     string `envconfig:"FEEDBACKFIX_DB_NAME"`
	LegacySSLMode  string `envconfig:"FEEDBACKFIX_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FEEDBACKFIX_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FEEDBACKFIX_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FEEDBACKFIX_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FEEDBACKFIX_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FEEDBACKFIX_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FEEDBACKFIX_REDIS_ADDR"`
	Password     string        `envconfig:"FEEDBACKFIX_REDIS_PASSWORD"`
	DB           int           `envconfig:"FEEDBACKFIX_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FEEDBACKFIX_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FEEDBACKFIX_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FEEDBACKFIX_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FEEDBACKFIX_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FEEDBACKFIX_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"FEEDBACKFIX_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"FEEDBACKFIX_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"FEEDBACKFIX_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"FEEDBACKFIX_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"FEEDBACKFIX_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"FEEDBACKFIX_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"FEEDBACKFIX_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"FEEDBACKFIX_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"FEEDBACKFIX_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"FEEDBACKFIX_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"FEEDBACKFIX_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"FEEDBACKFIX_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"FEEDBACKFIX_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"FEEDBACKFIX_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"FEEDBACKFIX_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FEEDBACKFIX_AUTO_MIGRATE" default:"false"`
}

type OpenAIConfig struct {
	APIKey  string `envconfig:"FEEDBACKFIX_OPENAI_API_KEY"`
	BaseURL string `envconfig:"FEEDBACKFIX_OPENAI_BASE_URL"`
}

// TranslationConfig tunes the feedback translation pipeline.
type TranslationConfig struct {
	PrimaryModel  string        `envconfig:"FEEDBACKFIX_TRANSLATION_PRIMARY_MODEL" default:"gpt-4"`
	FallbackModel string        `envconfig:"FEEDBACKFIX_TRANSLATION_FALLBACK_MODEL" default:"gpt-3.5-turbo"`
	Temperature   float32       `envconfig:"FEEDBACKFIX_TRANSLATION_TEMPERATURE" default:"0.7"`
	MaxTokens     int           `envconfig:"FEEDBACKFIX_TRANSLATION_MAX_TOKENS" default:"1000"`
	Timeout       time.Duration `envconfig:"FEEDBACKFIX_TRANSLATION_TIMEOUT" default:"30s"`
}

type StripeConfig struct {
	APIKey              string `envconfig:"FEEDBACKFIX_STRIPE_API_KEY"`
	Secret              string `envconfig:"FEEDBACKFIX_STRIPE_SECRET"`
	Env                 string `envconfig:"FEEDBACKFIX_STRIPE_ENV" default:"test"`
	SubscriptionPriceID string `envconfig:"FEEDBACKFIX_STRIPE_SUBSCRIPTION_PRICE_ID"`
	CheckoutSuccessURL  string `envconfig:"FEEDBACKFIX_STRIPE_CHECKOUT_SUCCESS_URL" default:"http://localhost:3000/dashboard?subscription=success"`
	CheckoutCancelURL   string `envconfig:"FEEDBACKFIX_STRIPE_CHECKOUT_CANCEL_URL" default:"http://localhost:3000/dashboard?subscription=canceled"`
	WebhookEventTTL     time.Duration `envconfig:"FEEDBACKFIX_STRIPE_WEBHOOK_EVENT_TTL" default:"720h"`
}

type CronConfig struct {
	Interval          time.Duration `envconfig:"FEEDBACKFIX_CRON_INTERVAL" default:"6h"`
	ReconcileLimit    int           `envconfig:"FEEDBACKFIX_CRON_RECONCILE_LIMIT" default:"250"`
	ReconcileLookback time.Duration `envconfig:"FEEDBACKFIX_CRON_RECONCILE_LOOKBACK" default:"168h"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
