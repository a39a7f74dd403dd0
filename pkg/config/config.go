package config

import (
	"fmt"
	"os"
	"regexp"
	"staybook/pkg/client"
	"staybook/pkg/logger"
	"staybook/pkg/model"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	AuthJWKSURL    string
	AuthIssuer     string
	AuthAudience   string
	AuthHMACSecret string
	WebhookSecret  string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	EventsEnabled         bool
	BookingEventsTopic    string
	BookingEventsDLQTopic string
	NotifierGroupID       string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int
	MaxUploadSize  int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	CancellationNotice       time.Duration
	AllowSameDayTurnover     bool
	RevenueIncludesCancelled bool
	LockTTL                  time.Duration
	LockRetryAttempts        int
	LockRetryBackoff         time.Duration
	NotificationTimeout      time.Duration
	Currency                 string
	Extras                   []model.ExtraRate
	RecentCitiesLimit        int

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	// .env.local wins over .env; neither overrides the real environment.
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	log := logger.New(logger.Config{
		Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
		Format:    logger.JSON,
		AddSource: true,
		Service:   serviceName,
	})

	extras, err := ParseExtras(getEnvStr(EnvBookingExtras, DefaultBookingExtras))
	if err != nil {
		log.Fatal("Invalid booking extras table", "error", err)
	}

	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		AuthJWKSURL:    getEnvStr(EnvAuthJWKSURL, ""),
		AuthIssuer:     getEnvStr(EnvAuthIssuer, ""),
		AuthAudience:   getEnvStr(EnvAuthAudience, ""),
		AuthHMACSecret: getEnvStr(EnvAuthHMACSecret, ""),
		WebhookSecret:  getEnvStr(EnvWebhookSecret, ""),

		CloudinaryCloudName: getEnvStr(EnvCloudinaryCloudName, ""),
		CloudinaryAPIKey:    getEnvStr(EnvCloudinaryAPIKey, ""),
		CloudinaryAPISecret: getEnvStr(EnvCloudinaryAPISecret, ""),
		CloudinaryFolder:    getEnvStr(EnvCloudinaryFolder, DefaultCloudinaryFolder),

		SMTPHost:     getEnvStr(EnvSMTPHost, ""),
		SMTPPort:     getEnvNum(EnvSMTPPort, DefaultSMTPPort),
		SMTPUsername: getEnvStr(EnvSMTPUsername, ""),
		SMTPPassword: getEnvStr(EnvSMTPPassword, ""),
		SMTPFrom:     getEnvStr(EnvSMTPFrom, DefaultSMTPFrom),

		EventsEnabled:         getEnvBool(EnvEventsEnabled, false),
		BookingEventsTopic:    getEnvStr(EnvBookingEventsTopic, DefaultBookingEventsTopic),
		BookingEventsDLQTopic: getEnvStr(EnvBookingEventsDLQTopic, DefaultBookingEventsDLQTopic),
		NotifierGroupID:       getEnvStr(EnvNotifierGroupID, DefaultNotifierGroupID),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),
		MaxUploadSize:  getEnvNum(EnvMaxUploadSize, DefaultMaxUploadSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		CancellationNotice:       getEnvDuration(EnvCancellationNotice, DefaultCancellationNotice),
		AllowSameDayTurnover:     getEnvBool(EnvAllowSameDayTurnover, false),
		RevenueIncludesCancelled: getEnvBool(EnvRevenueIncludesCancelled, false),
		LockTTL:                  getEnvDuration(EnvLockTTL, DefaultLockTTL),
		LockRetryAttempts:        getEnvNum(EnvLockRetryAttempts, DefaultLockRetryAttempts),
		LockRetryBackoff:         getEnvDuration(EnvLockRetryBackoff, DefaultLockRetryBackoff),
		NotificationTimeout:      getEnvDuration(EnvNotificationTimeout, DefaultNotificationTimeout),
		Currency:                 getEnvStr(EnvCurrency, DefaultCurrency),
		Extras:                   extras,
		RecentCitiesLimit:        getEnvNum(EnvRecentCitiesLimit, DefaultRecentCitiesLimit),

		Log:    log,
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

// SetMedia connects the media host client. Without credentials room images
// cannot be uploaded, which is fatal only for services that need it.
func (cfg *Config) SetMedia() {
	cfg.Client.SetMedia(cfg.Log, cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}

	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	if cfg.AuthJWKSURL != "" && !strings.HasPrefix(cfg.AuthJWKSURL, "https://") && !strings.HasPrefix(cfg.AuthJWKSURL, "http://") {
		errors = append(errors, fmt.Sprintf("AuthJWKSURL must be an http(s) URL, got: %s", cfg.AuthJWKSURL))
	}

	if cfg.SMTPPort < 1 || cfg.SMTPPort > 65535 {
		errors = append(errors, fmt.Sprintf("SMTPPort must be between 1 and 65535, got: %d", cfg.SMTPPort))
	}

	if cfg.EventsEnabled && cfg.BookingEventsTopic == "" {
		errors = append(errors, "BookingEventsTopic cannot be empty when events are enabled")
	}

	for name, d := range map[string]time.Duration{
		"MongoConnTimeout":    cfg.MongoConnTimeout,
		"RateLimitWindow":     cfg.RateLimitWindow,
		"RequestTimeout":      cfg.RequestTimeout,
		"IdempotencyTTL":      cfg.IdempotencyTTL,
		"ReadTimeout":         cfg.ReadTimeout,
		"WriteTimeout":        cfg.WriteTimeout,
		"IdleTimeout":         cfg.IdleTimeout,
		"ShutdownTimeout":     cfg.ShutdownTimeout,
		"LockTTL":             cfg.LockTTL,
		"LockRetryBackoff":    cfg.LockRetryBackoff,
		"NotificationTimeout": cfg.NotificationTimeout,
	} {
		if d <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", name, d))
		}
	}

	if cfg.CancellationNotice < 0 {
		errors = append(errors, fmt.Sprintf("CancellationNotice cannot be negative, got: %s", cfg.CancellationNotice))
	}
	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.MaxUploadSize < cfg.MaxRequestSize {
		errors = append(errors, fmt.Sprintf("MaxUploadSize (%d) must be >= MaxRequestSize (%d)", cfg.MaxUploadSize, cfg.MaxRequestSize))
	}
	if cfg.LockRetryAttempts < 1 {
		errors = append(errors, fmt.Sprintf("LockRetryAttempts must be at least 1, got: %d", cfg.LockRetryAttempts))
	}
	if cfg.RecentCitiesLimit < 1 {
		errors = append(errors, fmt.Sprintf("RecentCitiesLimit must be at least 1, got: %d", cfg.RecentCitiesLimit))
	}
	if len(cfg.Currency) != 3 {
		errors = append(errors, fmt.Sprintf("Currency must be a 3 letter code, got: %s", cfg.Currency))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

// ValidateAuth is checked only by the services that verify bearer tokens.
// Jobs and the notifier run without an identity provider.
func (cfg *Config) ValidateAuth() error {
	if cfg.AuthJWKSURL == "" && cfg.AuthHMACSecret == "" {
		return fmt.Errorf("one of %s or %s must be set", EnvAuthJWKSURL, EnvAuthHMACSecret)
	}
	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"auth_jwks_url", cfg.AuthJWKSURL,
		"auth_hmac_secret_set", cfg.AuthHMACSecret != "",
		"webhook_secret_set", cfg.WebhookSecret != "",
		"cloudinary_cloud", cfg.CloudinaryCloudName,
		"smtp_host", cfg.SMTPHost,
		"events_enabled", cfg.EventsEnabled,
		"booking_events_topic", cfg.BookingEventsTopic,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"max_upload_size", cfg.MaxUploadSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"cancellation_notice", cfg.CancellationNotice,
		"allow_same_day_turnover", cfg.AllowSameDayTurnover,
		"revenue_includes_cancelled", cfg.RevenueIncludesCancelled,
		"lock_ttl", cfg.LockTTL,
		"lock_retry_attempts", cfg.LockRetryAttempts,
		"currency", cfg.Currency,
		"extras", len(cfg.Extras),
	)
}

// ParseExtras reads the pricing table for optional add-ons, written as
// comma separated code:amount:per entries.
func ParseExtras(raw string) ([]model.ExtraRate, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	seen := make(map[string]struct{})
	var extras []model.ExtraRate
	for _, entry := range strings.Split(raw, ",") {
		parts := strings.Split(strings.TrimSpace(entry), ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("extra %q must be code:amount:per", entry)
		}

		code := strings.ToLower(strings.TrimSpace(parts[0]))
		if code == "" {
			return nil, fmt.Errorf("extra %q has an empty code", entry)
		}
		if _, dup := seen[code]; dup {
			return nil, fmt.Errorf("extra %q is listed twice", code)
		}

		amount, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil || amount < 0 {
			return nil, fmt.Errorf("extra %q has an invalid amount", code)
		}

		per := strings.ToLower(strings.TrimSpace(parts[2]))
		if per != model.ExtraPerNight && per != model.ExtraPerStay {
			return nil, fmt.Errorf("extra %q must be priced per %s or %s", code, model.ExtraPerNight, model.ExtraPerStay)
		}

		seen[code] = struct{}{}
		extras = append(extras, model.ExtraRate{Code: code, Amount: amount, Per: per})
	}
	return extras, nil
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
