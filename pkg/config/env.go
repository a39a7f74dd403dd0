package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvAuthJWKSURL    = "AUTH_JWKS_URL"
	EnvAuthIssuer     = "AUTH_ISSUER"
	EnvAuthAudience   = "AUTH_AUDIENCE"
	EnvAuthHMACSecret = "AUTH_HMAC_SECRET"
	EnvWebhookSecret  = "IDENTITY_WEBHOOK_SECRET"

	EnvCloudinaryCloudName = "CLOUDINARY_CLOUD_NAME"
	EnvCloudinaryAPIKey    = "CLOUDINARY_API_KEY"
	EnvCloudinaryAPISecret = "CLOUDINARY_API_SECRET"
	EnvCloudinaryFolder    = "CLOUDINARY_FOLDER"

	EnvSMTPHost     = "SMTP_HOST"
	EnvSMTPPort     = "SMTP_PORT"
	EnvSMTPUsername = "SMTP_USERNAME"
	EnvSMTPPassword = "SMTP_PASSWORD"
	EnvSMTPFrom     = "SMTP_FROM"

	EnvEventsEnabled         = "EVENTS_ENABLED"
	EnvBookingEventsTopic    = "BOOKING_EVENTS_TOPIC"
	EnvBookingEventsDLQTopic = "BOOKING_EVENTS_DLQ_TOPIC"
	EnvNotifierGroupID       = "NOTIFIER_GROUP_ID"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"
	EnvMaxUploadSize  = "MAX_UPLOAD_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvCancellationNotice       = "CANCELLATION_NOTICE"
	EnvAllowSameDayTurnover     = "ALLOW_SAME_DAY_TURNOVER"
	EnvRevenueIncludesCancelled = "REVENUE_INCLUDES_CANCELLED"
	EnvLockTTL                  = "BOOKING_LOCK_TTL"
	EnvLockRetryAttempts        = "BOOKING_LOCK_RETRY_ATTEMPTS"
	EnvLockRetryBackoff         = "BOOKING_LOCK_RETRY_BACKOFF"
	EnvNotificationTimeout      = "NOTIFICATION_TIMEOUT"
	EnvCurrency                 = "CURRENCY"
	EnvBookingExtras            = "BOOKING_EXTRAS"
	EnvRecentCitiesLimit        = "RECENT_CITIES_LIMIT"
)
