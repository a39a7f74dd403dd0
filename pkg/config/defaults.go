package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "staybook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB
	DefaultMaxUploadSize  = 10 * 1024 * 1024

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultLogLevel = "info"

	DefaultPaginationLimit = 100

	DefaultCloudinaryFolder = "staybook/rooms"

	DefaultSMTPPort = 587
	DefaultSMTPFrom = "bookings@staybook.local"

	DefaultBookingEventsTopic    = "booking-events"
	DefaultBookingEventsDLQTopic = "booking-events-dlq"
	DefaultNotifierGroupID       = "staybook-notifier"

	DefaultCancellationNotice  = 24 * time.Hour
	DefaultLockTTL             = 10 * time.Second
	DefaultLockRetryAttempts   = 5
	DefaultLockRetryBackoff    = 50 * time.Millisecond
	DefaultNotificationTimeout = 10 * time.Second
	DefaultCurrency            = "USD"
	DefaultRecentCitiesLimit   = 3

	// code:amount:per, per is "night" or "stay"
	DefaultBookingExtras = "breakfast:25:night,transfer:45:stay,spa:30:night"
)
