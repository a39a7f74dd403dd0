package main

import (
	"context"

	"staybook/internal/bookings/events"
	"staybook/internal/bookings/handler"
	"staybook/internal/bookings/pricing"
	"staybook/internal/bookings/repository"
	"staybook/internal/bookings/service"
	"staybook/internal/bookings/validator"
	hotelsrepo "staybook/internal/hotels/repository"
	notifications "staybook/internal/notifications/service"
	roomsrepo "staybook/internal/rooms/repository"
	usersrepo "staybook/internal/users/repository"
	usersservice "staybook/internal/users/service"
	"staybook/pkg/app"
	"staybook/pkg/auth"
	"staybook/pkg/config"
	"staybook/pkg/kafka"
	kafka_config "staybook/pkg/kafka/config"
	kafka_middleware "staybook/pkg/kafka/middleware"
	"staybook/pkg/mail"
	"staybook/pkg/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	if err := cfg.ValidateAuth(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}

	cfg.Log.Info("Starting Bookings service")
	cfg.SetMongo()

	verifier, closeVerifier, err := auth.NewVerifier(context.Background(), auth.Settings{
		JWKSURL:    cfg.AuthJWKSURL,
		Issuer:     cfg.AuthIssuer,
		Audience:   cfg.AuthAudience,
		HMACSecret: cfg.AuthHMACSecret,
	}, cfg.Log)
	if err != nil {
		cfg.GracefulShutdown()
		cfg.Log.Fatal("Failed to initialize token verification", "error", err)
	}

	userRepo := usersrepo.NewMongoUserRepository(cfg)
	users := usersservice.NewUserService(userRepo, cfg)
	authenticate := middleware.Authenticate(verifier, users, cfg.Log)

	bookingService := initServices(cfg, userRepo)

	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown(closeVerifier)
	// registered last so it runs first: pending emails finish before the producer closes
	serverApp.OnShutdown(bookingService.Drain)
	serverApp.SetApp(handler.NewBookingHandler(bookingService, authenticate, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config, users service.UserLookup) service.BookingService {
	table := pricing.NewTable(cfg.Extras)
	bookingValidator := validator.NewBookingValidator(cfg.Log, table)
	catalog := repository.NewCatalog(
		roomsrepo.NewMongoRoomRepository(cfg),
		hotelsrepo.NewMongoHotelRepository(cfg),
	)

	bookingService := service.NewBookingService(
		repository.NewMongoBookingRepository(cfg),
		repository.NewBookingLockRepository(cfg),
		catalog,
		users,
		newPublisher(cfg),
		bookingValidator,
		table,
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}

// newPublisher sends events to Kafka when enabled. Without a broker the
// emails are sent in process, or only logged when SMTP is not configured.
func newPublisher(cfg *config.Config) service.Publisher {
	if cfg.EventsEnabled {
		kcfg, err := kafka_config.Load()
		if err != nil {
			cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
		}
		kcfg.LogConfiguration(cfg.Log)

		producer, err := kafka.NewProducer(kcfg, cfg.BookingEventsTopic, cfg.BookingEventsDLQTopic, cfg.Log)
		if err != nil {
			cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
		}
		if kcfg.EnableMiddleware {
			producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		}
		cfg.Client.SetProducer(producer)

		cfg.Log.Info("Booking events published to Kafka", "topic", cfg.BookingEventsTopic)
		return events.NewKafkaPublisher(producer)
	}

	if cfg.SMTPHost != "" {
		sender, err := mail.NewSMTPSender(mail.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			Timeout:  cfg.WriteTimeout,
		})
		if err != nil {
			cfg.Log.Fatal("Invalid SMTP configuration", "error", err)
		}
		cfg.Log.Info("Booking emails sent in process", "smtp_host", cfg.SMTPHost)
		return notifications.NewNotifier(sender, cfg)
	}

	cfg.Log.Warn("No broker or SMTP configured; booking events are only logged")
	return events.NewLogPublisher(cfg.Log)
}
