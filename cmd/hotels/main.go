package main

import (
	"context"

	hotelshandler "staybook/internal/hotels/handler"
	hotelsrepo "staybook/internal/hotels/repository"
	hotelsservice "staybook/internal/hotels/service"
	hotelsvalidator "staybook/internal/hotels/validator"
	roomshandler "staybook/internal/rooms/handler"
	roomsrepo "staybook/internal/rooms/repository"
	roomsservice "staybook/internal/rooms/service"
	roomsvalidator "staybook/internal/rooms/validator"
	usershandler "staybook/internal/users/handler"
	usersrepo "staybook/internal/users/repository"
	usersservice "staybook/internal/users/service"
	"staybook/pkg/app"
	"staybook/pkg/auth"
	"staybook/pkg/config"
	"staybook/pkg/media"
	"staybook/pkg/middleware"
)

const ServiceName = "hotels"

func main() {
	cfg := config.Load(ServiceName)
	if err := cfg.ValidateAuth(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}

	cfg.Log.Info("Starting Hotels service")
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
	userService := usersservice.NewUserService(userRepo, cfg)
	authenticate := middleware.Authenticate(verifier, userService, cfg.Log)
	if cfg.WebhookSecret == "" {
		cfg.Log.Warn("WEBHOOK_SECRET not set; identity webhooks will be rejected")
	}
	webhook := middleware.WebhookSignatureVerification(cfg.WebhookSecret, cfg.Log)

	hotelService := hotelsservice.NewHotelService(
		hotelsrepo.NewMongoHotelRepository(cfg),
		userRepo,
		hotelsvalidator.NewHotelValidator(cfg.Log),
		cfg,
	)
	roomService := roomsservice.NewRoomService(
		roomsrepo.NewMongoRoomRepository(cfg),
		hotelService,
		newUploader(cfg),
		roomsvalidator.NewRoomValidator(cfg.Log),
		cfg,
	)
	cfg.Log.Info("Hotel services initialized", "database", cfg.MongoDatabaseName)

	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown(closeVerifier)
	serverApp.SetApp(
		usershandler.NewUserHandler(userService, authenticate, webhook, cfg.Log),
		hotelshandler.NewHotelHandler(hotelService, authenticate, cfg.Log),
		roomshandler.NewRoomHandler(roomService, authenticate, cfg.Log),
	)
	serverApp.Run()
}

// newUploader returns nil when no media host is configured; rooms can then
// only be created without images.
func newUploader(cfg *config.Config) media.Uploader {
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		cfg.Log.Warn("Cloudinary not configured; room image uploads are disabled")
		return nil
	}
	cfg.SetMedia()
	return media.NewCloudinaryUploader(cfg.Client.Media, cfg.CloudinaryFolder)
}
