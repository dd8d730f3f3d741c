package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"plotsure-backend/internal/application/activity"
	"plotsure-backend/internal/application/auth"
	"plotsure-backend/internal/application/contacts"
	"plotsure-backend/internal/application/inquiries"
	"plotsure-backend/internal/application/listings"
	"plotsure-backend/internal/application/media"
	"plotsure-backend/internal/application/notifications"
	"plotsure-backend/internal/config"
	"plotsure-backend/internal/infrastructure/database"
	"plotsure-backend/internal/infrastructure/storage"
	adminhandlers "plotsure-backend/internal/interfaces/handlers/admin"
	authhandlers "plotsure-backend/internal/interfaces/handlers/auth"
	contacthandlers "plotsure-backend/internal/interfaces/handlers/contacts"
	healthhandlers "plotsure-backend/internal/interfaces/handlers/health"
	inquiryhandlers "plotsure-backend/internal/interfaces/handlers/inquiries"
	listinghandlers "plotsure-backend/internal/interfaces/handlers/listings"
	mediahandlers "plotsure-backend/internal/interfaces/handlers/media"
	"plotsure-backend/internal/interfaces/router"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	if cfg.Env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		rdb = redis.NewClient(opts)
	}

	mailer := notifications.NewBrevoClient(cfg.BrevoAPIKey, cfg.MailFrom)
	dispatcher := notifications.NewDispatcher(mailer)
	defer dispatcher.Close()

	store := storage.NewDiskStore(cfg.UploadDir)

	authSvc := &auth.Service{
		DB:         db,
		Rdb:        rdb,
		Secret:     cfg.JWTSecret,
		TokenTTL:   time.Duration(cfg.JWTExpiryHrs) * time.Hour,
		BcryptCost: cfg.BcryptRounds,
		Dispatcher: dispatcher,
	}
	activitySvc := &activity.Service{DB: db}
	listingSvc := &listings.Service{DB: db, Store: store, Dispatcher: dispatcher}
	inquirySvc := &inquiries.Service{DB: db, Listings: listingSvc, Dispatcher: dispatcher}
	contactSvc := &contacts.Service{DB: db, Dispatcher: dispatcher, AdminEmail: cfg.AdminEmail}
	mediaSvc := &media.Service{DB: db, Store: store}

	app := router.New(router.Deps{
		Cfg:       cfg,
		Auth:      authSvc,
		AuthH:     &authhandlers.Handlers{Service: authSvc},
		Listings:  &listinghandlers.Handlers{Service: listingSvc, Activity: activitySvc},
		Inquiries: &inquiryhandlers.Handlers{Service: inquirySvc, Activity: activitySvc},
		Contacts:  &contacthandlers.Handlers{Service: contactSvc, Activity: activitySvc},
		Media:     &mediahandlers.Handlers{Service: mediaSvc},
		Admin:     &adminhandlers.Handlers{Auth: authSvc, Activity: activitySvc},
		Health:    &healthhandlers.Handlers{DB: db, Rdb: rdb, Env: cfg.Env},
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("shutdown error")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
