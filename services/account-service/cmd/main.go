package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/vasapolrittideah/shopit-api/services/account-service/internal/config"
	"github.com/vasapolrittideah/shopit-api/services/account-service/internal/handler"
	"github.com/vasapolrittideah/shopit-api/services/account-service/internal/repository"
	"github.com/vasapolrittideah/shopit-api/services/account-service/internal/usecase"
	"github.com/vasapolrittideah/shopit-api/shared/auth"
	"github.com/vasapolrittideah/shopit-api/shared/discovery"
	"github.com/vasapolrittideah/shopit-api/shared/events"
	"github.com/vasapolrittideah/shopit-api/shared/logger"
	"github.com/vasapolrittideah/shopit-api/shared/mailer"
	"github.com/vasapolrittideah/shopit-api/shared/metrics"
	"github.com/vasapolrittideah/shopit-api/shared/security"
	"github.com/vasapolrittideah/shopit-api/shared/utilities"
	"github.com/vasapolrittideah/shopit-api/shared/validation"
)

const (
	serviceName     = "account-service"
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.New(serviceName, cfg.Log, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, err := mongo.Connect(options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to disconnect from mongodb")
		}
	}()

	pingCtx, cancelPing := context.WithTimeout(ctx, 10*time.Second)
	defer cancelPing()
	if err := mongoClient.Ping(pingCtx, readpref.Primary()); err != nil {
		log.Fatal().Err(err).Msg("failed to ping mongodb")
	}

	userRepo := repository.NewUserMongoRepository(ctx, log, mongoClient.Database(cfg.Mongo.Database))

	emailSender, err := mailer.NewMailer(cfg.SMTP)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create mailer")
	}

	var publisher usecase.EventPublisher = events.NopPublisher{}
	if cfg.Redis.Addr != "" {
		redisClient, err := events.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()

		publisher = events.NewRedisPublisher(redisClient, cfg.Redis.Stream)
	} else {
		log.Warn().Msg("REDIS_ADDR not set, account events are not published")
	}

	validator, err := validation.New()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create validator")
	}

	serviceMetrics := metrics.New("shopit_account")
	hasher := security.NewArgon2Hasher()
	sessions := auth.NewSessionIssuer(cfg.Token.Issuer, cfg.Token.Secret, cfg.Token.ExpiresIn)

	accountUsecase := usecase.NewAccountUsecase(userRepo, hasher, sessions, publisher, log)
	passwordResetUsecase := usecase.NewPasswordResetUsecase(
		userRepo,
		hasher,
		security.NewResetTokens(),
		sessions,
		emailSender,
		publisher,
		serviceMetrics,
		cfg.Token.PasswordResetTokenExpiresIn,
		log,
	)
	adminUsecase := usecase.NewAdminUsecase(userRepo, publisher, log)

	accountHandler := handler.NewAccountHandler(
		accountUsecase,
		passwordResetUsecase,
		adminUsecase,
		validator,
		handler.Config{
			ResetURLBase:    cfg.AppPasswordResetURL,
			CookieExpiresIn: cfg.Cookie.ExpiresIn,
			CookieSecure:    cfg.Cookie.Secure,
		},
	)

	httpListener, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.HTTPAddr).Msg("failed to listen")
	}

	grpcListener, err := net.Listen("tcp", cfg.GRPCHealthAddr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.GRPCHealthAddr).Msg("failed to listen")
	}

	httpServer := &http.Server{
		Handler:           accountHandler.Routes(sessions, serviceMetrics, log),
		ReadHeaderTimeout: 5 * time.Second,
	}
	healthServer := utilities.NewHealthServer(log)

	serveErr := make(chan error, 2)

	go func() {
		log.Info().Str("addr", httpListener.Addr().String()).Msg("http server started")
		if err := httpServer.Serve(httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	go func() {
		if err := healthServer.Serve(grpcListener); err != nil {
			serveErr <- err
		}
	}()

	if cfg.Discovery.Enabled() {
		registration, err := discovery.Register(
			cfg.Discovery,
			httpListener.Addr().(*net.TCPAddr).Port,
			grpcListener.Addr().(*net.TCPAddr).Port,
			log,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to register with consul")
		}
		defer registration.Deregister()
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-serveErr:
		log.Error().Err(err).Msg("server stopped unexpectedly")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shut down http server")
	}
	healthServer.Stop()
}
