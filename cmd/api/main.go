package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"jobsy/internal/backend"
	"jobsy/internal/config"
	"jobsy/internal/db"
	"jobsy/internal/email"
	apihttp "jobsy/internal/http"
	"jobsy/internal/i18n"
	"jobsy/internal/metrics"
	"jobsy/internal/repository"
	"jobsy/internal/service"
	"jobsy/internal/session"
	"jobsy/internal/signup"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if cfg.MigrateOnStart {
		if err := db.Migrate(cfg.DatabaseURL, logger); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New("jobsy")
		if err := m.RegisterPool(pool); err != nil {
			logger.Warn("pool metrics registration failed", zap.Error(err))
		}
	}

	userRepo := repository.NewPgUserRepository(pool)
	profileRepo := repository.NewPgProfileRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	otpWindow := time.Duration(cfg.OTPResendWindowSeconds) * time.Second
	otpLimiter := service.NewOTPRateLimiter(otpWindow, cfg.OTPResendMax)
	tokenStore := service.NewMemoryRefreshTokenStore()
	var broker session.Broker = session.NewMemoryBroker()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			otpLimiter = service.NewRedisOTPRateLimiter(redisClient, otpWindow, cfg.OTPResendMax)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
			redisBroker := session.NewRedisBroker(redisClient, logger)
			go redisBroker.Run(ctx)
			broker = redisBroker
		}
		cancel()
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
		broker,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	userSvc := service.NewUserService(logger, userRepo, emailSender, otpLimiter)
	profileSvc := service.NewProfileService(logger, profileRepo)

	factory := func() backend.Client {
		return backend.NewLocal(backend.LocalDeps{
			Logger:   logger,
			Accounts: userSvc,
			Profiles: profileSvc,
			Tokens:   jwtSvc,
			Sessions: broker,
		})
	}
	if cfg.BackendURL != "" {
		remote := &http.Client{Timeout: time.Duration(cfg.BackendCallTimeoutSeconds) * time.Second}
		factory = func() backend.Client {
			return backend.NewHTTPClient(cfg.BackendURL, cfg.BackendAPIKey, remote, logger)
		}
		logger.Info("app flows use remote backend", zap.String("backend_url", cfg.BackendURL))
	}

	flowOpts := signup.Options{
		Logger:      logger,
		CallTimeout: time.Duration(cfg.BackendCallTimeoutSeconds) * time.Second,
	}
	if m != nil {
		flowOpts.Observer = m
	}
	flows := signup.NewRegistry(time.Duration(cfg.SignupFlowTTLMinutes)*time.Minute, flowOpts)
	defer flows.CloseAll()
	go flows.Run(ctx, time.Minute)

	sessions := apihttp.NewSessionStore(logger, factory, time.Duration(cfg.BrowserSessionTTLMinutes)*time.Minute, cfg.SecureCookies)
	go sessions.Run(ctx, time.Minute)

	catalog, err := i18n.Load(cfg.DefaultLanguage)
	if err != nil {
		logger.Fatal("load translations", zap.Error(err))
	}

	router := apihttp.NewRouter(apihttp.RouterDeps{
		Logger:   logger,
		Metrics:  m,
		Catalog:  catalog,
		JWT:      jwtSvc,
		APIKey:   cfg.APIKey,
		Auth:     apihttp.NewAuthHandler(logger, userSvc, jwtSvc),
		Profiles: apihttp.NewProfileHandler(logger, profileSvc),
		App:      apihttp.NewAppHandler(logger, catalog, flows),
		Sessions: sessions,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}
