package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aryan0dhankhar/citas/internal/domain"
	"github.com/aryan0dhankhar/citas/internal/featureflags"
	"github.com/aryan0dhankhar/citas/internal/handler"
	"github.com/aryan0dhankhar/citas/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/citas/internal/infrastructure/redis"
	"github.com/aryan0dhankhar/citas/internal/notification"
	"github.com/aryan0dhankhar/citas/internal/observability/tracing"
	"github.com/aryan0dhankhar/citas/internal/repository"
	"github.com/aryan0dhankhar/citas/internal/repository/memory"
	"github.com/aryan0dhankhar/citas/internal/security"
	"github.com/aryan0dhankhar/citas/internal/security/audit"
	"github.com/aryan0dhankhar/citas/internal/security/auth"
	"github.com/aryan0dhankhar/citas/internal/security/ratelimit"
	"github.com/aryan0dhankhar/citas/internal/service"
	"github.com/aryan0dhankhar/citas/internal/worker"
	"github.com/aryan0dhankhar/citas/pkg/cache"
	"github.com/aryan0dhankhar/citas/pkg/config"
	"github.com/aryan0dhankhar/citas/pkg/database"
)

// stores groups the repositories of one backend
type stores struct {
	users        domain.UserRepository
	patients     domain.PatientRepository
	doctors      domain.DoctorRepository
	admins       domain.AdminRepository
	specialties  domain.SpecialtyRepository
	appointments domain.AppointmentRepository
}

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger and tracing
	log := logger.NewLogger(cfg.LogLevel)
	slog.SetDefault(log)
	log.Info("starting citas server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, log, cfg.Tracing, "citas", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	checks := map[string]handler.Check{}

	// 3. Entity store
	var st stores
	switch cfg.Database.Backend {
	case config.StoreBackendMemory:
		log.Warn("using in-memory store, data is lost on restart")
		mem := memory.NewStore()
		st = stores{mem.Users(), mem.Patients(), mem.Doctors(), mem.Admins(), mem.Specialties(), mem.Appointments()}
	default:
		pool, err := database.NewConnectionPool(ctx, database.FromEnv(cfg.Database), log)
		if err != nil {
			log.Error("failed to connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer pool.Close()
		if err := database.EnsureSchema(ctx, pool.GetDB()); err != nil {
			log.Error("failed to apply schema", slog.String("error", err.Error()))
			os.Exit(1)
		}
		checks["database"] = pool.Health

		db := pool.GetDB()
		st = stores{
			users:        repository.NewPostgresUserRepository(db, log),
			patients:     repository.NewPostgresPatientRepository(db, log),
			doctors:      repository.NewPostgresDoctorRepository(db, log),
			admins:       repository.NewPostgresAdminRepository(db, log),
			specialties:  repository.NewPostgresSpecialtyRepository(db, log),
			appointments: repository.NewPostgresAppointmentRepository(db, log),
		}
	}

	// 4. Cache backend
	var backend cache.Backend
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		redisClient, err := redis.NewClient(cfg.Cache.RedisURL)
		if err != nil {
			log.Error("failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisClient.Close()
		backend = redisClient
		checks["redis"] = redisClient.Ping
	case config.CacheBackendMemory:
		mem := cache.NewMemory()
		backend = mem
		go worker.NewCacheSweeper(mem, log, cfg.Cache.SweepInterval).Start(ctx)
	default:
		log.Info("cache disabled")
	}
	layer := cache.NewLayer(backend, cfg.Cache.TTL, log)

	// 5. Notification pipeline
	var sender notification.Sender = notification.LogSender{Logger: log}
	if cfg.SMTP.Host != "" {
		smtp, err := notification.NewSMTPSender(cfg.SMTP)
		if err != nil {
			log.Error("failed to configure SMTP", slog.String("error", err.Error()))
			os.Exit(1)
		}
		sender = smtp
	}
	dispatcher := notification.NewDispatcher(log)
	dispatcher.RegisterObserver(notification.NewEmailObserver(sender, log))

	var liveFeed *handler.LiveFeedHandler
	if featureflags.Enabled(featureflags.LiveFeed) {
		feed := notification.NewLiveFeed(log)
		dispatcher.RegisterObserver(feed)
		liveFeed = handler.NewLiveFeedHandler(feed, log, cfg.CORSAllowedOrigins)
		log.Info("appointment live feed enabled")
	}

	// 6. Services
	secret := cfg.Auth.JWTSecret
	if secret == "" {
		log.Warn("JWT_SECRET not set, using an insecure development secret")
		secret = "citas-dev-secret"
	}
	tokens := auth.NewTokenManager(secret, "citas", cfg.Auth.TokenTTL)
	auditLog := audit.NewLogger(log)

	patients := service.NewPatientService(st.users, st.patients, layer, log)
	doctors := service.NewDoctorService(st.users, st.doctors, st.specialties, layer, log)
	admins := service.NewAdminService(st.users, st.admins, layer, log)
	specialties := service.NewSpecialtyService(st.specialties, layer, log)
	appointments := service.NewAppointmentService(st.appointments, st.patients, st.doctors, layer, dispatcher,
		security.NewOwnershipService(log), cfg.NotifyTimeout, log)
	authSvc := service.NewAuthService(st.users, st.patients, st.doctors, st.admins, tokens, log)

	if err := bootstrapAdmin(ctx, admins, cfg.Auth, log); err != nil {
		log.Error("failed to create bootstrap admin", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 7. Handlers and routes
	loginLimiter := ratelimit.NewLimiter(cfg.Auth.LoginRatePerMinute)
	router := handler.NewRouter(handler.RouterConfig{
		Auth:           handler.NewAuthHandler(authSvc, patients, auditLog, log),
		Patients:       handler.NewPatientHandler(patients, log),
		Doctors:        handler.NewDoctorHandler(doctors, appointments, log),
		Admins:         handler.NewAdminHandler(admins, log),
		Specialties:    handler.NewSpecialtyHandler(specialties, log),
		Appointments:   handler.NewAppointmentHandler(appointments, log),
		Health:         handler.NewHealthHandler(checks, log),
		LiveFeed:       liveFeed,
		Tokens:         tokens,
		Authz:          security.NewAuthorizationService(log),
		Audit:          auditLog,
		LoginLimiter:   loginLimiter,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         log,
	})

	// 8. Start HTTP server
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("store", cfg.Database.Backend),
		slog.String("cache", cfg.Cache.Backend),
		slog.Duration("cache_ttl", cfg.Cache.TTL),
		slog.Int("login_rate_per_minute", cfg.Auth.LoginRatePerMinute),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", slog.String("error", err.Error()))
			sigChan <- syscall.SIGTERM
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}
	cancel()
	loginLimiter.Stop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
}

// bootstrapAdmin creates the configured admin account once
func bootstrapAdmin(ctx context.Context, admins *service.AdminService, cfg config.AuthConfig, log *slog.Logger) error {
	if cfg.BootstrapAdminEmail == "" || cfg.BootstrapAdminPassword == "" {
		return nil
	}
	id, err := admins.Create(ctx, service.AdminInput{
		AccountInput: service.AccountInput{Email: cfg.BootstrapAdminEmail, Password: cfg.BootstrapAdminPassword},
		Name:         "Admin",
		Surname:      "Citas",
	})
	if errors.Is(err, domain.ErrDuplicateEmail) {
		return nil
	}
	if err != nil {
		return err
	}
	log.Info("bootstrap admin created", slog.Int64("user_id", id))
	return nil
}
