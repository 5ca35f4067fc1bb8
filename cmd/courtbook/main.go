package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/md-rashed-zaman/courtbook/internal/handlers"
	"github.com/md-rashed-zaman/courtbook/internal/outbox"
	"github.com/md-rashed-zaman/courtbook/internal/payments"
	"github.com/md-rashed-zaman/courtbook/internal/storage"
	"github.com/md-rashed-zaman/courtbook/internal/upload"
	"github.com/md-rashed-zaman/courtbook/libs/config"
	"github.com/md-rashed-zaman/courtbook/libs/db"
	"github.com/md-rashed-zaman/courtbook/libs/httpx"
	"github.com/md-rashed-zaman/courtbook/libs/kafkax"
	otelx "github.com/md-rashed-zaman/courtbook/libs/otel"
	"github.com/md-rashed-zaman/courtbook/libs/runtime"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	_ = godotenv.Load()

	service := config.String("SERVICE_NAME", "courtbook")
	port, err := config.Port("PORT", "8080")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	users := storage.NewUserRepository(pool)
	facilities := storage.NewFacilityRepository(pool)
	bookings := storage.NewBookingRepository(pool)
	contacts := storage.NewContactRepository(pool)
	paymentSessions := storage.NewPaymentRepository(pool)
	outboxRepo := outbox.NewRepository(pool)

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	var gateway payments.Gateway
	if key := config.String("STRIPE_SECRET_KEY", ""); strings.TrimSpace(key) != "" {
		stripeGateway, err := payments.NewStripeGateway(payments.StripeConfig{
			SecretKey:  key,
			SuccessURL: config.String("PAYMENT_SUCCESS_URL", "http://localhost:"+port+"/payment/success"),
			CancelURL:  config.String("PAYMENT_CANCEL_URL", "http://localhost:"+port+"/payment/cancel"),
		})
		if err != nil {
			logger.Error("stripe setup failed", "err", err)
		} else {
			gateway = stripeGateway
		}
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set; payment initiation disabled")
	}

	uploadDir := config.String("UPLOAD_DIR", "uploads")
	uploadStore, err := upload.NewStore(uploadDir, "/uploads")
	if err != nil {
		logger.Error("upload store init failed", "err", err)
		panic(err)
	}

	jwtSecret := config.String("JWT_SECRET", "dev-secret")
	tokenTTL := time.Duration(config.Int("TOKEN_TTL_HOURS", 168)) * time.Hour

	authHandler := handlers.NewAuthHandler(users, logger, jwtSecret, tokenTTL)
	facilityHandler := handlers.NewFacilityHandler(facilities, logger)
	bookingHandler := handlers.NewBookingHandler(bookings, facilities, outboxRepo, logger)
	contactHandler := handlers.NewContactHandler(contacts, outboxRepo, logger)
	adminHandler := handlers.NewAdminHandler(users, facilities, bookings, logger)
	paymentHandler := handlers.NewPaymentHandler(bookings, paymentSessions, gateway, outboxRepo, logger, config.String("PAYMENT_CURRENCY", "usd"))
	uploadHandler := handlers.NewUploadHandler(uploadStore, logger)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)

	mux.HandleFunc("/api/auth/register", authHandler.Register)
	mux.HandleFunc("/api/auth/admin/register", authHandler.RegisterAdmin)
	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.HandleFunc("/api/auth/logout", authHandler.Logout)
	mux.HandleFunc("/api/auth/me", authHandler.Me)

	mux.HandleFunc("/api/facilities", facilityHandler.Collection)
	mux.HandleFunc("/api/facilities/", facilityHandler.Item)

	mux.HandleFunc("/api/check-availability", bookingHandler.CheckAvailability)
	mux.HandleFunc("/api/bookings", bookingHandler.Collection)
	mux.HandleFunc("/api/bookings/", bookingHandler.Item)
	mux.HandleFunc("/api/user/bookings", bookingHandler.UserBookings)
	mux.HandleFunc("/api/user/bookings/", bookingHandler.UserBookingItem)

	mux.HandleFunc("/api/contact", contactHandler.Collection)
	mux.HandleFunc("/api/contact/", contactHandler.Item)

	mux.HandleFunc("/api/admin/stats", adminHandler.Stats)
	mux.HandleFunc("/api/admin/dashboard", adminHandler.Dashboard)
	mux.HandleFunc("/api/admin/users", adminHandler.Users)

	mux.HandleFunc("/api/payment/initiate", paymentHandler.Initiate)
	mux.HandleFunc("/api/payment/verify/", paymentHandler.Verify)
	mux.HandleFunc("/api/payment/ipn", paymentHandler.IPN)

	mux.HandleFunc("/api/upload/image", uploadHandler.Image)
	mux.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))))

	bodyLimit := int64(config.Int("REQUEST_BODY_LIMIT_BYTES", 10<<20))
	requestTimeout := time.Duration(config.Int("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second
	limitPerMinute := config.Int("RATE_LIMIT_PER_MINUTE", 120)

	var rateLimitMW httpx.Middleware
	if addr := strings.TrimSpace(config.String("REDIS_ADDR", "")); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       config.Int("REDIS_DB", 0),
		})
		defer func() { _ = rdb.Close() }()

		rl := httpx.NewRedisRateLimiter(rdb, limitPerMinute, time.Minute, config.String("RATE_LIMIT_PREFIX", "rl"))
		rateLimitMW = rl.Middleware(logger, config.Bool("RATE_LIMIT_FAIL_OPEN", true))
		logger.Info("rate limiting enabled (redis)", "per_minute", limitPerMinute, "redis_addr", addr)
	} else {
		rl := httpx.NewRateLimiter(limitPerMinute, time.Minute)
		rateLimitMW = rl.Middleware()
		logger.Info("rate limiting enabled (in-memory)", "per_minute", limitPerMinute)
	}

	handler := httpx.Chain(mux,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins:   parseList(config.String("CORS_ALLOWED_ORIGINS", "")),
			AllowedMethods:   parseList(config.String("CORS_ALLOWED_METHODS", "GET,POST,PUT,PATCH,DELETE,OPTIONS")),
			AllowedHeaders:   parseList(config.String("CORS_ALLOWED_HEADERS", "Authorization,Content-Type,X-Request-Id")),
			AllowCredentials: config.Bool("CORS_ALLOW_CREDENTIALS", false),
			MaxAge:           time.Duration(config.Int("CORS_MAX_AGE_SECONDS", 600)) * time.Second,
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(bodyLimit),
		httpx.WithTimeout(requestTimeout),
		rateLimitMW,
		handlers.Authenticate(jwtSecret),
	)
	handler = otelhttp.NewHandler(handler, service)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}

func parseList(raw string) []string {
	items := strings.Split(raw, ",")
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
