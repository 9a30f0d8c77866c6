package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/joao-fontenele/storefront-core/internal/auth"
	"github.com/joao-fontenele/storefront-core/internal/cart"
	"github.com/joao-fontenele/storefront-core/internal/catalog"
	"github.com/joao-fontenele/storefront-core/internal/checkout"
	"github.com/joao-fontenele/storefront-core/internal/discount"
	"github.com/joao-fontenele/storefront-core/internal/messaging"
	"github.com/joao-fontenele/storefront-core/internal/orders"
	"github.com/joao-fontenele/storefront-core/internal/session"
	"github.com/joao-fontenele/storefront-core/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "storefront", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider("storefront", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	postgresURL := os.Getenv("POSTGRES_URL")
	if postgresURL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}

	db, err := telemetry.OpenDB("postgres", postgresURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	var sessions session.Store
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			logger.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		rdb := redis.NewClient(opts)
		defer func() { _ = rdb.Close() }()

		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		sessions = session.NewRedisStore(rdb, 24*time.Hour)
	} else {
		logger.Warn("REDIS_URL not set, using in-memory session store")
		sessions = session.NewMemoryStore()
	}

	var producer *messaging.Producer
	if kafkaBrokers := os.Getenv("KAFKA_BROKERS"); kafkaBrokers != "" {
		producer = messaging.NewProducer(strings.Split(kafkaBrokers, ","), "order.placed")
		defer func() { _ = producer.Close() }()
	}

	catalogRepo := catalog.NewRepository(db)
	cartRepo := cart.NewRepository(db)
	discountRepo := discount.NewRepository(db)
	ordersRepo := orders.NewRepository(db)

	resolver := discount.NewResolver(discountRepo)
	coordinator, err := checkout.NewCoordinator(db, cartRepo, resolver, sessions, producer, logger)
	if err != nil {
		logger.Error("failed to create checkout coordinator", "error", err)
		os.Exit(1)
	}

	catalogHandler := catalog.NewHandler(catalogRepo, logger)
	cartHandler := cart.NewHandler(cartRepo, catalogRepo, logger)
	discountHandler := discount.NewHandler(resolver, sessions, logger)
	checkoutHandler := checkout.NewHandler(coordinator, sessions, logger)
	ordersHandler := orders.NewHandler(ordersRepo, logger)

	mw := auth.NewMiddleware(auth.HeaderProvider{}, logger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /products", telemetry.WithHTTPRoute(catalogHandler.HandleList))
	mux.HandleFunc("GET /products/featured", telemetry.WithHTTPRoute(catalogHandler.HandleFeatured))
	mux.HandleFunc("GET /products/search", telemetry.WithHTTPRoute(catalogHandler.HandleSearch))
	mux.HandleFunc("GET /products/category/{category}", telemetry.WithHTTPRoute(catalogHandler.HandleCategory))
	mux.HandleFunc("GET /products/{id}", telemetry.WithHTTPRoute(catalogHandler.HandleGet))
	mux.HandleFunc("PUT /products/{id}", telemetry.WithHTTPRoute(mw.RequireStaff(catalogHandler.HandleUpdate)))
	mux.HandleFunc("DELETE /products/{id}", telemetry.WithHTTPRoute(mw.RequireStaff(catalogHandler.HandleDelete)))

	mux.HandleFunc("GET /cart", telemetry.WithHTTPRoute(mw.RequireUser(cartHandler.HandleView)))
	mux.HandleFunc("POST /cart/add/{productId}", telemetry.WithHTTPRoute(mw.RequireUser(cartHandler.HandleAdd)))
	mux.HandleFunc("POST /cart/remove/{lineItemId}", telemetry.WithHTTPRoute(mw.RequireUser(cartHandler.HandleRemove)))
	mux.HandleFunc("POST /cart/increase/{lineItemId}", telemetry.WithHTTPRoute(mw.RequireUser(cartHandler.HandleIncrease)))
	mux.HandleFunc("POST /cart/decrease/{lineItemId}", telemetry.WithHTTPRoute(mw.RequireUser(cartHandler.HandleDecrease)))

	mux.HandleFunc("POST /discount/apply", telemetry.WithHTTPRoute(mw.RequireUser(discountHandler.HandleApply)))

	mux.HandleFunc("GET /checkout", telemetry.WithHTTPRoute(mw.RequireUser(checkoutHandler.HandlePreview)))
	mux.HandleFunc("POST /checkout", telemetry.WithHTTPRoute(mw.RequireUser(checkoutHandler.HandleCheckout)))

	mux.HandleFunc("GET /orders", telemetry.WithHTTPRoute(mw.RequireUser(ordersHandler.HandleList)))
	mux.HandleFunc("GET /orders/{id}", telemetry.WithHTTPRoute(mw.RequireUser(ordersHandler.HandleGet)))
	mux.HandleFunc("PATCH /orders/{id}/status", telemetry.WithHTTPRoute(mw.RequireStaff(ordersHandler.HandleUpdateStatus)))

	mux.Handle("GET /metrics", metricsHandler)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr: ":" + port,
		Handler: otelhttp.NewHandler(mux, "storefront",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting storefront service", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
