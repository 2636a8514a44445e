package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"shelfsnap/internal/billing"
	"shelfsnap/internal/httpx"
	"shelfsnap/internal/ingest"
	"shelfsnap/internal/library"
	"shelfsnap/internal/platform/googlebooks"
	"shelfsnap/internal/platform/vision"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

const maxUploadBytes = 50 << 20 // 50MB image payload cap

func main() {
	_ = godotenv.Load(".env.local")

	serverAddress := getEnv("APP_ADDR", ":8080")
	storageBackend := getEnv("STORAGE_BACKEND", "postgres")
	authSecret := mustGetEnv("AUTH_JWT_SECRET")
	openAIKey := mustGetEnv("OPENAI_API_KEY")
	googleBooksKey := getEnv("GOOGLE_BOOKS_API_KEY", "")
	stripeSecretKey := mustGetEnv("STRIPE_SECRET_KEY")
	stripeWebhookSecret := mustGetEnv("STRIPE_WEBHOOK_SECRET")
	stripePriceID := mustGetEnv("STRIPE_PRICE_ID")
	frontendURL := getEnv("FRONTEND_URL", "http://localhost:5000")
	monthlyLimit := getEnvInt("MONTHLY_BOOK_LIMIT", 50)
	allowedOrigins := strings.Split(getEnv("ALLOWED_ORIGINS", frontendURL), ",")

	// Storage backend is chosen once, here, by explicit injection.
	var (
		bookStore   library.Store
		billingRepo billing.Repository
		dbPool      *pgxpool.Pool
	)
	switch storageBackend {
	case "memory":
		bookStore = library.NewMemoryStore()
		billingRepo = billing.NewMemoryRepo()
		log.Println("using in-memory storage backend")
	case "postgres":
		dbPool = mustOpenDB(mustGetEnv("DB_DSN"))
		defer dbPool.Close()
		bookStore = library.NewPostgresStore(dbPool, 5*time.Second)
		billingRepo = billing.NewPostgresRepo(dbPool, 5*time.Second)
	default:
		log.Fatalf("unknown STORAGE_BACKEND: %q (want memory or postgres)", storageBackend)
	}

	extractor := vision.NewExtractor(openAIKey)
	catalogClient := googlebooks.NewClient(googleBooksKey, 5, 3)
	paymentClient := billing.NewStripeClient(stripeSecretKey, stripePriceID, frontendURL)

	libraryService := library.NewService(bookStore, catalogClient)
	ingestService := ingest.NewService(extractor, catalogClient, bookStore, ingest.Config{MonthlyLimit: monthlyLimit})
	billingService := billing.NewService(paymentClient, billingRepo, billing.Config{
		WebhookSecret: stripeWebhookSecret,
		FrontendURL:   frontendURL,
	})

	libraryHandler := library.NewHTTPHandler(libraryService)
	ingestHandler := ingest.NewHTTPHandler(ingestService)
	billingHandler := billing.NewHTTPHandler(billingService)

	authenticated := httpx.AuthMiddleware(authSecret)
	entitled := httpx.EntitlementMiddleware(billingService)
	protect := func(h http.HandlerFunc) http.Handler {
		return authenticated(entitled(h))
	}

	// 100 requests per 15 minutes for the API, 5 uploads per hour for analyze.
	apiLimiter := httpx.NewRateLimitMiddleware(100.0/(15*60), 100)
	uploadLimiter := httpx.NewRateLimitMiddleware(5.0/3600, 5)

	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if dbPool != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
			defer cancel()
			if err := dbPool.Ping(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.HandleFunc("POST /api/webhook", billingHandler.Webhook)
	router.Handle("POST /api/create-checkout-session", authenticated(http.HandlerFunc(billingHandler.CreateCheckoutSession)))
	router.Handle("GET /api/subscription", authenticated(http.HandlerFunc(billingHandler.Status)))

	router.Handle("GET /api/books", protect(libraryHandler.List))
	router.Handle("GET /api/books/{id}/details", protect(libraryHandler.Details))
	router.Handle("DELETE /api/books/{id}", protect(libraryHandler.Delete))
	router.Handle("DELETE /api/uploads/{uploadId}", protect(libraryHandler.UndoUpload))
	router.Handle("GET /api/export", protect(libraryHandler.Export))

	analyze := httpx.RequestSizeLimitMiddleware(maxUploadBytes)(http.HandlerFunc(ingestHandler.Analyze))
	router.Handle("POST /api/analyze", authenticated(entitled(uploadLimiter.Middleware(analyze))))

	var handler http.Handler = router
	handler = apiLimiter.Middleware(handler)
	handler = httpx.CORSMiddleware(allowedOrigins)(handler)
	handler = httpx.SecurityHeadersMiddleware(handler)
	handler = httpx.AccessLogMiddleware(handler)
	handler = httpx.RecoveryMiddleware(handler)
	handler = httpx.RequestIDMiddleware(handler)

	httpServer := &http.Server{
		Addr:         serverAddress,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Starting server on %s", serverAddress)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Fatalf("invalid integer for %s: %q", key, v)
	}
	return def
}

func mustGetEnv(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	log.Fatalf("missing required environment variable: %s", key)
	return ""
}

func mustOpenDB(dsn string) *pgxpool.Pool {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("cannot create db pool: %v", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		log.Fatalf("cannot ping database (%s): %v", redactDSN(dsn), err)
	}
	log.Println("database connection OK")
	return pool
}

func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
