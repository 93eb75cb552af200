package main

import (
	"context"
	"crypto/tls"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	admin "github.com/5w1tchy/books-admin/internal/api/handlers/admin"
	onboardinghttp "github.com/5w1tchy/books-admin/internal/api/handlers/onboarding"
	mw "github.com/5w1tchy/books-admin/internal/api/middlewares"
	"github.com/5w1tchy/books-admin/internal/api/router"
	"github.com/5w1tchy/books-admin/internal/auditqueue"
	"github.com/5w1tchy/books-admin/internal/maintenance"
	"github.com/5w1tchy/books-admin/internal/repository/sqlconnect"
	jwtutil "github.com/5w1tchy/books-admin/internal/security/jwt"
	storage "github.com/5w1tchy/books-admin/internal/storage/s3"
	adminstore "github.com/5w1tchy/books-admin/internal/store/admin"
	storebooks "github.com/5w1tchy/books-admin/internal/store/books"
	"github.com/5w1tchy/books-admin/internal/store/wizardsnap"
	"github.com/5w1tchy/books-admin/internal/validate"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()

	if err := validate.Env(); err != nil {
		log.Fatalf("config: %v", err)
	}
	for _, w := range validate.HardeningWarnings(os.Getenv("APP_ENV")) {
		log.Printf("[config] warning: %s", w)
	}
	cfg, _ := validate.OnboardingFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlconnect.ConnectDB(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	log.Println("✅ Connected to Postgres")

	rdb, err := newRedis()
	if err != nil {
		log.Fatal(err)
	}
	defer rdb.Close()
	// Fail fast if Redis isn't reachable
	if err := validate.PingRedis(rdb, 3*time.Second); err != nil {
		log.Fatalf("Redis connection failed: %v", err)
	}
	log.Println("✅ Connected to Redis")

	tokens, err := jwtutil.VerifierFromEnv()
	if err != nil {
		log.Fatalf("auth: %v", err)
	}

	r2, err := storage.NewR2Client(ctx)
	if err != nil {
		log.Fatalf("object storage: %v", err)
	}
	previews := storage.NewPreviewStore(r2, cfg.PreviewURLTTL)

	audit := adminstore.New(db)
	queue := auditqueue.Start(audit, cfg.AuditBuffer, cfg.AuditWorkers)

	catalog := storebooks.NewCatalog(db, rdb)
	registry := onboardinghttp.NewRegistry(onboardinghttp.Config{
		Catalog:       catalog,
		Store:         catalog,
		Previews:      previews,
		Audit:         queue,
		Snapshots:     wizardsnap.New(rdb, cfg.SnapshotTTL),
		MaxCopies:     cfg.MaxCopies,
		SubmitTimeout: cfg.SubmitTimeout,
		Describe:      onboardinghttp.Describe,
	})

	maintenance.StartPreviewSweep(ctx, previews, cfg.PreviewMaxAge, cfg.SweepLocalTime, cfg.SweepTZ)

	routes := router.Router(router.Deps{
		DB:         db,
		RDB:        rdb,
		Gate:       mw.NewGate(db, tokens),
		Categories: catalog,
		Onboarding: onboardinghttp.NewHandler(registry),
		Admin:      admin.NewHandler(rdb, audit),
	})

	sw := mw.NewRedisSlidingWindow(rdb, 3000, 60*time.Minute, mw.PerIPKey("sw"))

	secureMux := applyMiddleware(routes,
		mw.RequestID,
		mw.Recovery,
		mw.CORS(mw.OriginsFromEnv()),
		mw.ResponseTime(mw.SlowThresholdFromEnv()),
		mw.SecurityHeaders,
		mw.HPP(mw.AdminQueryParams),
		sw.Middleware,
		mw.BodySizeLimit(mw.BodyLimitFromEnv()),
		mw.Compression,
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           secureMux,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ReadHeaderTimeout: 10 * time.Second,
		// a submission may wait up to the submit timeout on the database
		WriteTimeout: cfg.SubmitTimeout + 30*time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		cert, key := os.Getenv("TLS_CERT_FILE"), os.Getenv("TLS_KEY_FILE")
		log.Println("Server is running on port:", port)
		var err error
		if cert != "" && key != "" {
			err = server.ListenAndServeTLS(cert, key)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalln("Error starting server:", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.SubmitTimeout+5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	// snapshots stay in Redis so admins resume after the restart
	registry.CloseAll(shutdownCtx)
	queue.Shutdown()
	if n := queue.Dropped(); n > 0 {
		log.Printf("[auditqueue] %d audit entries were dropped", n)
	}
}

// applyMiddleware wraps h so that the first middleware listed is the
// outermost one.
func applyMiddleware(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
