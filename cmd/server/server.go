package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"wellness-agent/internal/assessment"
	"wellness-agent/internal/config"
	"wellness-agent/internal/platform/logging"
	"wellness-agent/internal/platform/postgres"
	"wellness-agent/internal/platform/telegram"
	"wellness-agent/internal/report"
)

var errNoDatabase = errors.New("DATABASE_URL is not set")

func runServer(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.Logger

	// 1. Infrastructure
	db := connectDatabase(ctx, cfg)
	if db != nil {
		defer db.Close()
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	// 2. Clients
	pdf := report.NewPDFBuilder(cfg.ReportFontPaths)

	var reports assessment.ReportService
	if cfg.TelegramEnabled() {
		tg := telegram.NewClient(cfg.TelegramBotToken)
		reports = report.NewService(tg, cfg.DoctorChatID, pdf, logger)
	} else {
		logger.Warn().Msg("TELEGRAM_BOT_TOKEN or DOCTOR_CHAT_ID not set, reports will not be delivered")
	}

	// 3. Services
	var repo assessment.Repository
	if db != nil {
		repo = assessment.NewRepository(db)
	}

	engine := assessment.NewEngine(report.NewRenderer())
	svc := assessment.NewService(store, engine, repo, reports,
		assessment.WithLogger(logger),
		assessment.WithPersistTimeout(cfg.PersistTimeout),
		assessment.WithDefaultLocale(cfg.DefaultLocale),
	)

	// 4. Router
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(cfg, logger, assessment.NewHandler(svc, pdf)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server error")
			stop()
		}
	}()

	<-ctx.Done()

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

// connectDatabase returns nil when no database is configured or reachable.
// The assessment still runs, only history is lost.
func connectDatabase(ctx context.Context, cfg *config.Config) *sql.DB {
	if cfg.DatabaseURL == "" {
		log.Warn().Msg("DATABASE_URL not set, running without persistence")
		return nil
	}
	db, err := postgres.Connect(ctx, cfg.DatabaseURL, 10)
	if err != nil {
		log.Error().Err(err).Msg("could not connect to database, continuing without persistence")
		return nil
	}
	log.Info().Msg("connected to database")

	if cfg.RunMigrations {
		if err := postgres.Migrate(cfg.DatabaseURL, cfg.MigrationsDir, postgres.Up); err != nil {
			log.Error().Err(err).Msg("migration up failed")
		} else {
			log.Info().Msg("migrations applied")
		}
	}
	return db
}

func openStore(ctx context.Context, cfg *config.Config) (assessment.Store, error) {
	if cfg.SessionStore == config.StoreRedis {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, err
		}
		log.Info().Msg("using redis session store")
		return assessment.NewRedisStore(client, cfg.SessionIdleTimeout), nil
	}

	store := assessment.NewMemoryStore(cfg.SessionIdleTimeout)
	go sweep(ctx, store, cfg.SessionIdleTimeout/4)
	return store, nil
}

func sweep(ctx context.Context, store *assessment.MemoryStore, every time.Duration) {
	if every < time.Minute {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Sweep(); n > 0 {
				log.Debug().Int("expired", n).Msg("swept idle sessions")
			}
		}
	}
}

func newRouter(cfg *config.Config, logger zerolog.Logger, h *assessment.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors(cfg.CORSOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		assessment.RegisterRoutes(r, h)
	})
	return r
}

// CORS for the practitioner frontend
func cors(origins []string) func(http.Handler) http.Handler {
	allowAll := len(origins) == 0
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case allowAll:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case allowed[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", strings.Join([]string{"POST", "GET", "OPTIONS"}, ", "))
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
