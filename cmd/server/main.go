package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	authHandler "cardtrack/internal/auth/handler"
	authService "cardtrack/internal/auth/service"
	authStore "cardtrack/internal/auth/store"
	"cardtrack/internal/auth/token"
	cardHandler "cardtrack/internal/card/handler"
	cardService "cardtrack/internal/card/service"
	cardStore "cardtrack/internal/card/store"
	ledgerHandler "cardtrack/internal/ledger/handler"
	ledgerMetrics "cardtrack/internal/ledger/metrics"
	ledgerService "cardtrack/internal/ledger/service"
	ledgerStore "cardtrack/internal/ledger/store"
	"cardtrack/internal/platform/config"
	"cardtrack/internal/platform/httpserver"
	"cardtrack/internal/platform/logger"
	"cardtrack/internal/platform/middleware"
	"cardtrack/internal/platform/postgres"
	platformRedis "cardtrack/internal/platform/redis"
	httptransport "cardtrack/internal/transport/http"
	vocabHandler "cardtrack/internal/vocab/handler"
	vocabService "cardtrack/internal/vocab/service"
	vocabStore "cardtrack/internal/vocab/store"
)

// main wires the storage, services, and HTTP router, then runs the
// server until a shutdown signal. Business logic lives in the internal
// service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		db  *sql.DB
		err error
	)
	if cfg.DatabaseURL != "" {
		db, err = postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			log.Error("schema setup failed", "error", err)
			os.Exit(1)
		}
		log.Info("using postgres storage")
	} else {
		log.Warn("DATABASE_URL not set, using in-memory storage")
	}

	rc, err := platformRedis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if rc != nil {
		defer rc.Close()
	}

	// Storage selection. Postgres when configured, in-memory otherwise;
	// the services only see the interfaces.
	var (
		cards     cardService.Store
		engCards  ledgerService.CardStore
		ops       ledgerService.OperationStore
		canceled  ledgerService.CanceledStore
		txRunner  ledgerService.TxRunner
		geoVocab  vocabService.Store
		offVocab  vocabService.Store
		users     authService.UserStore
		sessions  authService.SessionStore
		liveCheck middleware.SessionChecker
	)
	if db != nil {
		pgCards := cardStore.NewPostgres(db)
		cards = pgCards
		engCards = pgCards
		ops = ledgerStore.NewPostgresOperationStore(db)
		canceled = ledgerStore.NewPostgresCanceledStore(db)
		txRunner = ledgerStore.NewPostgresTxRunner(db)
		geoVocab = vocabStore.NewGeoPostgres(db)
		offVocab = vocabStore.NewOffloadPostgres(db)
		users = authStore.NewPostgresUserStore(db)
	} else {
		memCards := cardStore.NewMemoryStore()
		cards = memCards
		engCards = memCards
		ops = ledgerStore.NewMemoryOperationStore()
		canceled = ledgerStore.NewMemoryCanceledStore()
		txRunner = ledgerStore.NewMemoryTxRunner()
		geoVocab = vocabStore.NewMemoryStore()
		offVocab = vocabStore.NewMemoryStore()
		users = authStore.NewMemoryUserStore()
	}
	if rc != nil {
		redisSessions := authStore.NewRedisSessionStore(rc.Client)
		sessions = redisSessions
		liveCheck = redisSessions
		log.Info("using redis session store")
	} else {
		memSessions := authStore.NewMemorySessionStore()
		sessions = memSessions
		liveCheck = memSessions
	}

	tokens := token.NewService(cfg.JWTSigningKey, "cardtrack")
	auth := authService.NewService(users, sessions, tokens, cfg.SessionTTL, log)
	engine := ledgerService.NewEngine(ops, canceled, engCards, txRunner, ledgerMetrics.New(), cfg.RecentLimit)
	catalog := cardService.NewService(cards)
	vocab := vocabService.NewService(geoVocab, offVocab)

	if cfg.AdminPassword != "" {
		if err := auth.SeedAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			log.Error("admin seed failed", "error", err)
			os.Exit(1)
		}
	} else {
		log.Warn("ADMIN_PASSWORD not set, skipping admin seed")
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:    log,
		Auth:      authHandler.New(auth, log),
		Cards:     cardHandler.New(catalog, engine, log),
		Ledger:    ledgerHandler.New(engine, log),
		Vocab:     vocabHandler.New(vocab, log),
		Validator: tokens,
		Sessions:  liveCheck,
		Health: func() error {
			if db != nil {
				return db.Ping()
			}
			return nil
		},
	})

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting cardtrack server", "addr", cfg.Addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
