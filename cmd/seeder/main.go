package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"listing_seeder/internal/adapters/appwrite"
	server "listing_seeder/internal/adapters/http_server"
	mongostore "listing_seeder/internal/adapters/mongo"
	"listing_seeder/internal/adapters/observability"
	redisad "listing_seeder/internal/adapters/redis"
	"listing_seeder/internal/app"
	"listing_seeder/internal/assets"
	"listing_seeder/internal/domain"
	"listing_seeder/internal/shared"
	mysqlrepo "listing_seeder/internal/storage/mysql"
)

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("seeder failed")
		os.Exit(1)
	}
}

// run wires the seeder and executes one reseed. Every resource it opens is
// released through defer before main exits.
func run() error {
	_ = godotenv.Load()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)
	for _, w := range cfg.Warnings {
		log.Warn().Msg(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if missing := cfg.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w: required configuration is not set: %s", domain.ErrConfiguration, strings.Join(missing, ","))
	}

	// 2) document store
	var store domain.DocumentStore
	switch cfg.Backend {
	case "appwrite":
		client, err := appwrite.New(cfg.AppwriteEndpoint, cfg.AppwriteProject, cfg.AppwriteKey, cfg.AppwriteRPS)
		if err != nil {
			return fmt.Errorf("initialize Appwrite client: %w", err)
		}
		store = client
	case "mongo":
		mc, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return fmt.Errorf("mongo connect: %w", err)
		}
		defer func() { _ = mc.Disconnect(context.Background()) }()
		if err := mc.Ping(ctx, nil); err != nil {
			return fmt.Errorf("mongo ping: %w", err)
		}
		log.Info().Msg("mongo ping ok")
		store = mongostore.NewStore(mc, cfg.MongoRPS)
	default:
		return fmt.Errorf("%w: unknown DOCSTORE_BACKEND %q", domain.ErrConfiguration, cfg.Backend)
	}

	reg := observability.InitRegistry()
	opts := app.SeedOptions{
		DatabaseID:    cfg.DatabaseID,
		Collections:   cfg.Collections,
		Images:        assets.Default(),
		AgentCount:    cfg.AgentCount,
		ReviewCount:   cfg.ReviewCount,
		PropertyCount: cfg.PropertyCount,
		Delay:         cfg.Delay,
		PropertyDelay: cfg.PropertyDelay,
	}
	if cfg.RandomSeed != nil {
		opts.Rand = rand.New(rand.NewPCG(*cfg.RandomSeed, *cfg.RandomSeed^0x9e3779b97f4a7c15))
		log.Info().Uint64("seed", *cfg.RandomSeed).Msg("deterministic random seed")
	}

	// 3) optional report sinks; redis wins as the status server's report reader
	var sinks []domain.ReportSink
	var reports server.ReportReader
	if cfg.RedisAddr != "" {
		rs := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.LockTTL)
		defer rs.Close()
		if err := rs.Ping(ctx); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		log.Info().Msg("redis ping ok")
		opts.Lock = rs
		sinks = append(sinks, rs)
		reports = rs
	}
	if cfg.MySQLDSN != "" {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return fmt.Errorf("sql.Open: %w", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("db ping: %w", err)
		}
		log.Info().Msg("db ping ok")
		journal := mysqlrepo.New(db)
		sinks = append(sinks, journal)
		if reports == nil {
			reports = journal
		}
	}
	if cfg.PushgatewayURL != "" {
		sinks = append(sinks, observability.NewPusher(cfg.PushgatewayURL, "listing_seeder", reg))
	}

	svc := app.NewSeedService(store, opts)

	// 4) optional status server for the duration of the run
	if cfg.StatusAddr != "" {
		srv := server.New()
		srv.Mount("/metrics", observability.MetricsHandler(reg))
		srv.MountHandlers(&server.Handlers{Progress: svc, Reports: reports, DatabaseID: cfg.DatabaseID})

		httpSrv := &http.Server{Addr: cfg.StatusAddr, Handler: srv.Mux()}
		go func() {
			log.Info().Str("addr", cfg.StatusAddr).Msg("status server listening")
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("status server failed")
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = httpSrv.Shutdown(sctx)
		}()
	}

	rep, err := svc.Run(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrRunInProgress) {
			return fmt.Errorf("database %s: %w", cfg.DatabaseID, err)
		}
		return fmt.Errorf("seeding aborted: %w", err)
	}

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := app.PublishReport(pctx, rep, sinks...); err != nil {
		log.Warn().Err(err).Msg("report publication incomplete")
	}
	return nil
}
