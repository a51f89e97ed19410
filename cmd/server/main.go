// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Round lifecycle logic lives in internal/raffle.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"raffle/internal/platform/config"
	"raffle/internal/platform/httpserver"
	"raffle/internal/platform/logger"
	platformredis "raffle/internal/platform/redis"
	"raffle/internal/raffle"
	"raffle/internal/raffle/bank"
	"raffle/internal/raffle/events"
	"raffle/internal/raffle/metrics"
	"raffle/internal/raffle/models"
	"raffle/internal/raffle/service"
	"raffle/internal/raffle/store/requests"
	"raffle/internal/raffle/store/rounds"
	"raffle/internal/raffle/vrf"
)

func main() {
	log := logger.New(slog.LevelInfo)

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		payoutBank service.Bank
		roundStore service.RoundStore
	)
	if cfg.Postgres.DSN != "" {
		db, err := sql.Open("postgres", cfg.Postgres.DSN)
		if err != nil {
			log.Error("failed to open postgres", "error", err.Error())
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("failed to ping postgres", "error", err.Error())
			os.Exit(1)
		}
		payoutBank = bank.NewPostgres(db)
		roundStore = rounds.NewPostgres(db)
	} else {
		log.Warn("no postgres configured, balances and history are in-memory only")
		payoutBank = bank.NewInMemory()
		roundStore = rounds.NewInMemory()
	}

	var requestStore service.RequestStore
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		requestStore = requests.NewRedis(redisClient.Client)
	} else {
		log.Warn("no redis configured, request correlation is in-memory only")
		requestStore = requests.NewInMemory()
	}

	var publisher service.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafka, err := events.NewKafka(cfg.Kafka.Brokers)
		if err != nil {
			log.Error("failed to connect to kafka", "error", err.Error())
			os.Exit(1)
		}
		defer kafka.Close()
		if err := kafka.EnsureTopics(ctx); err != nil {
			log.Error("failed to ensure kafka topics", "error", err.Error())
			os.Exit(1)
		}
		publisher = kafka
	} else {
		log.Warn("no kafka brokers configured, notifications are in-memory only")
		publisher = events.NewInMemory()
	}

	coordinator := vrf.NewClient(cfg.Coordinator.URL)

	svc, err := raffle.NewService(
		models.RoundConfig{
			MinimumStake:         cfg.Round.MinimumStake,
			MinimumInterval:      cfg.Round.MinimumInterval,
			KeyHash:              cfg.Round.KeyHash,
			SubscriptionID:       cfg.Round.SubscriptionID,
			CallbackGasLimit:     cfg.Round.CallbackGasLimit,
			RequestConfirmations: cfg.Round.RequestConfirmations,
			NumWords:             cfg.Round.NumWords,
			NativePayment:        cfg.Round.NativePayment,
		},
		payoutBank,
		coordinator,
		requestStore,
		roundStore,
		service.WithLogger(log),
		service.WithMetrics(metrics.New()),
		service.WithPublisher(publisher),
		service.WithCallbackURL(cfg.Server.CallbackURL),
	)
	if err != nil {
		log.Error("failed to construct raffle service", "error", err.Error())
		os.Exit(1)
	}

	router := chi.NewRouter()
	h := raffle.NewHandler(svc, log, cfg.Server.JWTSigningKey, cfg.Server.ProviderSecret)
	h.Register(router)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := httpserver.New(cfg.Server.Addr, router)

	log.Info("starting raffle server",
		"addr", cfg.Server.Addr,
		"minimum_stake", cfg.Round.MinimumStake,
		"minimum_interval", cfg.Round.MinimumInterval.String(),
	)

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
		log.Error("server error", "error", err.Error())
		os.Exit(1)
	}
}
