package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/radieske/color-prediction-poc/internal/game-service/httpapi"
	"github.com/radieske/color-prediction-poc/internal/game-service/intake"
	"github.com/radieske/color-prediction-poc/internal/game-service/producer"
	"github.com/radieske/color-prediction-poc/internal/game-service/pubsub"
	"github.com/radieske/color-prediction-poc/internal/game-service/repo"
	"github.com/radieske/color-prediction-poc/internal/game-service/results"
	"github.com/radieske/color-prediction-poc/internal/game-service/scheduler"
	"github.com/radieske/color-prediction-poc/internal/game-service/ws"
	sharedcache "github.com/radieske/color-prediction-poc/internal/shared/cache"
	"github.com/radieske/color-prediction-poc/internal/shared/config"
	"github.com/radieske/color-prediction-poc/internal/shared/db"
	"github.com/radieske/color-prediction-poc/internal/shared/kafka"
	"github.com/radieske/color-prediction-poc/internal/shared/logger"
	"github.com/radieske/color-prediction-poc/internal/shared/metrics"
	"github.com/radieske/color-prediction-poc/pkg/contracts/events"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	log.Info("starting service",
		zap.String("service", cfg.ServiceName),
		zap.String("env", cfg.Env),
		zap.Int("gameDurationSecs", cfg.GameDurationSecs),
		zap.Int("betCutoffSecs", cfg.BetCutoffSecs),
	)

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()
	log.Info("postgres connected")

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("redis connected")

	settledWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicRoundSettled)
	defer settledWriter.Close()
	log.Info("kafka writer ready", zap.String("topic", cfg.TopicRoundSettled))

	store := repo.NewPostgres(pg)
	recent := results.New(redisClient)
	broadcaster := pubsub.NewRedisBroadcaster(redisClient, cfg.RedisPubSubChannel)
	settled := producer.NewKafkaPublisher(settledWriter)

	// Métricas Prometheus do ciclo de jogo
	betsPlaced := promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_bets_placed_total", Help: "apostas aceitas"})
	roundsSettled := promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_rounds_settled_total", Help: "rodadas liquidadas"})
	payoutCents := promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_payout_cents_total", Help: "centavos creditados em liquidações"})
	settleErrors := promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "game_settlement_errors_total", Help: "erros de liquidação por estágio"}, []string{"stage"})

	sched := scheduler.New(log, store, store, store, store, broadcaster,
		cfg.GameDurationSecs, cfg.BetCutoffSecs)
	sched.Settled = settled
	sched.Results = recent
	sched.OnRoundSettled = func() { roundsSettled.Inc() }
	sched.OnPayout = func(cents int64) { payoutCents.Add(float64(cents)) }
	sched.OnError = func(stage string) { settleErrors.WithLabelValues(stage).Inc() }

	ink := intake.New(log, sched, store)
	ink.OnBetPlaced = func() { betsPlaced.Inc() }

	// Hub WebSocket alimentado pelo Pub/Sub do Redis; clientes recém-conectados
	// recebem o timer corrente na hora
	hub := ws.NewHub(
		func(*http.Request) bool { return true }, // PoC: qualquer origem
		func() events.TimerUpdate {
			st := sched.State()
			return events.TimerUpdate{RoundID: st.RoundID, TimeLeft: st.TimeLeft}
		},
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ws.StartRedisSubscriber(ctx, log, redisClient, cfg.RedisPubSubChannel, hub)
	go sched.Run(ctx)

	metrics.StartMetricsServer(cfg.MetricsPort, func(hctx context.Context) error {
		if err := pg.PingContext(hctx); err != nil {
			return err
		}
		return redisClient.Ping(hctx).Err()
	})
	log.Info("metrics/health listening", zap.String("port", cfg.MetricsPort))

	api := &httpapi.API{
		Log:     log,
		Intake:  ink,
		Sched:   sched,
		Repo:    store,
		Results: recent,
		Hub:     hub,
	}

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: withCORS(api.Router()),
	}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	log.Info("game-service listening", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("http server failed", zap.Error(err))
	}
	log.Info("game-service stopped")
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
