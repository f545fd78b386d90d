package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/radieske/color-prediction-poc/internal/round-audit/consumer"
	"github.com/radieske/color-prediction-poc/internal/round-audit/repository"
	"github.com/radieske/color-prediction-poc/internal/shared/config"
	"github.com/radieske/color-prediction-poc/internal/shared/db"
	"github.com/radieske/color-prediction-poc/internal/shared/kafka"
	"github.com/radieske/color-prediction-poc/internal/shared/logger"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Consumer group próprio: o worker acompanha o fluxo round_settled sem
	// competir com outros consumidores
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicRoundSettled, "round-audit")
	defer reader.Close()

	consumed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "round_audit_messages_consumed_total", Help: "mensagens consumidas"})
	persisted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "round_audit_rows_persisted_total", Help: "registros de auditoria gravados"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "round_audit_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, persisted, errorsBy)

	proc := &consumer.Processor{
		Log:        log,
		Reader:     reader,
		Repo:       repository.NewPostgresRepo(pg),
		OnConsumed: func() { consumed.Inc() },
		OnPersist:  func() { persisted.Inc() },
		OnError:    func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
			defer cancel()
			if err := pg.PingContext(ctx); err != nil {
				http.Error(w, "pg", http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		addr := fmt.Sprintf(":%s", cfg.MetricsPort)
		log.Info("metrics/health listening", zap.String("addr", addr))
		_ = http.ListenAndServe(addr, mux)
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("round-audit-worker started", zap.String("consume", cfg.TopicRoundSettled))
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	log.Info("round-audit-worker stopped")
}
