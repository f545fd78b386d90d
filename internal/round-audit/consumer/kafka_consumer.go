package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/color-prediction-poc/internal/round-audit/repository"
	"github.com/radieske/color-prediction-poc/pkg/contracts/events"
)

// MessageReader é o subconjunto de kafka.Reader usado pelo processador.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// Processor consome eventos round_settled do Kafka e grava o trilho de
// auditoria no Postgres. Callbacks de métricas são opcionais.
type Processor struct {
	Log    *zap.Logger
	Reader MessageReader
	Repo   *repository.PostgresRepo

	OnConsumed func()       // métricas (counter++)
	OnPersist  func()       // métricas
	OnError    func(string) // métricas por fase
}

// Run inicia o loop de consumo até o contexto encerrar.
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		var ev events.RoundSettled
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			p.Log.Warn("invalid message", zap.Error(err))
			if p.OnError != nil {
				p.OnError("decode")
			}
			continue
		}
		if ev.RoundID == "" {
			p.Log.Warn("round_settled without roundId, skipping")
			if p.OnError != nil {
				p.OnError("decode")
			}
			continue
		}

		if err := p.Repo.InsertAudit(ctx, ev); err != nil {
			p.Log.Warn("db insert audit failed",
				zap.String("roundId", ev.RoundID), zap.Error(err))
			if p.OnError != nil {
				p.OnError("db_insert")
			}
			continue
		}
		if p.OnPersist != nil {
			p.OnPersist()
		}
		p.Log.Info("round audited",
			zap.String("roundId", ev.RoundID),
			zap.Int("betCount", ev.BetCount),
			zap.Int64("totalStakedCents", ev.TotalStakedCents),
			zap.Int64("totalPaidCents", ev.TotalPaidCents),
		)
	}
}
