package producer

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/radieske/color-prediction-poc/internal/shared/kafka"
	"github.com/radieske/color-prediction-poc/pkg/contracts/events"
)

// KafkaPublisher emite eventos round_settled para o fluxo de auditoria.
type KafkaPublisher struct {
	Writer *kafkago.Writer
}

func NewKafkaPublisher(w *kafkago.Writer) *KafkaPublisher {
	return &KafkaPublisher{Writer: w}
}

func (p *KafkaPublisher) PublishRoundSettled(ctx context.Context, e events.RoundSettled) error {
	if e.Ts.IsZero() {
		e.Ts = time.Now()
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return kafka.WriteJSON(ctx, p.Writer, e.RoundID, b)
}
