package pubsub

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/color-prediction-poc/pkg/contracts/events"
)

// ChannelGameEvents é o canal Redis Pub/Sub usado para o broadcast dos
// eventos de jogo ao hub WebSocket.
const ChannelGameEvents = "game_events_broadcast"

// RedisBroadcaster publica eventos de jogo embalados em Envelope. O publish
// é fire-and-forget do ponto de vista do agendador.
type RedisBroadcaster struct {
	r       *redis.Client
	channel string
}

func NewRedisBroadcaster(r *redis.Client, channel string) *RedisBroadcaster {
	if channel == "" {
		channel = ChannelGameEvents
	}
	return &RedisBroadcaster{r: r, channel: channel}
}

func (b *RedisBroadcaster) Broadcast(ctx context.Context, event string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	env, err := json.Marshal(events.Envelope{Event: event, Payload: raw})
	if err != nil {
		return err
	}
	return b.r.Publish(ctx, b.channel, env).Err()
}
