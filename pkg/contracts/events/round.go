package events

import (
	"encoding/json"
	"time"
)

// Nomes dos eventos emitidos para os clientes (WS/pub-sub).
const (
	EventTimerUpdate    = "timerUpdate"
	EventTimerEnded     = "timerEnded"
	EventRoundCompleted = "roundCompleted"
)

// Envelope embala qualquer evento de jogo para transporte via Redis Pub/Sub
// e WebSocket.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// TimerUpdate é emitido a cada segundo da contagem regressiva.
type TimerUpdate struct {
	RoundID  string `json:"roundId"`
	TimeLeft int    `json:"timeLeft"`
}

// TimerEnded sinaliza que a contagem da rodada chegou a zero e a
// liquidação começou.
type TimerEnded struct {
	RoundID string `json:"roundId"`
	Message string `json:"message"`
}

// RoundCompleted fecha uma rodada e anuncia a próxima. Result/ResultColor
// vêm nulos quando a liquidação degradou (resultado indisponível).
type RoundCompleted struct {
	PreviousRoundID   string  `json:"previousRoundId"`
	Result            *int    `json:"result"`
	ResultColor       *string `json:"resultColor"`
	Message           string  `json:"message"`
	NextRoundID       string  `json:"nextRoundId"`
	NextRoundTimeLeft int     `json:"nextRoundTimeLeft"`
}

// RoundResult é o registro compacto de resultado mantido no histórico
// recente (lista Redis) e servido em /history-all.
type RoundResult struct {
	RoundID   string    `json:"roundId"`
	Result    int       `json:"result"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
}
