package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/radieske/color-prediction-poc/pkg/contracts/events"
)

// ClientMsg é a mensagem recebida do cliente. O jogo não tem assinaturas por
// tópico: todo cliente conectado recebe todos os eventos de rodada.
type ClientMsg struct {
	Type string `json:"type"` // ping
}

// Hub gerencia as conexões WebSocket dos jogadores e repassa os eventos de
// jogo para todas elas.
type Hub struct {
	upgrader websocket.Upgrader
	stateFn  func() events.TimerUpdate // estado corrente enviado na conexão

	mu    sync.RWMutex
	conns map[*websocket.Conn]struct{}
}

// NewHub cria o hub com política customizada de origem (CORS) e a função que
// fotografa o timer corrente.
func NewHub(allowOrigin func(r *http.Request) bool, stateFn func() events.TimerUpdate) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		stateFn:  stateFn,
		conns:    make(map[*websocket.Conn]struct{}),
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão. O cliente recém-conectado
// recebe imediatamente o timerUpdate corrente para sincronizar a contagem.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()

	if h.stateFn != nil {
		upd := h.stateFn()
		if raw, err := json.Marshal(upd); err == nil {
			env, _ := json.Marshal(events.Envelope{Event: events.EventTimerUpdate, Payload: raw})
			_ = conn.WriteMessage(websocket.TextMessage, env)
		}
	}

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		if msg.Type == "ping" {
			_ = conn.WriteJSON(map[string]string{"type": "pong"})
		}
	}

	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
}

// Broadcast envia o envelope para todos os clientes conectados.
func (h *Hub) Broadcast(env events.Envelope) {
	b, err := json.Marshal(env)
	if err != nil {
		return
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		_ = c.WriteMessage(websocket.TextMessage, b)
	}
}
