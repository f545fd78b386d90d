package events

import "time"

// Evento publicado no tópico "round_settled" após cada liquidação.
type RoundSettled struct {
	RoundID          string    `json:"round_id"`
	ResultNumber     int       `json:"result_number"`
	ResultColor      string    `json:"result_color"`
	Provenance       string    `json:"provenance"` // "SYSTEM" | "OPERATOR"
	BetCount         int       `json:"bet_count"`
	TotalStakedCents int64     `json:"total_staked_cents"`
	TotalPaidCents   int64     `json:"total_paid_cents"`
	Ts               time.Time `json:"ts"`
}
