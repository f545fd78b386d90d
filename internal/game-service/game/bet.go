package game

import "time"

// Status de liquidação de uma aposta.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusWon     Status = "WON"
	StatusLost    Status = "LOST"
)

// Bet é uma aposta registrada. Criada pela admissão, mutada exatamente uma
// vez pela liquidação; nunca removida fora do reset administrativo.
type Bet struct {
	ID                string
	UserID            string
	RoundID           string
	Selection         Selection
	StakeCents        int64
	BalanceAfterCents int64 // saldo após o débito (e, depois, após o crédito)
	Status            Status
	PayoutCents       int64
	CreatedAt         time.Time
}

// DeclaredResult é o resultado pré-declarado pelo operador para uma rodada.
// Applied indica se a declaração já havia sido consumida por uma liquidação.
type DeclaredResult struct {
	RoundID    string
	Number     int
	Color      Color
	DeclaredAt time.Time
	Applied    bool
	AppliedAt  *time.Time
}
