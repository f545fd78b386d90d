package dto

import "time"

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type BetSummary struct {
	ID          string `json:"id"`
	RoundID     string `json:"roundId"` // sufixo curto
	AmountCents int64  `json:"amount"`
	Selection   string `json:"selection"`
}

type PlaceBetResponse struct {
	Success         bool       `json:"success"`
	Message         string     `json:"message"`
	Bet             BetSummary `json:"bet"`
	NewBalanceCents int64      `json:"newBalance"`
}

type CurrentStateResponse struct {
	Success        bool   `json:"success"`
	CurrentRoundID string `json:"currentRoundId"`
	TimeLeft       int    `json:"timeLeft"`
	TimerDuration  int    `json:"timerDuration"`
	BettingOpen    bool   `json:"bettingOpen"`
}

type BetHistoryEntry struct {
	ID                string    `json:"id"`
	RoundID           string    `json:"roundId"`
	Selection         string    `json:"selection"`
	AmountCents       int64     `json:"amount"`
	Status            string    `json:"status"`
	PayoutCents       int64     `json:"winAmt"`
	BalanceAfterCents int64     `json:"walletBalance"`
	CreatedAt         time.Time `json:"createdAt"`
}

type DeclaredResult struct {
	RoundID      string     `json:"roundId"`
	ResultNumber int        `json:"resultNumber"`
	ResultColor  string     `json:"resultColor"`
	DeclaredAt   time.Time  `json:"declaredAt"`
	IsApplied    bool       `json:"isApplied"`
	AppliedAt    *time.Time `json:"appliedAt,omitempty"`
}

type DeclareResultResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Result  DeclaredResult `json:"result"`
}

type WalletResponse struct {
	UserID       string `json:"userId"`
	WalletID     string `json:"walletId"`
	BalanceCents int64  `json:"balanceCents"`
}
