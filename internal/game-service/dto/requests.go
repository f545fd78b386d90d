package dto

// PlaceBetRequest é o payload de POST /api/color/place-bet. Os nomes dos
// campos seguem o contrato do cliente do jogo.
type PlaceBetRequest struct {
	UserID      string `json:"user"`
	RoundID     string `json:"roundId"`
	Selection   string `json:"selectedNumber"` // "0".."9" ou red/green/violet
	AmountCents int64  `json:"amount"`
}

// DeclareResultRequest cobre declare-result e set-result: pelo menos um de
// Result/Color precisa vir preenchido.
type DeclareResultRequest struct {
	RoundID string  `json:"roundId"`
	Result  *int    `json:"result"`
	Color   *string `json:"color"`
}

// DepositRequest credita saldo na carteira do usuário.
type DepositRequest struct {
	UserID      string `json:"userId"`
	AmountCents int64  `json:"amountCents"`
	ExternalRef string `json:"externalRef"`
}
