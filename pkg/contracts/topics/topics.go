package topics

const (
	// Rodadas liquidadas, consumido pelo round-audit-worker
	RoundSettled = "round_settled"
)
