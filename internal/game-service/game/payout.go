package game

// Tabela de pagamento.
const (
	multiplierZero = 3 // acerto no número 0
	multiplierWin  = 2 // demais acertos de número e todos os acertos de cor
	refundPercent  = 5 // reembolso de consolação sobre apostas perdedoras
)

// SettleBet calcula o resultado de uma aposta contra o resultado da rodada.
// O pagamento é sempre calculado, inclusive na derrota (reembolso de 5%),
// então o crédito de carteira nunca precisa tratar zero como caso especial.
func SettleBet(sel Selection, stakeCents int64, out Outcome) (won bool, payoutCents int64) {
	switch sel.Kind {
	case SelectionNumber:
		if sel.Number == out.Number {
			if out.Number == 0 {
				return true, stakeCents * multiplierZero
			}
			return true, stakeCents * multiplierWin
		}
	case SelectionColor:
		if sel.Color == out.Color {
			return true, stakeCents * multiplierWin
		}
	}
	return false, stakeCents * refundPercent / 100
}
