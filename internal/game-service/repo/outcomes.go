package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/radieske/color-prediction-poc/internal/game-service/game"
	"github.com/radieske/color-prediction-poc/pkg/contracts/events"
)

// SaveOutcome persiste o registro de resultado independente de apostas,
// etiquetado com a proveniência (sorteio do sistema ou operador).
func (p *Postgres) SaveOutcome(ctx context.Context, roundID string, out game.Outcome, prov game.Provenance) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO round_outcomes(id, round_id, result_number, result_color, provenance)
		VALUES($1,$2,$3,$4,$5)`,
		uuid.NewString(), roundID, out.Number, string(out.Color), string(prov),
	)
	return err
}

// RecentOutcomes devolve os últimos resultados persistidos, mais novos
// primeiro. Fallback do histórico quando a lista Redis está vazia.
func (p *Postgres) RecentOutcomes(ctx context.Context, limit int) ([]events.RoundResult, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT round_id, result_number, result_color, created_at
		FROM round_outcomes ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []events.RoundResult
	for rows.Next() {
		var r events.RoundResult
		if err := rows.Scan(&r.RoundID, &r.Result, &r.Color, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
