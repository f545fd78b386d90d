package repository

import (
	"context"
	"database/sql"

	"github.com/radieske/color-prediction-poc/pkg/contracts/events"
)

// PostgresRepo persiste o trilho de auditoria de rodadas liquidadas.
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// InsertAudit grava o registro de auditoria da rodada. ON CONFLICT torna o
// consumo idempotente: redelivery do mesmo round_settled não duplica linha.
func (r *PostgresRepo) InsertAudit(ctx context.Context, e events.RoundSettled) error {
	const q = `
		INSERT INTO round_audit
		  (round_id, result_number, result_color, provenance, bet_count, total_staked_cents, total_paid_cents, settled_at)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (round_id) DO NOTHING
	`
	_, err := r.DB.ExecContext(ctx, q,
		e.RoundID, e.ResultNumber, e.ResultColor, e.Provenance,
		e.BetCount, e.TotalStakedCents, e.TotalPaidCents, e.Ts,
	)
	return err
}
