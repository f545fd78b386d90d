package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/radieske/color-prediction-poc/internal/game-service/game"
)

// Declare grava a declaração do operador para a rodada. A chave primária em
// round_id garante no máximo uma declaração por rodada.
func (p *Postgres) Declare(ctx context.Context, roundID string, out game.Outcome) (*game.DeclaredResult, error) {
	declaredAt := time.Now()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO declared_results(round_id, result_number, result_color, declared_at, applied)
		VALUES($1,$2,$3,$4,false)`,
		roundID, out.Number, string(out.Color), declaredAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, game.ErrResultAlreadyDeclared
		}
		return nil, err
	}
	return &game.DeclaredResult{
		RoundID:    roundID,
		Number:     out.Number,
		Color:      out.Color,
		DeclaredAt: declaredAt,
	}, nil
}

// DeclaredResult lê a declaração de uma rodada; nil quando não há.
func (p *Postgres) DeclaredResult(ctx context.Context, roundID string) (*game.DeclaredResult, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT round_id, result_number, result_color, declared_at, applied, applied_at
		FROM declared_results WHERE round_id=$1`, roundID)
	return scanDeclared(row)
}

// Consume devolve a declaração da rodada, se houver, e a marca como aplicada.
// O campo Applied reflete o estado anterior ao consumo: releituras voltam com
// Applied=true e não devem ser reaplicadas pelo chamador.
func (p *Postgres) Consume(ctx context.Context, roundID string) (*game.DeclaredResult, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT round_id, result_number, result_color, declared_at, applied, applied_at
		FROM declared_results WHERE round_id=$1 FOR UPDATE`, roundID)
	dr, err := scanDeclared(row)
	if err != nil || dr == nil {
		return dr, err
	}

	if !dr.Applied {
		if _, err = tx.ExecContext(ctx,
			`UPDATE declared_results SET applied=true, applied_at=NOW() WHERE round_id=$1`,
			roundID,
		); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return dr, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeclared(row rowScanner) (*game.DeclaredResult, error) {
	var dr game.DeclaredResult
	var color string
	var appliedAt sql.NullTime
	err := row.Scan(&dr.RoundID, &dr.Number, &color, &dr.DeclaredAt, &dr.Applied, &appliedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	dr.Color = game.Color(color)
	if appliedAt.Valid {
		t := appliedAt.Time
		dr.AppliedAt = &t
	}
	return &dr, nil
}
