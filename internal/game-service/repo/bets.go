package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/radieske/color-prediction-poc/internal/game-service/game"
)

// HasBet verifica se o usuário já tem aposta na mesma seleção da rodada.
func (p *Postgres) HasBet(ctx context.Context, userID, roundID, selection string) (bool, error) {
	var id string
	err := p.db.QueryRowContext(ctx,
		`SELECT id FROM bets WHERE user_id=$1 AND round_id=$2 AND selection=$3`,
		userID, roundID, selection,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// PlaceBet debita a carteira e insere a aposta na mesma transação, com lock
// pessimista na linha da carteira. O índice único (user_id, round_id,
// selection) é a última barreira contra apostas duplicadas concorrentes.
func (p *Postgres) PlaceBet(ctx context.Context, b *game.Bet) (int64, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var walletID string
	var balance int64
	err = tx.QueryRowContext(ctx,
		`SELECT id, balance_cents FROM wallets WHERE user_id=$1 FOR UPDATE`,
		b.UserID,
	).Scan(&walletID, &balance)
	if err == sql.ErrNoRows {
		return 0, game.ErrUserNotFound
	}
	if err != nil {
		return 0, err
	}

	if balance < b.StakeCents {
		return 0, game.ErrInsufficientFunds
	}
	newBalance := balance - b.StakeCents

	if _, err = tx.ExecContext(ctx,
		`UPDATE wallets SET balance_cents=$1, version=version+1 WHERE id=$2`,
		newBalance, walletID,
	); err != nil {
		return 0, err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO bets (id,user_id,round_id,selection,stake_cents,balance_after_cents,status,payout_cents,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,0,$8)`,
		b.ID, b.UserID, b.RoundID, b.Selection.String(), b.StakeCents, newBalance,
		string(game.StatusPending), b.CreatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return 0, game.ErrDuplicateBet
		}
		return 0, err
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO wallet_ledger(wallet_id, operation_type, amount_cents, description)
		 VALUES($1,'DEBIT',$2,$3)`,
		walletID, b.StakeCents, "bet:"+b.ID,
	); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// PendingByRound devolve as apostas ainda não liquidadas da rodada.
func (p *Postgres) PendingByRound(ctx context.Context, roundID string) ([]game.Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id,user_id,round_id,selection,stake_cents,balance_after_cents,status,payout_cents,created_at
		FROM bets WHERE round_id=$1 AND status=$2`,
		roundID, string(game.StatusPending),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBets(rows)
}

// SettleBet marca a aposta como ganha/perdida com o valor pago e o número
// sorteado.
func (p *Postgres) SettleBet(ctx context.Context, betID string, status game.Status, payoutCents int64, resultNumber int) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE bets SET status=$1, payout_cents=$2, result_number=$3, updated_at=NOW() WHERE id=$4`,
		string(status), payoutCents, resultNumber, betID,
	)
	return err
}

// StampBalances grava o saldo pós-crédito em todas as apostas do usuário na
// rodada (conveniência de exibição/auditoria).
func (p *Postgres) StampBalances(ctx context.Context, roundID, userID string, balanceCents int64) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE bets SET balance_after_cents=$1, updated_at=NOW() WHERE round_id=$2 AND user_id=$3`,
		balanceCents, roundID, userID,
	)
	return err
}

// HistoryByUser devolve as últimas apostas do usuário.
func (p *Postgres) HistoryByUser(ctx context.Context, userID string, limit int) ([]game.Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id,user_id,round_id,selection,stake_cents,balance_after_cents,status,payout_cents,created_at
		FROM bets WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBets(rows)
}

// ResetBets apaga todas as apostas (reset administrativo).
func (p *Postgres) ResetBets(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM bets`)
	return err
}

func scanBets(rows *sql.Rows) ([]game.Bet, error) {
	var out []game.Bet
	for rows.Next() {
		var b game.Bet
		var selection, status string
		if err := rows.Scan(&b.ID, &b.UserID, &b.RoundID, &selection, &b.StakeCents,
			&b.BalanceAfterCents, &status, &b.PayoutCents, &b.CreatedAt); err != nil {
			return nil, err
		}
		sel, err := game.ParseSelection(selection)
		if err != nil {
			return nil, fmt.Errorf("bet %s has malformed selection %q: %w", b.ID, selection, err)
		}
		b.Selection = sel
		b.Status = game.Status(status)
		out = append(out, b)
	}
	return out, rows.Err()
}
