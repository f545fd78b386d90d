package repo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// GetOrCreateWallet devolve o walletId e saldo do usuário, criando a carteira
// zerada se não existir.
func (p *Postgres) GetOrCreateWallet(ctx context.Context, userID string) (walletID string, balance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`SELECT id, balance_cents FROM wallets WHERE user_id=$1`, userID,
	).Scan(&walletID, &balance)
	if err == sql.ErrNoRows {
		walletID = uuid.NewString()
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO wallets(id, user_id, balance_cents, version) VALUES($1,$2,0,1)`,
			walletID, userID,
		); err != nil {
			return "", 0, err
		}
		balance = 0
	} else if err != nil {
		return "", 0, err
	}

	if err = tx.Commit(); err != nil {
		return "", 0, err
	}
	return walletID, balance, nil
}

// Credit incrementa o saldo do usuário e registra no ledger, com lock
// pessimista na linha da carteira. Créditos são incondicionais.
func (p *Postgres) Credit(ctx context.Context, userID string, amountCents int64, description string) (int64, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var walletID string
	if err = tx.QueryRowContext(ctx,
		`SELECT id FROM wallets WHERE user_id=$1 FOR UPDATE`, userID,
	).Scan(&walletID); err != nil {
		return 0, err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE wallets SET balance_cents = balance_cents + $1, version = version + 1 WHERE id=$2`,
		amountCents, walletID,
	); err != nil {
		return 0, err
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO wallet_ledger(wallet_id, operation_type, amount_cents, description)
		 VALUES($1,'CREDIT',$2,$3)`,
		walletID, amountCents, description,
	); err != nil {
		return 0, err
	}

	var newBalance int64
	if err = tx.QueryRowContext(ctx,
		`SELECT balance_cents FROM wallets WHERE id=$1`, walletID,
	).Scan(&newBalance); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// Deposit garante a carteira do usuário e credita o valor (funding).
func (p *Postgres) Deposit(ctx context.Context, userID string, amountCents int64, externalRef string) (walletID string, newBalance int64, err error) {
	walletID, _, err = p.GetOrCreateWallet(ctx, userID)
	if err != nil {
		return "", 0, err
	}
	newBalance, err = p.Credit(ctx, userID, amountCents, "deposit:"+externalRef)
	if err != nil {
		return "", 0, err
	}
	return walletID, newBalance, nil
}
