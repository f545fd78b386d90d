package repo

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// Postgres implementa a persistência do jogo: apostas, carteiras, resultados
// e declarações do operador.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// isUniqueViolation detecta violação de chave única (23505) do Postgres.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
