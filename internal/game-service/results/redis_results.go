package results

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/color-prediction-poc/pkg/contracts/events"
)

const (
	listKey    = "game:recent_results"
	maxEntries = 20
)

// Store mantém os últimos resultados de rodada em uma lista Redis, mais
// novos primeiro.
type Store struct{ r *redis.Client }

func New(r *redis.Client) *Store { return &Store{r: r} }

// Push acrescenta um resultado e apara a lista no tamanho máximo.
func (s *Store) Push(ctx context.Context, res events.RoundResult) error {
	b, err := json.Marshal(res)
	if err != nil {
		return err
	}
	pipe := s.r.TxPipeline()
	pipe.LPush(ctx, listKey, b)
	pipe.LTrim(ctx, listKey, 0, maxEntries-1)
	_, err = pipe.Exec(ctx)
	return err
}

// Recent devolve até n resultados recentes. Entradas corrompidas são
// ignoradas.
func (s *Store) Recent(ctx context.Context, n int) ([]events.RoundResult, error) {
	vals, err := s.r.LRange(ctx, listKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]events.RoundResult, 0, len(vals))
	for _, v := range vals {
		var r events.RoundResult
		if err := json.Unmarshal([]byte(v), &r); err != nil {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}
