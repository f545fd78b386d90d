package intake

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/color-prediction-poc/internal/game-service/game"
	"github.com/radieske/color-prediction-poc/internal/game-service/scheduler"
)

// Store é a visão da admissão sobre a persistência. PlaceBet debita a
// carteira e grava a aposta na mesma operação lógica; um débito sem aposta
// (ou o contrário) seria violação de consistência.
type Store interface {
	HasBet(ctx context.Context, userID, roundID, selection string) (bool, error)
	PlaceBet(ctx context.Context, b *game.Bet) (newBalanceCents int64, err error)
}

// StateProvider publica a fotografia da rodada corrente.
type StateProvider interface {
	State() scheduler.State
}

// Intake valida e admite apostas na rodada corrente. É o único ponto de
// entrada síncrono que toca estado vivo de rodada fora do agendador.
type Intake struct {
	log   *zap.Logger
	state StateProvider
	store Store

	OnBetPlaced func() // métricas (counter++)
}

func New(log *zap.Logger, state StateProvider, store Store) *Intake {
	return &Intake{log: log, state: state, store: store}
}

// PlacedBet é a confirmação devolvida ao jogador.
type PlacedBet struct {
	BetID           string
	ShortRoundID    string
	Selection       string
	StakeCents      int64
	NewBalanceCents int64
}

// PlaceBet valida a aposta contra o estado publicado e, se aceita, debita e
// registra atomicamente.
func (i *Intake) PlaceBet(ctx context.Context, userID, roundID, rawSelection string, amountCents int64) (*PlacedBet, error) {
	if amountCents <= 0 {
		return nil, game.ErrInvalidAmount
	}
	sel, err := game.ParseSelection(rawSelection)
	if err != nil {
		return nil, err
	}
	if roundID == "" {
		return nil, game.ErrInvalidRoundID
	}
	if userID == "" {
		return nil, game.ErrUserNotFound
	}

	st := i.state.State()
	if roundID != st.RoundID {
		return nil, fmt.Errorf("%w: betting is only allowed for the %s round",
			game.ErrRoundMismatch, game.ShortRoundID(st.RoundID))
	}
	if !st.BettingOpen {
		return nil, game.ErrBettingClosed
	}

	dup, err := i.store.HasBet(ctx, userID, roundID, sel.String())
	if err != nil {
		return nil, fmt.Errorf("check existing bet: %w", err)
	}
	if dup {
		return nil, game.ErrDuplicateBet
	}

	b := &game.Bet{
		ID:         uuid.NewString(),
		UserID:     userID,
		RoundID:    roundID,
		Selection:  sel,
		StakeCents: amountCents,
		Status:     game.StatusPending,
		CreatedAt:  time.Now(),
	}
	newBalance, err := i.store.PlaceBet(ctx, b)
	if err != nil {
		return nil, err
	}
	b.BalanceAfterCents = newBalance

	i.log.Info("bet placed",
		zap.String("betId", b.ID),
		zap.String("userId", userID),
		zap.String("roundId", roundID),
		zap.String("selection", sel.String()),
		zap.Int64("stakeCents", amountCents),
		zap.Int64("newBalanceCents", newBalance),
	)
	if i.OnBetPlaced != nil {
		i.OnBetPlaced()
	}

	return &PlacedBet{
		BetID:           b.ID,
		ShortRoundID:    game.ShortRoundID(roundID),
		Selection:       sel.String(),
		StakeCents:      amountCents,
		NewBalanceCents: newBalance,
	}, nil
}
