package intake

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/radieske/color-prediction-poc/internal/game-service/game"
	"github.com/radieske/color-prediction-poc/internal/game-service/scheduler"
)

type stateStub struct{ st scheduler.State }

func (s stateStub) State() scheduler.State { return s.st }

type storeStub struct {
	balance  int64
	existing map[string]bool // userID|roundID|selection
	placed   []*game.Bet
	placeErr error
}

func (s *storeStub) HasBet(_ context.Context, userID, roundID, selection string) (bool, error) {
	return s.existing[userID+"|"+roundID+"|"+selection], nil
}

func (s *storeStub) PlaceBet(_ context.Context, b *game.Bet) (int64, error) {
	if s.placeErr != nil {
		return 0, s.placeErr
	}
	if s.balance < b.StakeCents {
		return 0, game.ErrInsufficientFunds
	}
	s.balance -= b.StakeCents
	s.placed = append(s.placed, b)
	return s.balance, nil
}

func openState(roundID string) stateStub {
	return stateStub{st: scheduler.State{RoundID: roundID, TimeLeft: 100, Duration: 120, BettingOpen: true}}
}

func TestPlaceBetHappyPath(t *testing.T) {
	store := &storeStub{balance: 1000, existing: map[string]bool{}}
	in := New(zap.NewNop(), openState("R100"), store)

	placed, err := in.PlaceBet(context.Background(), "u1", "R100", "3", 50)
	if err != nil {
		t.Fatal(err)
	}
	// débito exato: saldoAntes = saldoDepois + stake
	if placed.NewBalanceCents != 950 {
		t.Fatalf("NewBalanceCents = %d, want 950", placed.NewBalanceCents)
	}
	if placed.Selection != "3" || placed.ShortRoundID != "R100" {
		t.Fatalf("placed = %+v", placed)
	}
	if len(store.placed) != 1 {
		t.Fatal("bet not recorded")
	}
	b := store.placed[0]
	if b.Status != game.StatusPending || b.PayoutCents != 0 || b.Selection.Number != 3 {
		t.Fatalf("recorded bet = %+v", b)
	}
}

func TestPlaceBetRejections(t *testing.T) {
	cases := []struct {
		name      string
		state     stateStub
		userID    string
		roundID   string
		selection string
		amount    int64
		wantErr   error
	}{
		{"non-positive amount", openState("R1"), "u1", "R1", "3", 0, game.ErrInvalidAmount},
		{"missing selection", openState("R1"), "u1", "R1", "", 10, game.ErrNoSelection},
		{"bad selection", openState("R1"), "u1", "R1", "11", 10, game.ErrInvalidSelection},
		{"empty round", openState("R1"), "u1", "", "3", 10, game.ErrInvalidRoundID},
		{"empty user", openState("R1"), "", "R1", "3", 10, game.ErrUserNotFound},
		{"round mismatch", openState("R2"), "u1", "R1", "3", 10, game.ErrRoundMismatch},
		{
			"betting closed",
			stateStub{st: scheduler.State{RoundID: "R1", TimeLeft: 10, Duration: 120, BettingOpen: false}},
			"u1", "R1", "3", 10, game.ErrBettingClosed,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &storeStub{balance: 1000, existing: map[string]bool{}}
			in := New(zap.NewNop(), tc.state, store)
			_, err := in.PlaceBet(context.Background(), tc.userID, tc.roundID, tc.selection, tc.amount)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			if len(store.placed) != 0 || store.balance != 1000 {
				t.Fatal("rejection must not mutate anything")
			}
		})
	}
}

func TestPlaceBetDuplicateSelection(t *testing.T) {
	store := &storeStub{balance: 1000, existing: map[string]bool{"u1|R1|3": true}}
	in := New(zap.NewNop(), openState("R1"), store)

	if _, err := in.PlaceBet(context.Background(), "u1", "R1", "3", 10); !errors.Is(err, game.ErrDuplicateBet) {
		t.Fatalf("err = %v, want ErrDuplicateBet", err)
	}

	// outra seleção na mesma rodada é permitida
	if _, err := in.PlaceBet(context.Background(), "u1", "R1", "green", 10); err != nil {
		t.Fatalf("different selection rejected: %v", err)
	}
}

func TestPlaceBetInsufficientFunds(t *testing.T) {
	store := &storeStub{balance: 5, existing: map[string]bool{}}
	in := New(zap.NewNop(), openState("R1"), store)

	if _, err := in.PlaceBet(context.Background(), "u1", "R1", "3", 10); !errors.Is(err, game.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if store.balance != 5 {
		t.Fatal("balance must be untouched")
	}
}

func TestPlaceBetUnknownUser(t *testing.T) {
	store := &storeStub{balance: 100, existing: map[string]bool{}, placeErr: game.ErrUserNotFound}
	in := New(zap.NewNop(), openState("R1"), store)

	if _, err := in.PlaceBet(context.Background(), "ghost", "R1", "3", 10); !errors.Is(err, game.ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}
