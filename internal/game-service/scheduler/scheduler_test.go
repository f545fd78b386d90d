package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/radieske/color-prediction-poc/internal/game-service/game"
	"github.com/radieske/color-prediction-poc/pkg/contracts/events"
)

// --- fakes ---

type fakeBets struct {
	mu         sync.Mutex
	bets       map[string]*game.Bet
	pendingErr error
	failUser   string
}

func newFakeBets() *fakeBets {
	return &fakeBets{bets: make(map[string]*game.Bet)}
}

func (f *fakeBets) add(b game.Bet) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := b
	f.bets[b.ID] = &cp
}

func (f *fakeBets) PendingByRound(_ context.Context, roundID string) ([]game.Bet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pendingErr != nil {
		return nil, f.pendingErr
	}
	var out []game.Bet
	for _, b := range f.bets {
		if b.RoundID == roundID && b.Status == game.StatusPending {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBets) SettleBet(_ context.Context, betID string, status game.Status, payoutCents int64, resultNumber int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bets[betID]
	if !ok {
		return errors.New("bet not found")
	}
	if f.failUser != "" && b.UserID == f.failUser {
		return errors.New("injected settle failure")
	}
	b.Status = status
	b.PayoutCents = payoutCents
	return nil
}

func (f *fakeBets) StampBalances(_ context.Context, roundID, userID string, balanceCents int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bets {
		if b.RoundID == roundID && b.UserID == userID {
			b.BalanceAfterCents = balanceCents
		}
	}
	return nil
}

type fakeWallets struct {
	mu       sync.Mutex
	balances map[string]int64
	credits  []int64
}

func newFakeWallets() *fakeWallets {
	return &fakeWallets{balances: make(map[string]int64)}
}

func (f *fakeWallets) Credit(_ context.Context, userID string, amountCents int64, _ string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[userID] += amountCents
	f.credits = append(f.credits, amountCents)
	return f.balances[userID], nil
}

type fakeOverrides struct {
	mu       sync.Mutex
	dr       *game.DeclaredResult
	consumed int
}

func (f *fakeOverrides) Consume(_ context.Context, roundID string) (*game.DeclaredResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dr == nil || f.dr.RoundID != roundID {
		return nil, nil
	}
	f.consumed++
	cp := *f.dr
	f.dr.Applied = true
	return &cp, nil
}

type fakeOutcomes struct {
	mu    sync.Mutex
	saved []game.Outcome
	err   error
}

func (f *fakeOutcomes) SaveOutcome(_ context.Context, _ string, out game.Outcome, _ game.Provenance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, out)
	return nil
}

type busEvent struct {
	name    string
	payload any
}

type fakeBus struct {
	mu     sync.Mutex
	events []busEvent
}

func (f *fakeBus) Broadcast(_ context.Context, event string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, busEvent{name: event, payload: payload})
	return nil
}

func (f *fakeBus) last() busEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events[len(f.events)-1]
}

type env struct {
	sched     *Scheduler
	bets      *fakeBets
	wallets   *fakeWallets
	overrides *fakeOverrides
	outcomes  *fakeOutcomes
	bus       *fakeBus
}

func newEnv(durationSecs int) *env {
	e := &env{
		bets:      newFakeBets(),
		wallets:   newFakeWallets(),
		overrides: &fakeOverrides{},
		outcomes:  &fakeOutcomes{},
		bus:       &fakeBus{},
	}
	e.sched = New(zap.NewNop(), e.bets, e.wallets, e.overrides, e.outcomes, e.bus, durationSecs, 10)
	return e
}

func (e *env) expire() {
	e.sched.mu.Lock()
	e.sched.timeLeft = 0
	e.sched.mu.Unlock()
}

// --- tests ---

func TestTickCountsDownAndPublishes(t *testing.T) {
	e := newEnv(120)
	e.sched.Tick(context.Background())

	st := e.sched.State()
	if st.TimeLeft != 119 {
		t.Fatalf("TimeLeft = %d, want 119", st.TimeLeft)
	}
	last := e.bus.last()
	if last.name != events.EventTimerUpdate {
		t.Fatalf("last event = %s, want timerUpdate", last.name)
	}
	upd := last.payload.(events.TimerUpdate)
	if upd.TimeLeft != 119 || upd.RoundID != st.RoundID {
		t.Fatalf("timerUpdate = %+v", upd)
	}
}

func TestTickDroppedWhileSettling(t *testing.T) {
	e := newEnv(120)
	e.sched.settling.Store(true)
	e.sched.Tick(context.Background())

	if st := e.sched.State(); st.TimeLeft != 120 {
		t.Fatalf("tick was not dropped, TimeLeft = %d", st.TimeLeft)
	}
	if len(e.bus.events) != 0 {
		t.Fatal("no event should be published for a dropped tick")
	}
}

func TestBettingWindowClosesNearExpiry(t *testing.T) {
	e := newEnv(120)
	if !e.sched.State().BettingOpen {
		t.Fatal("betting should be open at round start")
	}
	e.sched.mu.Lock()
	e.sched.timeLeft = 10
	e.sched.mu.Unlock()
	if e.sched.State().BettingOpen {
		t.Fatal("betting should be closed at timeLeft=10")
	}
}

func TestForceExpire(t *testing.T) {
	e := newEnv(120)
	if err := e.sched.ForceExpire("R-wrong"); !errors.Is(err, game.ErrRoundMismatch) {
		t.Fatalf("err = %v, want ErrRoundMismatch", err)
	}
	if err := e.sched.ForceExpire(e.sched.State().RoundID); err != nil {
		t.Fatal(err)
	}
	if e.sched.State().TimeLeft != 0 {
		t.Fatal("ForceExpire should zero the countdown")
	}
}

func TestSettlementUsesDeclaredResultOnce(t *testing.T) {
	e := newEnv(120)
	round := e.sched.State().RoundID
	e.overrides.dr = &game.DeclaredResult{RoundID: round, Number: 7, Color: game.ColorGreen}

	e.bets.add(game.Bet{ID: "b1", UserID: "u1", RoundID: round,
		Selection: game.NumberSelection(7), StakeCents: 100, Status: game.StatusPending})
	e.bets.add(game.Bet{ID: "b2", UserID: "u1", RoundID: round,
		Selection: game.ColorSelection(game.ColorRed), StakeCents: 100, Status: game.StatusPending})

	e.expire()
	e.sched.Tick(context.Background())

	// aposta no número 7 vence 2x; cor red perde e recebe 5%
	if got := e.wallets.balances["u1"]; got != 205 {
		t.Fatalf("credited %d, want 205", got)
	}
	if len(e.wallets.credits) != 1 {
		t.Fatalf("expected a single summed credit, got %d", len(e.wallets.credits))
	}
	if e.overrides.consumed != 1 {
		t.Fatalf("override consumed %d times", e.overrides.consumed)
	}
	if b := e.bets.bets["b1"]; b.Status != game.StatusWon || b.PayoutCents != 200 {
		t.Fatalf("b1 = %+v", b)
	}
	if b := e.bets.bets["b2"]; b.Status != game.StatusLost || b.PayoutCents != 5 {
		t.Fatalf("b2 = %+v", b)
	}

	st := e.sched.State()
	if st.RoundID == round || st.TimeLeft != 120 {
		t.Fatalf("round did not advance cleanly: %+v", st)
	}

	last := e.bus.last()
	if last.name != events.EventRoundCompleted {
		t.Fatalf("last event = %s", last.name)
	}
	rc := last.payload.(events.RoundCompleted)
	if rc.Result == nil || *rc.Result != 7 || rc.ResultColor == nil || *rc.ResultColor != "green" {
		t.Fatalf("roundCompleted = %+v", rc)
	}
}

func TestReSettlingRoundDoesNotDoubleCredit(t *testing.T) {
	e := newEnv(120)
	round := e.sched.State().RoundID
	e.overrides.dr = &game.DeclaredResult{RoundID: round, Number: 3, Color: game.ColorGreen}
	e.bets.add(game.Bet{ID: "b1", UserID: "u1", RoundID: round,
		Selection: game.NumberSelection(3), StakeCents: 50, Status: game.StatusPending})

	e.expire()
	e.sched.Tick(context.Background())
	if got := e.wallets.balances["u1"]; got != 100 {
		t.Fatalf("first settlement credited %d, want 100", got)
	}

	// reentrada simulada: liquidar a mesma rodada de novo não encontra
	// apostas pendentes nem reaplica a declaração
	e.sched.settle(context.Background(), round)
	if got := e.wallets.balances["u1"]; got != 100 {
		t.Fatalf("re-settlement double-credited: %d", got)
	}
	if len(e.wallets.credits) != 1 {
		t.Fatalf("credits = %d, want 1", len(e.wallets.credits))
	}
}

func TestUserFailureDoesNotAbortOthers(t *testing.T) {
	e := newEnv(120)
	round := e.sched.State().RoundID
	e.overrides.dr = &game.DeclaredResult{RoundID: round, Number: 2, Color: game.ColorRed}
	e.bets.failUser = "u1"

	e.bets.add(game.Bet{ID: "b1", UserID: "u1", RoundID: round,
		Selection: game.NumberSelection(2), StakeCents: 100, Status: game.StatusPending})
	e.bets.add(game.Bet{ID: "b2", UserID: "u2", RoundID: round,
		Selection: game.ColorSelection(game.ColorRed), StakeCents: 100, Status: game.StatusPending})

	var stages []string
	e.sched.OnError = func(stage string) { stages = append(stages, stage) }

	e.expire()
	e.sched.Tick(context.Background())

	if got := e.wallets.balances["u2"]; got != 200 {
		t.Fatalf("u2 credited %d, want 200", got)
	}
	if _, ok := e.wallets.balances["u1"]; ok {
		t.Fatal("u1 should not have been credited")
	}
	if len(stages) != 1 || stages[0] != "settle_user" {
		t.Fatalf("stages = %v", stages)
	}
	if st := e.sched.State(); st.RoundID == round {
		t.Fatal("round should advance despite the per-user failure")
	}
}

func TestFatalFailureStillAdvancesDegraded(t *testing.T) {
	e := newEnv(120)
	round := e.sched.State().RoundID
	e.outcomes.err = errors.New("db down")
	e.bets.add(game.Bet{ID: "b1", UserID: "u1", RoundID: round,
		Selection: game.NumberSelection(1), StakeCents: 100, Status: game.StatusPending})

	e.expire()
	e.sched.Tick(context.Background())

	if len(e.wallets.credits) != 0 {
		t.Fatal("no credit should happen on fatal failure")
	}
	st := e.sched.State()
	if st.RoundID == round || st.TimeLeft != 120 {
		t.Fatalf("scheduler stalled: %+v", st)
	}
	rc := e.bus.last().payload.(events.RoundCompleted)
	if rc.Result != nil || rc.ResultColor != nil {
		t.Fatalf("degraded completion should carry no result: %+v", rc)
	}
	if e.sched.settling.Load() {
		t.Fatal("re-entrancy guard left held")
	}
}

func TestMoneyConservation(t *testing.T) {
	e := newEnv(120)
	round := e.sched.State().RoundID
	e.overrides.dr = &game.DeclaredResult{RoundID: round, Number: 0, Color: game.ColorViolet}

	out := game.Outcome{Number: 0, Color: game.ColorViolet}
	staked := []game.Bet{
		{ID: "b1", UserID: "u1", RoundID: round, Selection: game.NumberSelection(0), StakeCents: 100, Status: game.StatusPending},
		{ID: "b2", UserID: "u1", RoundID: round, Selection: game.NumberSelection(9), StakeCents: 200, Status: game.StatusPending},
		{ID: "b3", UserID: "u2", RoundID: round, Selection: game.ColorSelection(game.ColorViolet), StakeCents: 300, Status: game.StatusPending},
		{ID: "b4", UserID: "u3", RoundID: round, Selection: game.ColorSelection(game.ColorGreen), StakeCents: 400, Status: game.StatusPending},
	}
	var want int64
	for _, b := range staked {
		e.bets.add(b)
		_, p := game.SettleBet(b.Selection, b.StakeCents, out)
		want += p
	}

	e.expire()
	e.sched.Tick(context.Background())

	var credited int64
	for _, c := range e.wallets.credits {
		credited += c
	}
	if credited != want {
		t.Fatalf("credited %d, want %d", credited, want)
	}
}

func TestEndToEndRound(t *testing.T) {
	// usuário com 1000 aposta 50 no número 3; sistema sorteia 3 (green);
	// aposta vence 100 e o saldo final fica 1050
	e := newEnv(120)
	e.sched.draw = func() game.Outcome { return game.Outcome{Number: 3, Color: game.ColorGreen} }
	round := e.sched.State().RoundID

	e.wallets.balances["U"] = 1000
	for i := 0; i < 20; i++ {
		e.sched.Tick(context.Background())
	}
	if st := e.sched.State(); st.TimeLeft != 100 || !st.BettingOpen {
		t.Fatalf("state at bet time = %+v", st)
	}

	// admissão: débito exato do stake e registro pendente
	e.wallets.balances["U"] -= 50
	e.bets.add(game.Bet{ID: "bet-u", UserID: "U", RoundID: round,
		Selection: game.NumberSelection(3), StakeCents: 50,
		BalanceAfterCents: 950, Status: game.StatusPending})

	e.expire()
	e.sched.Tick(context.Background())

	if got := e.wallets.balances["U"]; got != 1050 {
		t.Fatalf("final balance = %d, want 1050", got)
	}
	b := e.bets.bets["bet-u"]
	if b.Status != game.StatusWon || b.PayoutCents != 100 || b.BalanceAfterCents != 1050 {
		t.Fatalf("settled bet = %+v", b)
	}
	st := e.sched.State()
	if st.RoundID == round || st.TimeLeft != 120 {
		t.Fatalf("next round state = %+v", st)
	}
	if len(e.outcomes.saved) != 1 || e.outcomes.saved[0].Number != 3 {
		t.Fatalf("outcome record = %+v", e.outcomes.saved)
	}
}
