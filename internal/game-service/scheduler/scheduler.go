package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/color-prediction-poc/internal/game-service/game"
	"github.com/radieske/color-prediction-poc/pkg/contracts/events"
)

// BetStore é a visão do agendador sobre o registro de apostas.
type BetStore interface {
	// PendingByRound devolve apenas apostas ainda não liquidadas; uma
	// reliquidação da mesma rodada encontra a lista vazia.
	PendingByRound(ctx context.Context, roundID string) ([]game.Bet, error)
	SettleBet(ctx context.Context, betID string, status game.Status, payoutCents int64, resultNumber int) error
	StampBalances(ctx context.Context, roundID, userID string, balanceCents int64) error
}

// WalletStore aplica créditos de liquidação. Créditos são incondicionais.
type WalletStore interface {
	Credit(ctx context.Context, userID string, amountCents int64, description string) (newBalanceCents int64, err error)
}

// OverrideStore entrega a declaração do operador para uma rodada, se houver.
// Consume marca a declaração como aplicada; releituras devolvem o registro
// com Applied=true e não devem ser reaplicadas.
type OverrideStore interface {
	Consume(ctx context.Context, roundID string) (*game.DeclaredResult, error)
}

// OutcomeStore persiste o registro de resultado independente de apostas.
type OutcomeStore interface {
	SaveOutcome(ctx context.Context, roundID string, out game.Outcome, prov game.Provenance) error
}

// Broadcaster publica eventos de jogo para os clientes (fire-and-forget).
type Broadcaster interface {
	Broadcast(ctx context.Context, event string, payload any) error
}

// SettledPublisher emite o evento de auditoria de rodada liquidada.
type SettledPublisher interface {
	PublishRoundSettled(ctx context.Context, ev events.RoundSettled) error
}

// ResultLog guarda o histórico recente de resultados.
type ResultLog interface {
	Push(ctx context.Context, r events.RoundResult) error
}

// State é a fotografia imutável da rodada corrente, lida pelos handlers de
// requisição entre os pushes do timer.
type State struct {
	RoundID     string
	TimeLeft    int
	Duration    int
	BettingOpen bool
}

// Scheduler é a máquina de estados da rodada: Counting enquanto timeLeft > 0,
// Settling quando o tempo esgota, voltando a Counting na rodada seguinte.
// Toda mutação de estado de rodada acontece aqui.
type Scheduler struct {
	log       *zap.Logger
	bets      BetStore
	wallets   WalletStore
	overrides OverrideStore
	outcomes  OutcomeStore
	bus       Broadcaster

	durationSecs int
	cutoffSecs   int

	// opcionais, checados contra nil como as callbacks de métricas do resto
	// da plataforma
	Settled SettledPublisher
	Results ResultLog

	OnRoundSettled func()
	OnPayout       func(cents int64)
	OnError        func(stage string)

	mu       sync.Mutex
	roundID  string
	timeLeft int

	// trava de reentrância: ticks que chegam durante uma liquidação são
	// descartados, não enfileirados
	settling atomic.Bool

	draw func() game.Outcome
}

// New cria o agendador já posicionado na primeira rodada.
func New(log *zap.Logger, bets BetStore, wallets WalletStore, overrides OverrideStore, outcomes OutcomeStore, bus Broadcaster, durationSecs, cutoffSecs int) *Scheduler {
	s := &Scheduler{
		log:          log,
		bets:         bets,
		wallets:      wallets,
		overrides:    overrides,
		outcomes:     outcomes,
		bus:          bus,
		durationSecs: durationSecs,
		cutoffSecs:   cutoffSecs,
		roundID:      game.NewRoundID(),
		timeLeft:     durationSecs,
		draw:         game.Draw,
	}
	return s
}

// Run dirige o ciclo tick->expira->liquida->avança com cadência fixa de um
// segundo até o contexto encerrar.
func (s *Scheduler) Run(ctx context.Context) {
	s.log.Info("game timer started",
		zap.String("roundId", s.roundID),
		zap.Int("durationSecs", s.durationSecs),
	)
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Tick(ctx)
		}
	}
}

// State devolve uma cópia consistente do estado publicado.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		RoundID:     s.roundID,
		TimeLeft:    s.timeLeft,
		Duration:    s.durationSecs,
		BettingOpen: s.timeLeft > s.cutoffSecs,
	}
}

// ForceExpire zera a contagem da rodada viva para que o próximo tick a
// liquide. Usado pelo caminho administrativo de resultado forçado.
func (s *Scheduler) ForceExpire(roundID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if roundID != s.roundID {
		return game.ErrRoundMismatch
	}
	s.timeLeft = 0
	return nil
}

// Tick avança um segundo da contagem ou dispara a liquidação quando o tempo
// já esgotou. Um tick recebido com liquidação em andamento é descartado.
func (s *Scheduler) Tick(ctx context.Context) {
	if s.settling.Load() {
		return
	}

	s.mu.Lock()
	if s.timeLeft > 0 {
		s.timeLeft--
		upd := events.TimerUpdate{RoundID: s.roundID, TimeLeft: s.timeLeft}
		s.mu.Unlock()
		if err := s.bus.Broadcast(ctx, events.EventTimerUpdate, upd); err != nil {
			s.log.Warn("broadcast timerUpdate", zap.Error(err))
		}
		return
	}
	completed := s.roundID
	s.mu.Unlock()

	if !s.settling.CompareAndSwap(false, true) {
		return
	}
	// a trava precisa cair em todos os caminhos, senão o agendador para
	defer s.settling.Store(false)

	s.settle(ctx, completed)
}

// settle liquida todas as apostas pendentes da rodada expirada e avança para
// a próxima. Falha de um usuário não derruba os demais; falha fatal degrada
// o evento de conclusão mas nunca impede o avanço.
func (s *Scheduler) settle(ctx context.Context, completed string) {
	s.log.Info("timer ended, processing results", zap.String("roundId", completed))
	if err := s.bus.Broadcast(ctx, events.EventTimerEnded, events.TimerEnded{
		RoundID: completed,
		Message: "Processing results...",
	}); err != nil {
		s.log.Warn("broadcast timerEnded", zap.Error(err))
	}

	out, prov, err := s.resolveOutcome(ctx, completed)
	if err != nil {
		s.log.Error("resolve outcome", zap.String("roundId", completed), zap.Error(err))
		s.fail("outcome")
		s.advance(ctx, completed, nil)
		return
	}

	if err := s.outcomes.SaveOutcome(ctx, completed, out, prov); err != nil {
		s.log.Error("save outcome record", zap.String("roundId", completed), zap.Error(err))
		s.fail("save_outcome")
		s.advance(ctx, completed, nil)
		return
	}

	bets, err := s.bets.PendingByRound(ctx, completed)
	if err != nil {
		s.log.Error("load bets", zap.String("roundId", completed), zap.Error(err))
		s.fail("load_bets")
		s.advance(ctx, completed, nil)
		return
	}
	s.log.Info("settling bets",
		zap.String("roundId", completed),
		zap.Int("bets", len(bets)),
		zap.Int("result", out.Number),
		zap.String("resultColor", string(out.Color)),
		zap.String("provenance", string(prov)),
	)

	// agrupado por usuário para aplicar o delta de carteira de cada um em um
	// único crédito
	byUser := make(map[string][]game.Bet)
	for _, b := range bets {
		byUser[b.UserID] = append(byUser[b.UserID], b)
	}

	var totalStaked, totalPaid int64
	for userID, ubets := range byUser {
		paid, err := s.settleUser(ctx, completed, userID, ubets, out)
		if err != nil {
			s.log.Error("settle user bets",
				zap.String("roundId", completed),
				zap.String("userId", userID),
				zap.Error(err),
			)
			s.fail("settle_user")
			continue
		}
		totalPaid += paid
		for _, b := range ubets {
			totalStaked += b.StakeCents
		}
		if s.OnPayout != nil {
			s.OnPayout(paid)
		}
	}

	if s.Settled != nil {
		ev := events.RoundSettled{
			RoundID:          completed,
			ResultNumber:     out.Number,
			ResultColor:      string(out.Color),
			Provenance:       string(prov),
			BetCount:         len(bets),
			TotalStakedCents: totalStaked,
			TotalPaidCents:   totalPaid,
			Ts:               time.Now(),
		}
		if err := s.Settled.PublishRoundSettled(ctx, ev); err != nil {
			s.log.Warn("publish round_settled", zap.Error(err))
		}
	}
	if s.Results != nil {
		r := events.RoundResult{
			RoundID:   completed,
			Result:    out.Number,
			Color:     string(out.Color),
			CreatedAt: time.Now(),
		}
		if err := s.Results.Push(ctx, r); err != nil {
			s.log.Warn("push recent result", zap.Error(err))
		}
	}
	if s.OnRoundSettled != nil {
		s.OnRoundSettled()
	}

	s.advance(ctx, completed, &out)
}

// resolveOutcome consome a declaração do operador, se existir e ainda não
// tiver sido aplicada; caso contrário sorteia.
func (s *Scheduler) resolveOutcome(ctx context.Context, roundID string) (game.Outcome, game.Provenance, error) {
	dr, err := s.overrides.Consume(ctx, roundID)
	if err != nil {
		return game.Outcome{}, "", fmt.Errorf("consume declared result: %w", err)
	}
	if dr != nil && !dr.Applied {
		s.log.Info("using operator-declared result",
			zap.String("roundId", roundID),
			zap.Int("number", dr.Number),
			zap.String("color", string(dr.Color)),
		)
		return game.Outcome{Number: dr.Number, Color: dr.Color}, game.ProvenanceOperator, nil
	}
	return s.draw(), game.ProvenanceSystem, nil
}

// settleUser aplica as regras de pagamento às apostas de um usuário e credita
// a soma em uma única operação de carteira.
func (s *Scheduler) settleUser(ctx context.Context, roundID, userID string, ubets []game.Bet, out game.Outcome) (int64, error) {
	var total int64
	for _, b := range ubets {
		won, payout := game.SettleBet(b.Selection, b.StakeCents, out)
		status := game.StatusLost
		if won {
			status = game.StatusWon
		}
		if err := s.bets.SettleBet(ctx, b.ID, status, payout, out.Number); err != nil {
			return 0, fmt.Errorf("settle bet %s: %w", b.ID, err)
		}
		total += payout
	}

	newBalance, err := s.wallets.Credit(ctx, userID, total, "settlement:"+roundID)
	if err != nil {
		return 0, fmt.Errorf("credit user %s: %w", userID, err)
	}

	// o carimbo de saldo nos registros é conveniência de auditoria, não valor
	// de autoridade
	if err := s.bets.StampBalances(ctx, roundID, userID, newBalance); err != nil {
		s.log.Warn("stamp balances",
			zap.String("roundId", roundID),
			zap.String("userId", userID),
			zap.Error(err),
		)
	}
	return total, nil
}

// advance gera a próxima rodada e publica a conclusão da anterior. out nil
// indica liquidação degradada (resultado indisponível).
func (s *Scheduler) advance(ctx context.Context, completed string, out *game.Outcome) {
	next := game.NewRoundID()

	s.mu.Lock()
	s.roundID = next
	s.timeLeft = s.durationSecs
	s.mu.Unlock()

	ev := events.RoundCompleted{
		PreviousRoundID:   completed,
		NextRoundID:       next,
		NextRoundTimeLeft: s.durationSecs,
	}
	if out != nil {
		n := out.Number
		c := string(out.Color)
		ev.Result = &n
		ev.ResultColor = &c
		ev.Message = fmt.Sprintf("Round %s ended. Result: %d. New round %s starting!",
			game.ShortRoundID(completed), n, game.ShortRoundID(next))
	} else {
		ev.Message = fmt.Sprintf("Error processing round %s. New round %s started.",
			game.ShortRoundID(completed), game.ShortRoundID(next))
	}

	if err := s.bus.Broadcast(ctx, events.EventRoundCompleted, ev); err != nil {
		s.log.Warn("broadcast roundCompleted", zap.Error(err))
	}
	s.log.Info("round advanced",
		zap.String("previousRoundId", completed),
		zap.String("nextRoundId", next),
	)
}

func (s *Scheduler) fail(stage string) {
	if s.OnError != nil {
		s.OnError(stage)
	}
}
