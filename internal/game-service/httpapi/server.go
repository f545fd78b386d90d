package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/color-prediction-poc/internal/game-service/dto"
	"github.com/radieske/color-prediction-poc/internal/game-service/game"
	"github.com/radieske/color-prediction-poc/internal/game-service/intake"
	"github.com/radieske/color-prediction-poc/internal/game-service/repo"
	"github.com/radieske/color-prediction-poc/internal/game-service/results"
	"github.com/radieske/color-prediction-poc/internal/game-service/scheduler"
	"github.com/radieske/color-prediction-poc/internal/game-service/ws"
)

const historyLimit = 50

// API expõe os endpoints REST do jogo de cores e o endpoint WebSocket de
// eventos de rodada.
type API struct {
	Log     *zap.Logger
	Intake  *intake.Intake
	Sched   *scheduler.Scheduler
	Repo    *repo.Postgres
	Results *results.Store
	Hub     *ws.Hub
}

// Router retorna o roteador HTTP com os endpoints do jogo.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Post("/api/color/place-bet", a.placeBet)
	r.Get("/api/color/current-state", a.currentState)
	r.Get("/api/color/history/{userID}", a.history)
	r.Get("/api/color/history-all", a.historyAll)
	r.Delete("/api/color/reset-game", a.resetGame)

	r.Post("/api/color/admin/declare-result", a.declareResult)
	r.Get("/api/color/admin/declared-result/{roundID}", a.declaredResult)
	r.Post("/api/color/admin/set-result", a.setResult)

	r.Get("/api/wallet", a.getWallet)
	r.Post("/api/wallet/deposit", a.deposit)

	r.Get("/ws", a.Hub.HandleWS)
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError mapeia os sentinelas do domínio para o status HTTP e devolve o
// corpo de erro padronizado do jogo.
func (a *API) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, game.ErrUserNotFound),
		errors.Is(err, game.ErrDeclarationNotFound):
		status = http.StatusNotFound
	case errors.Is(err, game.ErrResultAlreadyDeclared),
		errors.Is(err, game.ErrDuplicateBet):
		status = http.StatusConflict
	case errors.Is(err, game.ErrInvalidAmount),
		errors.Is(err, game.ErrNoSelection),
		errors.Is(err, game.ErrInvalidSelection),
		errors.Is(err, game.ErrInvalidRoundID),
		errors.Is(err, game.ErrRoundMismatch),
		errors.Is(err, game.ErrBettingClosed),
		errors.Is(err, game.ErrInsufficientFunds),
		errors.Is(err, game.ErrEmptyDeclaration),
		errors.Is(err, game.ErrInvalidDeclaredNumber),
		errors.Is(err, game.ErrInvalidDeclaredColor):
		status = http.StatusBadRequest
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		a.Log.Error("request failed", zap.Error(err))
		msg = "internal error"
	}
	writeJSON(w, status, dto.ErrorResponse{Success: false, Message: msg})
}

func (a *API) placeBet(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Success: false, Message: "bad json"})
		return
	}

	placed, err := a.Intake.PlaceBet(r.Context(), req.UserID, req.RoundID, req.Selection, req.AmountCents)
	if err != nil {
		a.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PlaceBetResponse{
		Success: true,
		Message: "Bet placed successfully",
		Bet: dto.BetSummary{
			ID:          placed.BetID,
			RoundID:     placed.ShortRoundID,
			AmountCents: placed.StakeCents,
			Selection:   placed.Selection,
		},
		NewBalanceCents: placed.NewBalanceCents,
	})
}

func (a *API) currentState(w http.ResponseWriter, r *http.Request) {
	st := a.Sched.State()
	writeJSON(w, http.StatusOK, dto.CurrentStateResponse{
		Success:        true,
		CurrentRoundID: st.RoundID,
		TimeLeft:       st.TimeLeft,
		TimerDuration:  st.Duration,
		BettingOpen:    st.BettingOpen,
	})
}

func (a *API) history(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		a.writeError(w, game.ErrUserNotFound)
		return
	}

	bets, err := a.Repo.HistoryByUser(r.Context(), userID, historyLimit)
	if err != nil {
		a.writeError(w, err)
		return
	}

	out := make([]dto.BetHistoryEntry, 0, len(bets))
	for _, b := range bets {
		out = append(out, dto.BetHistoryEntry{
			ID:                b.ID,
			RoundID:           b.RoundID,
			Selection:         b.Selection.String(),
			AmountCents:       b.StakeCents,
			Status:            string(b.Status),
			PayoutCents:       b.PayoutCents,
			BalanceAfterCents: b.BalanceAfterCents,
			CreatedAt:         b.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "bets": out})
}

// historyAll serve os últimos resultados de rodada: lista Redis primeiro,
// Postgres como fallback quando a lista está vazia ou indisponível.
func (a *API) historyAll(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 && n <= 20 {
			limit = n
		}
	}

	res, err := a.Results.Recent(r.Context(), limit)
	if err != nil || len(res) == 0 {
		res, err = a.Repo.RecentOutcomes(r.Context(), limit)
		if err != nil {
			a.writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "results": res})
}

func (a *API) resetGame(w http.ResponseWriter, r *http.Request) {
	if err := a.Repo.ResetBets(r.Context()); err != nil {
		a.writeError(w, err)
		return
	}
	a.Log.Info("game reset: all bets deleted")
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Game data reset"})
}

// declareResult registra o resultado que a rodada corrente deve usar quando
// expirar. A rodada precisa estar viva no momento da declaração.
func (a *API) declareResult(w http.ResponseWriter, r *http.Request) {
	dr, err := a.declare(w, r)
	if err != nil {
		return
	}
	writeJSON(w, http.StatusOK, dto.DeclareResultResponse{
		Success: true,
		Message: "Result declared for round " + game.ShortRoundID(dr.RoundID),
		Result:  toDeclaredDTO(dr),
	})
}

// setResult declara o resultado e expira a rodada imediatamente, para que o
// próximo tick a liquide com o resultado declarado.
func (a *API) setResult(w http.ResponseWriter, r *http.Request) {
	dr, err := a.declare(w, r)
	if err != nil {
		return
	}
	if err := a.Sched.ForceExpire(dr.RoundID); err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.DeclareResultResponse{
		Success: true,
		Message: "Result set; round " + game.ShortRoundID(dr.RoundID) + " is being settled",
		Result:  toDeclaredDTO(dr),
	})
}

// declare valida e persiste a declaração; em caso de erro já responde.
func (a *API) declare(w http.ResponseWriter, r *http.Request) (*game.DeclaredResult, error) {
	var req dto.DeclareResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Success: false, Message: "bad json"})
		return nil, err
	}
	if req.RoundID == "" {
		a.writeError(w, game.ErrInvalidRoundID)
		return nil, game.ErrInvalidRoundID
	}

	st := a.Sched.State()
	if req.RoundID != st.RoundID {
		err := game.ErrRoundMismatch
		a.writeError(w, err)
		return nil, err
	}

	var color *game.Color
	if req.Color != nil {
		c := game.Color(*req.Color)
		color = &c
	}
	out, err := game.CompleteDeclaration(req.Result, color)
	if err != nil {
		a.writeError(w, err)
		return nil, err
	}

	dr, err := a.Repo.Declare(r.Context(), req.RoundID, out)
	if err != nil {
		a.writeError(w, err)
		return nil, err
	}
	a.Log.Info("result declared",
		zap.String("roundId", dr.RoundID),
		zap.Int("number", dr.Number),
		zap.String("color", string(dr.Color)),
	)
	return dr, nil
}

func (a *API) declaredResult(w http.ResponseWriter, r *http.Request) {
	roundID := chi.URLParam(r, "roundID")
	dr, err := a.Repo.DeclaredResult(r.Context(), roundID)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if dr == nil {
		a.writeError(w, game.ErrDeclarationNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "result": toDeclaredDTO(dr)})
}

func (a *API) getWallet(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		a.writeError(w, game.ErrUserNotFound)
		return
	}
	walletID, balance, err := a.Repo.GetOrCreateWallet(r.Context(), userID)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.WalletResponse{
		UserID:       userID,
		WalletID:     walletID,
		BalanceCents: balance,
	})
}

func (a *API) deposit(w http.ResponseWriter, r *http.Request) {
	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Success: false, Message: "bad json"})
		return
	}
	if req.UserID == "" {
		a.writeError(w, game.ErrUserNotFound)
		return
	}
	if req.AmountCents <= 0 {
		a.writeError(w, game.ErrInvalidAmount)
		return
	}

	walletID, newBalance, err := a.Repo.Deposit(r.Context(), req.UserID, req.AmountCents, req.ExternalRef)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.Log.Info("wallet deposit",
		zap.String("userId", req.UserID),
		zap.Int64("amountCents", req.AmountCents),
	)
	writeJSON(w, http.StatusOK, dto.WalletResponse{
		UserID:       req.UserID,
		WalletID:     walletID,
		BalanceCents: newBalance,
	})
}

func toDeclaredDTO(dr *game.DeclaredResult) dto.DeclaredResult {
	return dto.DeclaredResult{
		RoundID:      dr.RoundID,
		ResultNumber: dr.Number,
		ResultColor:  string(dr.Color),
		DeclaredAt:   dr.DeclaredAt,
		IsApplied:    dr.Applied,
		AppliedAt:    dr.AppliedAt,
	}
}
