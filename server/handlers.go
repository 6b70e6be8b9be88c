package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"treats/domain/entities"
	"treats/infrastructure/observability"

	"github.com/go-chi/chi/v5"
)

// callerHeader carries the authenticated account id, set by the gateway
const callerHeader = "X-Account-ID"

type giveRequest struct {
	SubjectID string `json:"subject_id"`
	Amount    int64  `json:"amount"`
}

type giveResponse struct {
	Success    bool   `json:"success"`
	NewBalance int64  `json:"new_balance"`
	ReceiverID string `json:"receiver_id"`
}

func (s *Server) handleGive(w http.ResponseWriter, r *http.Request) {
	senderID := r.Header.Get(callerHeader)
	if senderID == "" {
		writeError(w, entities.NewInvalidOperation("missing caller identity"))
		return
	}

	var req giveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, entities.NewInvalidOperation("invalid request body"))
		return
	}

	result, err := s.transfers.GiveTreats(r.Context(), senderID, req.SubjectID, req.Amount)
	if err != nil {
		observability.OperationFailures.WithLabelValues("give", string(entities.KindOf(err))).Inc()
		writeError(w, err)
		return
	}

	observability.TreatsGiven.Inc()
	observability.TreatsGivenAmount.Add(float64(req.Amount))

	writeJSON(w, http.StatusOK, giveResponse{
		Success:    true,
		NewBalance: result.NewBalance,
		ReceiverID: result.ReceiverID,
	})
}

type purchaseRequest struct {
	AccountID         string `json:"account_id"`
	Amount            int64  `json:"amount"`
	Description       string `json:"description"`
	ExternalReference string `json:"external_reference"`
}

type purchaseResponse struct {
	Success    bool  `json:"success"`
	NewBalance int64 `json:"new_balance"`
	Duplicate  bool  `json:"duplicate"`
}

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, entities.NewInvalidOperation("invalid request body"))
		return
	}

	result, err := s.credits.PurchaseTreats(r.Context(), req.AccountID, req.Amount, req.Description, req.ExternalReference)
	if err != nil {
		observability.OperationFailures.WithLabelValues("purchase", string(entities.KindOf(err))).Inc()
		writeError(w, err)
		return
	}

	if result.Duplicate {
		observability.DuplicatePurchases.Inc()
	} else {
		observability.TreatsPurchased.Inc()
	}

	writeJSON(w, http.StatusOK, purchaseResponse{
		Success:    true,
		NewBalance: result.NewBalance,
		Duplicate:  result.Duplicate,
	})
}

func (s *Server) handleDailyBonus(w http.ResponseWriter, r *http.Request) {
	accountID := r.Header.Get(callerHeader)
	if accountID == "" {
		writeError(w, entities.NewInvalidOperation("missing caller identity"))
		return
	}

	result, err := s.credits.GrantDailyBonus(r.Context(), accountID, s.dailyBonusAmount)
	if err != nil {
		observability.OperationFailures.WithLabelValues("daily_bonus", string(entities.KindOf(err))).Inc()
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, purchaseResponse{
		Success:    true,
		NewBalance: result.NewBalance,
		Duplicate:  result.Duplicate,
	})
}

type leaderboardResponse struct {
	Success bool                          `json:"success"`
	Period  entities.LeaderboardPeriod    `json:"period"`
	Entries []*entities.LeaderboardEntry  `json:"entries"`
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	period, err := entities.ParseLeaderboardPeriod(chi.URLParam(r, "period"))
	if err != nil {
		writeError(w, entities.NewInvalidOperation("unknown leaderboard period"))
		return
	}

	entries, err := s.leaderboards.GetLeaderboard(r.Context(), period)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []*entities.LeaderboardEntry{}
	}

	writeJSON(w, http.StatusOK, leaderboardResponse{
		Success: true,
		Period:  period,
		Entries: entries,
	})
}

type accountResponse struct {
	Success       bool   `json:"success"`
	AccountID     string `json:"account_id"`
	Balance       int64  `json:"balance"`
	TotalGiven    int64  `json:"total_given"`
	TotalReceived int64  `json:"total_received"`
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := s.accounts.GetAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, accountResponse{
		Success:       true,
		AccountID:     account.ID,
		Balance:       account.Balance,
		TotalGiven:    account.TotalGiven,
		TotalReceived: account.TotalReceived,
	})
}

type historyEntry struct {
	ID                int64   `json:"id"`
	FromAccount       *string `json:"from_account,omitempty"`
	ToAccount         string  `json:"to_account"`
	SubjectReference  *string `json:"subject_reference,omitempty"`
	Amount            int64   `json:"amount"`
	Kind              string  `json:"kind"`
	Description       string  `json:"description"`
	CreatedAt         string  `json:"created_at"`
}

type historyResponse struct {
	Success bool           `json:"success"`
	Entries []historyEntry `json:"entries"`
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := s.accounts.GetHistory(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := historyResponse{Success: true, Entries: make([]historyEntry, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, historyEntry{
			ID:               e.ID,
			FromAccount:      e.FromAccount,
			ToAccount:        e.ToAccount,
			SubjectReference: e.SubjectReference,
			Amount:           e.Amount,
			Kind:             e.Kind.String(),
			Description:      e.Description,
			CreatedAt:        e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

type ensureAccountRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleEnsureAccount(w http.ResponseWriter, r *http.Request) {
	var req ensureAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, entities.NewInvalidOperation("invalid request body"))
		return
	}

	account, err := s.accounts.EnsureAccount(r.Context(), req.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, accountResponse{
		Success:       true,
		AccountID:     account.ID,
		Balance:       account.Balance,
		TotalGiven:    account.TotalGiven,
		TotalReceived: account.TotalReceived,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
