package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cashmind/engine/internal/app/simulate"
	"github.com/cashmind/engine/internal/app/split"
	"github.com/cashmind/engine/internal/domain"
	"github.com/cashmind/engine/internal/infra/metrics"
	"github.com/cashmind/engine/internal/infra/sqlite"
)

// ─── Transactions ───────────────────────────────────────────────────────────

// --- GET /api/v1/transactions?type=&category=&from=&to= ---

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := sqlite.TxFilter{
		Type:     domain.TransactionType(q.Get("type")),
		Category: q.Get("category"),
	}

	var err error
	if filter.From, err = parseDate(q.Get("from")); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if filter.To, err = parseDate(q.Get("to")); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := s.db.ListTransactions(userID(r), filter)
	if err != nil {
		writeFault(w, err)
		return
	}
	if txs == nil {
		txs = []domain.Transaction{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
	})
}

// --- POST /api/v1/transactions ---

type transactionRequest struct {
	Type     string          `json:"type"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Note     string          `json:"note"`
	Date     string          `json:"date"` // "2006-01-02", defaults to today
}

func (s *Server) handleRecordTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	typ := domain.TransactionType(req.Type)
	if typ != domain.TransactionIncome && typ != domain.TransactionExpense {
		writeError(w, http.StatusBadRequest, "type must be income or expense")
		return
	}
	if req.Category == "" {
		writeError(w, http.StatusBadRequest, "category is required")
		return
	}
	if !req.Amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if date.IsZero() {
		date = time.Now()
	}

	t := domain.Transaction{
		ID:       uuid.New().String(),
		UserID:   userID(r),
		Type:     typ,
		Category: req.Category,
		Amount:   req.Amount,
		Note:     req.Note,
		Date:     date,
	}
	if err := s.db.InsertTransaction(t); err != nil {
		writeFault(w, err)
		return
	}

	metrics.TransactionsRecorded.WithLabelValues(string(typ)).Inc()
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"transaction": t,
	})
}

// --- DELETE /api/v1/transactions/{id} ---

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.db.DeleteTransaction(userID(r), chi.URLParam(r, "id")); err != nil {
		writeFault(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- GET /api/v1/spending/categories?from=&to= ---

func (s *Server) handleCategoryTotals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := parseDate(q.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := parseDate(q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	totals, err := s.spender.CategoryTotals(userID(r), from, to)
	if err != nil {
		writeFault(w, err)
		return
	}
	if totals == nil {
		totals = []domain.CategoryTotal{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"categories": totals,
	})
}

// ─── Budgets ────────────────────────────────────────────────────────────────

// --- GET /api/v1/budgets?month= ---

func (s *Server) handleBudgetSummaries(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		month = time.Now().UTC().Format("2006-01")
	}

	summaries, err := s.spender.BudgetSummaries(userID(r), month)
	if err != nil {
		writeFault(w, err)
		return
	}
	if summaries == nil {
		summaries = []domain.BudgetSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"budgets": summaries,
	})
}

// --- PUT /api/v1/budgets ---

type budgetRequest struct {
	Category string          `json:"category"`
	Limit    decimal.Decimal `json:"limit"`
	Month    string          `json:"month"` // defaults to current month
}

func (s *Server) handleUpsertBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Category == "" {
		writeError(w, http.StatusBadRequest, "category is required")
		return
	}
	if req.Limit.IsNegative() {
		writeError(w, http.StatusBadRequest, "limit must not be negative")
		return
	}
	if req.Month == "" {
		req.Month = time.Now().UTC().Format("2006-01")
	}
	if _, err := time.Parse("2006-01", req.Month); err != nil {
		writeError(w, http.StatusBadRequest, "month must be formatted like 2006-01")
		return
	}

	b := domain.Budget{
		ID:       uuid.New().String(),
		UserID:   userID(r),
		Category: req.Category,
		Limit:    req.Limit,
		Month:    req.Month,
	}
	if err := s.db.UpsertBudget(b); err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"budget": b,
	})
}

// --- DELETE /api/v1/budgets/{id} ---

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.db.DeleteBudget(userID(r), chi.URLParam(r, "id")); err != nil {
		writeFault(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─── Savings Goals ──────────────────────────────────────────────────────────

// goalView adds the derived progress figures to a goal.
type goalView struct {
	domain.Goal
	ProgressPercent int `json:"progress_percent"`
}

// --- GET /api/v1/goals ---

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.db.ListGoals(userID(r))
	if err != nil {
		writeFault(w, err)
		return
	}

	views := make([]goalView, 0, len(goals))
	for _, g := range goals {
		views = append(views, goalView{Goal: g, ProgressPercent: g.ProgressPercent()})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"goals": views,
	})
}

// --- POST /api/v1/goals ---

type goalRequest struct {
	Name     string          `json:"name"`
	Target   decimal.Decimal `json:"target"`
	Deadline string          `json:"deadline"` // "2006-01-02", optional
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !req.Target.IsPositive() {
		writeError(w, http.StatusBadRequest, "target must be positive")
		return
	}

	g := domain.Goal{
		ID:     uuid.New().String(),
		UserID: userID(r),
		Name:   req.Name,
		Target: req.Target,
		Saved:  decimal.Zero,
	}
	if req.Deadline != "" {
		deadline, err := parseDate(req.Deadline)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		g.Deadline = &deadline
	}

	if err := s.db.InsertGoal(g); err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"goal": g,
	})
}

// --- POST /api/v1/goals/{id}/contribute ---

type contributeRequest struct {
	Amount decimal.Decimal `json:"amount"` // negative withdraws
}

func (s *Server) handleContributeGoal(w http.ResponseWriter, r *http.Request) {
	var req contributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	uid := userID(r)
	g, err := s.db.GetGoal(uid, chi.URLParam(r, "id"))
	if err != nil {
		writeFault(w, err)
		return
	}
	if g == nil {
		writeFault(w, domain.ErrGoalNotFound)
		return
	}

	saved := g.Saved.Add(req.Amount)
	if saved.IsNegative() {
		writeFault(w, domain.Precondition(domain.ReasonContributeNegative))
		return
	}

	if err := s.db.UpdateGoalSaved(uid, g.ID, saved.String()); err != nil {
		writeFault(w, err)
		return
	}
	g.Saved = saved

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"goal": goalView{Goal: *g, ProgressPercent: g.ProgressPercent()},
	})
}

// --- DELETE /api/v1/goals/{id} ---

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.db.DeleteGoal(userID(r), chi.URLParam(r, "id")); err != nil {
		writeFault(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─── Simulation ─────────────────────────────────────────────────────────────

// --- POST /api/v1/simulate/projection ---

type projectionRequest struct {
	Principal     decimal.Decimal `json:"principal"`
	Monthly       decimal.Decimal `json:"monthly"`
	AnnualRatePct decimal.Decimal `json:"annual_rate_pct"`
	Months        int             `json:"months"`
}

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	var req projectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Months < 0 || req.Months > 1200 {
		writeError(w, http.StatusBadRequest, "months must be between 0 and 1200")
		return
	}

	value := simulate.Project(req.Principal, req.Monthly, req.AnnualRatePct, req.Months)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"projected_value": value,
	})
}

// --- POST /api/v1/simulate/tradeoff ---

type tradeOffRequest struct {
	MonthlySaving decimal.Decimal `json:"monthly_saving"`
	AnnualRatePct decimal.Decimal `json:"annual_rate_pct"`
	Months        int             `json:"months"`
}

func (s *Server) handleTradeOff(w http.ResponseWriter, r *http.Request) {
	var req tradeOffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Months < 0 || req.Months > 1200 {
		writeError(w, http.StatusBadRequest, "months must be between 0 and 1200")
		return
	}

	writeJSON(w, http.StatusOK, simulate.TradeOff(req.MonthlySaving, req.AnnualRatePct, req.Months))
}

// --- POST /api/v1/simulate/timeline ---

type timelineRequest struct {
	Principal     decimal.Decimal `json:"principal"`
	Monthly       decimal.Decimal `json:"monthly"`
	AnnualRatePct decimal.Decimal `json:"annual_rate_pct"`
	Target        decimal.Decimal `json:"target"`
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	var req timelineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	months := simulate.MonthsToTarget(req.Principal, req.Monthly, req.AnnualRatePct, req.Target)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"months":    months,
		"reachable": months >= 0,
	})
}

// ─── Bill Splitting ─────────────────────────────────────────────────────────

// --- POST /api/v1/split ---

type splitRequest struct {
	Total        decimal.Decimal `json:"total"`
	Participants int             `json:"participants,omitempty"`
	Shares       []int64         `json:"shares,omitempty"` // overrides Participants
}

func (s *Server) handleSplit(w http.ResponseWriter, r *http.Request) {
	var req splitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var parts []decimal.Decimal
	var err error
	if len(req.Shares) > 0 {
		parts, err = split.ByShares(req.Total, req.Shares)
	} else {
		parts, err = split.Even(req.Total, req.Participants)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"parts": parts,
	})
}

// parseDate parses a "2006-01-02" date, returning the zero time for "".
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}
