package http

import (
	"net/http"

	"budgeteer/internal/core"
	"budgeteer/internal/services"
)

type budgetRequest struct {
	CategoryID int64     `json:"category_id"`
	LimitCents int64     `json:"limit_cents"`
	Start      core.Date `json:"start"`
	End        core.Date `json:"end"`
}

type budgetView struct {
	ID         int64     `json:"id"`
	CategoryID int64     `json:"category_id"`
	LimitCents int64     `json:"limit_cents"`
	Start      core.Date `json:"start"`
	End        core.Date `json:"end"`
	SpentCents int64     `json:"spent_cents"`
	Percentage float64   `json:"percentage"`
}

func newBudgetView(st services.BudgetStatus) budgetView {
	return budgetView{
		ID:         st.Budget.ID,
		CategoryID: st.Budget.CategoryID,
		LimitCents: st.Budget.Limit.Cents,
		Start:      st.Budget.Start,
		End:        st.Budget.End,
		SpentCents: st.Spent.Cents,
		Percentage: st.Percentage,
	}
}

func (req budgetRequest) toCore(ownerID, id int64) core.Budget {
	return core.Budget{
		ID:         id,
		OwnerID:    ownerID,
		CategoryID: req.CategoryID,
		Limit:      core.Money{Cents: req.LimitCents},
		Start:      req.Start,
		End:        req.End,
	}
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.budgets.List(r.Context(), accountFrom(r).ID)
	if err != nil {
		failErr(w, r, err)
		return
	}
	views := make([]budgetView, 0, len(statuses))
	for _, st := range statuses {
		views = append(views, newBudgetView(st))
	}
	respond(w, http.StatusOK, views)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := s.budgets.Create(r.Context(), req.toCore(accountFrom(r).ID, 0))
	if err != nil {
		failErr(w, r, err)
		return
	}
	respond(w, http.StatusCreated, newBudgetView(services.BudgetStatus{Budget: created}))
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid budget id")
		return
	}
	var req budgetRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	account := accountFrom(r)
	updated, err := s.budgets.Update(r.Context(), req.toCore(account.ID, id))
	if err != nil {
		failErr(w, r, err)
		return
	}
	status, err := s.budgets.Get(r.Context(), account.ID, updated.ID)
	if err != nil {
		failErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, newBudgetView(status))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid budget id")
		return
	}
	if err := s.budgets.Delete(r.Context(), accountFrom(r).ID, id); err != nil {
		failErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, nil)
}
