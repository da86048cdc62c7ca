package http

import (
	"net/http"

	"budgeteer/internal/core"
)

type goalRequest struct {
	Name             string    `json:"name"`
	Kind             string    `json:"kind"`
	TargetCents      int64     `json:"target_cents"`
	TargetDate       core.Date `json:"target_date"`
	CurrentCents     int64     `json:"current_cents"`
	LinkedCategoryID *int64    `json:"linked_category_id,omitempty"`
	Rank             *int      `json:"rank,omitempty"`
}

type goalView struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Kind             string    `json:"kind"`
	TargetCents      int64     `json:"target_cents"`
	TargetDate       core.Date `json:"target_date"`
	CurrentCents     int64     `json:"current_cents"`
	Progress         float64   `json:"progress"`
	Status           string    `json:"status"`
	LinkedCategoryID *int64    `json:"linked_category_id,omitempty"`
	Rank             *int      `json:"rank,omitempty"`
}

func newGoalView(g core.Goal) goalView {
	return goalView{
		ID:               g.ID,
		Name:             g.Name,
		Kind:             string(g.Kind),
		TargetCents:      g.Target.Cents,
		TargetDate:       g.TargetDate,
		CurrentCents:     g.Current.Cents,
		Progress:         g.Progress,
		Status:           string(g.Status),
		LinkedCategoryID: g.LinkedCategoryID,
		Rank:             g.Rank,
	}
}

func (req goalRequest) toCore(ownerID, id int64) core.Goal {
	return core.Goal{
		ID:               id,
		OwnerID:          ownerID,
		Name:             req.Name,
		Kind:             core.GoalKind(req.Kind),
		Target:           core.Money{Cents: req.TargetCents},
		TargetDate:       req.TargetDate,
		Current:          core.Money{Cents: req.CurrentCents},
		LinkedCategoryID: req.LinkedCategoryID,
		Rank:             req.Rank,
	}
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.goals.List(r.Context(), accountFrom(r).ID)
	if err != nil {
		failErr(w, r, err)
		return
	}
	views := make([]goalView, 0, len(goals))
	for _, g := range goals {
		views = append(views, newGoalView(g))
	}
	respond(w, http.StatusOK, views)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := s.goals.Create(r.Context(), req.toCore(accountFrom(r).ID, 0))
	if err != nil {
		failErr(w, r, err)
		return
	}
	respond(w, http.StatusCreated, newGoalView(created))
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid goal id")
		return
	}
	var req goalRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	updated, err := s.goals.Update(r.Context(), req.toCore(accountFrom(r).ID, id))
	if err != nil {
		failErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, newGoalView(updated))
}

type rankRequest struct {
	Rank *int `json:"rank"`
}

func (s *Server) handleRankGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid goal id")
		return
	}
	var req rankRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ranked, err := s.goals.Rank(r.Context(), accountFrom(r).ID, id, req.Rank)
	if err != nil {
		failErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, newGoalView(ranked))
}

type contributionRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid goal id")
		return
	}
	var req contributionRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	goal, err := s.goals.Contribute(r.Context(), accountFrom(r).ID, id, core.Money{Cents: req.AmountCents})
	if err != nil {
		failErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, newGoalView(goal))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid goal id")
		return
	}
	if err := s.goals.Delete(r.Context(), accountFrom(r).ID, id); err != nil {
		failErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, nil)
}
