package http

import (
	"net/http"

	"budgeteer/internal/core"
)

type categoryRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	ParentID *int64 `json:"parent_id,omitempty"`
}

type categoryView struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	ParentID *int64 `json:"parent_id,omitempty"`
	Shared   bool   `json:"shared"`
}

func newCategoryView(c core.Category) categoryView {
	return categoryView{
		ID:       c.ID,
		Name:     c.Name,
		Type:     string(c.Type),
		ParentID: c.ParentID,
		Shared:   c.Shared(),
	}
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.categories.List(r.Context(), accountFrom(r).ID)
	if err != nil {
		failErr(w, r, err)
		return
	}
	views := make([]categoryView, 0, len(cats))
	for _, c := range cats {
		views = append(views, newCategoryView(c))
	}
	respond(w, http.StatusOK, views)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := s.categories.Create(r.Context(), accountFrom(r).ID, req.Name, core.TransactionType(req.Type), req.ParentID)
	if err != nil {
		failErr(w, r, err)
		return
	}
	respond(w, http.StatusCreated, newCategoryView(created))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid category id")
		return
	}
	var req categoryRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	updated, err := s.categories.Update(r.Context(), accountFrom(r).ID, id, req.Name, req.ParentID)
	if err != nil {
		failErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, newCategoryView(updated))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid category id")
		return
	}
	if err := s.categories.Delete(r.Context(), accountFrom(r).ID, id); err != nil {
		failErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, nil)
}

type ruleRequest struct {
	Keyword    string `json:"keyword"`
	CategoryID int64  `json:"category_id"`
}

type ruleView struct {
	ID         int64  `json:"id"`
	Keyword    string `json:"keyword"`
	CategoryID int64  `json:"category_id"`
	Shared     bool   `json:"shared"`
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.rules.List(r.Context(), accountFrom(r).ID)
	if err != nil {
		failErr(w, r, err)
		return
	}
	views := make([]ruleView, 0, len(rules))
	for _, rule := range rules {
		views = append(views, ruleView{
			ID:         rule.ID,
			Keyword:    rule.Keyword,
			CategoryID: rule.CategoryID,
			Shared:     rule.OwnerID == nil,
		})
	}
	respond(w, http.StatusOK, views)
}

func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := s.rules.Create(r.Context(), accountFrom(r).ID, req.Keyword, req.CategoryID)
	if err != nil {
		failErr(w, r, err)
		return
	}
	respond(w, http.StatusCreated, ruleView{
		ID:         created.ID,
		Keyword:    created.Keyword,
		CategoryID: created.CategoryID,
	})
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid rule id")
		return
	}
	if err := s.rules.Delete(r.Context(), accountFrom(r).ID, id); err != nil {
		failErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, nil)
}
