package http

import (
	"io"
	"net/http"
	"strings"

	"budgeteer/internal/core"
)

type transactionRequest struct {
	CategoryID  int64     `json:"category_id"`
	Date        core.Date `json:"date"`
	Description string    `json:"description"`
	AmountCents int64     `json:"amount_cents"`
	Type        string    `json:"type"`
	Tag         string    `json:"tag,omitempty"`
	GoalID      *int64    `json:"goal_id,omitempty"`
}

type transactionView struct {
	ID          int64     `json:"id"`
	CategoryID  int64     `json:"category_id"`
	Date        core.Date `json:"date"`
	Description string    `json:"description"`
	AmountCents int64     `json:"amount_cents"`
	Type        string    `json:"type"`
	Tag         string    `json:"tag,omitempty"`
	GoalID      *int64    `json:"goal_id,omitempty"`
}

func newTransactionView(t core.Transaction) transactionView {
	return transactionView{
		ID:          t.ID,
		CategoryID:  t.CategoryID,
		Date:        t.Date,
		Description: t.Description,
		AmountCents: t.Amount.Cents,
		Type:        string(t.Type),
		Tag:         t.Tag,
		GoalID:      t.GoalID,
	}
}

func (req transactionRequest) toCore(ownerID, id int64) core.Transaction {
	return core.Transaction{
		ID:          id,
		OwnerID:     ownerID,
		CategoryID:  req.CategoryID,
		Date:        req.Date,
		Description: req.Description,
		Amount:      core.Money{Cents: req.AmountCents},
		Type:        core.TransactionType(req.Type),
		Tag:         req.Tag,
		GoalID:      req.GoalID,
	}
}

// handleListTransactions returns everything, or an inclusive date slice when
// both start and end query parameters are given.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	account := accountFrom(r)

	var (
		txns []core.Transaction
		err  error
	)
	startParam, endParam := r.URL.Query().Get("start"), r.URL.Query().Get("end")
	if startParam != "" || endParam != "" {
		var start, end core.Date
		if start, err = core.ParseDate(startParam); err == nil {
			end, err = core.ParseDate(endParam)
		}
		if err != nil {
			fail(w, http.StatusBadRequest, "start and end must both be YYYY-MM-DD")
			return
		}
		txns, err = s.txns.ListRange(r.Context(), account.ID, start, end)
	} else {
		txns, err = s.txns.List(r.Context(), account.ID)
	}
	if err != nil {
		failErr(w, r, err)
		return
	}

	views := make([]transactionView, 0, len(txns))
	for _, t := range txns {
		views = append(views, newTransactionView(t))
	}
	respond(w, http.StatusOK, views)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := s.txns.Create(r.Context(), req.toCore(accountFrom(r).ID, 0))
	if err != nil {
		failErr(w, r, err)
		return
	}
	respond(w, http.StatusCreated, newTransactionView(created))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid transaction id")
		return
	}
	var req transactionRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	updated, err := s.txns.Update(r.Context(), req.toCore(accountFrom(r).ID, id))
	if err != nil {
		failErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, newTransactionView(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid transaction id")
		return
	}
	if err := s.txns.Delete(r.Context(), accountFrom(r).ID, id); err != nil {
		failErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, nil)
}

type importView struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors,omitempty"`
}

// handleImportCSV accepts either a multipart upload under "file" or a raw CSV
// body.
func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	var reader io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			fail(w, http.StatusBadRequest, "missing file upload")
			return
		}
		defer file.Close()
		reader = file
	}

	result, err := s.txns.ImportCSV(r.Context(), accountFrom(r).ID, reader, nil)
	if err != nil {
		failErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, importView{Imported: result.Imported, Errors: result.Errors})
}

type categorizeRequest struct {
	Description string `json:"description"`
	FallbackID  int64  `json:"fallback_category_id"`
}

func (s *Server) handleCategorize(w http.ResponseWriter, r *http.Request) {
	var req categorizeRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	categoryID, err := s.txns.Categorize(r.Context(), accountFrom(r).ID, req.Description, req.FallbackID)
	if err != nil {
		failErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]int64{"category_id": categoryID})
}
