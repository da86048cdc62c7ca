package services

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"budgeteer/internal/core"
	"budgeteer/internal/ingest"
	"budgeteer/internal/storage"
)

// TransactionService records transactions and drives the downstream engines:
// budget alert evaluation for expenses, goal contributions for linked
// transactions, and report cache invalidation.
type TransactionService struct {
	db      *sql.DB
	budgets *BudgetService
	goals   *GoalService
	reports *ReportService
}

func NewTransactionService(db *sql.DB, budgets *BudgetService, goals *GoalService, reports *ReportService) *TransactionService {
	return &TransactionService{db: db, budgets: budgets, goals: goals, reports: reports}
}

// ImportResult summarizes one CSV ingestion run.
type ImportResult struct {
	Imported int
	Errors   []string
}

func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.checkCategory(ctx, t); err != nil {
		return core.Transaction{}, err
	}

	created, err := storage.NewTransactionRepo(s.db).Create(ctx, t)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := s.afterWrite(ctx, created, true); err != nil {
		return core.Transaction{}, err
	}
	return created, nil
}

func (s *TransactionService) Get(ctx context.Context, ownerID, id int64) (core.Transaction, error) {
	return storage.NewTransactionRepo(s.db).Get(ctx, id, ownerID)
}

func (s *TransactionService) List(ctx context.Context, ownerID int64) ([]core.Transaction, error) {
	return storage.NewTransactionRepo(s.db).ListAll(ctx, ownerID)
}

func (s *TransactionService) ListRange(ctx context.Context, ownerID int64, start, end core.Date) ([]core.Transaction, error) {
	return storage.NewTransactionRepo(s.db).ListRange(ctx, ownerID, start, end)
}

func (s *TransactionService) Update(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.checkCategory(ctx, t); err != nil {
		return core.Transaction{}, err
	}
	if err := storage.NewTransactionRepo(s.db).Update(ctx, t); err != nil {
		return core.Transaction{}, err
	}
	// Goal progress is not replayed on edits; corrections go through the
	// goal update endpoint.
	if err := s.afterWrite(ctx, t, false); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func (s *TransactionService) Delete(ctx context.Context, ownerID, id int64) error {
	if err := storage.NewTransactionRepo(s.db).Delete(ctx, id, ownerID); err != nil {
		return err
	}
	s.reports.Invalidate(ownerID)
	return nil
}

// Categorize resolves a category for a description using the rules visible to
// the owner. fallback is returned when nothing matches.
func (s *TransactionService) Categorize(ctx context.Context, ownerID int64, description string, fallback int64) (int64, error) {
	rules, err := storage.NewRuleRepo(s.db).ListVisible(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	return core.ResolveCategory(description, fallback, rules), nil
}

// ImportCSV reads a transaction export, maps its headers to the canonical
// fields, and creates one transaction per clean row. Rows that fail to parse
// or resolve are reported by number and skipped; the rest still import.
// mapping overrides the automatic header detection when non-nil.
func (s *TransactionService) ImportCSV(ctx context.Context, ownerID int64, r io.Reader, mapping map[string]string) (ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return ImportResult{}, fmt.Errorf("read csv header: %w", err)
	}
	if mapping == nil {
		mapping = ingest.SuggestMapping(header)
	}
	if err := ingest.ValidateMapping(mapping); err != nil {
		return ImportResult{}, err
	}

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ImportResult{}, fmt.Errorf("read csv row: %w", err)
		}
		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			}
		}
		rows = append(rows, row)
	}

	drafts, rowErrors := ingest.ParseRows(rows, mapping)
	result := ImportResult{Errors: rowErrors}

	for _, draft := range drafts {
		t, err := s.draftToTransaction(ctx, ownerID, draft)
		if err == nil {
			_, err = s.Create(ctx, t)
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %s", draft.Row, err))
			continue
		}
		result.Imported++
	}

	slog.InfoContext(ctx, "CSV import finished",
		"account_id", ownerID, "imported", result.Imported, "failed", len(result.Errors))
	return result, nil
}

// draftToTransaction resolves the draft's category name to an id, creating an
// owned category on first sight.
func (s *TransactionService) draftToTransaction(ctx context.Context, ownerID int64, draft ingest.Draft) (core.Transaction, error) {
	categories := storage.NewCategoryRepo(s.db)

	category, err := categories.GetByName(ctx, draft.CategoryName, ownerID)
	if errors.Is(err, storage.ErrNotFound) {
		category, err = categories.Create(ctx, core.Category{
			Name:    draft.CategoryName,
			Type:    draft.Type,
			OwnerID: &ownerID,
		})
	}
	if err != nil {
		return core.Transaction{}, err
	}

	return core.Transaction{
		OwnerID:     ownerID,
		CategoryID:  category.ID,
		Date:        draft.Date,
		Description: draft.Description,
		Amount:      draft.Amount,
		Type:        draft.Type,
		Tag:         draft.Tag,
	}, nil
}

// checkCategory verifies the category is visible to the owner and matches the
// transaction type.
func (s *TransactionService) checkCategory(ctx context.Context, t core.Transaction) error {
	category, err := storage.NewCategoryRepo(s.db).GetByID(ctx, t.CategoryID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrCategoryNotFound
	}
	if err != nil {
		return err
	}
	if !visibleTo(category, t.OwnerID) {
		return ErrCategoryNotFound
	}
	if category.Type != t.Type {
		return ErrTypeMismatch
	}
	return nil
}

// afterWrite runs the downstream engines once the transaction is stored.
func (s *TransactionService) afterWrite(ctx context.Context, t core.Transaction, contribute bool) error {
	s.reports.Invalidate(t.OwnerID)

	if t.Type == core.TypeExpense {
		budgets, err := storage.NewBudgetRepo(s.db).ListForCategory(ctx, t.OwnerID, t.CategoryID)
		if err != nil {
			return err
		}
		for _, b := range budgets {
			if !core.PeriodsOverlap(b.Start, b.End, t.Date, t.Date) {
				continue
			}
			if err := s.budgets.CheckAlerts(ctx, b); err != nil {
				return err
			}
		}
	}

	if contribute && t.GoalID != nil {
		if _, err := s.goals.Contribute(ctx, t.OwnerID, *t.GoalID, t.Amount); err != nil {
			return err
		}
	}
	return nil
}
