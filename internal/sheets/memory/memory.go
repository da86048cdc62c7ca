// Package memory is an in-process ReportWriter used in tests and when no
// spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"budgeteer/internal/core"
	ports "budgeteer/internal/sheets"
)

type Store struct {
	mu      sync.Mutex
	reports []core.Report
}

var _ ports.ReportWriter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// WriteReport stores the report and returns a synthetic reference.
func (s *Store) WriteReport(_ context.Context, report core.Report) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, report)
	return fmt.Sprintf("mem:%d", len(s.reports)), nil
}

// Reports returns a copy of everything written so far.
func (s *Store) Reports() []core.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Report(nil), s.reports...)
}
