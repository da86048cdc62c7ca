package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"budgeteer/internal/cache"
	"budgeteer/internal/core"
	"budgeteer/internal/sheets"
	"budgeteer/internal/storage"
)

// ReportService aggregates transactions into period reports and exports them.
// Reports are cached per owner and period; any transaction write bumps the
// owner's generation counter, which orphans every cached report for that
// owner.
type ReportService struct {
	db     *sql.DB
	cache  *cache.LRUCache[core.Report]
	writer sheets.ReportWriter
	now    func() time.Time

	mu          sync.Mutex
	generations map[int64]uint64
}

func NewReportService(db *sql.DB, reportCache *cache.LRUCache[core.Report], writer sheets.ReportWriter) *ReportService {
	return &ReportService{
		db:          db,
		cache:       reportCache,
		writer:      writer,
		now:         time.Now,
		generations: make(map[int64]uint64),
	}
}

// Generate builds the report for a period. customStart and customEnd are only
// consulted for the custom period.
func (s *ReportService) Generate(ctx context.Context, ownerID int64, period core.Period, customStart, customEnd core.Date) (core.Report, error) {
	start, end, err := core.PeriodRange(period, core.DateOf(s.now()), customStart, customEnd)
	if err != nil {
		return core.Report{}, err
	}

	key := s.cacheKey(ownerID, period, start, end)
	if s.cache != nil {
		if report, ok := s.cache.Get(key); ok {
			return report, nil
		}
	}

	txns, err := storage.NewTransactionRepo(s.db).ListRange(ctx, ownerID, start, end)
	if err != nil {
		return core.Report{}, err
	}
	categories, err := storage.NewCategoryRepo(s.db).ListVisible(ctx, ownerID)
	if err != nil {
		return core.Report{}, err
	}
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	report := core.BuildReport(period, start, end, txns, func(id int64) string {
		return names[id]
	})
	if s.cache != nil {
		s.cache.Set(key, report)
	}
	return report, nil
}

// Export generates the report and hands it to the configured writer,
// returning where it landed.
func (s *ReportService) Export(ctx context.Context, ownerID int64, period core.Period, customStart, customEnd core.Date) (core.Report, string, error) {
	report, err := s.Generate(ctx, ownerID, period, customStart, customEnd)
	if err != nil {
		return core.Report{}, "", err
	}
	if s.writer == nil {
		return core.Report{}, "", fmt.Errorf("no report destination configured")
	}
	ref, err := s.writer.WriteReport(ctx, report)
	if err != nil {
		return core.Report{}, "", fmt.Errorf("export report: %w", err)
	}
	slog.InfoContext(ctx, "Report exported", "account_id", ownerID, "period", period, "ref", ref)
	return report, ref, nil
}

// Invalidate orphans every cached report for the owner.
func (s *ReportService) Invalidate(ownerID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[ownerID]++
}

// cacheKey embeds the owner's generation counter so stale entries become
// unreachable instead of needing a scan-and-delete.
func (s *ReportService) cacheKey(ownerID int64, period core.Period, start, end core.Date) string {
	s.mu.Lock()
	gen := s.generations[ownerID]
	s.mu.Unlock()
	return fmt.Sprintf("%d:%d:%s:%s:%s", ownerID, gen, period, start, end)
}
