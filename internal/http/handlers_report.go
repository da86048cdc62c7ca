package http

import (
	"net/http"
	"time"

	"budgeteer/internal/core"
)

type reportView struct {
	Period       string           `json:"period"`
	Start        core.Date        `json:"start"`
	End          core.Date        `json:"end"`
	IncomeCents  int64            `json:"income_cents"`
	ExpenseCents int64            `json:"expense_cents"`
	SavingsCents int64            `json:"savings_cents"`
	ByCategory   []categoryAmount `json:"by_category"`
	Ref          string           `json:"ref,omitempty"`
}

type categoryAmount struct {
	Name        string `json:"name"`
	AmountCents int64  `json:"amount_cents"`
}

func newReportView(report core.Report, ref string) reportView {
	view := reportView{
		Period:       string(report.Period),
		Start:        report.Start,
		End:          report.End,
		IncomeCents:  report.Income.Cents,
		ExpenseCents: report.Expenses.Cents,
		SavingsCents: report.Savings.Cents,
		Ref:          ref,
	}
	for _, entry := range report.ByCategory {
		view.ByCategory = append(view.ByCategory, categoryAmount{
			Name:        entry.Name,
			AmountCents: entry.Amount.Cents,
		})
	}
	return view
}

// reportParams reads period, start and end from the query string. start and
// end are only required for the custom period; the service rejects their
// absence.
func reportParams(r *http.Request) (core.Period, core.Date, core.Date) {
	q := r.URL.Query()
	period := core.Period(q.Get("period"))
	if period == "" {
		period = core.PeriodMonthly
	}
	var start, end core.Date
	if v := q.Get("start"); v != "" {
		if parsed, err := core.ParseDate(v); err == nil {
			start = parsed
		}
	}
	if v := q.Get("end"); v != "" {
		if parsed, err := core.ParseDate(v); err == nil {
			end = parsed
		}
	}
	return period, start, end
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	period, start, end := reportParams(r)
	report, err := s.reports.Generate(r.Context(), accountFrom(r).ID, period, start, end)
	if err != nil {
		failErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, newReportView(report, ""))
}

func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	period, start, end := reportParams(r)
	report, ref, err := s.reports.Export(r.Context(), accountFrom(r).ID, period, start, end)
	if err != nil {
		failErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, newReportView(report, ref))
}

type notificationView struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	SubjectID int64     `json:"subject_id"`
	Threshold int       `json:"threshold"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	records, err := s.notifier.History(r.Context(), accountFrom(r).ID)
	if err != nil {
		failErr(w, r, err)
		return
	}
	views := make([]notificationView, 0, len(records))
	for _, n := range records {
		views = append(views, notificationView{
			ID:        n.ID,
			Kind:      n.Kind,
			SubjectID: n.SubjectID,
			Threshold: n.Threshold,
			Message:   n.Message,
			CreatedAt: n.CreatedAt,
		})
	}
	respond(w, http.StatusOK, views)
}
