// Package sheets defines the outbound port for report export.
package sheets

import (
	"context"

	"budgeteer/internal/core"
)

// ReportWriter exports a generated report to an external destination and
// returns an opaque reference to where it landed.
type ReportWriter interface {
	WriteReport(ctx context.Context, report core.Report) (ref string, err error)
}
