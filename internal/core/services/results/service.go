package results

import (
	"context"

	"github.com/esinx/student-tests/internal/domain"
)

// IResultService defines the interface for applying run-result batches
type IResultService interface {
	// SubmitResults applies a batch of result reports for one student.
	// Reports are processed independently: a report that cannot be
	// applied lands in the receipt's failure list and the batch carries
	// on. The receipt succeeds overall iff the failure list is empty.
	SubmitResults(ctx context.Context, assignment, student string, reports []domain.ResultReport) (*domain.ReportReceipt, error)
}
