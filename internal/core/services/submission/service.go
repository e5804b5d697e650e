package submission

import (
	"context"

	"github.com/esinx/student-tests/internal/domain"
)

// ISubmissionService defines the interface for test case submission
type ISubmissionService interface {
	// SubmitTests resolves a batch of candidates against the assignment's
	// current test set (create, merge or reject each one), commits the
	// accepted creates in one bulk insert, and returns the submitting
	// student's visible subset. threshold <= 0 selects the configured
	// default.
	SubmitTests(ctx context.Context, assignment, author string, threshold int64, candidates []domain.TestCaseCandidate) (*domain.SubmissionReceipt, error)
}
