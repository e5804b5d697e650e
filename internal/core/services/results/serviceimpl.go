package results

import (
	"context"

	"github.com/esinx/student-tests/internal/core/ports/primary"
	"github.com/esinx/student-tests/internal/core/ports/secondary"
	"github.com/esinx/student-tests/internal/domain"
	"github.com/esinx/student-tests/internal/static/errs"
)

var _ IResultService = (*ResultService)(nil)

const (
	reasonUnknownTest = "Could not update the test case."
	reasonStoreError  = "Error in updating the database."
)

// ResultService implements the ResultService interface
type ResultService struct {
	testRepo secondary.TestCaseRepository
	runSets  secondary.RunSetRepository
	logger   primary.Logger
}

// NewResultService creates a new result aggregation service
func NewResultService(
	testRepo secondary.TestCaseRepository,
	runSets secondary.RunSetRepository,
	logger primary.Logger,
) *ResultService {
	return &ResultService{
		testRepo: testRepo,
		runSets:  runSets,
		logger:   logger,
	}
}

// SubmitResults applies each report in two mutations: first the
// unconditional global counters, then the set-gated distinct-student
// counters. The gate is the run-set store's atomic add, which reports
// whether the student was newly added; when duplicate reports for the
// same (test, student) pair race, exactly one of them wins the add and
// increments the distinct counter. The counter bump of step one is never
// rolled back when a later step fails; sub-steps are independently
// best-effort.
func (s *ResultService) SubmitResults(ctx context.Context, assignment, student string, reports []domain.ResultReport) (*domain.ReportReceipt, error) {
	if student == "" {
		return nil, errs.StudentIDRequired
	}

	s.logger.Info("Receiving results", "assignment", assignment, "studentId", student, "count", len(reports))

	receipt := domain.NewReportReceipt()

	for _, report := range reports {
		updated, err := s.testRepo.IncrementRunCounters(ctx, assignment, report.Name, report.Passed)
		if err != nil {
			s.logger.Error("Failed to update run counters", "name", report.Name, "error", err)
			receipt.Fail(report.Name, reasonStoreError)
			continue
		}
		if !updated {
			s.logger.Warn("Result for unknown test", "assignment", assignment, "name", report.Name)
			receipt.Fail(report.Name, reasonUnknownTest)
			continue
		}

		newlyRan, err := s.runSets.AddRan(ctx, assignment, report.Name, student)
		if err != nil {
			s.logger.Error("Failed to record run membership", "name", report.Name, "error", err)
			receipt.Fail(report.Name, reasonStoreError)
			continue
		}
		if newlyRan {
			if err := s.testRepo.IncrementStudentsRan(ctx, assignment, report.Name); err != nil {
				s.logger.Error("Failed to bump distinct-run counter", "name", report.Name, "error", err)
				receipt.Fail(report.Name, reasonStoreError)
				continue
			}
		}

		if !report.Passed {
			continue
		}

		newlyPassed, err := s.runSets.AddPassed(ctx, assignment, report.Name, student)
		if err != nil {
			s.logger.Error("Failed to record pass membership", "name", report.Name, "error", err)
			receipt.Fail(report.Name, reasonStoreError)
			continue
		}
		if newlyPassed {
			if err := s.testRepo.IncrementStudentsRanSuccessfully(ctx, assignment, report.Name); err != nil {
				s.logger.Error("Failed to bump distinct-pass counter", "name", report.Name, "error", err)
				receipt.Fail(report.Name, reasonStoreError)
			}
		}
	}

	receipt.Success = len(receipt.FailedToUpdate) == 0

	return receipt, nil
}
