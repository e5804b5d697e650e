package submission

import (
	"context"
	"fmt"

	"github.com/esinx/student-tests/internal/config"
	"github.com/esinx/student-tests/internal/core/ports/primary"
	"github.com/esinx/student-tests/internal/core/ports/secondary"
	"github.com/esinx/student-tests/internal/domain"
	"github.com/esinx/student-tests/internal/static/errs"
)

var _ ISubmissionService = (*SubmissionService)(nil)

const rejectReasonDifferentAuthor = "Test case already exists by a different author!"

// SubmissionService implements the SubmissionService interface
type SubmissionService struct {
	testRepo secondary.TestCaseRepository
	runSets  secondary.RunSetRepository
	logger   primary.Logger
	cfg      *config.SubmissionConfig
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(
	testRepo secondary.TestCaseRepository,
	runSets secondary.RunSetRepository,
	logger primary.Logger,
	cfg *config.SubmissionConfig,
) *SubmissionService {
	return &SubmissionService{
		testRepo: testRepo,
		runSets:  runSets,
		logger:   logger,
		cfg:      cfg,
	}
}

// SubmitTests processes one submission batch sequentially. Later
// candidates observe the effects of earlier ones through the pending
// overlay, so duplicate names within one batch resolve deterministically
// instead of relying on store read-after-write visibility.
//
// Merges are applied individually as they are resolved; accepted creates
// are committed together at the end. When that trailing bulk insert
// fails, the already-applied merges persist and the receipt reports
// success=false. That asymmetry is inherited from the original system
// and is kept on purpose.
func (s *SubmissionService) SubmitTests(ctx context.Context, assignment, author string, threshold int64, candidates []domain.TestCaseCandidate) (*domain.SubmissionReceipt, error) {
	if author == "" {
		return nil, errs.StudentIDRequired
	}
	if threshold <= 0 {
		threshold = s.cfg.DefaultPublicThreshold
	}

	s.logger.Info("Receiving tests", "assignment", assignment, "studentId", author, "count", len(candidates))

	receipt := domain.NewSubmissionReceipt()

	pending := make([]*domain.TestCase, 0, len(candidates))
	// overlay of this batch's outcomes, consulted before the store
	resolved := make(map[string]*domain.TestCase, len(candidates))

	for _, candidate := range candidates {
		if prior, ok := resolved[candidate.Name]; ok {
			if prior.Author == author {
				prior.ApplyCandidate(candidate)
				// a pending create is merged in place and committed with
				// the batch; a store record needs its own update
				if !isPending(pending, prior) {
					if err := s.testRepo.Update(ctx, prior); err != nil {
						s.logger.Error("Failed to merge test case", "name", candidate.Name, "error", err)
						return receipt, fmt.Errorf("failed to merge test case %q: %w", candidate.Name, err)
					}
				}
			} else {
				receipt.Reject(candidate.Name, rejectReasonDifferentAuthor)
			}
			continue
		}

		existing, err := s.testRepo.GetByName(ctx, assignment, candidate.Name)
		if err != nil {
			return receipt, fmt.Errorf("failed to resolve candidate %q: %w", candidate.Name, err)
		}

		switch {
		case existing == nil:
			testCase := domain.NewTestCase(assignment, candidate, author)
			pending = append(pending, testCase)
			resolved[candidate.Name] = testCase
			s.logger.Debug("Test queued for creation", "name", candidate.Name)

		case existing.Author == author:
			existing.ApplyCandidate(candidate)
			if err := s.testRepo.Update(ctx, existing); err != nil {
				s.logger.Error("Failed to merge test case", "name", candidate.Name, "error", err)
				return receipt, fmt.Errorf("failed to merge test case %q: %w", candidate.Name, err)
			}
			resolved[candidate.Name] = existing
			s.logger.Info("Test updated", "name", candidate.Name)

		default:
			s.logger.Info("Test already exists by a different author", "name", candidate.Name)
			receipt.Reject(candidate.Name, rejectReasonDifferentAuthor)
		}
	}

	if len(pending) > 0 {
		// a re-created name must not inherit the dedup state of a
		// deleted predecessor
		names := make([]string, len(pending))
		for i, testCase := range pending {
			names[i] = testCase.Name
		}
		if err := s.runSets.Clear(ctx, assignment, names...); err != nil {
			return receipt, fmt.Errorf("failed to reset run sets: %w", err)
		}

		if err := s.testRepo.InsertBatch(ctx, pending); err != nil {
			s.logger.Error("Failed to upload tests", "assignment", assignment, "error", err)
			return receipt, fmt.Errorf("failed to upload tests: %w", err)
		}
	}

	receipt.Success = true

	tests, err := s.visibleTests(ctx, assignment, author, threshold)
	if err != nil {
		receipt.Success = false
		return receipt, err
	}
	receipt.Tests = tests

	return receipt, nil
}

func isPending(pending []*domain.TestCase, testCase *domain.TestCase) bool {
	for _, p := range pending {
		if p == testCase {
			return true
		}
	}
	return false
}
