package assignment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/esinx/student-tests/internal/core/ports/primary"
	"github.com/esinx/student-tests/internal/core/ports/secondary"
	"github.com/esinx/student-tests/internal/domain"
	"github.com/esinx/student-tests/internal/static/errs"
)

var _ IAssignmentService = (*AssignmentService)(nil)

// systemPrefix marks internal collections that listing must never expose
const systemPrefix = "system."

// AssignmentService implements the AssignmentService interface
type AssignmentService struct {
	testRepo secondary.TestCaseRepository
	runSets  secondary.RunSetRepository
	logger   primary.Logger
}

// NewAssignmentService creates a new assignment lifecycle service
func NewAssignmentService(
	testRepo secondary.TestCaseRepository,
	runSets secondary.RunSetRepository,
	logger primary.Logger,
) *AssignmentService {
	return &AssignmentService{
		testRepo: testRepo,
		runSets:  runSets,
		logger:   logger,
	}
}

// ListAssignments lists assignments with a test set
func (s *AssignmentService) ListAssignments(ctx context.Context) ([]string, error) {
	assignments, err := s.testRepo.ListAssignments(ctx)
	if err != nil {
		s.logger.Error("Failed to list assignments", "error", err)
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	filtered := make([]string, 0, len(assignments))
	for _, name := range assignments {
		if strings.HasPrefix(name, systemPrefix) {
			continue
		}
		filtered = append(filtered, name)
	}

	return filtered, nil
}

// GetAllTests retrieves every test case of an assignment
func (s *AssignmentService) GetAllTests(ctx context.Context, assignment string) ([]*domain.TestCase, error) {
	tests, err := s.testRepo.GetAll(ctx, assignment)
	if err != nil {
		s.logger.Error("Failed to get tests", "assignment", assignment, "error", err)
		return nil, fmt.Errorf("failed to get tests: %w", err)
	}

	return tests, nil
}

// DeleteAssignment drops an assignment's whole test set
func (s *AssignmentService) DeleteAssignment(ctx context.Context, assignment string) error {
	exists, err := s.testRepo.HasTests(ctx, assignment)
	if err != nil {
		return fmt.Errorf("failed to check assignment: %w", err)
	}
	if !exists {
		return errs.AssignmentNotFound
	}

	if _, err := s.testRepo.DeleteAll(ctx, assignment); err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	if err := s.runSets.ClearAssignment(ctx, assignment); err != nil {
		return fmt.Errorf("failed to clear run sets: %w", err)
	}

	s.logger.Info("Assignment collection deleted", "assignment", assignment)

	return nil
}

// DeleteAllTests empties an assignment's test set; deleting an already
// empty set is not an error
func (s *AssignmentService) DeleteAllTests(ctx context.Context, assignment string) (int64, error) {
	deleted, err := s.testRepo.DeleteAll(ctx, assignment)
	if err != nil {
		return 0, fmt.Errorf("failed to delete tests: %w", err)
	}
	if err := s.runSets.ClearAssignment(ctx, assignment); err != nil {
		return deleted, fmt.Errorf("failed to clear run sets: %w", err)
	}

	s.logger.Info("Deleted all tests", "assignment", assignment, "count", deleted)

	return deleted, nil
}

// DeleteTest removes one test by name or id, name taking priority
func (s *AssignmentService) DeleteTest(ctx context.Context, assignment, name, id string) error {
	switch {
	case name != "":
		found, err := s.testRepo.DeleteByName(ctx, assignment, name)
		if err != nil {
			return fmt.Errorf("failed to delete test: %w", err)
		}
		if !found {
			return errs.TestNotFound
		}

	case id != "":
		testID, err := uuid.Parse(id)
		if err != nil {
			return fmt.Errorf("%w: invalid test id %q", errs.BadRequest, id)
		}
		deletedName, found, err := s.testRepo.DeleteByID(ctx, assignment, testID)
		if err != nil {
			return fmt.Errorf("failed to delete test: %w", err)
		}
		if !found {
			return errs.TestNotFound
		}
		name = deletedName

	default:
		return errs.TestSelectorMissing
	}

	if err := s.runSets.Clear(ctx, assignment, name); err != nil {
		return fmt.Errorf("failed to clear run sets: %w", err)
	}

	s.logger.Info("Test deleted", "assignment", assignment, "name", name)

	return nil
}
