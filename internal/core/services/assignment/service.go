package assignment

import (
	"context"

	"github.com/esinx/student-tests/internal/domain"
)

// IAssignmentService defines the interface for assignment-level operations
type IAssignmentService interface {
	// ListAssignments lists assignments with a test set, excluding
	// internal system collections
	ListAssignments(ctx context.Context) ([]string, error)

	// GetAllTests retrieves every test case of an assignment
	GetAllTests(ctx context.Context, assignment string) ([]*domain.TestCase, error)

	// DeleteAssignment drops an assignment's whole test set; NotFound
	// when the assignment has no test set at all
	DeleteAssignment(ctx context.Context, assignment string) error

	// DeleteAllTests empties an assignment's test set
	DeleteAllTests(ctx context.Context, assignment string) (int64, error)

	// DeleteTest removes one test by name or id; name takes priority
	// when both are supplied, neither is a BadRequest
	DeleteTest(ctx context.Context, assignment, name, id string) error
}
