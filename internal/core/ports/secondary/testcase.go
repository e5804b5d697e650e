package secondary

import (
	"context"

	"github.com/google/uuid"

	"github.com/esinx/student-tests/internal/domain"
)

// TestCaseRepository is the persistent test store, one logical test set
// per assignment. Name lookups return nil, nil when no record exists.
type TestCaseRepository interface {
	// EnsureSchema creates the backing table and its unique
	// (assignment, name) index if they do not exist yet
	EnsureSchema(ctx context.Context) error

	// GetByName retrieves one test case by its natural key
	GetByName(ctx context.Context, assignment, name string) (*domain.TestCase, error)

	// InsertBatch inserts a batch of normalized test cases in one statement
	InsertBatch(ctx context.Context, cases []*domain.TestCase) error

	// Update replaces the mutable fields of an existing record, keyed by
	// (assignment, name); counters and creation time are not touched
	Update(ctx context.Context, testCase *domain.TestCase) error

	// CountPublicByAuthor counts the public tests a student has
	// contributed to an assignment
	CountPublicByAuthor(ctx context.Context, assignment, author string) (int64, error)

	// GetVisible retrieves the union of public, own and default tests
	GetVisible(ctx context.Context, assignment, author string) ([]*domain.TestCase, error)

	// GetDefaults retrieves the instructor-provided default tests only
	GetDefaults(ctx context.Context, assignment string) ([]*domain.TestCase, error)

	// GetAll retrieves every test case of an assignment
	GetAll(ctx context.Context, assignment string) ([]*domain.TestCase, error)

	// ListAssignments lists the assignments that currently have a test set
	ListAssignments(ctx context.Context) ([]string, error)

	// IncrementRunCounters bumps timesRan (and timesRanSuccessfully when
	// passed) for one test; reports false when no such test exists
	IncrementRunCounters(ctx context.Context, assignment, name string, passed bool) (bool, error)

	// IncrementStudentsRan bumps numStudentsRan by one
	IncrementStudentsRan(ctx context.Context, assignment, name string) error

	// IncrementStudentsRanSuccessfully bumps numStudentsRanSuccessfully by one
	IncrementStudentsRanSuccessfully(ctx context.Context, assignment, name string) error

	// HasTests reports whether an assignment has any test set at all
	HasTests(ctx context.Context, assignment string) (bool, error)

	// DeleteAll removes every test case of an assignment and returns how
	// many were removed
	DeleteAll(ctx context.Context, assignment string) (int64, error)

	// DeleteByName removes one test case by name; reports false when no
	// matching record exists
	DeleteByName(ctx context.Context, assignment, name string) (bool, error)

	// DeleteByID removes one test case by id and returns its name so the
	// caller can purge the matching run sets; found is false when no
	// matching record exists
	DeleteByID(ctx context.Context, assignment string, id uuid.UUID) (name string, found bool, err error)
}
