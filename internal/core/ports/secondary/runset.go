package secondary

import "context"

// RunSetRepository tracks which students have run (and passed) each test.
// Add operations are atomic add-to-set-and-report-whether-newly-added:
// when two reports for the same (test, student) race, exactly one caller
// observes newlyAdded. This is what keeps the numStudents counters equal
// to the set cardinality under concurrent result batches.
type RunSetRepository interface {
	// AddRan records that a student ran a test; newlyAdded is true iff
	// the student was not already a member of the set
	AddRan(ctx context.Context, assignment, name, student string) (newlyAdded bool, err error)

	// AddPassed records that a student passed a test; newlyAdded is true
	// iff the student was not already a member of the set
	AddPassed(ctx context.Context, assignment, name, student string) (newlyAdded bool, err error)

	// MembersRan returns the students that have run a test at least once
	MembersRan(ctx context.Context, assignment, name string) ([]string, error)

	// MembersPassed returns the students that have passed a test at least once
	MembersPassed(ctx context.Context, assignment, name string) ([]string, error)

	// Clear removes the run sets of the named tests
	Clear(ctx context.Context, assignment string, names ...string) error

	// ClearAssignment removes every run set of an assignment
	ClearAssignment(ctx context.Context, assignment string) error
}
