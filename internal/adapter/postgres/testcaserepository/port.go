// package testcaserepository contains the PostgreSQL implementation of the test store
package testcaserepository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/esinx/student-tests/internal/core/ports/primary"
	"github.com/esinx/student-tests/internal/core/ports/secondary"
	"github.com/esinx/student-tests/internal/domain"
	querybuilder "github.com/esinx/student-tests/internal/utils"
)

var _ secondary.TestCaseRepository = (*TestCaseRepository)(nil)

const testCaseColumns = `id, assignment, name, description, command, expected_status, expected_body,
	   author, is_public, visibility, is_default, created_at,
	   times_ran, times_ran_successfully, num_students_ran, num_students_ran_successfully`

// TestCaseRepository implements the TestCaseRepository interface with PostgreSQL
type TestCaseRepository struct {
	db     *sqlx.DB
	schema string
	logger primary.Logger
}

// NewTestCaseRepository creates a new PostgreSQL test case repository
func NewTestCaseRepository(db *sqlx.DB, logger primary.Logger, schema string) *TestCaseRepository {
	return &TestCaseRepository{
		db:     db,
		schema: schema,
		logger: logger,
	}
}

// EnsureSchema creates the test_cases table and its unique natural-key
// index when missing. Safe to run on every startup; the original system
// created its unique index on each submission the same way.
func (r *TestCaseRepository) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.test_cases (
			id uuid PRIMARY KEY,
			assignment text NOT NULL,
			name text NOT NULL,
			description text NOT NULL DEFAULT '',
			command text NOT NULL DEFAULT '',
			expected_status integer NOT NULL DEFAULT 0,
			expected_body text NOT NULL DEFAULT '',
			author text NOT NULL,
			is_public boolean NOT NULL DEFAULT true,
			visibility text NOT NULL DEFAULT 'limited',
			is_default boolean NOT NULL DEFAULT false,
			created_at timestamptz NOT NULL,
			times_ran bigint NOT NULL DEFAULT 0,
			times_ran_successfully bigint NOT NULL DEFAULT 0,
			num_students_ran bigint NOT NULL DEFAULT 0,
			num_students_ran_successfully bigint NOT NULL DEFAULT 0,
			UNIQUE (assignment, name)
		)`, r.schema)

	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		r.logger.Error("Failed to ensure test_cases schema", "error", err)
		return fmt.Errorf("failed to ensure test_cases schema: %w", err)
	}

	return nil
}

// GetByName retrieves a test case by its natural key
func (r *TestCaseRepository) GetByName(ctx context.Context, assignment, name string) (*domain.TestCase, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.test_cases
		WHERE assignment = $1 AND name = $2
	`, testCaseColumns, r.schema)

	row := r.db.QueryRowContext(ctx, query, assignment, name)
	testCase, err := scanTestCase(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get test case", "assignment", assignment, "name", name, "error", err)
		return nil, fmt.Errorf("failed to get test case: %w", err)
	}

	return testCase, nil
}

// InsertBatch inserts the accepted Create candidates of one submission in
// a single multi-row statement
func (r *TestCaseRepository) InsertBatch(ctx context.Context, cases []*domain.TestCase) error {
	if len(cases) == 0 {
		return nil
	}

	tbl := domain.GetTestCaseTable()
	builder := querybuilder.NewInsertBuilder(r.schema).
		Insert(
			tbl.ID,
			tbl.Assignment,
			tbl.Name,
			tbl.Description,
			tbl.Command,
			tbl.ExpectedStatus,
			tbl.ExpectedBody,
			tbl.Author,
			tbl.Public,
			tbl.Visibility,
			tbl.IsDefault,
			tbl.CreatedAt,
			tbl.TimesRan,
			tbl.TimesRanSuccessfully,
			tbl.NumStudentsRan,
			tbl.NumStudentsRanSuccessfully,
		).Into(tbl.TableName())

	for _, testCase := range cases {
		builder = builder.Values(
			testCase.ID,
			testCase.Assignment,
			testCase.Name,
			testCase.Description,
			testCase.Command,
			testCase.ExpectedStatus,
			testCase.ExpectedBody,
			testCase.Author,
			testCase.Public,
			testCase.Visibility,
			testCase.IsDefault,
			testCase.CreatedAt,
			testCase.TimesRan,
			testCase.TimesRanSuccessfully,
			testCase.NumStudentsRan,
			testCase.NumStudentsRanSuccessfully,
		)
	}

	query, args, err := builder.Build()
	if err != nil {
		return fmt.Errorf("failed to build batch insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("Failed to insert test case batch", "count", len(cases), "error", err)
		return fmt.Errorf("failed to insert test case batch: %w", err)
	}

	return nil
}

// Update replaces the mutable fields of an existing record. Identity,
// counters and created_at are deliberately absent from the SET list.
func (r *TestCaseRepository) Update(ctx context.Context, testCase *domain.TestCase) error {
	query := fmt.Sprintf(`
		UPDATE %s.test_cases
		SET description = $1,
			command = $2,
			expected_status = $3,
			expected_body = $4,
			is_public = $5,
			visibility = $6,
			is_default = $7
		WHERE assignment = $8 AND name = $9
	`, r.schema)

	result, err := r.db.ExecContext(ctx, query,
		testCase.Description,
		testCase.Command,
		testCase.ExpectedStatus,
		testCase.ExpectedBody,
		testCase.Public,
		testCase.Visibility,
		testCase.IsDefault,
		testCase.Assignment,
		testCase.Name,
	)
	if err != nil {
		r.logger.Error("Failed to update test case", "name", testCase.Name, "error", err)
		return fmt.Errorf("failed to update test case: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("Error checking rows affected", "error", err)
		return fmt.Errorf("error checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("test case not found: %s", testCase.Name)
	}

	return nil
}

// CountPublicByAuthor counts the public tests a student has contributed
func (r *TestCaseRepository) CountPublicByAuthor(ctx context.Context, assignment, author string) (int64, error) {
	query := fmt.Sprintf(`
		SELECT count(*)
		FROM %s.test_cases
		WHERE assignment = $1 AND author = $2 AND is_public = true
	`, r.schema)

	var count int64
	if err := r.db.QueryRowContext(ctx, query, assignment, author).Scan(&count); err != nil {
		r.logger.Error("Failed to count public tests", "assignment", assignment, "author", author, "error", err)
		return 0, fmt.Errorf("failed to count public tests: %w", err)
	}

	return count, nil
}

// GetVisible retrieves the union of public, own and default tests in one
// query, so a test matching several criteria appears once
func (r *TestCaseRepository) GetVisible(ctx context.Context, assignment, author string) ([]*domain.TestCase, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.test_cases
		WHERE assignment = $1 AND (is_public = true OR author = $2 OR is_default = true)
		ORDER BY created_at ASC
	`, testCaseColumns, r.schema)

	return r.queryTestCases(ctx, query, assignment, author)
}

// GetDefaults retrieves the instructor-provided default tests
func (r *TestCaseRepository) GetDefaults(ctx context.Context, assignment string) ([]*domain.TestCase, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.test_cases
		WHERE assignment = $1 AND is_default = true
		ORDER BY created_at ASC
	`, testCaseColumns, r.schema)

	return r.queryTestCases(ctx, query, assignment)
}

// GetAll retrieves every test case of an assignment
func (r *TestCaseRepository) GetAll(ctx context.Context, assignment string) ([]*domain.TestCase, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.test_cases
		WHERE assignment = $1
		ORDER BY created_at ASC
	`, testCaseColumns, r.schema)

	return r.queryTestCases(ctx, query, assignment)
}

// ListAssignments lists assignments that currently have at least one test
func (r *TestCaseRepository) ListAssignments(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT assignment
		FROM %s.test_cases
		ORDER BY assignment ASC
	`, r.schema)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list assignments", "error", err)
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	assignments := make([]string, 0)
	for rows.Next() {
		var assignment string
		if err := rows.Scan(&assignment); err != nil {
			r.logger.Error("Failed to scan assignment row", "error", err)
			return nil, fmt.Errorf("failed to scan assignment row: %w", err)
		}
		assignments = append(assignments, assignment)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating assignment rows", "error", err)
		return nil, fmt.Errorf("error iterating assignment rows: %w", err)
	}

	return assignments, nil
}

// IncrementRunCounters applies the unconditional per-report counter bump.
// The gated numStudents counters are bumped separately once the run-set
// store has confirmed a newly added member.
func (r *TestCaseRepository) IncrementRunCounters(ctx context.Context, assignment, name string, passed bool) (bool, error) {
	successIncrement := 0
	if passed {
		successIncrement = 1
	}

	query := fmt.Sprintf(`
		UPDATE %s.test_cases
		SET times_ran = times_ran + 1,
			times_ran_successfully = times_ran_successfully + $1
		WHERE assignment = $2 AND name = $3
	`, r.schema)

	result, err := r.db.ExecContext(ctx, query, successIncrement, assignment, name)
	if err != nil {
		r.logger.Error("Failed to increment run counters", "name", name, "error", err)
		return false, fmt.Errorf("failed to increment run counters: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("Error checking rows affected", "error", err)
		return false, fmt.Errorf("error checking rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// IncrementStudentsRan bumps numStudentsRan by one
func (r *TestCaseRepository) IncrementStudentsRan(ctx context.Context, assignment, name string) error {
	return r.incrementColumn(ctx, "num_students_ran", assignment, name)
}

// IncrementStudentsRanSuccessfully bumps numStudentsRanSuccessfully by one
func (r *TestCaseRepository) IncrementStudentsRanSuccessfully(ctx context.Context, assignment, name string) error {
	return r.incrementColumn(ctx, "num_students_ran_successfully", assignment, name)
}

func (r *TestCaseRepository) incrementColumn(ctx context.Context, column, assignment, name string) error {
	query := fmt.Sprintf(`
		UPDATE %s.test_cases
		SET %s = %s + 1
		WHERE assignment = $1 AND name = $2
	`, r.schema, column, column)

	if _, err := r.db.ExecContext(ctx, query, assignment, name); err != nil {
		r.logger.Error("Failed to increment counter", "column", column, "name", name, "error", err)
		return fmt.Errorf("failed to increment %s: %w", column, err)
	}

	return nil
}

// HasTests reports whether an assignment has any test set at all
func (r *TestCaseRepository) HasTests(ctx context.Context, assignment string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (SELECT 1 FROM %s.test_cases WHERE assignment = $1)
	`, r.schema)

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, assignment).Scan(&exists); err != nil {
		r.logger.Error("Failed to check assignment existence", "assignment", assignment, "error", err)
		return false, fmt.Errorf("failed to check assignment existence: %w", err)
	}

	return exists, nil
}

// DeleteAll removes every test case of an assignment
func (r *TestCaseRepository) DeleteAll(ctx context.Context, assignment string) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s.test_cases WHERE assignment = $1`, r.schema)

	result, err := r.db.ExecContext(ctx, query, assignment)
	if err != nil {
		r.logger.Error("Failed to delete tests", "assignment", assignment, "error", err)
		return 0, fmt.Errorf("failed to delete tests: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("Error checking rows affected", "error", err)
		return 0, fmt.Errorf("error checking rows affected: %w", err)
	}

	return rowsAffected, nil
}

// DeleteByName removes one test case by name
func (r *TestCaseRepository) DeleteByName(ctx context.Context, assignment, name string) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s.test_cases WHERE assignment = $1 AND name = $2`, r.schema)

	result, err := r.db.ExecContext(ctx, query, assignment, name)
	if err != nil {
		r.logger.Error("Failed to delete test case", "name", name, "error", err)
		return false, fmt.Errorf("failed to delete test case: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("Error checking rows affected", "error", err)
		return false, fmt.Errorf("error checking rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// DeleteByID removes one test case by id and returns its name so the
// caller can purge the matching run sets
func (r *TestCaseRepository) DeleteByID(ctx context.Context, assignment string, id uuid.UUID) (string, bool, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s.test_cases
		WHERE assignment = $1 AND id = $2
		RETURNING name
	`, r.schema)

	var name string
	err := r.db.QueryRowContext(ctx, query, assignment, id).Scan(&name)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		r.logger.Error("Failed to delete test case by id", "id", id, "error", err)
		return "", false, fmt.Errorf("failed to delete test case by id: %w", err)
	}

	return name, true, nil
}

func (r *TestCaseRepository) queryTestCases(ctx context.Context, query string, args ...interface{}) ([]*domain.TestCase, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query test cases", "error", err)
		return nil, fmt.Errorf("failed to query test cases: %w", err)
	}
	defer rows.Close()

	cases := make([]*domain.TestCase, 0)
	for rows.Next() {
		testCase, err := scanTestCase(rows)
		if err != nil {
			r.logger.Error("Failed to scan test case row", "error", err)
			return nil, fmt.Errorf("failed to scan test case row: %w", err)
		}
		cases = append(cases, testCase)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating test case rows", "error", err)
		return nil, fmt.Errorf("error iterating test case rows: %w", err)
	}

	return cases, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTestCase(row rowScanner) (*domain.TestCase, error) {
	var testCase domain.TestCase
	var visibility string

	err := row.Scan(
		&testCase.ID,
		&testCase.Assignment,
		&testCase.Name,
		&testCase.Description,
		&testCase.Command,
		&testCase.ExpectedStatus,
		&testCase.ExpectedBody,
		&testCase.Author,
		&testCase.Public,
		&visibility,
		&testCase.IsDefault,
		&testCase.CreatedAt,
		&testCase.TimesRan,
		&testCase.TimesRanSuccessfully,
		&testCase.NumStudentsRan,
		&testCase.NumStudentsRanSuccessfully,
	)
	if err != nil {
		return nil, err
	}

	testCase.Visibility = domain.Visibility(strings.TrimSpace(visibility))
	testCase.StudentsRan = []string{}
	testCase.StudentsRanSuccessfully = []string{}

	return &testCase, nil
}
