package submission

import (
	"context"
	"fmt"

	"github.com/esinx/student-tests/internal/domain"
)

// visibleTests computes the submitting student's visible subset. Students
// who have contributed at least threshold public tests see the union of
// public, own and default tests; everyone else sees the instructor
// defaults only. The union is a single query, so a test matching several
// criteria appears once.
func (s *SubmissionService) visibleTests(ctx context.Context, assignment, author string, threshold int64) ([]*domain.TestCase, error) {
	count, err := s.testRepo.CountPublicByAuthor(ctx, assignment, author)
	if err != nil {
		return nil, fmt.Errorf("failed to count public contributions: %w", err)
	}

	var tests []*domain.TestCase
	if count >= threshold {
		tests, err = s.testRepo.GetVisible(ctx, assignment, author)
	} else {
		tests, err = s.testRepo.GetDefaults(ctx, assignment)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load visible tests: %w", err)
	}

	if err := s.hydrateRunSets(ctx, assignment, tests); err != nil {
		return nil, err
	}

	return tests, nil
}

// hydrateRunSets fills in the student membership sets from the run-set
// store; the counters already carried by the records equal the set
// cardinalities by construction.
func (s *SubmissionService) hydrateRunSets(ctx context.Context, assignment string, tests []*domain.TestCase) error {
	for _, testCase := range tests {
		ran, err := s.runSets.MembersRan(ctx, assignment, testCase.Name)
		if err != nil {
			return fmt.Errorf("failed to hydrate run set for %q: %w", testCase.Name, err)
		}
		passed, err := s.runSets.MembersPassed(ctx, assignment, testCase.Name)
		if err != nil {
			return fmt.Errorf("failed to hydrate pass set for %q: %w", testCase.Name, err)
		}
		testCase.StudentsRan = ran
		testCase.StudentsRanSuccessfully = passed
	}

	return nil
}
