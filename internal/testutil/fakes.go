// package testutil provides in-memory fakes of the secondary ports for
// service-level tests
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/esinx/student-tests/internal/core/ports/secondary"
	"github.com/esinx/student-tests/internal/domain"
)

var _ secondary.TestCaseRepository = (*TestCaseStore)(nil)

// TestCaseStore is a mutex-guarded in-memory TestCaseRepository
type TestCaseStore struct {
	mu    sync.Mutex
	cases []*domain.TestCase

	FailInsertBatch bool
	FailUpdate      bool
}

func NewTestCaseStore() *TestCaseStore {
	return &TestCaseStore{}
}

// Seed adds a record directly, bypassing normalization
func (s *TestCaseStore) Seed(testCase *domain.TestCase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *testCase
	s.cases = append(s.cases, &copied)
}

// Snapshot returns a copy of one record for assertions, or nil
func (s *TestCaseStore) Snapshot(assignment, name string) *domain.TestCase {
	s.mu.Lock()
	defer s.mu.Unlock()
	if testCase := s.find(assignment, name); testCase != nil {
		copied := *testCase
		return &copied
	}
	return nil
}

// Len reports how many records the store holds
func (s *TestCaseStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cases)
}

func (s *TestCaseStore) find(assignment, name string) *domain.TestCase {
	for _, testCase := range s.cases {
		if testCase.Assignment == assignment && testCase.Name == name {
			return testCase
		}
	}
	return nil
}

func (s *TestCaseStore) EnsureSchema(ctx context.Context) error {
	return nil
}

func (s *TestCaseStore) GetByName(ctx context.Context, assignment, name string) (*domain.TestCase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if testCase := s.find(assignment, name); testCase != nil {
		copied := *testCase
		return &copied, nil
	}
	return nil, nil
}

func (s *TestCaseStore) InsertBatch(ctx context.Context, cases []*domain.TestCase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailInsertBatch {
		return fmt.Errorf("insert batch failed")
	}
	for _, testCase := range cases {
		if s.find(testCase.Assignment, testCase.Name) != nil {
			return fmt.Errorf("duplicate name: %s", testCase.Name)
		}
		copied := *testCase
		s.cases = append(s.cases, &copied)
	}
	return nil
}

func (s *TestCaseStore) Update(ctx context.Context, testCase *domain.TestCase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailUpdate {
		return fmt.Errorf("update failed")
	}
	existing := s.find(testCase.Assignment, testCase.Name)
	if existing == nil {
		return fmt.Errorf("test case not found: %s", testCase.Name)
	}
	existing.Description = testCase.Description
	existing.Command = testCase.Command
	existing.ExpectedStatus = testCase.ExpectedStatus
	existing.ExpectedBody = testCase.ExpectedBody
	existing.Public = testCase.Public
	existing.Visibility = testCase.Visibility
	existing.IsDefault = testCase.IsDefault
	return nil
}

func (s *TestCaseStore) CountPublicByAuthor(ctx context.Context, assignment, author string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, testCase := range s.cases {
		if testCase.Assignment == assignment && testCase.Author == author && testCase.Public {
			count++
		}
	}
	return count, nil
}

func (s *TestCaseStore) GetVisible(ctx context.Context, assignment, author string) ([]*domain.TestCase, error) {
	return s.filter(assignment, func(t *domain.TestCase) bool {
		return t.Public || t.Author == author || t.IsDefault
	}), nil
}

func (s *TestCaseStore) GetDefaults(ctx context.Context, assignment string) ([]*domain.TestCase, error) {
	return s.filter(assignment, func(t *domain.TestCase) bool {
		return t.IsDefault
	}), nil
}

func (s *TestCaseStore) GetAll(ctx context.Context, assignment string) ([]*domain.TestCase, error) {
	return s.filter(assignment, func(t *domain.TestCase) bool {
		return true
	}), nil
}

func (s *TestCaseStore) filter(assignment string, keep func(*domain.TestCase) bool) []*domain.TestCase {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := make([]*domain.TestCase, 0)
	for _, testCase := range s.cases {
		if testCase.Assignment == assignment && keep(testCase) {
			copied := *testCase
			matched = append(matched, &copied)
		}
	}
	return matched
}

func (s *TestCaseStore) ListAssignments(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool)
	assignments := make([]string, 0)
	for _, testCase := range s.cases {
		if !seen[testCase.Assignment] {
			seen[testCase.Assignment] = true
			assignments = append(assignments, testCase.Assignment)
		}
	}
	sort.Strings(assignments)
	return assignments, nil
}

func (s *TestCaseStore) IncrementRunCounters(ctx context.Context, assignment, name string, passed bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	testCase := s.find(assignment, name)
	if testCase == nil {
		return false, nil
	}
	testCase.TimesRan++
	if passed {
		testCase.TimesRanSuccessfully++
	}
	return true, nil
}

func (s *TestCaseStore) IncrementStudentsRan(ctx context.Context, assignment, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	testCase := s.find(assignment, name)
	if testCase == nil {
		return fmt.Errorf("test case not found: %s", name)
	}
	testCase.NumStudentsRan++
	return nil
}

func (s *TestCaseStore) IncrementStudentsRanSuccessfully(ctx context.Context, assignment, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	testCase := s.find(assignment, name)
	if testCase == nil {
		return fmt.Errorf("test case not found: %s", name)
	}
	testCase.NumStudentsRanSuccessfully++
	return nil
}

func (s *TestCaseStore) HasTests(ctx context.Context, assignment string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, testCase := range s.cases {
		if testCase.Assignment == assignment {
			return true, nil
		}
	}
	return false, nil
}

func (s *TestCaseStore) DeleteAll(ctx context.Context, assignment string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.cases[:0]
	var deleted int64
	for _, testCase := range s.cases {
		if testCase.Assignment == assignment {
			deleted++
			continue
		}
		kept = append(kept, testCase)
	}
	s.cases = kept
	return deleted, nil
}

func (s *TestCaseStore) DeleteByName(ctx context.Context, assignment, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, testCase := range s.cases {
		if testCase.Assignment == assignment && testCase.Name == name {
			s.cases = append(s.cases[:i], s.cases[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *TestCaseStore) DeleteByID(ctx context.Context, assignment string, id uuid.UUID) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, testCase := range s.cases {
		if testCase.Assignment == assignment && testCase.ID == id {
			name := testCase.Name
			s.cases = append(s.cases[:i], s.cases[i+1:]...)
			return name, true, nil
		}
	}
	return "", false, nil
}

var _ secondary.RunSetRepository = (*RunSetStore)(nil)

// RunSetStore is a mutex-guarded in-memory RunSetRepository; like the
// Redis sets it stands in for, its adds decide a single winner when
// duplicate reports race.
type RunSetStore struct {
	mu     sync.Mutex
	ran    map[string]map[string]bool
	passed map[string]map[string]bool
}

func NewRunSetStore() *RunSetStore {
	return &RunSetStore{
		ran:    make(map[string]map[string]bool),
		passed: make(map[string]map[string]bool),
	}
}

func setKey(assignment, name string) string {
	return assignment + ":" + name
}

func addMember(sets map[string]map[string]bool, key, student string) bool {
	members, ok := sets[key]
	if !ok {
		members = make(map[string]bool)
		sets[key] = members
	}
	if members[student] {
		return false
	}
	members[student] = true
	return true
}

func (s *RunSetStore) AddRan(ctx context.Context, assignment, name, student string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return addMember(s.ran, setKey(assignment, name), student), nil
}

func (s *RunSetStore) AddPassed(ctx context.Context, assignment, name, student string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return addMember(s.passed, setKey(assignment, name), student), nil
}

func (s *RunSetStore) MembersRan(ctx context.Context, assignment, name string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return membersOf(s.ran, setKey(assignment, name)), nil
}

func (s *RunSetStore) MembersPassed(ctx context.Context, assignment, name string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return membersOf(s.passed, setKey(assignment, name)), nil
}

func membersOf(sets map[string]map[string]bool, key string) []string {
	members := make([]string, 0, len(sets[key]))
	for student := range sets[key] {
		members = append(members, student)
	}
	sort.Strings(members)
	return members
}

func (s *RunSetStore) Clear(ctx context.Context, assignment string, names ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range names {
		delete(s.ran, setKey(assignment, name))
		delete(s.passed, setKey(assignment, name))
	}
	return nil
}

func (s *RunSetStore) ClearAssignment(ctx context.Context, assignment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := assignment + ":"
	for _, sets := range []map[string]map[string]bool{s.ran, s.passed} {
		for key := range sets {
			if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
				delete(sets, key)
			}
		}
	}
	return nil
}
