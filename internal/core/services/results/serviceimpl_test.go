package results

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esinx/student-tests/internal/adapter/logging"
	"github.com/esinx/student-tests/internal/domain"
	"github.com/esinx/student-tests/internal/static/errs"
	"github.com/esinx/student-tests/internal/testutil"
)

func seedTest(store *testutil.TestCaseStore, assignment, name string) {
	store.Seed(domain.NewTestCase(assignment, domain.TestCaseCandidate{Name: name}, "A"))
}

func TestSubmitResultsMissingStudent(t *testing.T) {
	svc := NewResultService(testutil.NewTestCaseStore(), testutil.NewRunSetStore(), logging.NewNopLogger())

	_, err := svc.SubmitResults(context.Background(), "hw1", "", nil)
	require.ErrorIs(t, err, errs.StudentIDRequired)
}

func TestSubmitResultsFirstRun(t *testing.T) {
	store := testutil.NewTestCaseStore()
	svc := NewResultService(store, testutil.NewRunSetStore(), logging.NewNopLogger())
	seedTest(store, "hw1", "t1")

	receipt, err := svc.SubmitResults(context.Background(), "hw1", "S1", []domain.ResultReport{
		{Name: "t1", Passed: true},
	})
	require.NoError(t, err)
	assert.True(t, receipt.Success)
	assert.Empty(t, receipt.FailedToUpdate)

	testCase := store.Snapshot("hw1", "t1")
	assert.EqualValues(t, 1, testCase.TimesRan)
	assert.EqualValues(t, 1, testCase.TimesRanSuccessfully)
	assert.EqualValues(t, 1, testCase.NumStudentsRan)
	assert.EqualValues(t, 1, testCase.NumStudentsRanSuccessfully)
}

// Two students run a test; one reruns it twice more and only passes on
// the final attempt. Global counters track every run while the distinct
// counters count each student once per outcome.
func TestSubmitResultsDistinctStudentCounting(t *testing.T) {
	store := testutil.NewTestCaseStore()
	svc := NewResultService(store, testutil.NewRunSetStore(), logging.NewNopLogger())
	seedTest(store, "hw1", "t1")

	ctx := context.Background()
	for _, run := range []struct {
		student string
		passed  bool
	}{
		{"S1", false},
		{"S2", true},
		{"S1", false},
		{"S1", true},
	} {
		receipt, err := svc.SubmitResults(ctx, "hw1", run.student, []domain.ResultReport{
			{Name: "t1", Passed: run.passed},
		})
		require.NoError(t, err)
		assert.True(t, receipt.Success)
	}

	testCase := store.Snapshot("hw1", "t1")
	assert.EqualValues(t, 4, testCase.TimesRan)
	assert.EqualValues(t, 2, testCase.TimesRanSuccessfully)
	assert.EqualValues(t, 2, testCase.NumStudentsRan)
	assert.EqualValues(t, 2, testCase.NumStudentsRanSuccessfully)
}

func TestSubmitResultsUnknownTestContinuesBatch(t *testing.T) {
	store := testutil.NewTestCaseStore()
	svc := NewResultService(store, testutil.NewRunSetStore(), logging.NewNopLogger())
	seedTest(store, "hw1", "t1")

	receipt, err := svc.SubmitResults(context.Background(), "hw1", "S1", []domain.ResultReport{
		{Name: "ghost", Passed: true},
		{Name: "t1", Passed: true},
	})
	require.NoError(t, err)
	assert.False(t, receipt.Success)

	require.Len(t, receipt.FailedToUpdate, 1)
	assert.Equal(t, "ghost", receipt.FailedToUpdate[0].Name)

	// the failure of the first report must not block the second
	testCase := store.Snapshot("hw1", "t1")
	assert.EqualValues(t, 1, testCase.TimesRan)
	assert.EqualValues(t, 1, testCase.NumStudentsRan)
}

func TestSubmitResultsDuplicateReportsAreIdempotent(t *testing.T) {
	store := testutil.NewTestCaseStore()
	svc := NewResultService(store, testutil.NewRunSetStore(), logging.NewNopLogger())
	seedTest(store, "hw1", "t1")

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		receipt, err := svc.SubmitResults(ctx, "hw1", "S1", []domain.ResultReport{
			{Name: "t1", Passed: true},
		})
		require.NoError(t, err)
		assert.True(t, receipt.Success)
	}

	testCase := store.Snapshot("hw1", "t1")
	assert.EqualValues(t, 5, testCase.TimesRan)
	assert.EqualValues(t, 5, testCase.TimesRanSuccessfully)
	assert.EqualValues(t, 1, testCase.NumStudentsRan)
	assert.EqualValues(t, 1, testCase.NumStudentsRanSuccessfully)
}

// Duplicate reports for the same student racing in parallel must bump
// the distinct counters exactly once; the set add decides a single
// winner.
func TestSubmitResultsConcurrentDuplicateReports(t *testing.T) {
	store := testutil.NewTestCaseStore()
	svc := NewResultService(store, testutil.NewRunSetStore(), logging.NewNopLogger())
	seedTest(store, "hw1", "t1")

	const workers = 16
	ctx := context.Background()

	var wg sync.WaitGroup
	errCh := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.SubmitResults(ctx, "hw1", "S1", []domain.ResultReport{
				{Name: "t1", Passed: true},
			})
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}

	testCase := store.Snapshot("hw1", "t1")
	assert.EqualValues(t, workers, testCase.TimesRan)
	assert.EqualValues(t, workers, testCase.TimesRanSuccessfully)
	assert.EqualValues(t, 1, testCase.NumStudentsRan)
	assert.EqualValues(t, 1, testCase.NumStudentsRanSuccessfully)
}

func TestSubmitResultsPassNeverExceedsRan(t *testing.T) {
	store := testutil.NewTestCaseStore()
	svc := NewResultService(store, testutil.NewRunSetStore(), logging.NewNopLogger())

	for i := 0; i < 3; i++ {
		seedTest(store, "hw1", fmt.Sprintf("t%d", i))
	}

	ctx := context.Background()
	students := []string{"S1", "S2", "S3"}
	for i, student := range students {
		reports := []domain.ResultReport{
			{Name: "t0", Passed: true},
			{Name: "t1", Passed: i%2 == 0},
			{Name: "t2", Passed: false},
		}
		_, err := svc.SubmitResults(ctx, "hw1", student, reports)
		require.NoError(t, err)
	}

	for i := 0; i < 3; i++ {
		testCase := store.Snapshot("hw1", fmt.Sprintf("t%d", i))
		assert.LessOrEqual(t, testCase.TimesRanSuccessfully, testCase.TimesRan)
		assert.LessOrEqual(t, testCase.NumStudentsRanSuccessfully, testCase.NumStudentsRan)
		assert.EqualValues(t, len(students), testCase.NumStudentsRan)
	}
}
