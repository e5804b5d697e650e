package submission

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esinx/student-tests/internal/adapter/logging"
	"github.com/esinx/student-tests/internal/config"
	"github.com/esinx/student-tests/internal/domain"
	"github.com/esinx/student-tests/internal/static/errs"
	"github.com/esinx/student-tests/internal/testutil"
)

func newService(store *testutil.TestCaseStore, runSets *testutil.RunSetStore) *SubmissionService {
	return NewSubmissionService(store, runSets, logging.NewNopLogger(), &config.SubmissionConfig{
		DefaultPublicThreshold: 1,
	})
}

func boolPtr(v bool) *bool {
	return &v
}

func TestSubmitTestsCreatesNewRecord(t *testing.T) {
	store := testutil.NewTestCaseStore()
	svc := newService(store, testutil.NewRunSetStore())

	receipt, err := svc.SubmitTests(context.Background(), "hw1", "A", 0, []domain.TestCaseCandidate{
		{Name: "t1", Description: "first", Command: "make t1", ExpectedStatus: 200},
	})
	require.NoError(t, err)
	require.True(t, receipt.Success)
	assert.Empty(t, receipt.FailedToAdd)

	created := store.Snapshot("hw1", "t1")
	require.NotNil(t, created)
	assert.Equal(t, "A", created.Author)
	assert.Equal(t, domain.VisibilityLimited, created.Visibility)
	assert.True(t, created.Public)
	assert.False(t, created.IsDefault)
	assert.Zero(t, created.TimesRan)
	assert.Zero(t, created.NumStudentsRan)

	// one public contribution meets the default threshold of one
	require.Len(t, receipt.Tests, 1)
	assert.Equal(t, "t1", receipt.Tests[0].Name)
}

func TestSubmitTestsMissingAuthor(t *testing.T) {
	svc := newService(testutil.NewTestCaseStore(), testutil.NewRunSetStore())

	_, err := svc.SubmitTests(context.Background(), "hw1", "", 0, nil)
	require.ErrorIs(t, err, errs.StudentIDRequired)
}

func TestSubmitTestsMergeSameAuthorPreservesStats(t *testing.T) {
	store := testutil.NewTestCaseStore()
	svc := newService(store, testutil.NewRunSetStore())

	seed := domain.NewTestCase("hw1", domain.TestCaseCandidate{Name: "t1", Description: "old"}, "A")
	seed.TimesRan = 9
	seed.TimesRanSuccessfully = 4
	seed.NumStudentsRan = 3
	seed.NumStudentsRanSuccessfully = 2
	store.Seed(seed)

	receipt, err := svc.SubmitTests(context.Background(), "hw1", "A", 0, []domain.TestCaseCandidate{
		{Name: "t1", Description: "updated", Command: "make check"},
	})
	require.NoError(t, err)
	require.True(t, receipt.Success)
	assert.Empty(t, receipt.FailedToAdd)

	merged := store.Snapshot("hw1", "t1")
	require.NotNil(t, merged)
	assert.Equal(t, "updated", merged.Description)
	assert.Equal(t, "make check", merged.Command)
	assert.Equal(t, seed.ID, merged.ID)
	assert.Equal(t, seed.CreatedAt, merged.CreatedAt)
	assert.EqualValues(t, 9, merged.TimesRan)
	assert.EqualValues(t, 4, merged.TimesRanSuccessfully)
	assert.EqualValues(t, 3, merged.NumStudentsRan)
	assert.EqualValues(t, 2, merged.NumStudentsRanSuccessfully)
	assert.Equal(t, 1, store.Len(), "merge must not create a second record")
}

func TestSubmitTestsRejectDifferentAuthor(t *testing.T) {
	store := testutil.NewTestCaseStore()
	svc := newService(store, testutil.NewRunSetStore())

	seed := domain.NewTestCase("hw1", domain.TestCaseCandidate{Name: "t1", Description: "original"}, "A")
	store.Seed(seed)
	before := store.Snapshot("hw1", "t1")

	receipt, err := svc.SubmitTests(context.Background(), "hw1", "B", 0, []domain.TestCaseCandidate{
		{Name: "t1", Description: "hijack attempt"},
	})
	require.NoError(t, err)
	require.True(t, receipt.Success)

	require.Len(t, receipt.FailedToAdd, 1)
	assert.Equal(t, "t1", receipt.FailedToAdd[0].Name)
	assert.NotEmpty(t, receipt.FailedToAdd[0].Reason)

	after := store.Snapshot("hw1", "t1")
	assert.Equal(t, before, after, "rejected submission must leave the record untouched")

	// B contributed nothing, so only defaults are visible
	assert.Empty(t, receipt.Tests)
}

func TestSubmitTestsBatchLocalShadowing(t *testing.T) {
	store := testutil.NewTestCaseStore()
	svc := newService(store, testutil.NewRunSetStore())

	// two candidates under one name in a single batch: the second must
	// observe the first as existing state and merge into it
	receipt, err := svc.SubmitTests(context.Background(), "hw1", "A", 0, []domain.TestCaseCandidate{
		{Name: "t1", Description: "v1", ExpectedStatus: 200},
		{Name: "t1", Description: "v2", ExpectedStatus: 404},
	})
	require.NoError(t, err)
	require.True(t, receipt.Success)
	assert.Empty(t, receipt.FailedToAdd)

	assert.Equal(t, 1, store.Len())
	created := store.Snapshot("hw1", "t1")
	require.NotNil(t, created)
	assert.Equal(t, "v2", created.Description)
	assert.Equal(t, 404, created.ExpectedStatus)
}

func TestSubmitTestsBulkInsertFailureKeepsMerges(t *testing.T) {
	store := testutil.NewTestCaseStore()
	svc := newService(store, testutil.NewRunSetStore())

	store.Seed(domain.NewTestCase("hw1", domain.TestCaseCandidate{Name: "t1", Description: "old"}, "A"))
	store.FailInsertBatch = true

	receipt, err := svc.SubmitTests(context.Background(), "hw1", "A", 0, []domain.TestCaseCandidate{
		{Name: "t1", Description: "merged"},
		{Name: "t2", Description: "brand new"},
	})
	require.Error(t, err)
	require.NotNil(t, receipt)
	assert.False(t, receipt.Success)

	// the individually committed merge persists even though the trailing
	// bulk insert failed
	merged := store.Snapshot("hw1", "t1")
	require.NotNil(t, merged)
	assert.Equal(t, "merged", merged.Description)
	assert.Nil(t, store.Snapshot("hw1", "t2"))
}

func TestSubmitTestsVisibilityThreshold(t *testing.T) {
	store := testutil.NewTestCaseStore()
	svc := newService(store, testutil.NewRunSetStore())

	store.Seed(domain.NewTestCase("hw1", domain.TestCaseCandidate{Name: "smoke"}, domain.DefaultAuthor))
	store.Seed(domain.NewTestCase("hw1", domain.TestCaseCandidate{Name: "c-public"}, "C"))

	// one contribution, threshold two: exactly one short, defaults only
	receipt, err := svc.SubmitTests(context.Background(), "hw1", "A", 2, []domain.TestCaseCandidate{
		{Name: "a-first"},
	})
	require.NoError(t, err)
	require.Len(t, receipt.Tests, 1)
	assert.Equal(t, "smoke", receipt.Tests[0].Name)
	assert.True(t, receipt.Tests[0].IsDefault)

	// second public contribution meets the threshold: full union, no duplicates
	receipt, err = svc.SubmitTests(context.Background(), "hw1", "A", 2, []domain.TestCaseCandidate{
		{Name: "a-second"},
	})
	require.NoError(t, err)

	names := make(map[string]int)
	for _, testCase := range receipt.Tests {
		names[testCase.Name]++
	}
	assert.Equal(t, map[string]int{
		"smoke":    1,
		"c-public": 1,
		"a-first":  1,
		"a-second": 1,
	}, names)
}

func TestSubmitTestsPrivateContributionsDoNotCount(t *testing.T) {
	store := testutil.NewTestCaseStore()
	svc := newService(store, testutil.NewRunSetStore())

	store.Seed(domain.NewTestCase("hw1", domain.TestCaseCandidate{Name: "smoke"}, domain.DefaultAuthor))

	receipt, err := svc.SubmitTests(context.Background(), "hw1", "A", 1, []domain.TestCaseCandidate{
		{Name: "a-private", Public: boolPtr(false)},
	})
	require.NoError(t, err)

	require.Len(t, receipt.Tests, 1)
	assert.Equal(t, "smoke", receipt.Tests[0].Name)
}

func TestSubmitTestsHydratesRunSets(t *testing.T) {
	store := testutil.NewTestCaseStore()
	runSets := testutil.NewRunSetStore()
	svc := newService(store, runSets)

	seed := domain.NewTestCase("hw1", domain.TestCaseCandidate{Name: "t1"}, "A")
	seed.NumStudentsRan = 2
	seed.NumStudentsRanSuccessfully = 1
	store.Seed(seed)

	ctx := context.Background()
	_, err := runSets.AddRan(ctx, "hw1", "t1", "A")
	require.NoError(t, err)
	_, err = runSets.AddRan(ctx, "hw1", "t1", "B")
	require.NoError(t, err)
	_, err = runSets.AddPassed(ctx, "hw1", "t1", "B")
	require.NoError(t, err)

	receipt, err := svc.SubmitTests(ctx, "hw1", "A", 0, nil)
	require.NoError(t, err)

	require.Len(t, receipt.Tests, 1)
	assert.Equal(t, []string{"A", "B"}, receipt.Tests[0].StudentsRan)
	assert.Equal(t, []string{"B"}, receipt.Tests[0].StudentsRanSuccessfully)
	assert.EqualValues(t, len(receipt.Tests[0].StudentsRan), receipt.Tests[0].NumStudentsRan)
	assert.EqualValues(t, len(receipt.Tests[0].StudentsRanSuccessfully), receipt.Tests[0].NumStudentsRanSuccessfully)
}

func TestSubmitTestsRecreatedNameStartsWithEmptySets(t *testing.T) {
	store := testutil.NewTestCaseStore()
	runSets := testutil.NewRunSetStore()
	svc := newService(store, runSets)

	ctx := context.Background()
	// stale members left behind by a deleted test of the same name
	_, err := runSets.AddRan(ctx, "hw1", "t1", "Z")
	require.NoError(t, err)

	receipt, err := svc.SubmitTests(ctx, "hw1", "A", 0, []domain.TestCaseCandidate{{Name: "t1"}})
	require.NoError(t, err)

	require.Len(t, receipt.Tests, 1)
	assert.Empty(t, receipt.Tests[0].StudentsRan)
}
