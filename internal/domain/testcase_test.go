package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool {
	return &v
}

func TestNewTestCaseNormalization(t *testing.T) {
	candidate := TestCaseCandidate{
		Name:           "t1",
		Description:    "checks the login route",
		Command:        "curl -s localhost/login",
		ExpectedStatus: 200,
		ExpectedBody:   `{"ok":true}`,
	}

	testCase := NewTestCase("hw1", candidate, "student-42")

	require.NotEqual(t, uuid.Nil, testCase.ID)
	assert.Equal(t, "hw1", testCase.Assignment)
	assert.Equal(t, "t1", testCase.Name)
	assert.Equal(t, "student-42", testCase.Author)
	assert.False(t, testCase.IsDefault)
	assert.True(t, testCase.Public, "public defaults to true when omitted")
	assert.Equal(t, VisibilityLimited, testCase.Visibility)
	assert.WithinDuration(t, time.Now(), testCase.CreatedAt, time.Second)

	assert.Zero(t, testCase.TimesRan)
	assert.Zero(t, testCase.TimesRanSuccessfully)
	assert.Zero(t, testCase.NumStudentsRan)
	assert.Zero(t, testCase.NumStudentsRanSuccessfully)
	assert.Empty(t, testCase.StudentsRan)
	assert.Empty(t, testCase.StudentsRanSuccessfully)
}

func TestNewTestCaseSentinelAuthor(t *testing.T) {
	testCase := NewTestCase("hw1", TestCaseCandidate{Name: "default-check"}, DefaultAuthor)

	assert.True(t, testCase.IsDefault)
	assert.Equal(t, DefaultAuthor, testCase.Author)
}

func TestNewTestCaseExplicitPublicFalse(t *testing.T) {
	testCase := NewTestCase("hw1", TestCaseCandidate{Name: "t1", Public: boolPtr(false)}, "student-42")

	assert.False(t, testCase.Public)
}

func TestApplyCandidatePreservesIdentityAndCounters(t *testing.T) {
	testCase := NewTestCase("hw1", TestCaseCandidate{Name: "t1", Description: "old"}, "student-42")
	testCase.TimesRan = 7
	testCase.TimesRanSuccessfully = 3
	testCase.NumStudentsRan = 2
	testCase.NumStudentsRanSuccessfully = 1
	testCase.StudentsRan = []string{"a", "b"}

	id := testCase.ID
	createdAt := testCase.CreatedAt

	testCase.ApplyCandidate(TestCaseCandidate{
		Name:           "t1",
		Description:    "new",
		Command:        "make check",
		ExpectedStatus: 204,
		Public:         boolPtr(false),
	})

	assert.Equal(t, "new", testCase.Description)
	assert.Equal(t, "make check", testCase.Command)
	assert.Equal(t, 204, testCase.ExpectedStatus)
	assert.False(t, testCase.Public)

	assert.Equal(t, id, testCase.ID)
	assert.Equal(t, createdAt, testCase.CreatedAt)
	assert.EqualValues(t, 7, testCase.TimesRan)
	assert.EqualValues(t, 3, testCase.TimesRanSuccessfully)
	assert.EqualValues(t, 2, testCase.NumStudentsRan)
	assert.EqualValues(t, 1, testCase.NumStudentsRanSuccessfully)
	assert.Equal(t, []string{"a", "b"}, testCase.StudentsRan)
}
