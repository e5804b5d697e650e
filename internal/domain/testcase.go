package domain

import (
	"time"

	"github.com/google/uuid"
)

// Visibility controls how much of a test case is exposed to non-author viewers
type Visibility string

const (
	// VisibilityFull exposes the entire record
	VisibilityFull Visibility = "full"
	// VisibilityLimited exposes only name, description and outcome
	VisibilityLimited Visibility = "limited"
	// VisibilityNone exposes the record to its author only
	VisibilityNone Visibility = "none"
)

// DefaultAuthor is the sentinel author id for instructor-provided test cases.
// Tests submitted under this id are marked default and are visible to every
// student regardless of their own contributions.
const DefaultAuthor = "-1"

// TestCase represents one named executable check within an assignment,
// together with its accumulated usage statistics
type TestCase struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	Assignment     string     `db:"assignment" json:"assignment"`
	Name           string     `db:"name" json:"name"`
	Description    string     `db:"description" json:"description"`
	Command        string     `db:"command" json:"command"`
	ExpectedStatus int        `db:"expected_status" json:"expectedStatus"`
	ExpectedBody   string     `db:"expected_body" json:"expectedBody"`
	Author         string     `db:"author" json:"author"`
	Public         bool       `db:"is_public" json:"public"`
	Visibility     Visibility `db:"visibility" json:"visibility"`
	IsDefault      bool       `db:"is_default" json:"isDefault"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`

	TimesRan             int64 `db:"times_ran" json:"timesRan"`
	TimesRanSuccessfully int64 `db:"times_ran_successfully" json:"timesRanSuccessfully"`

	// StudentsRan and StudentsRanSuccessfully are membership sets; the
	// Num* counters must always equal their cardinality. The sets are
	// hydrated from the run-set store when a full record is returned.
	StudentsRan                []string `db:"-" json:"studentsRan"`
	StudentsRanSuccessfully    []string `db:"-" json:"studentsRanSuccessfully"`
	NumStudentsRan             int64    `db:"num_students_ran" json:"numStudentsRan"`
	NumStudentsRanSuccessfully int64    `db:"num_students_ran_successfully" json:"numStudentsRanSuccessfully"`
}

// TestCaseCandidate is an incoming test case from a submission batch,
// before ownership resolution and normalization
type TestCaseCandidate struct {
	Name           string
	Description    string
	Command        string
	ExpectedStatus int
	ExpectedBody   string
	// Public is a pointer so an omitted flag can be told apart from an
	// explicit false; omitted defaults to true at creation
	Public *bool
}

// NewTestCase normalizes a candidate into a fresh record: counters zeroed,
// sets emptied, id and creation time stamped, visibility fixed to limited,
// and isDefault derived from the sentinel author check
func NewTestCase(assignment string, candidate TestCaseCandidate, author string) *TestCase {
	public := true
	if candidate.Public != nil {
		public = *candidate.Public
	}

	return &TestCase{
		ID:                      uuid.New(),
		Assignment:              assignment,
		Name:                    candidate.Name,
		Description:             candidate.Description,
		Command:                 candidate.Command,
		ExpectedStatus:          candidate.ExpectedStatus,
		ExpectedBody:            candidate.ExpectedBody,
		Author:                  author,
		Public:                  public,
		Visibility:              VisibilityLimited,
		IsDefault:               author == DefaultAuthor,
		CreatedAt:               time.Now(),
		StudentsRan:             []string{},
		StudentsRanSuccessfully: []string{},
	}
}

// ApplyCandidate overwrites the mutable fields of an existing record with
// the candidate's fields. Identity, counters, student sets and creation
// time are left untouched; this is the same-author merge path.
func (t *TestCase) ApplyCandidate(candidate TestCaseCandidate) {
	t.Description = candidate.Description
	t.Command = candidate.Command
	t.ExpectedStatus = candidate.ExpectedStatus
	t.ExpectedBody = candidate.ExpectedBody
	if candidate.Public != nil {
		t.Public = *candidate.Public
	} else {
		t.Public = true
	}
	t.Visibility = VisibilityLimited
	t.IsDefault = t.Author == DefaultAuthor
}

type TestCaseTable struct {
	ID             string
	Assignment     string
	Name           string
	Description    string
	Command        string
	ExpectedStatus string
	ExpectedBody   string
	Author         string
	Public         string
	Visibility     string
	IsDefault      string
	CreatedAt      string

	TimesRan                   string
	TimesRanSuccessfully       string
	NumStudentsRan             string
	NumStudentsRanSuccessfully string
}

func GetTestCaseTable() TestCaseTable {
	return TestCaseTable{
		ID:             "id",
		Assignment:     "assignment",
		Name:           "name",
		Description:    "description",
		Command:        "command",
		ExpectedStatus: "expected_status",
		ExpectedBody:   "expected_body",
		Author:         "author",
		Public:         "is_public",
		Visibility:     "visibility",
		IsDefault:      "is_default",
		CreatedAt:      "created_at",

		TimesRan:                   "times_ran",
		TimesRanSuccessfully:       "times_ran_successfully",
		NumStudentsRan:             "num_students_ran",
		NumStudentsRanSuccessfully: "num_students_ran_successfully",
	}
}

func (TestCaseTable) TableName() string {
	return "test_cases"
}
