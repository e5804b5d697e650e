package tests

import "github.com/esinx/student-tests/internal/domain"

// TestCaseRequest represents one submitted test case candidate
type TestCaseRequest struct {
	Name           string `json:"name" validate:"required"`
	Description    string `json:"description"`
	Command        string `json:"command"`
	ExpectedStatus int    `json:"expectedStatus"`
	ExpectedBody   string `json:"expectedBody"`
	// Public left out of the payload defaults to true at creation
	Public *bool `json:"public"`
}

func (r TestCaseRequest) toCandidate() domain.TestCaseCandidate {
	return domain.TestCaseCandidate{
		Name:           r.Name,
		Description:    r.Description,
		Command:        r.Command,
		ExpectedStatus: r.ExpectedStatus,
		ExpectedBody:   r.ExpectedBody,
		Public:         r.Public,
	}
}

// ResultRequest represents one submitted run result
type ResultRequest struct {
	Name   string `json:"name" validate:"required"`
	Passed bool   `json:"passed"`
}

func (r ResultRequest) toReport() domain.ResultReport {
	return domain.ResultReport{
		Name:   r.Name,
		Passed: r.Passed,
	}
}
