package domain

// ResultReport is one run-result for a named test, submitted by a student
type ResultReport struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
}

// FailedUpdate records one report that could not be applied
type FailedUpdate struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// ReportReceipt is the outcome of one submit-results batch. The batch
// succeeds overall iff no individual report failed.
type ReportReceipt struct {
	Success        bool           `json:"success"`
	FailedToUpdate []FailedUpdate `json:"failedToUpdate"`
}

// NewReportReceipt creates an empty receipt
func NewReportReceipt() *ReportReceipt {
	return &ReportReceipt{
		FailedToUpdate: []FailedUpdate{},
	}
}

// Fail appends a per-report failure
func (r *ReportReceipt) Fail(name, reason string) {
	r.FailedToUpdate = append(r.FailedToUpdate, FailedUpdate{Name: name, Reason: reason})
}
