package domain

// RejectedTest records one candidate that could not be added during a
// submission, with a human-readable reason
type RejectedTest struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// SubmissionReceipt is the outcome of one submit-tests batch. Per-item
// rejections are first-class: the batch can succeed while individual
// candidates fail.
type SubmissionReceipt struct {
	Success     bool           `json:"success"`
	FailedToAdd []RejectedTest `json:"failedToAdd"`
	// Tests is the submitting student's visible subset, computed after
	// the batch has been applied
	Tests []*TestCase `json:"tests,omitempty"`
}

// NewSubmissionReceipt creates an empty receipt
func NewSubmissionReceipt() *SubmissionReceipt {
	return &SubmissionReceipt{
		FailedToAdd: []RejectedTest{},
	}
}

// Reject appends a per-candidate rejection
func (r *SubmissionReceipt) Reject(name, reason string) {
	r.FailedToAdd = append(r.FailedToAdd, RejectedTest{Name: name, Reason: reason})
}
