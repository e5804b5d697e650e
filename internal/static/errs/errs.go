package errs

import "errors"

var (
	Unauthorized = errors.New("unauthorized")
	BadRequest   = errors.New("bad request")
	NotFound     = errors.New("not found")
	StoreFailure = errors.New("store failure")

	StudentIDRequired   = errors.New("student_id query parameter is required")
	TestSelectorMissing = errors.New("testName or testId query parameter is required")
	AssignmentNotFound  = errors.New("assignment collection not found")
	TestNotFound        = errors.New("test not found or already deleted")
)
