package config

import "strconv"

type SubmissionConfig struct {
	// DefaultPublicThreshold is the number of public tests a student must
	// have contributed before the full test bank opens up. Requests may
	// override it per call with the num_public_tests query parameter.
	DefaultPublicThreshold int64
}

func NewSubmissionConfig() *SubmissionConfig {
	threshold, err := strconv.ParseInt(getEnv("DEFAULT_PUBLIC_TESTS", "1"), 10, 64)
	if err != nil || threshold < 0 {
		threshold = 1
	}
	return &SubmissionConfig{
		DefaultPublicThreshold: threshold,
	}
}
