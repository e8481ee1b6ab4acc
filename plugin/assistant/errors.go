package assistant

// ResultCode classifies the outcome of an executed operation so callers can
// map it to a response without string-matching error text.
type ResultCode string

const (
	// CodeOK marks a completed operation.
	CodeOK ResultCode = "OK"
	// CodeValidationFailed marks a request missing required fields or
	// carrying an inconsistent time range.
	CodeValidationFailed ResultCode = "VALIDATION_FAILED"
	// CodeTemporalPolicyViolation marks an operation targeting a date its
	// temporal policy rejects.
	CodeTemporalPolicyViolation ResultCode = "TEMPORAL_POLICY_VIOLATION"
	// CodeConflict marks a time slot overlap with an existing booking.
	CodeConflict ResultCode = "CONFLICT"
	// CodeNotFound marks an operation whose target booking does not exist.
	CodeNotFound ResultCode = "NOT_FOUND"
	// CodeSystemError marks an unexpected storage or service failure.
	CodeSystemError ResultCode = "SYSTEM_ERROR"
)
