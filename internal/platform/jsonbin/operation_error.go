package jsonbin

import "fmt"

type OperationErrorCode string

const (
	OperationErrorEncodeFailed    OperationErrorCode = "encode_failed"
	OperationErrorTransportFailed OperationErrorCode = "transport_failed"
	OperationErrorStatusFailed    OperationErrorCode = "status_failed"
	OperationErrorReadFailed      OperationErrorCode = "read_failed"
)

// OperationError identifies which verb against the bin failed and, for non-2xx answers, the status code.
type OperationError struct {
	Code       OperationErrorCode
	Verb       string
	StatusCode int
	Message    string
	Cause      error
}

func (e *OperationError) Error() string {
	if e == nil {
		return "jsonbin operation failed"
	}
	switch {
	case e.Message != "":
		return fmt.Sprintf("jsonbin %s failed (code=%s status=%d): %s", e.Verb, e.Code, e.StatusCode, e.Message)
	case e.Cause != nil:
		return fmt.Sprintf("jsonbin %s failed (code=%s status=%d): %v", e.Verb, e.Code, e.StatusCode, e.Cause)
	default:
		return fmt.Sprintf("jsonbin %s failed (code=%s status=%d)", e.Verb, e.Code, e.StatusCode)
	}
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func (e *OperationError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}
