package errs

import (
	"fmt"
	"net/http"
)

// The set of error codes the application can return.
var (
	OK                 = ErrCode{value: 0}
	InvalidArgument    = ErrCode{value: 1}
	Unauthenticated    = ErrCode{value: 2}
	PermissionDenied   = ErrCode{value: 3}
	NotFound           = ErrCode{value: 4}
	Aborted            = ErrCode{value: 5}
	FailedPrecondition = ErrCode{value: 6}
	ResourceExhausted  = ErrCode{value: 7}
	Unavailable        = ErrCode{value: 8}
	Internal           = ErrCode{value: 9}
	InternalOnlyLog    = ErrCode{value: 10}
)

var codeNames = map[ErrCode]string{
	OK:                 "ok",
	InvalidArgument:    "invalid_argument",
	Unauthenticated:    "unauthenticated",
	PermissionDenied:   "permission_denied",
	NotFound:           "not_found",
	Aborted:            "aborted",
	FailedPrecondition: "failed_precondition",
	ResourceExhausted:  "resource_exhausted",
	Unavailable:        "unavailable",
	Internal:           "internal",
	InternalOnlyLog:    "internal",
}

var codeNumbers = map[string]ErrCode{
	"ok":                  OK,
	"invalid_argument":    InvalidArgument,
	"unauthenticated":     Unauthenticated,
	"permission_denied":   PermissionDenied,
	"not_found":           NotFound,
	"aborted":             Aborted,
	"failed_precondition": FailedPrecondition,
	"resource_exhausted":  ResourceExhausted,
	"unavailable":         Unavailable,
	"internal":            Internal,
}

var httpStatus = map[ErrCode]int{
	OK:                 http.StatusOK,
	InvalidArgument:    http.StatusBadRequest,
	Unauthenticated:    http.StatusUnauthorized,
	PermissionDenied:   http.StatusForbidden,
	NotFound:           http.StatusNotFound,
	Aborted:            http.StatusConflict,
	FailedPrecondition: http.StatusPreconditionFailed,
	ResourceExhausted:  http.StatusTooManyRequests,
	Unavailable:        http.StatusServiceUnavailable,
	Internal:           http.StatusInternalServerError,
	InternalOnlyLog:    http.StatusInternalServerError,
}

// ErrCode represents an error code in the system.
type ErrCode struct {
	value int
}

// Value returns the integer value of the error code.
func (ec ErrCode) Value() int {
	return ec.value
}

// String returns the string representation of the error code.
func (ec ErrCode) String() string {
	return codeNames[ec]
}

// UnmarshalText implement the unmarshal interface for JSON conversions.
func (ec *ErrCode) UnmarshalText(data []byte) error {
	errName := string(data)

	v, exists := codeNumbers[errName]
	if !exists {
		return fmt.Errorf("err code %q does not exist", errName)
	}

	*ec = v

	return nil
}

// MarshalText implement the marshal interface for JSON conversions.
func (ec ErrCode) MarshalText() ([]byte, error) {
	return []byte(ec.String()), nil
}
