package jobbus

import "fmt"

// The set of statuses a job moves through. Completed and Failed are terminal.
var (
	StatusQueued     = newStatus("QUEUED")
	StatusProcessing = newStatus("PROCESSING")
	StatusCompleted  = newStatus("COMPLETED")
	StatusFailed     = newStatus("FAILED")
)

// =============================================================================

// Set of known statuses.
var statuses = make(map[string]Status)

// Status represents a job lifecycle state.
type Status struct {
	value string
}

func newStatus(status string) Status {
	s := Status{status}
	statuses[status] = s
	return s
}

// String returns the name of the status.
func (s Status) String() string {
	return s.value
}

// Equal provides support for the go-cmp package and testing.
func (s Status) Equal(s2 Status) bool {
	return s.value == s2.value
}

// MarshalText provides support for logging and any marshal needs.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.value), nil
}

// Terminal reports whether no transition may leave this status.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// =============================================================================

// ParseStatus parses the string value and returns a status if one exists.
func ParseStatus(value string) (Status, error) {
	status, exists := statuses[value]
	if !exists {
		return Status{}, fmt.Errorf("invalid status %q", value)
	}

	return status, nil
}

// MustParseStatus parses the string value and returns a status if one exists.
// If an error occurs the function panics.
func MustParseStatus(value string) Status {
	status, err := ParseStatus(value)
	if err != nil {
		panic(err)
	}

	return status
}
