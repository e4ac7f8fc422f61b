// Package kind represents the kind of speech work in the system.
package kind

import "fmt"

// The set of work kinds that can be used.
var (
	Synthesis   = newKind("SYNTHESIS")
	Recognition = newKind("RECOGNITION")
)

// =============================================================================

// Set of known kinds.
var kinds = make(map[string]Kind)

// Kind represents a kind of speech work. Billable units depend on it:
// characters for synthesis, seconds for recognition.
type Kind struct {
	value string
}

func newKind(kind string) Kind {
	k := Kind{kind}
	kinds[kind] = k
	return k
}

// String returns the name of the kind.
func (k Kind) String() string {
	return k.value
}

// Equal provides support for the go-cmp package and testing.
func (k Kind) Equal(k2 Kind) bool {
	return k.value == k2.value
}

// MarshalText provides support for logging and any marshal needs.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.value), nil
}

// =============================================================================

// Parse parses the string value and returns a kind if one exists.
func Parse(value string) (Kind, error) {
	kind, exists := kinds[value]
	if !exists {
		return Kind{}, fmt.Errorf("invalid kind %q", value)
	}

	return kind, nil
}

// MustParse parses the string value and returns a kind if one exists. If
// an error occurs the function panics.
func MustParse(value string) Kind {
	kind, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return kind
}
