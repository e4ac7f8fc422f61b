// Package scope represents a capability an API key may be granted.
package scope

import (
	"fmt"
	"strings"
)

// The set of scopes that can be granted.
var (
	Synthesize = newScope("synthesize")
	Transcribe = newScope("transcribe")
	Voices     = newScope("voices")
)

// =============================================================================

// Set of known scopes.
var scopes = make(map[string]Scope)

// Scope represents a named capability in the system.
type Scope struct {
	value string
}

func newScope(scope string) Scope {
	s := Scope{scope}
	scopes[scope] = s
	return s
}

// String returns the name of the scope.
func (s Scope) String() string {
	return s.value
}

// Equal provides support for the go-cmp package and testing.
func (s Scope) Equal(s2 Scope) bool {
	return s.value == s2.value
}

// MarshalText provides support for logging and any marshal needs.
func (s Scope) MarshalText() ([]byte, error) {
	return []byte(s.value), nil
}

// =============================================================================

// Parse parses the string value and returns a scope if one exists.
func Parse(value string) (Scope, error) {
	s, exists := scopes[value]
	if !exists {
		return Scope{}, fmt.Errorf("invalid scope %q", value)
	}

	return s, nil
}

// MustParse parses the string value and returns a scope if one exists. If
// an error occurs the function panics.
func MustParse(value string) Scope {
	s, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return s
}

// ParseMany parses a set of string values into scopes.
func ParseMany(values []string) ([]Scope, error) {
	set := make([]Scope, len(values))
	for i, value := range values {
		var err error
		set[i], err = Parse(value)
		if err != nil {
			return nil, err
		}
	}

	return set, nil
}

// All returns every known scope, the set granted to bearer identities.
func All() []Scope {
	all := make([]Scope, 0, len(scopes))
	for _, s := range scopes {
		all = append(all, s)
	}

	return all
}

// Contains reports whether the set carries the specified scope.
func Contains(set []Scope, s Scope) bool {
	for _, v := range set {
		if v.Equal(s) {
			return true
		}
	}

	return false
}

// ToStrings converts a set of scopes to their string form.
func ToStrings(set []Scope) []string {
	strs := make([]string, len(set))
	for i, s := range set {
		strs[i] = s.value
	}

	return strs
}

// String returns the comma separated form of the set, used in logs.
func String(set []Scope) string {
	return strings.Join(ToStrings(set), ",")
}
