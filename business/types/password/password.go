// Package password represents a password in the system.
package password

import "fmt"

// Password represents a clear text password that complies with the rules.
// It is never persisted; only its bcrypt hash is.
type Password struct {
	value string
}

// String masks the password for logging and printing.
func (p Password) String() string {
	return "**********"
}

// Reveal returns the clear text password for hashing and comparison.
func (p Password) Reveal() string {
	return p.value
}

// =============================================================================

// Parse parses the string value and returns a password if the value complies
// with the rules for a password.
func Parse(value string) (Password, error) {
	if len(value) < 8 || len(value) > 72 {
		return Password{}, fmt.Errorf("password must be between 8 and 72 characters")
	}

	return Password{value}, nil
}

// MustParse parses the string value and returns a password if the value
// complies with the rules. If an error occurs the function panics.
func MustParse(value string) Password {
	pwd, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return pwd
}
