// Package pep503 implements PEP 503's project name normalization rules.
//
// https://www.python.org/dev/peps/pep-0503/#normalized-names
package pep503

import (
	"fmt"
	"regexp"
	"strings"
)

// A NormalizedName is a project name that has been run through Normalize; the
// rest of the module stores extras and canonicalized project names as this
// type so that the type system tracks which strings have already been
// normalized.
type NormalizedName string

func (name NormalizedName) String() string {
	return string(name)
}

// "This PEP references the concept of a 'normalized' project name.  As per PEP
// 426 the only valid characters in a name are the ASCII alphabet, ASCII
// numbers, ., -, and _.  The name should be lowercased with all runs of the
// characters ., -, or _ replaced with a single - character."
var reSeparators = regexp.MustCompile(`[-_.]+`)

// Normalize returns the PEP 503 normalized form of a project name.
//
// Normalize is idempotent; it does not validate that the input is a legal
// project name (use ParseName for that).
func Normalize(name string) NormalizedName {
	return NormalizedName(strings.ToLower(reSeparators.ReplaceAllLiteralString(name, "-")))
}

// The validation regex from the core-metadata "Name" field specification; a
// name must start and end with a letter or a digit.
var reValidName = regexp.MustCompile(`(?i)^([A-Z0-9]|[A-Z0-9][A-Z0-9._-]*[A-Z0-9])$`)

// IsNormalized reports whether a name is already in the normalized form that
// Normalize produces: lowercase, with single "-" separators.
var reNormalized = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func IsNormalized(name string) bool {
	return reNormalized.MatchString(name)
}

// InvalidNameError is the error returned by ParseName for a string that is
// not a legal project name.
type InvalidNameError struct {
	Name string
}

func (err *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid project name: %q", err.Name)
}

// ParseName validates a project name and returns its normalized form.
func ParseName(name string) (NormalizedName, error) {
	if !reValidName.MatchString(name) {
		return "", &InvalidNameError{Name: name}
	}
	return Normalize(name), nil
}
