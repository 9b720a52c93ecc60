package pep440

import (
	"strings"
)

// CanonicalizeVersion renders ver in canonical form, the same as
// Version.String, except that with stripTrailingZero it also drops trailing
// ".0" release components ("1.0.0" -> "1").
func CanonicalizeVersion(ver Version, stripTrailingZero bool) string {
	if !stripTrailingZero {
		return ver.String()
	}
	stripped := ver
	release := ver.Release
	for len(release) > 1 && release[len(release)-1] == 0 {
		release = release[:len(release)-1]
	}
	stripped.Release = release
	return stripped.String()
}

// CanonicalizeVersionString is CanonicalizeVersion for a raw string; a string
// that does not parse as a PEP 440 version cannot be normalized and is
// returned with only its surrounding whitespace trimmed.
func CanonicalizeVersionString(str string, stripTrailingZero bool) string {
	ver, err := parseVersion(str)
	if err != nil {
		return strings.TrimSpace(str)
	}
	return CanonicalizeVersion(*ver, stripTrailingZero)
}
