// Package pep440 implements PEP 440 -- Version Identification and Dependency Specification.
//
// https://www.python.org/dev/peps/pep-0440/
//
// The package is split along the same lines as the PEP itself:
//
//   - 01_version_scheme.go: the version scheme; parsing, normalization, and
//     the total ordering of version identifiers.
//   - 02_version_specifiers.go: version specifiers; the eight comparison
//     clauses, specifier sets, and the handling of pre-releases.
//   - 03_appendix.go: Appendix B; the permissive regular expression used to
//     parse version strings, exported as VersionPattern.
//
// The comments quoting normative "MUST"/"SHOULD" text throughout this package
// are excerpts of the PEP text, which has been placed in the public domain.
package pep440
