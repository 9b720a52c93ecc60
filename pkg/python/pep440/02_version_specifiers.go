// Copyright (C) 2021-2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package pep440

import (
	"fmt"
	"sort"
	"strings"
)

// Version specifiers
// ==================
//
// A version specifier consists of a series of version clauses, separated by
// commas.  For example::
//
//    ~= 0.9, >= 1.0, != 1.3.4.*, < 2.0
//
// The comparison operator determines the kind of version clause:
//
// * ``~=``: Compatible release clause
// * ``==``: Version matching clause
// * ``!=``: Version exclusion clause
// * ``<=``, ``>=``: Inclusive ordered comparison clause
// * ``<``, ``>``: Exclusive ordered comparison clause
// * ``===``: Arbitrary equality clause.
//
// The comma (",") is equivalent to a logical **and** operator: a candidate
// version must match all given version clauses in order to match the
// specifier as a whole.

// InvalidSpecifierError is the error returned for a specifier string or
// operand whose shape is invalid for its comparison operator.
type InvalidSpecifierError struct {
	Clause string
	Msg    string
	Err    error // underlying error, may be nil
}

func (err *InvalidSpecifierError) Error() string {
	if err.Err != nil {
		return fmt.Sprintf("invalid specifier: %q: %v", err.Clause, err.Err)
	}
	return fmt.Sprintf("invalid specifier: %q: %s", err.Clause, err.Msg)
}

func (err *InvalidSpecifierError) Unwrap() error {
	return err.Err
}

// Prereleases is the tri-valued "should this specifier admit pre-releases?"
// setting.  The zero value is PrereleasesDetect: derive the answer from the
// shape of the specifier's own operands.  It is deliberately not a *bool;
// "unset" is a meaningful state of its own, not a missing boolean.
type Prereleases int

const (
	// PrereleasesDetect admits pre-releases exactly when one of the
	// specifier's own operands is itself a pre-release; the operands of
	// ``!=`` clauses do not count.
	PrereleasesDetect Prereleases = iota
	// PrereleasesAllow always admits pre-releases.
	PrereleasesAllow
	// PrereleasesForbid never admits pre-releases.
	PrereleasesForbid
)

type CmpOp int

const (
	CmpOpCompatible CmpOp = iota
	CmpOpStrictMatch
	CmpOpPrefixMatch
	CmpOpStrictExclude
	CmpOpPrefixExclude
	CmpOpLE
	CmpOpGE
	CmpOpLT
	CmpOpGT
	CmpOpArbitrary
	_CmpOpEnd
)

func (op CmpOp) String() string {
	str, ok := map[CmpOp]string{
		CmpOpCompatible:    "~=",
		CmpOpStrictMatch:   "strict ==",
		CmpOpPrefixMatch:   "prefix ==",
		CmpOpStrictExclude: "strict !=",
		CmpOpPrefixExclude: "prefix !=",
		CmpOpLE:            "<=",
		CmpOpGE:            ">=",
		CmpOpLT:            "<",
		CmpOpGT:            ">",
		CmpOpArbitrary:     "===",
	}[op]
	if !ok {
		panic(fmt.Errorf("invalid CmpOp: %d", op))
	}
	return str
}

func (op CmpOp) match(spec, ver Version) bool {
	fn, ok := map[CmpOp]func(spec, ver Version) bool{
		CmpOpCompatible:    matchCompatible,
		CmpOpStrictMatch:   matchStrictMatch,
		CmpOpPrefixMatch:   matchPrefixMatch,
		CmpOpStrictExclude: matchStrictExclude,
		CmpOpPrefixExclude: matchPrefixExclude,
		CmpOpLE:            matchLE,
		CmpOpGE:            matchGE,
		CmpOpLT:            matchLT,
		CmpOpGT:            matchGT,
	}[op]
	if !ok {
		panic(fmt.Errorf("invalid CmpOp: %d", op))
	}
	return fn(spec, ver)
}

// SpecifierClause is a single version clause: a comparison operator and an
// operand.  For every operator except ``===`` the operand is a parsed
// Version; for ``===`` the operand is kept as verbatim text.
type SpecifierClause struct {
	CmpOp   CmpOp
	Version Version // unset for CmpOpArbitrary
	Text    string  // verbatim operand; only set for CmpOpArbitrary

	// Prereleases overrides the pre-release policy for this clause alone;
	// it is consulted by Contains, not by Match.
	Prereleases Prereleases
}

// ParseSpecifierClause parses a single version clause, such as "~= 0.9" or
// "!= 1.3.4.*".
func ParseSpecifierClause(str string) (SpecifierClause, error) {
	clause, err := parseSpecifierClause(str)
	if err != nil {
		return clause, fmt.Errorf("pep440.ParseSpecifierClause: %w", err)
	}
	return clause, nil
}

func parseSpecifierClause(orig string) (SpecifierClause, error) {
	var ret SpecifierClause
	str := strings.TrimSpace(orig)
	minSegments := 1
	devOK := true
	localOK := false
	switch {
	case strings.HasPrefix(str, "==="):
		// Arbitrary equality comparisons are simple string equality
		// operations which do not take into account any of the semantic
		// information such as zero padding or local versions.
		ret.CmpOp = CmpOpArbitrary
		ret.Text = strings.TrimSpace(str[3:])
		if ret.Text == "" {
			return ret, &InvalidSpecifierError{Clause: orig, Msg: "empty operand"}
		}
		return ret, nil
	case strings.HasPrefix(str, "~="):
		ret.CmpOp = CmpOpCompatible
		str = str[2:]
		minSegments = 2
	case strings.HasPrefix(str, "=="):
		ret.CmpOp = CmpOpStrictMatch
		str = str[2:]
		localOK = true
		if strings.HasSuffix(strings.TrimSpace(str), ".*") {
			ret.CmpOp = CmpOpPrefixMatch
			str = strings.TrimSuffix(strings.TrimSpace(str), ".*")
			devOK = false
			localOK = false
		}
	case strings.HasPrefix(str, "!="):
		ret.CmpOp = CmpOpStrictExclude
		str = str[2:]
		localOK = true
		if strings.HasSuffix(strings.TrimSpace(str), ".*") {
			ret.CmpOp = CmpOpPrefixExclude
			str = strings.TrimSuffix(strings.TrimSpace(str), ".*")
			devOK = false
			localOK = false
		}
	case strings.HasPrefix(str, "<="):
		ret.CmpOp = CmpOpLE
		str = str[2:]
		localOK = true
	case strings.HasPrefix(str, ">="):
		ret.CmpOp = CmpOpGE
		str = str[2:]
		localOK = true
	case strings.HasPrefix(str, "<"):
		ret.CmpOp = CmpOpLT
		str = str[1:]
	case strings.HasPrefix(str, ">"):
		ret.CmpOp = CmpOpGT
		str = str[1:]
	default:
		return ret, &InvalidSpecifierError{Clause: orig, Msg: "missing comparison operator"}
	}
	ver, err := parseVersion(str)
	if err != nil {
		return ret, &InvalidSpecifierError{Clause: orig, Err: err}
	}
	if len(ver.Release) < minSegments {
		return ret, &InvalidSpecifierError{Clause: orig, Msg: fmt.Sprintf(
			"at least %d release segments required in %s specifier clauses",
			minSegments, ret.CmpOp)}
	}
	if ver.Dev != nil && !devOK {
		return ret, &InvalidSpecifierError{Clause: orig, Msg: fmt.Sprintf(
			"dev-part not permitted in %s specifier clauses", ret.CmpOp)}
	}
	if len(ver.Local) > 0 && !localOK {
		return ret, &InvalidSpecifierError{Clause: orig, Msg: fmt.Sprintf(
			"local-part not permitted in %s specifier clauses", ret.CmpOp)}
	}
	ret.Version = *ver
	return ret, nil
}

func (spec SpecifierClause) String() string {
	if spec.CmpOp == CmpOpArbitrary {
		return "===" + spec.Text
	}
	opStr, ok := map[CmpOp]string{
		CmpOpCompatible:    "~=",
		CmpOpStrictMatch:   "==",
		CmpOpPrefixMatch:   "==",
		CmpOpStrictExclude: "!=",
		CmpOpPrefixExclude: "!=",
		CmpOpLE:            "<=",
		CmpOpGE:            ">=",
		CmpOpLT:            "<",
		CmpOpGT:            ">",
	}[spec.CmpOp]
	if !ok {
		panic(fmt.Errorf("invalid CmpOp: %d", spec.CmpOp))
	}
	ret := opStr + spec.Version.String()
	if spec.CmpOp == CmpOpPrefixMatch || spec.CmpOp == CmpOpPrefixExclude {
		ret += ".*"
	}
	return ret
}

// Match reports whether the clause's bare comparison holds for ver, without
// applying any pre-release policy; Contains is the policy-applying variant.
func (spec SpecifierClause) Match(ver Version) bool {
	if spec.CmpOp == CmpOpArbitrary {
		return matchArbitrary(spec.Text, ver.String())
	}
	return spec.CmpOp.match(spec.Version, ver)
}

// detectPrereleases reports whether the clause's own operand names a
// pre-release, which implicitly opts the clause in to matching pre-releases.
// Exclusion (``!=``) clauses never opt in.
func (spec SpecifierClause) detectPrereleases() bool {
	switch spec.CmpOp {
	case CmpOpStrictExclude, CmpOpPrefixExclude:
		return false
	case CmpOpArbitrary:
		ver, err := parseVersion(spec.Text)
		return err == nil && ver.IsPreRelease()
	default:
		return spec.Version.IsPreRelease()
	}
}

// AllowsPrereleases resolves the clause's tri-state policy to a boolean.
func (spec SpecifierClause) AllowsPrereleases() bool {
	switch spec.Prereleases {
	case PrereleasesAllow:
		return true
	case PrereleasesForbid:
		return false
	default:
		return spec.detectPrereleases()
	}
}

// Contains reports whether ver satisfies the clause under the clause's
// pre-release policy.
func (spec SpecifierClause) Contains(ver Version) bool {
	if ver.IsPreRelease() && !spec.AllowsPrereleases() {
		return false
	}
	return spec.Match(ver)
}

// Specifier is a comma-separated set of clauses; a candidate version is
// contained in the specifier if it satisfies every clause.  Clauses are
// deduplicated by their canonical textual form at parse time; two ``===``
// clauses are opaque text and so deduplicate only on byte equality.
type Specifier struct {
	Clauses []SpecifierClause

	// Prereleases overrides the pre-release policy for the whole set;
	// with the zero value (PrereleasesDetect) the set admits pre-releases
	// exactly when one of its clauses does.
	Prereleases Prereleases
}

func ParseSpecifier(str string) (Specifier, error) {
	clauseStrs := strings.FieldsFunc(str, func(r rune) bool { return r == ',' })
	ret := Specifier{}
	seen := make(map[string]struct{}, len(clauseStrs))
	for _, clauseStr := range clauseStrs {
		clauseStr = strings.TrimSpace(clauseStr)
		if clauseStr == "" {
			continue
		}
		clause, err := parseSpecifierClause(clauseStr)
		if err != nil {
			return Specifier{}, fmt.Errorf("pep440.ParseSpecifier: %w", err)
		}
		key := clause.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		ret.Clauses = append(ret.Clauses, clause)
	}
	return ret, nil
}

// String implements fmt.Stringer.  The clauses are rendered sorted, so the
// result is a canonical form: any two specifiers with the same members
// serialize identically regardless of the order they were written in.
func (spec Specifier) String() string {
	clauses := make([]string, 0, len(spec.Clauses))
	for _, clause := range spec.Clauses {
		clauses = append(clauses, clause.String())
	}
	sort.Strings(clauses)
	return strings.Join(clauses, ",")
}

// Match reports whether ver satisfies every clause, without applying any
// pre-release policy; Contains is the policy-applying variant.
func (spec Specifier) Match(ver Version) bool {
	for _, clause := range spec.Clauses {
		if !clause.Match(ver) {
			return false
		}
	}
	return true
}

// AllowsPrereleases resolves the set's tri-state policy to a boolean.
func (spec Specifier) AllowsPrereleases() bool {
	switch spec.Prereleases {
	case PrereleasesAllow:
		return true
	case PrereleasesForbid:
		return false
	default:
		for _, clause := range spec.Clauses {
			if clause.AllowsPrereleases() {
				return true
			}
		}
		return false
	}
}

// Contains reports whether ver satisfies the specifier under its pre-release
// policy.
func (spec Specifier) Contains(ver Version) bool {
	if ver.IsPreRelease() && !spec.AllowsPrereleases() {
		return false
	}
	return spec.Match(ver)
}

// ContainsString parses str as a version and reports whether it is contained
// in the specifier; an unparseable string is simply not contained (no error).
// The one wrinkle is arbitrary equality, which is checked against the
// original text so that "===foobar" can match "foobar".
func (spec Specifier) ContainsString(str string) bool {
	str = strings.TrimSpace(str)
	ver, err := parseVersion(str)
	if err != nil {
		// Only a specifier made up entirely of arbitrary-equality
		// clauses can match a non-PEP 440 version string.
		for _, clause := range spec.Clauses {
			if clause.CmpOp != CmpOpArbitrary || !matchArbitrary(clause.Text, str) {
				return false
			}
		}
		return len(spec.Clauses) > 0
	}
	if ver.IsPreRelease() && !spec.AllowsPrereleases() {
		return false
	}
	for _, clause := range spec.Clauses {
		ok := clause.Match(*ver)
		if clause.CmpOp == CmpOpArbitrary {
			ok = matchArbitrary(clause.Text, str)
		}
		if !ok {
			return false
		}
	}
	return true
}

// Filter returns the members of vers that the specifier admits.  If no
// version would pass under the specifier's pre-release policy, and the policy
// is not an explicit PrereleasesForbid, then the matching pre-releases pass
// through instead; this keeps "the only available versions are pre-releases"
// installable.
func (spec Specifier) Filter(vers []Version) []Version {
	var matched, foundPre []Version
	allow := spec.AllowsPrereleases()
	for _, ver := range vers {
		if !spec.Match(ver) {
			continue
		}
		if ver.IsPreRelease() && !allow {
			foundPre = append(foundPre, ver)
		} else {
			matched = append(matched, ver)
		}
	}
	if matched == nil && foundPre != nil && spec.Prereleases != PrereleasesForbid {
		return foundPre
	}
	return matched
}

// FilterStrings is Filter over raw version strings; strings that do not
// parse as PEP 440 versions are dropped, never an error.
func (spec Specifier) FilterStrings(strs []string) []string {
	var matched, foundPre []string
	allow := spec.AllowsPrereleases()
	for _, str := range strs {
		ver, err := parseVersion(strings.TrimSpace(str))
		if err != nil {
			continue
		}
		if !spec.Match(*ver) {
			continue
		}
		if ver.IsPreRelease() && !allow {
			foundPre = append(foundPre, str)
		} else {
			matched = append(matched, str)
		}
	}
	if matched == nil && foundPre != nil && spec.Prereleases != PrereleasesForbid {
		return foundPre
	}
	return matched
}

// Intersection combines two specifiers into one that contains only versions
// contained in both.  Combining a set whose Prereleases is explicitly
// PrereleasesAllow with one that is explicitly PrereleasesForbid is an error.
func (spec Specifier) Intersection(other Specifier) (Specifier, error) {
	var ret Specifier
	switch {
	case spec.Prereleases == PrereleasesDetect:
		ret.Prereleases = other.Prereleases
	case other.Prereleases == PrereleasesDetect || other.Prereleases == spec.Prereleases:
		ret.Prereleases = spec.Prereleases
	default:
		return Specifier{}, fmt.Errorf(
			"pep440: cannot combine specifiers with conflicting prerelease overrides")
	}
	seen := make(map[string]struct{}, len(spec.Clauses)+len(other.Clauses))
	for _, clause := range append(append([]SpecifierClause{}, spec.Clauses...), other.Clauses...) {
		key := clause.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		ret.Clauses = append(ret.Clauses, clause)
	}
	return ret, nil
}

// Compatible release
// ------------------
//
// For a given release identifier ``V.N``, the compatible release clause is
// approximately equivalent to the pair of comparison clauses::
//
//     >= V.N, == V.*
//
// This operator MUST NOT be used with a single segment version number such as
// ``~=1``.  If a pre-release, post-release or developmental release is named
// in a compatible release clause as ``V.N.suffix``, then the suffix is
// ignored when determining the required prefix match.
func matchCompatible(spec, ver Version) bool {
	prefix := spec
	prefix.Release = prefix.Release[:len(prefix.Release)-1]
	prefix.Pre = nil
	prefix.Post = nil
	prefix.Dev = nil
	return matchGE(spec, ver) && matchPrefixMatch(prefix, ver)
}

// Version matching
// ----------------
//
// By default, the version matching operator is based on a strict equality
// comparison: the specified version must be exactly the same as the requested
// version.  The *only* substitution performed is the zero padding of the
// release segment to ensure the release segments are compared with the same
// length.
//
// If the specified version identifier is a public version identifier (no
// local version label), then the local version label of any candidate
// versions MUST be ignored when matching versions.
func matchStrictMatch(spec, ver Version) bool {
	if len(spec.Local) == 0 {
		return spec.PublicVersion.Cmp(ver.PublicVersion) == 0
	}
	return spec.Cmp(ver) == 0
}

// Prefix matching may be requested instead of strict comparison, by appending
// a trailing ``.*`` to the version identifier in the version matching
// clause.  This means that additional trailing segments will be ignored when
// determining whether or not a version identifier matches the clause.
func matchPrefixMatch(_spec, _ver Version) bool {
	spec, ver := _spec.PublicVersion, _ver.PublicVersion
	const (
		partRel = iota
		partPre
		partPost
	)
	// terminalPart identifies the terminal part of spec's version
	var terminalPart int
	switch {
	case spec.Post != nil:
		terminalPart = partPost
	case spec.Pre != nil:
		terminalPart = partPre
	default:
		terminalPart = partRel
	}

	// epoch /////////////////////////////////////////////////////

	if cmpEpoch(spec, ver) != 0 {
		return false
	}

	// release ///////////////////////////////////////////////////

	if terminalPart == partRel {
		if len(ver.Release) > len(spec.Release) {
			ver.Release = ver.Release[:len(spec.Release)]
		}
	}
	if cmpRelease(spec, ver) != 0 {
		return false
	}
	if terminalPart == partRel {
		return true // we're done
	}

	// pre-release ///////////////////////////////////////////////

	// Do this here instead of using cmpPreRelease because cmpPreRelease also takes in to
	// account .Post and .Dev.
	if (ver.Pre == nil) != (spec.Pre == nil) {
		return false
	} else if spec.Pre != nil && (preReleaseOrder[ver.Pre.L] != preReleaseOrder[spec.Pre.L] ||
		ver.Pre.N != spec.Pre.N) {
		return false
	}
	if terminalPart == partPre {
		return true // we're done
	}

	// post-release //////////////////////////////////////////////

	if cmpPostRelease(spec, ver) != 0 {
		return false
	}
	if terminalPart == partPost {
		return true // we're done
	}

	// developmental release /////////////////////////////////////

	panic("not reached")
}

// Version exclusion
// -----------------
//
// The allowed version identifiers and comparison semantics are the same as
// those of the version matching operator, except that the sense of any match
// is inverted.
func matchStrictExclude(spec, ver Version) bool {
	return !matchStrictMatch(spec, ver)
}

func matchPrefixExclude(spec, ver Version) bool {
	return !matchPrefixMatch(spec, ver)
}

// Inclusive ordered comparison
// ----------------------------
//
// The inclusive ordered comparison operators are ``<=`` and ``>=``.  Local
// version labels are ignored on the candidate side.
func matchLE(spec, ver Version) bool {
	return spec.Cmp(ver.Public()) >= 0
}

func matchGE(spec, ver Version) bool {
	return spec.Cmp(ver.Public()) <= 0
}

// Exclusive ordered comparison
// ----------------------------
//
// The exclusive ordered comparison ``>V`` **MUST NOT** allow a post-release
// of the given version unless ``V`` itself is a post release, and **MUST
// NOT** match a local version of the specified version.
//
// The exclusive ordered comparison ``<V`` **MUST NOT** allow a pre-release of
// the specified version unless the specified version is itself a
// pre-release.
func matchLT(spec, ver Version) bool {
	if spec.Cmp(ver) <= 0 {
		return false
	}
	if !spec.IsPreRelease() && ver.IsPreRelease() &&
		spec.BaseVersion().Cmp(ver.BaseVersion()) == 0 {
		return false
	}
	return true
}

func matchGT(spec, ver Version) bool {
	if spec.Cmp(ver) >= 0 {
		return false
	}
	if !spec.IsPostRelease() && ver.IsPostRelease() &&
		spec.BaseVersion().Cmp(ver.BaseVersion()) == 0 {
		return false
	}
	if len(ver.Local) > 0 && spec.BaseVersion().Cmp(ver.BaseVersion()) == 0 {
		return false
	}
	return true
}

// Arbitrary equality
// ------------------
//
// Arbitrary equality comparisons are simple string equality operations which
// do not take into account any of the semantic information such as zero
// padding or local versions.
func matchArbitrary(spec, ver string) bool {
	return strings.EqualFold(strings.TrimSpace(spec), strings.TrimSpace(ver))
}
