package pep440

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/util/intstr"
)

// Version scheme
// ==============
//
// The canonical public version identifiers MUST comply with the following
// scheme::
//
//     [N!]N(.N)*[{a|b|rc}N][.postN][.devN]
//
// and a local version identifier appends ``[+<local version label>]``.

type Version = LocalVersion

// ParseVersion parses a string to a Version object, performing normalization.
func ParseVersion(str string) (*Version, error) {
	ver, err := parseVersion(str) // the routine from Appendix B
	if err != nil {
		return nil, fmt.Errorf("pep440.ParseVersion: %w", err)
	}
	return ver, nil
}

// Public version identifiers are separated into up to five segments:

type PublicVersion struct {
	// * Epoch segment: ``N!``
	Epoch int
	// * Release segment: ``N(.N)*``
	Release []int
	// * Pre-release segment: ``{a|b|rc}N``
	Pre *PreRelease
	// * Post-release segment: ``.postN``
	Post *int
	// * Development release segment: ``.devN``
	Dev *int
}

type PreRelease struct {
	L string
	N int
}

// GoString implements fmt.GoStringer.
func (ver PublicVersion) GoString() string {
	pre := "nil"
	if ver.Pre != nil {
		pre = fmt.Sprintf("&%#v", *ver.Pre)
	}
	post := "nil"
	if ver.Post != nil {
		post = fmt.Sprintf("intPtr(%#v)", *ver.Post)
	}
	dev := "nil"
	if ver.Dev != nil {
		dev = fmt.Sprintf("intPtr(%#v)", *ver.Dev)
	}
	return fmt.Sprintf("pep440.PublicVersion{Epoch:%d, Release:%#v, Pre:%s, Post:%s, Dev:%s}",
		ver.Epoch, ver.Release, pre, post, dev)
}

func (ver PublicVersion) writeTo(ret *strings.Builder) {
	if ver.Epoch > 0 {
		fmt.Fprintf(ret, "%d!", ver.Epoch)
	}
	if len(ver.Release) == 0 {
		panic("invalid version: no release segments")
	}
	fmt.Fprintf(ret, "%d", ver.Release[0])
	for _, segment := range ver.Release[1:] {
		fmt.Fprintf(ret, ".%d", segment)
	}
	if ver.Pre != nil {
		fmt.Fprintf(ret, "%s%d", ver.Pre.L, ver.Pre.N)
	}
	if ver.Post != nil {
		fmt.Fprintf(ret, ".post%d", *ver.Post)
	}
	if ver.Dev != nil {
		fmt.Fprintf(ret, ".dev%d", *ver.Dev)
	}
}

// String implements fmt.Stringer.  For a value produced by ParseVersion the
// result is the canonical form of the version; String itself does not perform
// any normalization.
func (ver PublicVersion) String() string {
	var ret strings.Builder
	ver.writeTo(&ret)
	return ret.String()
}

// Local version identifiers
// -------------------------
//
// Local version identifiers MUST comply with the following scheme::
//
//     <public version identifier>[+<local version label>]
//
// Local version labels MUST be limited to ASCII letters, ASCII digits, and
// periods, and MUST start and end with a letter or digit.

type LocalVersion struct {
	PublicVersion
	Local []intstr.IntOrString
}

// GoString implements fmt.GoStringer.
func (ver LocalVersion) GoString() string {
	return fmt.Sprintf("pep440.LocalVersion{PublicVersion:%#v, Local:%#v}",
		ver.PublicVersion, ver.Local)
}

// String implements fmt.Stringer.  For a value produced by ParseVersion the
// result is the canonical form of the version; String itself does not perform
// any normalization.
func (ver LocalVersion) String() string {
	var ret strings.Builder
	ver.PublicVersion.writeTo(&ret)
	sep := "+"
	for _, local := range ver.Local {
		ret.WriteString(sep)
		ret.WriteString(local.String())
		sep = "."
	}
	return ret.String()
}

// Comparison and ordering of local versions considers each segment of the
// local version (divided by a ``.``) separately.  If a segment consists
// entirely of ASCII digits then that section should be considered an integer
// for comparison purposes and if a segment contains any ASCII letters then
// that segment is compared lexicographically with case insensitivity.  When
// comparing a numeric and lexicographic segment, the numeric section always
// compares as greater than the lexicographic segment.  Additionally a local
// version with a great number of segments will always compare as greater than
// a local version with fewer segments, as long as the shorter local version's
// segments match the beginning of the longer local version's segments exactly.

func cmpLocalSegment(a, b *intstr.IntOrString) int {
	// handle one or both of them being absent
	switch {
	case a == nil && b == nil:
		panic("should not happen: cmpLocal shouldn't have bothered calling this")
	case a == nil && b != nil:
		return -1
	case a != nil && b == nil:
		return 1
	}
	switch {
	case a.Type == intstr.Int && b.Type == intstr.Int:
		return int(a.IntVal - b.IntVal)
	case a.Type == intstr.String && b.Type == intstr.String:
		switch {
		case a.StrVal < b.StrVal:
			return -1
		case a.StrVal > b.StrVal:
			return 1
		}
		return 0
	case a.Type == intstr.Int && b.Type == intstr.String:
		return 1
	case a.Type == intstr.String && b.Type == intstr.Int:
		return -1
	default:
		panic("should not happen: invalid intstr.IntOrString")
	}
}

func cmpLocal(a, b LocalVersion) int {
	for i := 0; i < len(a.Local) || i < len(b.Local); i++ {
		var aSeg, bSeg *intstr.IntOrString
		if i < len(a.Local) {
			aSeg = &(a.Local[i])
		}
		if i < len(b.Local) {
			bSeg = &(b.Local[i])
		}
		if d := cmpLocalSegment(aSeg, bSeg); d != 0 {
			return d
		}
	}
	return 0
}

// Cmp returns a number < 0 if version 'a' is less than version 'b', > 0 if 'a' is greater than 'b',
// or 0 if they are equal.  This is similar to the C-language strcmp.  You may think of this as
// returning the result of arithmetic subtraction "a-b"; though only the sign is defined; the
// magnitude may be anything.
func (a LocalVersion) Cmp(b LocalVersion) int {
	if d := a.PublicVersion.Cmp(b.PublicVersion); d != 0 {
		return d
	}
	return cmpLocal(a, b)
}

// Final releases
// --------------
//
// A version identifier that consists solely of a release segment and
// optionally an epoch identifier is termed a "final release".

func (ver PublicVersion) IsFinal() bool {
	return ver.Pre == nil && ver.Post == nil && ver.Dev == nil
}

func (ver LocalVersion) IsFinal() bool {
	return ver.PublicVersion.IsFinal() && len(ver.Local) == 0
}

// The release segment consists of one or more non-negative integer values,
// separated by dots.  When comparing release segments with different numbers
// of components, the shorter segment is padded out with additional zeros as
// necessary.

func (ver PublicVersion) releaseSegment(n int) int {
	if n < len(ver.Release) {
		return ver.Release[n]
	}
	return 0
}

func cmpRelease(a, b PublicVersion) int {
	for i := 0; i < len(a.Release) || i < len(b.Release); i++ {
		if diff := a.releaseSegment(i) - b.releaseSegment(i); diff != 0 {
			return diff
		}
	}
	return 0
}

// While any number of additional components after the first are permitted
// under this scheme, the most common variants are to use two components
// ("major.minor") or three components ("major.minor.micro").

func (ver PublicVersion) Major() int { return ver.releaseSegment(0) }
func (ver PublicVersion) Minor() int { return ver.releaseSegment(1) }
func (ver PublicVersion) Micro() int { return ver.releaseSegment(2) }

// Pre-releases
// ------------
//
// The pre-release segment consists of an alphabetical identifier for the
// pre-release phase, along with a non-negative integer value.  Pre-releases
// for a given release are ordered first by phase (alpha, beta, release
// candidate) and then by the numerical component within that phase.
//
// Installation tools SHOULD interpret ``c`` versions as being equivalent to
// ``rc`` versions (that is, ``c1`` indicates the same version as ``rc1``).

//nolint:gochecknoglobals // Would be 'const'.
var preReleaseOrder = map[string]int{
	"a":     -3,
	"alpha": -3,

	"b":    -2,
	"beta": -2,

	"rc":      -1,
	"c":       -1,
	"pre":     -1,
	"preview": -1,

	// absent: 0,
}

func cmpPreRelease(a, b PublicVersion) int {
	var aL, aN, bL, bN int
	var ok bool
	if a.Pre != nil {
		aL, ok = preReleaseOrder[a.Pre.L]
		if !ok {
			panic(fmt.Errorf("invalid pre-release string: %q", a.Pre.L))
		}
		aN = a.Pre.N
	} else if a.Dev != nil && a.Post == nil {
		aL = -4
	}
	if b.Pre != nil {
		bL, ok = preReleaseOrder[b.Pre.L]
		if !ok {
			panic(fmt.Errorf("invalid pre-release string: %q", b.Pre.L))
		}
		bN = b.Pre.N
	} else if b.Dev != nil && b.Post == nil {
		bL = -4
	}
	if aL != bL {
		return aL - bL
	}
	return aN - bN
}

// Post-releases
// -------------
//
// The post-release segment consists of the string ``.post``, followed by a
// non-negative integer value.  Post-releases are ordered by their numerical
// component, immediately following the corresponding release, and ahead of
// any subsequent release.

func cmpPostRelease(a, b PublicVersion) int {
	aPost := -1
	if a.Post != nil {
		aPost = *a.Post
	}
	bPost := -1
	if b.Post != nil {
		bPost = *b.Post
	}
	return aPost - bPost
}

// Developmental releases
// ----------------------
//
// The developmental release segment consists of the string ``.dev``, followed
// by a non-negative integer value.  Developmental releases are ordered by
// their numerical component, immediately before the corresponding release
// (and before any pre-releases with the same release segment), and following
// any previous release (including any post-releases).

func cmpDevRelease(a, b PublicVersion) int {
	switch {
	case a.Dev == nil && b.Dev == nil:
		return 0
	case a.Dev == nil && b.Dev != nil:
		return 1
	case a.Dev != nil && b.Dev == nil:
		return -1
	default:
		return (*a.Dev) - (*b.Dev)
	}
}

// "Pre-releases of any kind, including developmental releases, are implicitly
// excluded from all version specifiers" -- so for the purposes of exclusion,
// a developmental release counts as a pre-release.

func (ver PublicVersion) IsPreRelease() bool {
	return ver.Pre != nil || ver.Dev != nil
}

func (ver PublicVersion) IsPostRelease() bool {
	return ver.Post != nil
}

func (ver PublicVersion) IsDevRelease() bool {
	return ver.Dev != nil
}

// Version epochs
// --------------
//
// If included in a version identifier, the epoch appears before all other
// components, separated from the release segment by an exclamation mark.  If
// no explicit epoch is given, the implicit epoch is ``0``.

func cmpEpoch(a, b PublicVersion) int {
	return a.Epoch - b.Epoch
}

// Public returns the version without its local version label ("1.0+ubuntu.1"
// -> "1.0").
func (ver LocalVersion) Public() LocalVersion {
	ver.Local = nil
	return ver
}

// BaseVersion returns just the epoch and release segments of the version
// ("1!2.0rc1.post3+x" -> "1!2.0").
func (ver LocalVersion) BaseVersion() LocalVersion {
	return LocalVersion{
		PublicVersion: PublicVersion{
			Epoch:   ver.Epoch,
			Release: ver.Release,
		},
	}
}

// Normalization
// -------------
//
// In order to maintain better compatibility with existing versions there are
// a number of "alternative" syntaxes that MUST be taken into account when
// parsing versions.  These syntaxes MUST be considered when parsing a
// version, however they should be "normalized" to the standard syntax defined
// above.  Normalization happens during ParseVersion; Normalize re-parses an
// identifier that was constructed by hand.

func (ver PublicVersion) Normalize() (*PublicVersion, error) {
	n, err := ParseVersion(ver.String())
	if err != nil {
		return nil, err
	}
	return &n.PublicVersion, nil
}

func (ver LocalVersion) Normalize() (*LocalVersion, error) {
	n, err := ParseVersion(ver.String())
	if err != nil {
		return nil, err
	}
	return n, nil
}

// Summary of permitted suffixes and relative ordering
// ---------------------------------------------------

// Cmp returns a number < 0 if version 'a' is less than version 'b', > 0 if 'a' is greater than 'b',
// or 0 if they are equal.  This is similar to the C-language strcmp.  You may think of this as
// returning the result of arithmetic subtraction "a-b"; though only the sign is defined; the
// magnitude may be anything.
func (a PublicVersion) Cmp(b PublicVersion) int {
	// The epoch segment of version identifiers MUST be sorted according to the
	// numeric value of the given epoch.  If no epoch segment is present, the
	// implicit numeric value is ``0``.
	if d := cmpEpoch(a, b); d != 0 {
		return d
	}
	// The release segment of version identifiers MUST be sorted in the same
	// order as Python's tuple sorting when the normalized release segment is
	// parsed as follows::
	//
	//     tuple(map(int, release_segment.split(".")))
	//
	// All release segments involved in the comparison MUST be converted to a
	// consistent length by padding shorter segments with zeros as needed.
	if d := cmpRelease(a, b); d != 0 {
		return d
	}
	// Within a numeric release (``1.0``, ``2.7.3``), the following suffixes
	// are permitted and MUST be ordered as shown::
	//
	//    .devN, aN, bN, rcN, <no suffix>, .postN
	if d := cmpPreRelease(a, b); d != 0 {
		return d
	}
	// Within an alpha (``1.0a1``), beta (``1.0b1``), or release candidate
	// (``1.0rc1``, ``1.0c1``), the following suffixes are permitted and MUST
	// be ordered as shown::
	//
	//    .devN, <no suffix>, .postN
	if d := cmpPostRelease(a, b); d != 0 {
		return d
	}
	// Within a post-release (``1.0.post1``), the following suffixes are
	// permitted and MUST be ordered as shown::
	//
	//     .devN, <no suffix>
	return cmpDevRelease(a, b)
}
