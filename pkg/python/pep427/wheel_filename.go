// Package pep427 implements the wheel filename convention from PEP 427 --
// The Wheel Binary Package Format.
//
// https://www.python.org/dev/peps/pep-0427/#file-name-convention
//
// Only the filename grammar lives here; reading or installing wheel archives
// is somebody else's job.
package pep427

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pypa/packaging/pkg/python/pep425"
	"github.com/pypa/packaging/pkg/python/pep440"
	"github.com/pypa/packaging/pkg/python/pep503"
)

// InvalidWheelFilenameError is the error returned for a filename that
// violates the wheel naming convention.
type InvalidWheelFilenameError struct {
	Filename string
	Msg      string
}

func (err *InvalidWheelFilenameError) Error() string {
	return fmt.Sprintf("invalid wheel filename (%s): %q", err.Msg, err.Filename)
}

// Build is the optional build tag between the version and the interpreter
// tag: a leading number and an arbitrary trailing string ("1", "2b1").  It
// must start with a digit.
type Build struct {
	Number int
	Suffix string
}

func (b Build) String() string {
	return strconv.Itoa(b.Number) + b.Suffix
}

var (
	// "Each component of the filename is escaped by replacing runs of
	// non-alphanumeric characters with an underscore".
	reEscape = regexp.MustCompile(`[^A-Za-z0-9]+`)
	// "In distribution names, any run of -_. characters (HYPHEN-MINUS,
	// LOW LINE and FULL STOP) should be replaced with _"; anything else
	// outside the alphanumerics never appears in a well-formed filename.
	reWheelName = regexp.MustCompile(`^[A-Za-z0-9._]*$`)
	reBuild     = regexp.MustCompile(`^([0-9]+)(.*)$`)
)

// ParseWheelFilename parses "<name>-<version>[-<build>]-<interp>-<abi>-<plat>.whl".
// The returned name is canonicalized and the version normalized; the tag
// portion is expanded from its compressed form.
func ParseWheelFilename(filename string) (pep503.NormalizedName, *pep440.Version, *Build, []pep425.Tag, error) {
	fail := func(msg string) (pep503.NormalizedName, *pep440.Version, *Build, []pep425.Tag, error) {
		return "", nil, nil, nil, fmt.Errorf("pep427.ParseWheelFilename: %w",
			&InvalidWheelFilenameError{Filename: filename, Msg: msg})
	}

	if !strings.HasSuffix(filename, ".whl") {
		return fail("extension must be '.whl'")
	}
	stem := strings.TrimSuffix(filename, ".whl")
	dashes := strings.Count(stem, "-")
	if dashes != 4 && dashes != 5 {
		return fail("wrong number of parts")
	}
	parts := strings.SplitN(stem, "-", dashes-1)

	namePart := parts[0]
	if strings.Contains(namePart, "__") || !reWheelName.MatchString(namePart) {
		return fail("invalid project name")
	}
	name := pep503.Normalize(namePart)

	version, err := pep440.ParseVersion(parts[1])
	if err != nil {
		return fail("invalid version " + strconv.Quote(parts[1]))
	}

	var build *Build
	if dashes == 5 {
		buildPart := parts[2]
		match := reBuild.FindStringSubmatch(buildPart)
		if match == nil {
			return fail("invalid build number " + strconv.Quote(buildPart))
		}
		number, err := strconv.Atoi(match[1])
		if err != nil {
			return fail("invalid build number " + strconv.Quote(buildPart))
		}
		build = &Build{Number: number, Suffix: match[2]}
	}

	tags, err := pep425.ParseTag(parts[len(parts)-1])
	if err != nil {
		return fail("invalid compressed tag set")
	}

	return name, version, build, tags, nil
}

// compressTagSet renders a tag set in compressed form: the distinct values
// of each of the three fields, sorted and joined with ".".
func compressTagSet(tags []pep425.Tag) string {
	fields := [3]map[string]struct{}{
		make(map[string]struct{}),
		make(map[string]struct{}),
		make(map[string]struct{}),
	}
	for _, tag := range tags {
		fields[0][tag.Interpreter] = struct{}{}
		fields[1][tag.ABI] = struct{}{}
		fields[2][tag.Platform] = struct{}{}
	}
	parts := make([]string, 0, 3)
	for _, field := range fields {
		vals := make([]string, 0, len(field))
		for val := range field {
			vals = append(vals, val)
		}
		sort.Strings(vals)
		parts = append(parts, strings.Join(vals, "."))
	}
	return strings.Join(parts, "-")
}

// CreateWheelFilename composes a wheel filename; the project name is
// re-encoded with underscores and the version serialized canonically, so any
// spelling of either produces the same filename.
func CreateWheelFilename(name string, version pep440.Version, build *Build, tags []pep425.Tag) string {
	parts := []string{
		reEscape.ReplaceAllLiteralString(string(pep503.Normalize(name)), "_"),
		version.String(),
	}
	if build != nil {
		parts = append(parts, build.String())
	}
	parts = append(parts, compressTagSet(tags))
	return strings.Join(parts, "-") + ".whl"
}
