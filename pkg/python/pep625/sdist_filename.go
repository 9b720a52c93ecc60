// Package pep625 implements the sdist filename convention from PEP 625 --
// Filename of a Source Distribution.
//
// https://www.python.org/dev/peps/pep-0625/
package pep625

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pypa/packaging/pkg/python/pep440"
	"github.com/pypa/packaging/pkg/python/pep503"
)

// InvalidSdistFilenameError is the error returned for a filename that
// violates the sdist naming convention.
type InvalidSdistFilenameError struct {
	Filename string
	Msg      string
}

func (err *InvalidSdistFilenameError) Error() string {
	return fmt.Sprintf("invalid sdist filename (%s): %q", err.Msg, err.Filename)
}

var reEscape = regexp.MustCompile(`[^A-Za-z0-9.]+`)

// ParseSdistFilename parses "<name>-<version>.tar.gz" (or the legacy ".zip"
// spelling).  A canonical PEP 440 version contains no dash, so the name and
// version split at the last dash before the extension.
func ParseSdistFilename(filename string) (pep503.NormalizedName, *pep440.Version, error) {
	fail := func(msg string) (pep503.NormalizedName, *pep440.Version, error) {
		return "", nil, fmt.Errorf("pep625.ParseSdistFilename: %w",
			&InvalidSdistFilenameError{Filename: filename, Msg: msg})
	}

	var stem string
	switch {
	case strings.HasSuffix(filename, ".tar.gz"):
		stem = strings.TrimSuffix(filename, ".tar.gz")
	case strings.HasSuffix(filename, ".zip"):
		stem = strings.TrimSuffix(filename, ".zip")
	default:
		return fail("extension must be '.tar.gz' or '.zip'")
	}

	sep := strings.LastIndex(stem, "-")
	if sep < 0 {
		return fail("name and version must be separated by a dash")
	}
	namePart, versionPart := stem[:sep], stem[sep+1:]

	name, err := pep503.ParseName(namePart)
	if err != nil {
		return fail("invalid project name " + fmt.Sprintf("%q", namePart))
	}
	version, err := pep440.ParseVersion(versionPart)
	if err != nil {
		return fail("invalid version " + fmt.Sprintf("%q", versionPart))
	}
	return name, version, nil
}

// CreateSdistFilename composes an sdist filename; the project name is
// re-encoded with underscores and the version serialized canonically.
func CreateSdistFilename(name string, version pep440.Version) string {
	escaped := reEscape.ReplaceAllLiteralString(string(pep503.Normalize(name)), "_")
	return escaped + "-" + version.String() + ".tar.gz"
}
