package pep440

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/util/intstr"
)

// InvalidVersionError is the error returned for a string that does not match
// the PEP 440 version scheme.
type InvalidVersionError struct {
	Version string
}

func (err *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid version: %q", err.Version)
}

// Appendix B : Parsing version strings with regular expressions
// =============================================================
//
// To extract the components of a version identifier, use the following
// regular expression (as defined by the `packaging
// <https://github.com/pypa/packaging>`_ project).

// VersionPattern is the verbose (whitespace- and comment-tolerant) regular
// expression matching any valid PEP 440 version.  It is exported so that
// downstream tooling can embed it into larger grammars; strip the whitespace
// and comments (as in the unexported reVersion) before handing it to
// regexp.Compile, and remember to anchor it and to compile it
// case-insensitively.
const VersionPattern = `
	v?
	(?:
	    (?:(?P<epoch>[0-9]+)!)?                           # epoch
	    (?P<release>[0-9]+(?:\.[0-9]+)*)                  # release segment
	    (?P<pre>                                          # pre-release
	        [-_\.]?
	        (?P<pre_l>(a|b|c|rc|alpha|beta|pre|preview))
	        [-_\.]?
	        (?P<pre_n>[0-9]+)?
	    )?
	    (?P<post>                                         # post release
	        (?:-(?P<post_n1>[0-9]+))
	        |
	        (?:
	            [-_\.]?
	            (?P<post_l>post|rev|r)
	            [-_\.]?
	            (?P<post_n2>[0-9]+)?
	        )
	    )?
	    (?P<dev>                                          # dev release
	        [-_\.]?
	        (?P<dev_l>dev)
	        [-_\.]?
	        (?P<dev_n>[0-9]+)?
	    )?
	)
	(?:\+(?P<local>[a-z0-9]+(?:[-_\.][a-z0-9]+)*))?       # local version
`

var reVersion = regexp.MustCompile(`(?i)^\s*` +
	regexp.MustCompile(`(?:\s+|#[^\n]*)`).ReplaceAllString(VersionPattern, ``) +
	`\s*$`)

func parseVersion(str string) (*Version, error) {
	match := reVersion.FindStringSubmatch(str)
	if match == nil {
		return nil, &InvalidVersionError{Version: str}
	}

	var ver Version
	var err error

	if epoch := match[reVersion.SubexpIndex("epoch")]; epoch != "" {
		ver.Epoch, err = strconv.Atoi(epoch)
		if err != nil {
			return nil, err
		}
	}

	for _, segStr := range strings.Split(match[reVersion.SubexpIndex("release")], ".") {
		segInt, err := strconv.Atoi(segStr)
		if err != nil {
			return nil, err
		}
		ver.Release = append(ver.Release, segInt)
	}

	type letterNumber struct {
		L string
		N int
	}

	parseLetterNumber := func(letter, number string, acceptableLetters map[string][]string) (*letterNumber, error) {
		if letter == "" && number == "" {
			//nolint:nilnil // weird semantic
			return nil, nil
		}
		letter = strings.ToLower(letter)
		if letter != "" && number == "" {
			number = "0"
		}
		var ret letterNumber

		if _, ok := acceptableLetters[letter]; ok {
			ret.L = letter
		} else {
			found := false
		outer:
			for canonical, others := range acceptableLetters {
				for _, other := range others {
					if letter == other {
						ret.L = canonical
						found = true
						break outer
					}
				}
			}
			if !found {
				return nil, fmt.Errorf("invalid string-part: %q", letter)
			}
		}

		if number != "" {
			ret.N, err = strconv.Atoi(number)
			if err != nil {
				return nil, err
			}
		}
		return &ret, nil
	}

	pre, err := parseLetterNumber(
		match[reVersion.SubexpIndex("pre_l")],
		match[reVersion.SubexpIndex("pre_n")],
		map[string][]string{
			"a":  {"alpha"},
			"b":  {"beta"},
			"rc": {"c", "pre", "preview"},
		})
	if err != nil {
		return nil, fmt.Errorf("pre-release: %w", err)
	}
	if pre != nil {
		ver.Pre = &PreRelease{
			L: pre.L,
			N: pre.N,
		}
	}

	post, err := parseLetterNumber(
		match[reVersion.SubexpIndex("post_l")],
		match[reVersion.SubexpIndex("post_n1")]+match[reVersion.SubexpIndex("post_n2")],
		map[string][]string{
			"post": {"", "rev", "r"},
		})
	if err != nil {
		return nil, fmt.Errorf("post-release: %w", err)
	}
	if post != nil {
		ver.Post = &post.N
	}

	dev, err := parseLetterNumber(
		match[reVersion.SubexpIndex("dev_l")],
		match[reVersion.SubexpIndex("dev_n")],
		map[string][]string{
			"dev": nil,
		})
	if err != nil {
		return nil, fmt.Errorf("dev: %w", err)
	}
	if dev != nil {
		ver.Dev = &dev.N
	}

	localParts := strings.FieldsFunc(match[reVersion.SubexpIndex("local")], func(r rune) bool {
		return strings.ContainsRune("-_.", r)
	})
	for _, part := range localParts {
		ver.Local = append(ver.Local, intstr.Parse(strings.ToLower(part)))
	}

	return &ver, nil
}
