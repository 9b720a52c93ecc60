package pep425

import (
	"fmt"
	"strconv"
	"strings"
)

// Interpreter tag enumeration: given an interpreter and the platform tags it
// runs on, list every tag it can install, most-specific first.  All of the
// enumerators are pure functions of their arguments; finding out what the
// running interpreter actually is belongs to the Probe collaborator.

// PythonVersion is a version_info-style version prefix, most commonly
// (major, minor).
type PythonVersion []int

// joinVersion renders a version the way interpreter tags spell it: no dots
// ("3.11" -> "311").
func joinVersion(version PythonVersion) string {
	var ret strings.Builder
	for _, part := range version {
		ret.WriteString(strconv.Itoa(part))
	}
	return ret.String()
}

//nolint:gochecknoglobals // Would be 'const'.
var interpreterShortNames = map[string]string{
	"python":     "py", // Generic.
	"cpython":    "cp",
	"pypy":       "pp",
	"ironpython": "ip",
	"jython":     "jy",
}

// InterpreterShortName maps an implementation name to its tag abbreviation;
// unknown implementations pass through unchanged.
func InterpreterShortName(name string) string {
	name = strings.ToLower(name)
	if short, ok := interpreterShortNames[name]; ok {
		return short
	}
	return name
}

// CPythonTags returns the tags for a CPython interpreter, in order:
//
//   - cp<version>-<abi>-<platform>, for each of the given abis
//   - cp<version>-abi3-<platform>
//   - cp<version>-none-<platform>
//   - cp<older version>-abi3-<platform>, for minor versions down to 3.2,
//     where the stable ABI first appeared
//
// If "abi3" or "none" appear in abis they are dropped there; they are always
// emitted at their standard positions.
func CPythonTags(version PythonVersion, abis, platforms []string) []Tag {
	var interpreter string
	if len(version) < 2 {
		interpreter = "cp" + joinVersion(version[:1])
	} else {
		interpreter = "cp" + joinVersion(version[:2])
	}

	var ret []Tag
	for _, abi := range abis {
		if abi == "abi3" || abi == "none" {
			continue
		}
		for _, platform := range platforms {
			ret = append(ret, NewTag(interpreter, abi, platform))
		}
	}
	if len(version) > 1 {
		for _, platform := range platforms {
			ret = append(ret, NewTag(interpreter, "abi3", platform))
		}
	}
	for _, platform := range platforms {
		ret = append(ret, NewTag(interpreter, "none", platform))
	}
	// PEP 384 (the stable ABI) was first implemented in Python 3.2.
	if len(version) > 1 {
		for minor := version[1] - 1; minor >= 2; minor-- {
			older := fmt.Sprintf("cp%d%d", version[0], minor)
			for _, platform := range platforms {
				ret = append(ret, NewTag(older, "abi3", platform))
			}
		}
	}
	return ret
}

// PyPyTags returns the tags for a PyPy interpreter; the interpreter tag
// carries the Python language version and the ABI tag carries the PyPy
// version ("pp310-pypy310_pp73-<platform>").
func PyPyTags(version, pypyVersion PythonVersion, platforms []string) []Tag {
	interpreter := "pp" + joinVersion(version[:2])
	abi := fmt.Sprintf("pypy%s_pp%s", joinVersion(version[:2]), joinVersion(pypyVersion[:2]))
	return GenericTags(interpreter, []string{abi}, platforms)
}

// GenericTags returns the tags for an interpreter with no specialized
// scheme: <interpreter>-<abi>-<platform> for each given ABI, with "none"
// appended if it was not explicitly provided.
func GenericTags(interpreter string, abis, platforms []string) []Tag {
	hasNone := false
	for _, abi := range abis {
		if abi == "none" {
			hasNone = true
		}
	}
	if !hasNone {
		abis = append(append([]string{}, abis...), "none")
	}
	var ret []Tag
	for _, abi := range abis {
		for _, platform := range platforms {
			ret = append(ret, NewTag(interpreter, abi, platform))
		}
	}
	return ret
}

// pyInterpreterRange yields "py" interpreter tags in descending order of
// specificity: py<major><minor>, py<major>, then each older py<major><m>.
func pyInterpreterRange(version PythonVersion) []string {
	var ret []string
	if len(version) > 1 {
		ret = append(ret, "py"+joinVersion(version[:2]))
	}
	ret = append(ret, fmt.Sprintf("py%d", version[0]))
	if len(version) > 1 {
		for minor := version[1] - 1; minor >= 0; minor-- {
			ret = append(ret, fmt.Sprintf("py%d%d", version[0], minor))
		}
	}
	return ret
}

// CompatibleTags returns the pure-Python tags compatible with any
// interpreter of the given language version, in order:
//
//   - py*-none-<platform>
//   - <interpreter>-none-any, if an interpreter tag is given
//   - py*-none-any
func CompatibleTags(version PythonVersion, interpreter string, platforms []string) []Tag {
	var ret []Tag
	for _, py := range pyInterpreterRange(version) {
		for _, platform := range platforms {
			ret = append(ret, NewTag(py, "none", platform))
		}
	}
	if interpreter != "" {
		ret = append(ret, NewTag(interpreter, "none", "any"))
	}
	for _, py := range pyInterpreterRange(version) {
		ret = append(ret, NewTag(py, "none", "any"))
	}
	return ret
}
