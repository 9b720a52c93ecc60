package pep425

import (
	"fmt"
	"strings"
)

// Probe is a description of a running interpreter and its platform, as
// reported by a platform-probe collaborator (something that reads sysconfig,
// inspects the dynamic loader, or parses an ELF header; none of that happens
// here).  SysTags turns a Probe into the interpreter's tag preference order.
//
// The struct is deliberately flat and serializable so that a probe written
// on one machine can be evaluated anywhere.
type Probe struct {
	// InterpreterName is the implementation name as reported by the
	// interpreter ("cpython", "pypy", ...).
	InterpreterName string `json:"interpreter_name"`
	// PythonVersion is the language version, e.g. [3, 11].
	PythonVersion PythonVersion `json:"python_version"`
	// InterpreterVersion is the implementation's own version where that
	// differs from the language version (PyPy); unused otherwise.
	InterpreterVersion PythonVersion `json:"interpreter_version,omitempty"`
	// ABIs are the ABI tags the interpreter supports, most-preferred
	// first ("cp311", "cp311d", ...).
	ABIs []string `json:"abis,omitempty"`

	// OS is one of "linux", "darwin", "windows", "ios", "android"; any
	// other value produces a single generic platform tag.
	OS string `json:"os"`
	// Arch is the machine architecture ("x86_64", "aarch64", ...); for
	// Android it is the ABI ("arm64_v8a").
	Arch string `json:"arch"`

	// GlibcVersion and MuslVersion describe a Linux system's libc; a
	// Linux probe should carry exactly one of them.
	GlibcVersion *GlibcVersion `json:"glibc_version,omitempty"`
	MuslVersion  *MuslVersion  `json:"musl_version,omitempty"`
	// MacVersion is the macOS version; required when OS is "darwin".
	MacVersion *MacVersion `json:"mac_version,omitempty"`
	// IOSVersion and Multiarch describe an iOS system; required when OS
	// is "ios".
	IOSVersion *IOSVersion `json:"ios_version,omitempty"`
	Multiarch  string      `json:"multiarch,omitempty"`
	// AndroidAPILevel is required when OS is "android".
	AndroidAPILevel int `json:"android_api_level,omitempty"`

	// Manylinux is the optional external compatibility hook; it cannot
	// be expressed in a serialized probe.
	Manylinux ManylinuxPolicy `json:"-"`
}

// Interpreter returns the probe's interpreter tag ("cp311").
func (p Probe) Interpreter() string {
	return InterpreterShortName(p.InterpreterName) + joinVersion(p.PythonVersion[:2])
}

// PlatformTags returns the platform tags the probed system supports,
// most-specific first.
func (p Probe) PlatformTags() ([]string, error) {
	switch strings.ToLower(p.OS) {
	case "darwin", "macos":
		if p.MacVersion == nil {
			return nil, fmt.Errorf("pep425: %q probe requires mac_version", p.OS)
		}
		return MacPlatforms(*p.MacVersion, p.Arch), nil
	case "linux":
		var ret []string
		switch {
		case p.GlibcVersion != nil:
			ret = ManylinuxPlatforms(*p.GlibcVersion, p.Arch, p.Manylinux)
		case p.MuslVersion != nil:
			ret = MusllinuxPlatforms(*p.MuslVersion, p.Arch)
		default:
			return nil, fmt.Errorf("pep425: %q probe requires glibc_version or musl_version", p.OS)
		}
		return append(ret, "linux_"+strings.ToLower(p.Arch)), nil
	case "windows":
		return WindowsPlatforms(p.Arch), nil
	case "ios":
		if p.IOSVersion == nil || p.Multiarch == "" {
			return nil, fmt.Errorf("pep425: %q probe requires ios_version and multiarch", p.OS)
		}
		return IOSPlatforms(*p.IOSVersion, p.Multiarch), nil
	case "android":
		if p.AndroidAPILevel == 0 {
			return nil, fmt.Errorf("pep425: %q probe requires android_api_level", p.OS)
		}
		return AndroidPlatforms(p.AndroidAPILevel, p.Arch), nil
	default:
		return []string{strings.ToLower(p.OS) + "_" + strings.ToLower(p.Arch)}, nil
	}
}

// SysTags returns the probed interpreter's supported tags, ordered
// most-specific to least-specific: the interpreter-specific tags first
// (CPythonTags, PyPyTags, or GenericTags), then the pure-Python
// CompatibleTags.
func SysTags(p Probe) (Installer, error) {
	if len(p.PythonVersion) < 2 {
		return nil, fmt.Errorf("pep425: probe requires python_version with at least (major, minor)")
	}
	platforms, err := p.PlatformTags()
	if err != nil {
		return nil, err
	}

	var ret []Tag
	switch InterpreterShortName(p.InterpreterName) {
	case "cp":
		abis := p.ABIs
		if abis == nil {
			abis = []string{"cp" + joinVersion(p.PythonVersion[:2])}
		}
		ret = CPythonTags(p.PythonVersion, abis, platforms)
	case "pp":
		pypyVersion := p.InterpreterVersion
		if len(pypyVersion) < 2 {
			return nil, fmt.Errorf("pep425: pypy probe requires interpreter_version")
		}
		ret = PyPyTags(p.PythonVersion, pypyVersion, platforms)
	default:
		ret = GenericTags(p.Interpreter(), p.ABIs, platforms)
	}
	ret = append(ret, CompatibleTags(p.PythonVersion, p.Interpreter(), platforms)...)
	return Installer(ret), nil
}
