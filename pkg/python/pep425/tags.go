// Package pep425 implements PEP 425 -- Compatibility Tags for Built
// Distributions, along with the newer platform-tag grammars that grew out of
// it (manylinux, musllinux, macOS universal binaries, iOS, Android).
//
// https://www.python.org/dev/peps/pep-0425/
package pep425

import (
	"fmt"
	"strings"
)

// Tag is a wheel compatibility tag triple.  The three fields are always
// lowercase; construct values with NewTag to get that invariant for free.
type Tag struct {
	Interpreter string
	ABI         string
	Platform    string
}

func NewTag(interpreter, abi, platform string) Tag {
	return Tag{
		Interpreter: strings.ToLower(interpreter),
		ABI:         strings.ToLower(abi),
		Platform:    strings.ToLower(platform),
	}
}

func (t Tag) String() string {
	return t.Interpreter + "-" + t.ABI + "-" + t.Platform
}

// Decompress expands a compressed tag set ("py2.py3-none-any") in to its
// individual tags.
func (t Tag) Decompress() []Tag {
	var ret []Tag
	for _, x := range strings.Split(t.Interpreter, ".") {
		for _, y := range strings.Split(t.ABI, ".") {
			for _, z := range strings.Split(t.Platform, ".") {
				ret = append(ret, Tag{x, y, z})
			}
		}
	}
	return ret
}

// ParseTag parses the compressed tag set portion of a wheel filename
// ("cp311-cp311-manylinux_2_17_x86_64.manylinux2014_x86_64") into the set of
// tags it names.  The result is deduplicated; its order follows the input.
func ParseTag(str string) ([]Tag, error) {
	fields := strings.Split(str, "-")
	if len(fields) != 3 {
		return nil, fmt.Errorf("pep425.ParseTag: invalid tag: %q", str)
	}
	compressed := NewTag(fields[0], fields[1], fields[2])
	var ret []Tag
	seen := make(map[Tag]struct{})
	for _, tag := range compressed.Decompress() {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		ret = append(ret, tag)
	}
	return ret, nil
}

// Intersect returns whether any tag in tag-list 'a' matches any tag in tag-list 'b'; considering
// compressed tag sets.
func Intersect(a, b []Tag) bool {
	for _, a1 := range a {
		for _, a2 := range a1.Decompress() {
			for _, b1 := range b {
				for _, b2 := range b1.Decompress() {
					if a2 == b2 {
						return true
					}
				}
			}
		}
	}
	return false
}

// Installer is a list of tags that an installer supports, ordered from
// most-preferred to least-preferred; SysTags produces one for a described
// interpreter.
type Installer []Tag

func (inst Installer) Supports(t Tag) bool {
	return Intersect([]Tag(inst), []Tag{t})
}

// Preference returns a numeric representation of how much this Tag is preferred by the installer;
// may be used to sort things by Tag preference; lower values are more preferred.  The returned
// value is in the range [1,len(inst+1)]; the zero value is safe to use as "unset".
func (inst Installer) Preference(t Tag) int {
	for i, it := range inst {
		if Intersect([]Tag{it}, []Tag{t}) {
			return i + 1
		}
	}
	return len(inst) + 1
}
