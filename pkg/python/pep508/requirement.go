// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package pep508 implements PEP 508 -- Dependency specification for Python
// Software Packages: the requirement grammar, and the environment-marker
// grammar and its evaluation.
//
// https://www.python.org/dev/peps/pep-0508/
package pep508

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/pypa/packaging/pkg/python/pep440"
	"github.com/pypa/packaging/pkg/python/pep503"
)

// InvalidRequirementError is the error returned for a string that violates
// the requirement grammar.
type InvalidRequirementError struct {
	Err error
}

func (err *InvalidRequirementError) Error() string {
	return fmt.Sprintf("invalid requirement: %v", err.Err)
}

func (err *InvalidRequirementError) Unwrap() error {
	return err.Err
}

// Requirement is a parsed dependency specifier::
//
//     requirement = name [ "[" extras "]" ] ( url_spec | version_spec ) [ ";" marker ]
//
// Name keeps the display form as written; Extras are stored already
// canonicalized, deduplicated, and sorted.  A requirement has either a URL or
// a (possibly empty) version specifier, never both.
type Requirement struct {
	Name      string
	Extras    []pep503.NormalizedName
	URL       string
	Specifier pep440.Specifier
	Marker    *Marker
}

// ParseRequirement parses a complete PEP 508 dependency line, such as::
//
//     name[quux, strange]>=2.8.1,==2.8.* ; python_version < "2.7"
func ParseRequirement(str string) (*Requirement, error) {
	req, err := parseRequirement(str)
	if err != nil {
		return nil, fmt.Errorf("pep508.ParseRequirement: %w", &InvalidRequirementError{Err: err})
	}
	return req, nil
}

func parseRequirement(str string) (*Requirement, error) {
	var ret Requirement
	tokens := newTokenizer(str)

	tokens.Consume("WS")
	nameTok, err := tokens.Expect("IDENTIFIER", "package name at the start of dependency specifier")
	if err != nil {
		return nil, err
	}
	ret.Name = strings.TrimSpace(nameTok.Text)

	tokens.Consume("WS")
	ret.Extras, err = parseExtras(tokens)
	if err != nil {
		return nil, err
	}

	tokens.Consume("WS")
	if tokens.Check("AT") {
		tokens.Read()
		tokens.Consume("WS")
		urlStart := tokens.pos
		urlTok, err := tokens.Expect("URL", "URL after @")
		if err != nil {
			return nil, err
		}
		ret.URL = strings.TrimSpace(urlTok.Text)
		if u, err := url.Parse(ret.URL); err != nil || u.Scheme == "" {
			return nil, tokens.syntaxErrorSpan(urlStart, tokens.pos,
				fmt.Sprintf("URL must have a scheme: %q", ret.URL))
		}
		if tokens.Check("END") {
			return &ret, nil
		}
		if _, err := tokens.Expect("WS", "whitespace after URL"); err != nil {
			return nil, err
		}
		if tokens.Check("END") {
			return &ret, nil
		}
		ret.Marker, err = parseRequirementMarker(tokens, urlStart, "URL and whitespace")
		if err != nil {
			return nil, err
		}
	} else {
		specStart := tokens.pos
		specText, err := parseSpecifierText(tokens)
		if err != nil {
			return nil, err
		}
		ret.Specifier, err = pep440.ParseSpecifier(specText)
		if err != nil {
			return nil, tokens.syntaxErrorSpan(specStart, tokens.pos, err.Error())
		}
		tokens.Consume("WS")
		if tokens.Check("END") {
			return &ret, nil
		}
		after := "version specifier"
		if specText == "" {
			after = "name and no valid version specifier"
		}
		ret.Marker, err = parseRequirementMarker(tokens, specStart, after)
		if err != nil {
			return nil, err
		}
	}

	tokens.Consume("WS")
	if _, err := tokens.Expect("END", "end of dependency specifier"); err != nil {
		return nil, err
	}
	return &ret, nil
}

// parseRequirementMarker reads the "; marker" tail; anything else at this
// point is the classic forgot-the-semicolon mistake, reported from spanStart
// so the caret covers the text that failed to parse as a specifier.
func parseRequirementMarker(tokens *Tokenizer, spanStart int, after string) (*Marker, error) {
	if !tokens.Check("SEMICOLON") {
		return nil, tokens.syntaxErrorSpan(spanStart, tokens.pos,
			fmt.Sprintf("Expected end or semicolon (after %s)", after))
	}
	tokens.Read()
	expr, err := parseMarkerOr(tokens)
	if err != nil {
		return nil, err
	}
	return &Marker{expr: expr}, nil
}

// extras: LBRACKET wsp* extras_list? wsp* RBRACKET
func parseExtras(tokens *Tokenizer) ([]pep503.NormalizedName, error) {
	if !tokens.Check("LBRACKET") {
		return nil, nil
	}
	tokens.Read()
	tokens.Consume("WS")

	var extras []pep503.NormalizedName
	seen := make(map[pep503.NormalizedName]struct{})
	add := func(text string) {
		extra := pep503.Normalize(text)
		if _, dup := seen[extra]; !dup {
			seen[extra] = struct{}{}
			extras = append(extras, extra)
		}
	}

	if tokens.Check("IDENTIFIER") {
		add(strings.TrimSpace(tokens.Read().Text))
		for {
			tokens.Consume("WS")
			if tokens.Check("IDENTIFIER") {
				return nil, tokens.SyntaxErrorf("Expected comma between extra names")
			}
			if !tokens.Check("COMMA") {
				break
			}
			tokens.Read()
			tokens.Consume("WS")
			extraTok, err := tokens.Expect("IDENTIFIER", "extra name after comma")
			if err != nil {
				return nil, err
			}
			add(strings.TrimSpace(extraTok.Text))
		}
	}

	tokens.Consume("WS")
	if _, err := tokens.Expect("RBRACKET", "closing square bracket for extras"); err != nil {
		return nil, err
	}
	sort.Slice(extras, func(i, j int) bool { return extras[i] < extras[j] })
	return extras, nil
}

// version_spec: LPAREN version_many? RPAREN | version_many
// version_many: OP wsp* VERSION (wsp* COMMA wsp* OP wsp* VERSION)*
//
// The clause text is collected here and handed to pep440.ParseSpecifier for
// the operand-shape validation.
func parseSpecifierText(tokens *Tokenizer) (string, error) {
	tokens.Consume("WS")
	parens := false
	if tokens.Check("LPAREN") {
		tokens.Read()
		parens = true
	}

	var clauses []string
	for {
		tokens.Consume("WS")
		if !tokens.Check("OP") {
			break
		}
		op := strings.TrimSpace(tokens.Read().Text)
		tokens.Consume("WS")
		verTok, err := tokens.Expect("VERSION", "version after comparison operator")
		if err != nil {
			return "", err
		}
		clauses = append(clauses, op+strings.TrimSpace(verTok.Text))
		tokens.Consume("WS")
		if !tokens.Check("COMMA") {
			break
		}
		tokens.Read()
		tokens.Consume("WS")
		if !tokens.Check("OP") {
			return "", tokens.SyntaxErrorf("Expected version specifier after comma")
		}
	}

	if parens {
		tokens.Consume("WS")
		if _, err := tokens.Expect("RPAREN", "matching right parenthesis"); err != nil {
			return "", err
		}
	}
	return strings.Join(clauses, ","), nil
}

// String implements fmt.Stringer, returning the canonical serialization of
// the requirement.
func (req *Requirement) String() string {
	var parts []string
	parts = append(parts, req.Name)

	if len(req.Extras) > 0 {
		strs := make([]string, len(req.Extras))
		for i, extra := range req.Extras {
			strs[i] = string(extra)
		}
		sort.Strings(strs)
		parts = append(parts, "["+strings.Join(strs, ",")+"]")
	}

	if len(req.Specifier.Clauses) > 0 {
		parts = append(parts, req.Specifier.String())
	}

	if req.URL != "" {
		parts = append(parts, "@ "+req.URL)
		if req.Marker != nil {
			parts = append(parts, " ")
		}
	}

	if req.Marker != nil {
		parts = append(parts, "; "+req.Marker.String())
	}

	return strings.Join(parts, "")
}

// Equal reports whether two requirements are interchangeable: same
// canonicalized name, extras, URL, specifier set, and marker.
func (req *Requirement) Equal(other *Requirement) bool {
	if req == nil || other == nil {
		return req == other
	}
	if pep503.Normalize(req.Name) != pep503.Normalize(other.Name) {
		return false
	}
	if len(req.Extras) != len(other.Extras) {
		return false
	}
	for i := range req.Extras {
		if req.Extras[i] != other.Extras[i] {
			return false
		}
	}
	return req.URL == other.URL &&
		req.Specifier.String() == other.Specifier.String() &&
		req.Marker.Equal(other.Marker)
}
