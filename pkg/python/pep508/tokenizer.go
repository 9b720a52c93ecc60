// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package pep508

import (
	"fmt"
	"regexp"
	"strings"
)

// This file is the lexer shared by the marker and requirement grammars: a
// rule-table tokenizer over an immutable source string with a cursor.  All
// patterns are compiled once, at package load.  The parser drives it
// on-demand; Check tries a single named rule at the cursor, so rule order
// never matters.

// A Token is a slice of the source that matched a named rule.
type Token struct {
	Kind string
	Text string
	Pos  int
}

// SyntaxError reports where in the source the tokenizer or parser gave up.
// The rendered message underlines the offending span with carets::
//
//     Expected end or semicolon (after version specifier)
//         name >= 1.0 os_name == "posix"
//              ^^^^^^^
type SyntaxError struct {
	Msg    string
	Source string
	Span   [2]int
}

func (err *SyntaxError) Error() string {
	width := err.Span[1] - err.Span[0]
	if width < 1 {
		width = 1
	}
	marker := strings.Repeat(" ", err.Span[0]) + strings.Repeat("^", width)
	return err.Msg + "\n    " + err.Source + "\n    " + marker
}

func compileRules(rules map[string]string) map[string]*regexp.Regexp {
	ret := make(map[string]*regexp.Regexp, len(rules))
	for kind, pattern := range rules {
		ret[kind] = regexp.MustCompile(`\A(?:` + pattern + `)`)
	}
	return ret
}

// The lexical fragments shared by both grammars.  VARIABLE admits the dotted
// spellings ("os.name") and the deprecated "python_implementation", which the
// parser maps onto the canonical names; it also admits the PEP 751 list
// variables "extras" and "dependency_groups".
//
//nolint:gochecknoglobals // compiled-once rule table
var defaultRules = compileRules(map[string]string{
	"LPAREN":        `\(`,
	"RPAREN":        `\)`,
	"LBRACKET":      `\[`,
	"RBRACKET":      `\]`,
	"SEMICOLON":     `;`,
	"COMMA":         `,`,
	"QUOTED_STRING": `('[^']*')|("[^"]*")`,
	"OP":            `===|==|~=|!=|<=|>=|<|>`,
	"BOOLOP":        `\b(or|and)\b`,
	"IN":            `\bin\b`,
	"NOT":           `\bnot\b`,
	"VARIABLE": `\b(python_version|python_full_version|os[._]name|sys[._]platform` +
		`|platform_(release|system)|platform[._](version|machine|python_implementation)` +
		`|python_implementation|implementation_(name|version)|extras?|dependency_groups)\b`,
	"VERSION":    `[^ \t,;()]+`,
	"AT":         `@`,
	"URL":        `[^ \t]+`,
	"IDENTIFIER": `\b[a-zA-Z0-9][a-zA-Z0-9._-]*\b`,
	"WS":         `[ \t]+`,
	"END":        `$`,
})

// Tokenizer is a cursor over a source string.  Check matches a single named
// rule at the cursor without advancing; Read consumes the last Check'd token;
// Expect is Check-or-error; Consume is Check-then-Read-if-present.
type Tokenizer struct {
	source string
	rules  map[string]*regexp.Regexp
	pos    int
	next   *Token
}

func newTokenizer(source string) *Tokenizer {
	return &Tokenizer{
		source: source,
		rules:  defaultRules,
	}
}

// Check reports whether the named rule matches at the cursor; on success the
// matched token is staged for Read.
func (t *Tokenizer) Check(kind string) bool {
	re, ok := t.rules[kind]
	if !ok {
		panic(fmt.Errorf("unknown token kind: %q", kind))
	}
	loc := re.FindStringIndex(t.source[t.pos:])
	if loc == nil {
		return false
	}
	t.next = &Token{
		Kind: kind,
		Text: t.source[t.pos : t.pos+loc[1]],
		Pos:  t.pos,
	}
	return true
}

// Read consumes and returns the token staged by the last successful Check.
func (t *Tokenizer) Read() Token {
	if t.next == nil {
		panic("pep508.Tokenizer.Read: no staged token; call Check first")
	}
	tok := *t.next
	t.pos += len(tok.Text)
	t.next = nil
	return tok
}

// Consume reads the named token if it is present, and does nothing if not.
func (t *Tokenizer) Consume(kind string) {
	if t.Check(kind) {
		t.Read()
	}
}

// Expect reads the named token, or fails with "Expected <expected>".
func (t *Tokenizer) Expect(kind, expected string) (Token, error) {
	if !t.Check(kind) {
		return Token{}, t.SyntaxErrorf("Expected %s", expected)
	}
	return t.Read(), nil
}

// SyntaxErrorf returns a *SyntaxError anchored at the cursor.
func (t *Tokenizer) SyntaxErrorf(format string, args ...interface{}) *SyntaxError {
	return t.syntaxErrorSpan(t.pos, t.pos, fmt.Sprintf(format, args...))
}

func (t *Tokenizer) syntaxErrorSpan(start, end int, msg string) *SyntaxError {
	return &SyntaxError{
		Msg:    msg,
		Source: t.source,
		Span:   [2]int{start, end},
	}
}
