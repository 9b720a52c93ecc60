package pep508

import (
	"fmt"
	"strings"

	"github.com/pypa/packaging/pkg/python/pep440"
	"github.com/pypa/packaging/pkg/python/pep503"
)

// EvalContext selects which document the marker is being evaluated for; the
// contexts differ only in how strict they are about nonsense ordered
// comparisons (see evalComparison); list-valued variables resolve the same
// way in every context.
type EvalContext int

const (
	// ContextMetadata evaluates a marker from a distribution's core
	// metadata; nonsense ordered comparisons are an error.
	ContextMetadata EvalContext = iota
	// ContextLockFile evaluates a marker from a PEP 751 lock file.
	ContextLockFile
	// ContextRequirement evaluates a marker from a requirement line.
	ContextRequirement
)

func (ctx EvalContext) String() string {
	str, ok := map[EvalContext]string{
		ContextMetadata:    "metadata",
		ContextLockFile:    "lock_file",
		ContextRequirement: "requirement",
	}[ctx]
	if !ok {
		panic(fmt.Errorf("invalid EvalContext: %d", int(ctx)))
	}
	return str
}

// Environment is the mapping of PEP 508 environment keys to values that a
// marker is evaluated against.  Scalar holds the string-valued keys
// ("os_name", "python_version", ...); List holds the PEP 751 list-valued
// keys ("extras", "dependency_groups").
//
// Populating the mapping is the platform-probe collaborator's job: every
// scalar key it returns must be non-empty except "extra", which defaults to
// the empty string so that `extra == "x"` is simply false when no extra was
// requested.
type Environment struct {
	Scalar map[string]string   `json:"scalar"`
	List   map[string][]string `json:"list,omitempty"`
}

// ScalarKeys lists the closed set of string-valued environment keys, under
// their canonical names.
func ScalarKeys() []string {
	return []string{
		"implementation_name",
		"implementation_version",
		"os_name",
		"platform_machine",
		"platform_release",
		"platform_system",
		"platform_version",
		"python_full_version",
		"platform_python_implementation",
		"python_version",
		"sys_platform",
		"extra",
	}
}

// ListKeys lists the closed set of list-valued environment keys.
func ListKeys() []string {
	return []string{
		"extras",
		"dependency_groups",
	}
}

// NewEnvironment returns an Environment with every key present and empty,
// for the platform-probe collaborator to fill in.
func NewEnvironment() Environment {
	env := Environment{
		Scalar: make(map[string]string),
		List:   make(map[string][]string),
	}
	for _, key := range ScalarKeys() {
		env.Scalar[key] = ""
	}
	for _, key := range ListKeys() {
		env.List[key] = nil
	}
	return env
}

// UndefinedEnvironmentNameError is the error returned when a marker
// references a key that is absent from the environment.
type UndefinedEnvironmentNameError struct {
	Name string
}

func (err *UndefinedEnvironmentNameError) Error() string {
	return fmt.Sprintf("undefined environment name: %q", err.Name)
}

// UndefinedComparisonError is the error returned, under ContextMetadata, for
// an ordered comparison between values that are not PEP 440 versions.
type UndefinedComparisonError struct {
	Op  Op
	LHS string
	RHS string
}

func (err *UndefinedComparisonError) Error() string {
	return fmt.Sprintf("undefined comparison: %q %s %q", err.LHS, err.Op, err.RHS)
}

// The closed subset of keys whose values are compared as PEP 440 versions
// when both sides of a comparison parse as versions.
func isVersionKey(name string) bool {
	switch name {
	case "python_version", "python_full_version", "implementation_version",
		"platform_release", "platform_version":
		return true
	default:
		return false
	}
}

// Evaluate evaluates the marker against an environment, under an evaluation
// context.  Evaluation is pure: identical inputs yield identical results.
func (m *Marker) Evaluate(env Environment, ctx EvalContext) (bool, error) {
	return evalExpr(m.expr, env, ctx)
}

func evalExpr(expr MarkerExpr, env Environment, ctx EvalContext) (bool, error) {
	switch node := expr.(type) {
	case Compare:
		return evalCompare(node, env, ctx)
	case And:
		for _, child := range node {
			ok, err := evalExpr(child, env, ctx)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case Or:
		for _, child := range node {
			ok, err := evalExpr(child, env, ctx)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	default:
		panic(fmt.Errorf("invalid MarkerExpr node: %T", expr))
	}
}

// A resolved side of a comparison: either a scalar string or a list.
type markerOperand struct {
	varName string // "" for literals
	str     string
	list    []string
	isList  bool
}

func resolveMarkerVar(v MarkerVar, env Environment) (markerOperand, error) {
	switch val := v.(type) {
	case Value:
		return markerOperand{str: string(val)}, nil
	case Variable:
		name := string(val)
		if list, ok := env.List[name]; ok && isListKey(name) {
			return markerOperand{varName: name, list: list, isList: true}, nil
		}
		if str, ok := env.Scalar[name]; ok {
			return markerOperand{varName: name, str: str}, nil
		}
		// "extra" is never undefined; it defaults to the empty string.
		if name == "extra" {
			return markerOperand{varName: name}, nil
		}
		return markerOperand{}, &UndefinedEnvironmentNameError{Name: name}
	default:
		panic(fmt.Errorf("invalid MarkerVar: %T", v))
	}
}

func isListKey(name string) bool {
	return name == "extras" || name == "dependency_groups"
}

func evalCompare(node Compare, env Environment, ctx EvalContext) (bool, error) {
	lhs, err := resolveMarkerVar(node.Left, env)
	if err != nil {
		return false, err
	}
	rhs, err := resolveMarkerVar(node.Right, env)
	if err != nil {
		return false, err
	}

	// When comparing extra names, normalize per PEP 503 (PEP 685).
	if isExtraKey(lhs.varName) || isExtraKey(rhs.varName) {
		lhs = normalizeOperand(lhs)
		rhs = normalizeOperand(rhs)
	}

	if node.Op == "in" || node.Op == "not in" {
		var found bool
		switch {
		case rhs.isList:
			found = listContains(rhs.list, lhs.str)
		case lhs.isList:
			found = listContains(lhs.list, rhs.str)
		default:
			// substring test, like Python's `in` on strings
			found = strings.Contains(rhs.str, lhs.str)
		}
		if node.Op == "not in" {
			return !found, nil
		}
		return found, nil
	}

	if lhs.isList || rhs.isList {
		// Only membership tests make sense against a list.
		if ctx == ContextMetadata {
			return false, &UndefinedComparisonError{Op: node.Op, LHS: lhs.str, RHS: rhs.str}
		}
		return false, nil
	}

	return evalComparison(lhs, node.Op, rhs, ctx)
}

func normalizeOperand(side markerOperand) markerOperand {
	if side.isList {
		normalized := make([]string, len(side.list))
		for i, item := range side.list {
			normalized[i] = string(pep503.Normalize(item))
		}
		side.list = normalized
		return side
	}
	side.str = string(pep503.Normalize(side.str))
	return side
}

func listContains(list []string, item string) bool {
	for _, member := range list {
		if member == item {
			return true
		}
	}
	return false
}

// evalComparison compares two scalar values:
//
//   - ``===`` is always verbatim string equality.
//   - When a version-like key is involved and the right-hand side forms a
//     valid specifier operand and the left-hand side parses as a version,
//     compare with PEP 440 specifier semantics.
//   - ``==`` and ``!=`` otherwise fall back to string equality.
//   - Ordered comparisons (and ``~=``) otherwise are undefined: an error
//     under ContextMetadata, and simply false under ContextLockFile and
//     ContextRequirement.
func evalComparison(lhs markerOperand, op Op, rhs markerOperand, ctx EvalContext) (bool, error) {
	if op == "===" {
		return lhs.str == rhs.str, nil
	}

	if isVersionKey(lhs.varName) || isVersionKey(rhs.varName) {
		clause, err := pep440.ParseSpecifierClause(string(op) + rhs.str)
		if err == nil {
			if ver, err := pep440.ParseVersion(lhs.str); err == nil {
				return clause.Match(*ver), nil
			}
		}
	}

	switch op {
	case "==":
		return lhs.str == rhs.str, nil
	case "!=":
		return lhs.str != rhs.str, nil
	default: // <, <=, >, >=, ~=
		if ctx == ContextMetadata {
			return false, &UndefinedComparisonError{Op: op, LHS: lhs.str, RHS: rhs.str}
		}
		return false, nil
	}
}
