package testutil

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/pmezard/go-difflib/difflib"
)

//nolint:gochecknoglobals // Would be 'const'.
var spewConfig = spew.ConfigState{
	Indent:                  "  ",
	DisableMethods:          true,
	DisableCapacities:       true,
	DisablePointerAddresses: true,
	SortKeys:                true,
}

// Dump renders a value in a deterministic form that is stable enough to diff.
func Dump(val interface{}) string {
	return spewConfig.Sdump(val)
}

// AssertEqual compares two values by their Dump representations, and on
// mismatch reports a unified diff rather than the pair of blobs; this keeps
// failures over long slices (tag enumerations, filter outputs) readable.
func AssertEqual(t *testing.T, exp, act interface{}) bool {
	t.Helper()
	expStr := Dump(exp)
	actStr := Dump(act)
	if expStr == actStr {
		return true
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expStr),
		B:        difflib.SplitLines(actStr),
		FromFile: "Expected",
		FromDate: "",
		ToFile:   "Actual",
		ToDate:   "",
		Context:  3,
	})
	t.Errorf("mismatch:\n%s", diff)
	return false
}
