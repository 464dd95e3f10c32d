package synth

import (
	"github.com/pmezard/go-difflib/difflib"
)

// unifiedDiff renders the change from current to desired. A missing file
// diffs against empty content.
func unifiedDiff(path string, current, desired []byte) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(current)),
		B:        difflib.SplitLines(string(desired)),
		FromFile: path + " (current)",
		ToFile:   path + " (desired)",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return ""
	}
	return text
}
