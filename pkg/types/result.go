package types

// Status is the outcome of synthesizing one FileSpec.
type Status string

const (
	StatusWritten   Status = "written"
	StatusUnchanged Status = "unchanged"
	StatusFailed    Status = "failed"
	// StatusPlanned is reported in dry-run mode when a write would happen.
	StatusPlanned Status = "planned"
)

// Result reports what happened to one FileSpec.
type Result struct {
	// Index is the position of the spec in the input batch.
	Index  int    `json:"index"`
	Target string `json:"target"`
	// Path is the resolved target path. Empty when resolution failed.
	Path   string `json:"path,omitempty"`
	Format string `json:"format,omitempty"`
	Status Status `json:"status"`
	Err    error  `json:"-"`
	// Bytes is the size of the serialized document.
	Bytes int `json:"bytes"`
	// Diff is a unified diff of the change, filled when requested.
	Diff string `json:"diff,omitempty"`
}

// Failed reports whether the spec failed.
func (r Result) Failed() bool { return r.Status == StatusFailed }

// Reason returns the failure message, or an empty string.
func (r Result) Reason() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// AnyFailed reports whether at least one result failed.
func AnyFailed(results []Result) bool {
	for _, r := range results {
		if r.Failed() {
			return true
		}
	}
	return false
}

// CountByStatus tallies results per status.
func CountByStatus(results []Result) map[Status]int {
	counts := make(map[Status]int)
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}
