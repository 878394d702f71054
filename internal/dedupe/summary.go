package dedupe

// Summary holds the counters accumulated during one run. Block counters
// describe the current epoch only; a marker reset discards them along with
// the blocks. Lines and Epochs span the whole run.
type Summary struct {
	Lines      int            `json:"lines"`
	Blocks     int            `json:"blocks"`
	Accepted   int            `json:"accepted"`
	Suppressed int            `json:"suppressed"`
	Epochs     int            `json:"epochs"`
	Categories map[string]int `json:"categories,omitempty"`
}
