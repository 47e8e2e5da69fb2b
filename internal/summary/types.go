// Package summary generates and caches transcript summaries on disk.
package summary

// Request is the immutable value describing one summary operation. Two
// requests with the same session path and prompt variant resolve to the same
// cache location.
type Request struct {
	SessionPath     string
	PromptVariant   string
	Model           string
	ReasoningEffort string
	Refresh         bool
	StripMetadata   bool
}

// Record is a stored summary: its body, where it lives, and the metadata
// captured when it was generated. Cached reports whether it was served from
// disk or freshly generated.
type Record struct {
	Body      string
	CachePath string
	Metadata  map[string]any
	Cached    bool
}

// Lookup is the result of a cache probe. Found distinguishes hit from miss
// without error-driven control flow.
type Lookup struct {
	Found  bool
	Record *Record
}
