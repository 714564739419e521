package model

import "time"

// RunStatus represents the state of an extraction run.
type RunStatus string

const (
	RunStatusPending  RunStatus = "pending"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run records one extraction over one input: a file sent through OCR, or raw
// text supplied directly.
type Run struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Status    RunStatus `json:"status"`
	RawText   string    `json:"raw_text,omitempty"`
	Result    *Result   `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary returns the result summary, or an empty string when the run has no
// result.
func (r *Run) Summary() string {
	if r.Result == nil {
		return ""
	}
	return r.Result.Summary()
}
