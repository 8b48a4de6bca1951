package analysis

import "time"

// Job states as reported by the analysis backend. The vocabulary is
// backend-defined; only completed and failed are terminal.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Job is one unit of work on the analysis backend. Jobs are created
// server-side with no identifier returned, so the ID here is only ever
// learned from list reads.
type Job struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	TimeRange   string    `json:"time_range"`
	Status      string    `json:"status"`
	Progress    int       `json:"progress"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Terminal reports whether no further progress updates are expected.
func (j *Job) Terminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// CreateJobRequest is the job-creation payload. The backend returns no
// usable body; success is inferred from the HTTP status alone.
type CreateJobRequest struct {
	Description string   `json:"description"`
	TimeRange   string   `json:"time_range"` // "YYYY-MM-DD,YYYY-MM-DD"
	NeedSummary bool     `json:"need_summary"`
	UserID      string   `json:"user_id"`
	SourceIDs   []string `json:"source_ids,omitempty"`
}

// JobList is a page of the shared job collection, most-recent-first.
type JobList struct {
	Items []Job `json:"items"`
	Total int   `json:"total"`
}
