// Package models holds the backend health report (Laravel Health JSON).
package models

import "time"

// Check statuses reported by the backend.
const (
	StatusOK      = "ok"
	StatusWarning = "warning"
	StatusFailed  = "failed"
	StatusCrashed = "crashed"
	StatusSkipped = "skipped"
)

type CheckResult struct {
	Name                string         `json:"name"`
	Label               string         `json:"label"`
	NotificationMessage string         `json:"notificationMessage"`
	ShortSummary        string         `json:"shortSummary"`
	Status              string         `json:"status"`
	Meta                map[string]any `json:"meta"`
}

// DisplayName prefers the label.
func (c CheckResult) DisplayName() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Name
}

// Failing counts crashed checks as failed.
func (c CheckResult) Failing() bool {
	return c.Status == StatusFailed || c.Status == StatusCrashed
}

// Report is one run of every check. FinishedAt is unix seconds.
type Report struct {
	FinishedAt   int64         `json:"finishedAt"`
	CheckResults []CheckResult `json:"checkResults"`
}

func (r Report) OKCount() int {
	n := 0
	for _, c := range r.CheckResults {
		if c.Status == StatusOK {
			n++
		}
	}
	return n
}

func (r Report) FailedCount() int {
	n := 0
	for _, c := range r.CheckResults {
		if c.Failing() {
			n++
		}
	}
	return n
}

func (r Report) WarningCount() int {
	n := 0
	for _, c := range r.CheckResults {
		if c.Status == StatusWarning {
			n++
		}
	}
	return n
}

// Snapshot is a report as the portal holds it. Stale is set when the
// backend could not be reached and the last good report is shown instead.
type Snapshot struct {
	Report
	FetchedAt time.Time
	Stale     bool
}
