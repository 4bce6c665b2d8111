package jobentity

import (
	"context"
	"time"
)

type Status string

const (
	RequestedStatus  Status = "requested"
	ProcessingStatus Status = "processing"
	SucceededStatus  Status = "succeeded"
	FailedStatus     Status = "failed"
)

// Job records one queued action and, once it has run, the envelope that was
// sent back for it.
type Job struct {
	ID        string            `json:"id"`
	Action    string            `json:"action"`
	Args      map[string]string `json:"args"`
	Status    Status            `json:"status"`
	Envelope  map[string]any    `json:"envelope,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (j Job) IsFinished() bool {
	return j.Status == SucceededStatus || j.Status == FailedStatus
}

type JobUpdater func(job Job) (Job, error)

type Store interface {
	GetJob(ctx context.Context, jobID string) (Job, error)
	SetJob(ctx context.Context, job Job) error
	UpdateJob(ctx context.Context, jobID string, updater JobUpdater) error
}
