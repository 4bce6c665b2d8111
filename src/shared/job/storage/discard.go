package jobstorage

import (
	"context"

	"github.com/veedubyou/audio-worker/src/shared/job/entity"
	"github.com/veedubyou/audio-worker/src/shared/lib/errors/mark"
)

var _ jobentity.Store = Discard{}

// Discard is the store used when no jobs table is configured. Jobs are
// accepted and forgotten.
type Discard struct{}

func (Discard) GetJob(_ context.Context, jobID string) (jobentity.Job, error) {
	return jobentity.Job{}, mark.Message(JobNotFound, "Jobs are not being recorded: "+jobID)
}

func (Discard) SetJob(_ context.Context, job jobentity.Job) error {
	if job.ID == "" {
		return mark.Message(IDEmptyMark, "Job ID is not defined")
	}

	return nil
}

func (Discard) UpdateJob(_ context.Context, jobID string, updater jobentity.JobUpdater) error {
	if jobID == "" {
		return mark.Message(JobNotFound, "No job ID was provided")
	}

	_, err := updater(jobentity.Job{ID: jobID})
	if err != nil {
		return mark.Wrap(err, DefaultErrorMark, "The updater failed to make changes to the job")
	}

	return nil
}
