package jobstorage

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/markers"
	"github.com/guregu/dynamo"
	"github.com/veedubyou/audio-worker/src/shared/job/entity"
	"github.com/veedubyou/audio-worker/src/shared/lib/dynamo"
	"github.com/veedubyou/audio-worker/src/shared/lib/errors/mark"
	"github.com/veedubyou/audio-worker/src/shared/lib/jsonlib"
)

const DefaultJobsTable = "AudioJobs"

var _ jobentity.Store = DB{}

type DB struct {
	dynamoDB  dynamolib.DynamoDBWrapper
	tableName string
}

func NewDB(dynamoDB dynamolib.DynamoDBWrapper, tableName string) DB {
	if tableName == "" {
		tableName = DefaultJobsTable
	}

	return DB{
		dynamoDB:  dynamoDB,
		tableName: tableName,
	}
}

func (d DB) GetJob(ctx context.Context, jobID string) (jobentity.Job, error) {
	value := dbJob{}
	err := d.dynamoDB.Table(d.tableName).
		Get(idKey, jobID).
		OneWithContext(ctx, &value)

	if err != nil {
		switch {
		case markers.Is(err, UnmarshalMark):
			return jobentity.Job{}, errors.Wrap(err, "Failed to fetch job")
		case errors.Is(err, dynamo.ErrNotFound):
			return jobentity.Job{}, mark.Wrap(err, JobNotFound, "Job is not found")
		default:
			return jobentity.Job{}, mark.Wrap(err, DefaultErrorMark, "Failed to fetch job")
		}
	}

	return fromDBJob(value)
}

func (d DB) SetJob(ctx context.Context, job jobentity.Job) error {
	dbObject, err := toDBJob(job)
	if err != nil {
		return err
	}

	err = d.dynamoDB.Table(d.tableName).Put(dbObject).RunWithContext(ctx)
	if err != nil {
		return mark.Wrap(err, DefaultErrorMark, "Failed to put the job in the DB")
	}

	return nil
}

// UpdateJob only writes when nobody else touched the job since it was read.
func (d DB) UpdateJob(ctx context.Context, jobID string, updater jobentity.JobUpdater) error {
	if jobID == "" {
		return mark.Message(JobNotFound, "No job ID was provided")
	}

	job, err := d.GetJob(ctx, jobID)
	if err != nil {
		return mark.Wrap(err, JobNotFound, "Can't find the job")
	}

	previousUpdate := job.UpdatedAt.UTC().Format(time.RFC3339Nano)

	updatedJob, err := updater(job)
	if err != nil {
		return mark.Wrap(err, DefaultErrorMark, "The updater failed to make changes to the job")
	}
	updatedJob.ID = jobID

	dbObject, err := toDBJob(updatedJob)
	if err != nil {
		return err
	}

	err = d.dynamoDB.Table(d.tableName).
		PutIfUnchanged(dbObject, updatedAtKey, previousUpdate).
		RunWithContext(ctx)
	if err != nil {
		return mark.Wrap(err, DefaultErrorMark, "Failed to update the job")
	}

	return nil
}

func toDBJob(job jobentity.Job) (map[string]any, error) {
	if job.ID == "" {
		return nil, mark.Message(IDEmptyMark, "Job ID is not defined")
	}

	if job.UpdatedAt.IsZero() {
		job.UpdatedAt = time.Now()
	}
	job.UpdatedAt = job.UpdatedAt.UTC()

	dbObject, err := jsonlib.StructToMap(job)
	if err != nil {
		return nil, mark.Wrap(err, MarshalMark, "Failed to transform job entity to a generic map object")
	}

	return dbObject, nil
}

func fromDBJob(value dbJob) (jobentity.Job, error) {
	job, err := jsonlib.MapToStruct[jobentity.Job](value)
	if err != nil {
		return jobentity.Job{}, mark.Wrap(err, UnmarshalMark, "Failed to transform DB map back to job entity")
	}

	return job, nil
}
