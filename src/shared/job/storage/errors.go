package jobstorage

import "github.com/cockroachdb/errors"

var (
	DefaultErrorMark = errors.New("job_storage_error")
	IDEmptyMark      = errors.New("job_id_empty")
	JobNotFound      = errors.New("job_not_found")
	MarshalMark      = errors.New("job_marshal_error")
	UnmarshalMark    = errors.New("job_unmarshal_error")
)
