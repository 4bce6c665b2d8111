package jobstorage_test

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/markers"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/veedubyou/audio-worker/src/shared/job/entity"
	"github.com/veedubyou/audio-worker/src/shared/job/storage"
)

var _ = Describe("Discard", func() {
	var (
		ctx   context.Context
		store jobstorage.Discard
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = jobstorage.Discard{}
	})

	It("accepts jobs without keeping them", func() {
		Expect(store.SetJob(ctx, jobentity.Job{ID: "job-1", Status: jobentity.RequestedStatus})).To(Succeed())

		_, err := store.GetJob(ctx, "job-1")
		Expect(markers.Is(err, jobstorage.JobNotFound)).To(BeTrue())
	})

	It("rejects a job without an id", func() {
		err := store.SetJob(ctx, jobentity.Job{})
		Expect(markers.Is(err, jobstorage.IDEmptyMark)).To(BeTrue())
	})

	It("still runs the updater so its errors surface", func() {
		called := false
		err := store.UpdateJob(ctx, "job-1", func(job jobentity.Job) (jobentity.Job, error) {
			called = true
			Expect(job.ID).To(Equal("job-1"))
			return job, errors.New("not allowed")
		})

		Expect(called).To(BeTrue())
		Expect(markers.Is(err, jobstorage.DefaultErrorMark)).To(BeTrue())
	})
})
