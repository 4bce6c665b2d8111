package jobstorage

import (
	"time"

	"github.com/cockroachdb/errors/markers"
	"github.com/guregu/dynamo"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/veedubyou/audio-worker/src/shared/job/entity"
)

var _ = Describe("Job items", func() {
	var job jobentity.Job

	BeforeEach(func() {
		job = jobentity.Job{
			ID:     "job-1",
			Action: "extract_midi",
			Args: map[string]string{
				"input_path":  "gs://audio/in/song.wav",
				"output_path": "gs://audio/out/song.mid",
			},
			Status: jobentity.SucceededStatus,
			Envelope: map[string]any{
				"status": "success",
				"result": map[string]any{"midi_path": "gs://audio/out/song.mid"},
			},
			UpdatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		}
	})

	It("survives a trip through a dynamo item", func() {
		dbObject, err := toDBJob(job)
		Expect(err).NotTo(HaveOccurred())

		item, err := dynamo.MarshalItem(dbObject)
		Expect(err).NotTo(HaveOccurred())

		value := dbJob{}
		Expect(value.UnmarshalDynamoItem(item)).To(Succeed())

		restored, err := fromDBJob(value)
		Expect(err).NotTo(HaveOccurred())
		Expect(restored).To(Equal(job))
	})

	It("refuses items without an id", func() {
		item, err := dynamo.MarshalItem(map[string]any{"action": "extract_midi"})
		Expect(err).NotTo(HaveOccurred())

		value := dbJob{}
		err = value.UnmarshalDynamoItem(item)
		Expect(markers.Is(err, UnmarshalMark)).To(BeTrue())
	})

	It("refuses jobs without an id", func() {
		job.ID = ""
		_, err := toDBJob(job)
		Expect(markers.Is(err, IDEmptyMark)).To(BeTrue())
	})

	It("stamps jobs that were never updated", func() {
		job.UpdatedAt = time.Time{}
		dbObject, err := toDBJob(job)
		Expect(err).NotTo(HaveOccurred())
		Expect(dbObject[updatedAtKey]).NotTo(Equal("0001-01-01T00:00:00Z"))
	})
})
