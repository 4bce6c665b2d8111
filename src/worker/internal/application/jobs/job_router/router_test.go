package job_router_test

import (
	"context"
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rabbitmq/amqp091-go"
	"github.com/veedubyou/audio-worker/src/shared/job/entity"
	"github.com/veedubyou/audio-worker/src/shared/lib/rabbitmq/rabbitmqfakes"
	. "github.com/veedubyou/audio-worker/src/shared/testing"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/integration_test/dummy"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/jobs/job_message"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/jobs/job_router"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/response"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/cerr"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/errkind"
)

type recordingDispatcher struct {
	actions  []string
	args     []map[string]string
	envelope response.Envelope
}

func (r *recordingDispatcher) Dispatch(_ context.Context, action string, args map[string]string) response.Envelope {
	r.actions = append(r.actions, action)
	r.args = append(r.args, args)
	return r.envelope
}

const replyQueue = "audio-results"

var _ = Describe("JobRouter", func() {
	var (
		ctx        context.Context
		dispatcher *recordingDispatcher
		rabbitMQ   *dummy.RabbitMQ
		jobStore   *dummy.JobStore
		router     job_router.JobRouter
		delivery   amqp091.Delivery
		handleErr  error
	)

	jobBody := func(message job_message.JobMessage) []byte {
		body, err := json.Marshal(message)
		Expect(err).NotTo(HaveOccurred())
		return body
	}

	BeforeEach(func() {
		ctx = context.Background()
		dispatcher = &recordingDispatcher{
			envelope: response.Success(map[string]any{"midi_path": "/tmp/out.mid"}),
		}
		rabbitMQ = dummy.NewRabbitMQ("audio-jobs")
		jobStore = dummy.NewDummyJobStore()
		router = job_router.NewJobRouter(dispatcher, rabbitMQ, jobStore)

		delivery = amqp091.Delivery{
			ReplyTo:       replyQueue,
			CorrelationId: "correlation-1",
			Body: jobBody(job_message.NewJobMessage("job-1", "extract_midi", map[string]string{
				"input_path":  "/tmp/in.wav",
				"output_path": "/tmp/out.mid",
			})),
		}
	})

	JustBeforeEach(func() {
		handleErr = router.HandleMessage(ctx, delivery)
	})

	Describe("A well formed job", func() {
		It("succeeds", func() {
			Expect(handleErr).NotTo(HaveOccurred())
		})

		It("dispatches the action with the extra fields as arguments", func() {
			Expect(dispatcher.actions).To(Equal([]string{"extract_midi"}))
			Expect(dispatcher.args[0]).To(Equal(map[string]string{
				"input_path":  "/tmp/in.wav",
				"output_path": "/tmp/out.mid",
			}))
		})

		It("replies with the envelope", func() {
			published := rabbitMQ.Published(replyQueue)
			Expect(published).To(HaveLen(1))
			Expect(published[0].Type).To(Equal(job_router.ResultMessageType))
			Expect(published[0].CorrelationId).To(Equal("correlation-1"))
			Expect(published[0].MessageId).To(Equal("job-1"))

			envelope := DecodeJSONLine[map[string]any](published[0].Body)
			Expect(envelope).To(HaveKeyWithValue("status", "success"))
		})

		It("records the finished job", func() {
			job := ExpectSuccess(jobStore.GetJob(ctx, "job-1"))
			Expect(job.Status).To(Equal(jobentity.SucceededStatus))
			Expect(job.Action).To(Equal("extract_midi"))
			Expect(job.Envelope).To(HaveKeyWithValue("status", "success"))
			Expect(job.IsFinished()).To(BeTrue())
		})
	})

	Describe("A job that fails", func() {
		BeforeEach(func() {
			dispatcher.envelope = response.FromError("extract_midi",
				cerr.Mark(errkind.NotFoundMark).Error("Input file not found"))
		})

		It("is still handled", func() {
			Expect(handleErr).NotTo(HaveOccurred())
		})

		It("records the failure", func() {
			job := ExpectSuccess(jobStore.GetJob(ctx, "job-1"))
			Expect(job.Status).To(Equal(jobentity.FailedStatus))
			Expect(job.Envelope).To(HaveKeyWithValue("status", "error"))
		})

		It("replies with the error envelope", func() {
			published := rabbitMQ.Published(replyQueue)
			Expect(published).To(HaveLen(1))

			envelope := DecodeJSONLine[map[string]any](published[0].Body)
			Expect(envelope).To(HaveKeyWithValue("status", "error"))
		})
	})

	Describe("A job without an id", func() {
		BeforeEach(func() {
			delivery.Body = jobBody(job_message.NewJobMessage("", "get_capabilities", nil))
		})

		It("uses the correlation id", func() {
			job := ExpectSuccess(jobStore.GetJob(ctx, "correlation-1"))
			Expect(job.Action).To(Equal("get_capabilities"))
		})
	})

	Describe("A message that isn't JSON", func() {
		BeforeEach(func() {
			delivery.Body = []byte("separate_stems please")
		})

		It("does not dispatch", func() {
			Expect(handleErr).NotTo(HaveOccurred())
			Expect(dispatcher.actions).To(BeEmpty())
		})

		It("replies with an invalid argument envelope", func() {
			published := rabbitMQ.Published(replyQueue)
			Expect(published).To(HaveLen(1))

			envelope := DecodeJSONLine[map[string]any](published[0].Body)
			Expect(envelope).To(HaveKeyWithValue("status", "error"))
			Expect(envelope["error"]).To(HaveKeyWithValue("details",
				HaveKeyWithValue("error_type", "InvalidArgument")))
		})
	})

	Describe("A message without a reply queue", func() {
		BeforeEach(func() {
			delivery.ReplyTo = ""
		})

		It("only records the job", func() {
			Expect(handleErr).NotTo(HaveOccurred())
			Expect(rabbitMQ.Published(replyQueue)).To(BeEmpty())

			job := ExpectSuccess(jobStore.GetJob(ctx, "job-1"))
			Expect(job.Status).To(Equal(jobentity.SucceededStatus))
		})
	})

	Describe("When the reply can't be published", func() {
		BeforeEach(func() {
			rabbitMQ.Unavailable = true
		})

		It("returns an error", func() {
			Expect(handleErr).To(HaveOccurred())
		})

		It("leaves the job as processing", func() {
			job := ExpectSuccess(jobStore.GetJob(ctx, "job-1"))
			Expect(job.Status).To(Equal(jobentity.ProcessingStatus))
		})
	})

	Describe("When the job store is down", func() {
		BeforeEach(func() {
			jobStore.Unavailable = true
		})

		It("returns an error without dispatching", func() {
			Expect(handleErr).To(HaveOccurred())
			Expect(dispatcher.actions).To(BeEmpty())
		})
	})

	Describe("Publishing the reply", func() {
		var publisher *rabbitmqfakes.FakePublisher

		BeforeEach(func() {
			publisher = &rabbitmqfakes.FakePublisher{}
			router = job_router.NewJobRouter(dispatcher, publisher, jobStore)
		})

		It("publishes once to the reply queue", func() {
			Expect(handleErr).NotTo(HaveOccurred())
			Expect(publisher.PublishCallCount()).To(Equal(1))

			_, queueName, msg := publisher.PublishArgsForCall(0)
			Expect(queueName).To(Equal(replyQueue))
			Expect(msg.CorrelationId).To(Equal("correlation-1"))
		})
	})
})
