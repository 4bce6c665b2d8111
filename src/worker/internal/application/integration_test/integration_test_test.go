package integration_test_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rabbitmq/amqp091-go"
	"github.com/veedubyou/audio-worker/src/shared/job/entity"
	. "github.com/veedubyou/audio-worker/src/shared/testing"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/audio"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/capability"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/command"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/integration_test/dummy"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/jobs/job_message"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/jobs/job_router"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/separation"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/separation/separationfakes"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/transcription"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/worker"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/working_dir"
)

const (
	jobQueue   = "audio-jobs"
	replyQueue = "audio-results"
)

type staticProber struct {
	set capability.Set
}

func (s staticProber) Probe(context.Context) capability.Set {
	return s.set
}

type resultEnvelope struct {
	Status string         `json:"status"`
	Result map[string]any `json:"result"`
	Error  map[string]any `json:"error"`
}

var _ = Describe("IntegrationTest", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc
		done   chan error

		rabbitMQ      *dummy.RabbitMQ
		fileStore     *dummy.FileStore
		jobStore      *dummy.JobStore
		dummyExecutor *dummy.Executor
		modelLoader   *separationfakes.FakeModelLoader

		tempDir     string
		queueWorker *worker.QueueWorker
		submit      func(jobID string, action string, args map[string]string)
		reply       func() resultEnvelope
	)

	BeforeEach(func() {
		By("Instantiating all dummies", func() {
			rabbitMQ = dummy.NewRabbitMQ(jobQueue)
			fileStore = dummy.NewDummyFileStore()
			jobStore = dummy.NewDummyJobStore()
			dummyExecutor = dummy.NewDummyExecutor()
		})

		By("Setting up the separation model", func() {
			model := &separationfakes.FakeModel{}
			model.SourcesReturns([]string{"drums", "bass", "other", "vocals"})
			model.ApplyCalls(func(_ context.Context, input separation.Tensor, _ separation.InferenceParams) (separation.Tensor, error) {
				data := []float32{}
				for source := 0; source < 4; source++ {
					data = append(data, input.Data...)
				}
				return separation.Tensor{Shape: []int{4, input.Shape[1], input.Shape[2]}, Data: data}, nil
			})

			modelLoader = &separationfakes.FakeModelLoader{}
			modelLoader.LoadReturns(model, nil)
		})

		By("Putting a song in the bucket", func() {
			tempDir = GinkgoT().TempDir()
			songPath := filepath.Join(tempDir, "song.wav")
			WriteSineWAV(songPath, 440, 1, 22050, 2)

			contents, err := os.ReadFile(songPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(fileStore.WriteFile(context.Background(), "gs://songs/in/song.wav", contents)).To(Succeed())
		})

		By("Instantiating the worker", func() {
			workingDir := ExpectSuccess(working_dir.NewWorkingDir(filepath.Join(tempDir, "work")))

			dispatcher := command.NewDispatcher(
				staticProber{set: capability.Set{TensorRuntime: true, AudioCodec: true, SeparationModel: true}},
				command.Decoders{
					Native: []audio.Decoder{audio.WAVDecoder{}, audio.MP3Decoder{}},
					Codec:  audio.NewFFmpegDecoder("ffmpeg", workingDir, dummyExecutor),
				},
				modelLoader,
				transcription.NewBasicPitch(dummyExecutor, "python3", workingDir),
				command.NewPaths(fileStore, workingDir),
				command.Config{TranscriptionBackend: transcription.BackendNative},
			)

			router := job_router.NewJobRouter(dispatcher, rabbitMQ, jobStore)
			queueWorker = worker.NewQueueWorker(rabbitMQ, jobQueue, router)
		})

		By("Setting up the run routine", func() {
			ctx, cancel = context.WithCancel(context.Background())
			done = make(chan error, 1)
			go func() {
				done <- queueWorker.Start(ctx)
			}()

			submit = func(jobID string, action string, args map[string]string) {
				body, err := json.Marshal(job_message.NewJobMessage(jobID, action, args))
				Expect(err).NotTo(HaveOccurred())

				err = rabbitMQ.Publish(context.Background(), jobQueue, amqp091.Publishing{
					Body:          body,
					ReplyTo:       replyQueue,
					CorrelationId: jobID,
				})
				Expect(err).NotTo(HaveOccurred())
			}

			reply = func() resultEnvelope {
				EventuallyWithOffset(1, func() int {
					return len(rabbitMQ.Published(replyQueue))
				}).Should(Equal(1))

				return DecodeJSONLine[resultEnvelope](rabbitMQ.Published(replyQueue)[0].Body)
			}
		})
	})

	AfterEach(func() {
		cancel()
		Eventually(done).Should(Receive(BeNil()))
	})

	It("separates a song from the bucket back into the bucket", func() {
		submit("job-separate", command.SeparateStems, map[string]string{
			"input_path": "gs://songs/in/song.wav",
			"output_dir": "gs://songs/stems",
		})

		envelope := reply()
		Expect(envelope.Status).To(Equal("success"))
		Expect(envelope.Result["stems"]).To(Equal(map[string]any{
			"drums":  "gs://songs/stems/drums.wav",
			"bass":   "gs://songs/stems/bass.wav",
			"other":  "gs://songs/stems/other.wav",
			"vocals": "gs://songs/stems/vocals.wav",
		}))

		By("Uploading every stem", func() {
			for _, name := range separation.StemNames {
				Expect(fileStore.Has("gs://songs/stems/" + name + ".wav")).To(BeTrue())
			}
		})

		By("Recording the job", func() {
			Eventually(func() jobentity.Status {
				job, err := jobStore.GetJob(context.Background(), "job-separate")
				if err != nil {
					return ""
				}
				return job.Status
			}).Should(Equal(jobentity.SucceededStatus))
		})

		Eventually(rabbitMQ.AckCount).Should(Equal(1))
	})

	It("transcribes a song into the bucket", func() {
		submit("job-midi", command.ExtractMIDI, map[string]string{
			"input_path":  "gs://songs/in/song.wav",
			"output_path": "gs://songs/midi/song.mid",
		})

		envelope := reply()
		Expect(envelope.Status).To(Equal("success"))
		Expect(envelope.Result).To(HaveKeyWithValue("midi_path", "gs://songs/midi/song.mid"))
		Expect(envelope.Result["details"]).To(HaveKeyWithValue("backend", "native"))
		Expect(fileStore.Has("gs://songs/midi/song.mid")).To(BeTrue())

		Eventually(rabbitMQ.AckCount).Should(Equal(1))
	})

	It("answers a missing input with an error envelope", func() {
		submit("job-missing", command.SeparateStems, map[string]string{
			"input_path": "gs://songs/in/missing.wav",
			"output_dir": "gs://songs/stems",
		})

		envelope := reply()
		Expect(envelope.Status).To(Equal("error"))
		Expect(envelope.Error["details"]).To(HaveKeyWithValue("error_type", "NotFound"))
		Expect(modelLoader.LoadCallCount()).To(Equal(0))

		Eventually(func() jobentity.Status {
			job, err := jobStore.GetJob(context.Background(), "job-missing")
			if err != nil {
				return ""
			}
			return job.Status
		}).Should(Equal(jobentity.FailedStatus))

		Eventually(rabbitMQ.AckCount).Should(Equal(1))
	})

	It("answers missing arguments with an invalid argument envelope", func() {
		submit("job-incomplete", command.ExtractMIDI, map[string]string{
			"input_path": "gs://songs/in/song.wav",
		})

		envelope := reply()
		Expect(envelope.Status).To(Equal("error"))
		Expect(envelope.Error["details"]).To(HaveKeyWithValue("error_type", "InvalidArgument"))
	})

	It("nacks a job whose reply can't be delivered", func() {
		jobStore.Unavailable = true
		submit("job-lost", command.GetCapabilities, nil)

		Eventually(rabbitMQ.NackCount).Should(Equal(1))
		Expect(rabbitMQ.AckCount()).To(Equal(0))
	})
})
