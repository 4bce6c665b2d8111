package worker_test

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rabbitmq/amqp091-go"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/integration_test/dummy"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/worker"
)

const jobQueue = "audio-jobs"

type handlerFunc func(ctx context.Context, message amqp091.Delivery) error

func (h handlerFunc) HandleMessage(ctx context.Context, message amqp091.Delivery) error {
	return h(ctx, message)
}

var _ = Describe("QueueWorker", func() {
	var (
		rabbitMQ    *dummy.RabbitMQ
		handled     []string
		handledLock sync.Mutex
		queueWorker *worker.QueueWorker
		cancel      context.CancelFunc
		done        chan error
	)

	handledTypes := func() []string {
		handledLock.Lock()
		defer handledLock.Unlock()
		return append([]string{}, handled...)
	}

	publish := func(messageType string) {
		err := rabbitMQ.Publish(context.Background(), jobQueue, amqp091.Publishing{Type: messageType})
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		rabbitMQ = dummy.NewRabbitMQ(jobQueue)
		handled = nil

		queueWorker = worker.NewQueueWorker(rabbitMQ, jobQueue, handlerFunc(func(_ context.Context, message amqp091.Delivery) error {
			handledLock.Lock()
			handled = append(handled, message.Type)
			handledLock.Unlock()

			if message.Type == "bad" {
				return errors.New("job failed")
			}
			return nil
		}))

		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		done = make(chan error, 1)
		go func() {
			done <- queueWorker.Start(ctx)
		}()
	})

	AfterEach(func() {
		cancel()
		Eventually(done).Should(Receive(BeNil()))
	})

	It("acks a handled message", func() {
		publish("good")

		Eventually(rabbitMQ.AckCount).Should(Equal(1))
		Expect(rabbitMQ.NackCount()).To(Equal(0))
	})

	It("nacks a message that fails", func() {
		publish("bad")

		Eventually(rabbitMQ.NackCount).Should(Equal(1))
		Expect(rabbitMQ.AckCount()).To(Equal(0))
	})

	It("handles messages in order", func() {
		publish("first")
		publish("bad")
		publish("third")

		Eventually(handledTypes).Should(Equal([]string{"first", "bad", "third"}))
		Eventually(rabbitMQ.AckCount).Should(Equal(2))
		Eventually(rabbitMQ.NackCount).Should(Equal(1))
	})

	It("doesn't start again once stopped", func() {
		publish("good")
		Eventually(rabbitMQ.AckCount).Should(Equal(1))

		queueWorker.Stop()
		Eventually(done).Should(Receive(BeNil()))

		err := queueWorker.Start(context.Background())
		Expect(err).To(HaveOccurred())

		done <- nil
	})
})
