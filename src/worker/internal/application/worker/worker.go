package worker

import (
	"context"
	"sync"

	"github.com/apex/log"
	"github.com/rabbitmq/amqp091-go"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/cerr"
)

type MessageChannel interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp091.Table) (<-chan amqp091.Delivery, error)
	Close() error
}

type MessageHandler interface {
	HandleMessage(ctx context.Context, message amqp091.Delivery) error
}

// QueueWorker handles one delivery at a time, so every job gets the machine
// (and the accelerator) to itself.
type QueueWorker struct {
	channel     MessageChannel
	channelLock sync.Mutex
	handler     MessageHandler
	queueName   string
}

func NewQueueWorker(channel MessageChannel, queueName string, handler MessageHandler) *QueueWorker {
	return &QueueWorker{
		channel:   channel,
		queueName: queueName,
		handler:   handler,
	}
}

func NewQueueWorkerFromConnection(conn *amqp091.Connection, queueName string, handler MessageHandler) (*QueueWorker, error) {
	rabbitChannel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, cerr.Wrap(err).Error("Failed to get channel")
	}

	queue, err := rabbitChannel.QueueDeclare(
		queueName,
		true,
		false,
		false,
		false,
		nil,
	)

	if err != nil {
		_ = rabbitChannel.Close()
		return nil, cerr.Wrap(err).Error("Failed to declare queue")
	}

	// one unacked job at a time
	if err := rabbitChannel.Qos(1, 0, false); err != nil {
		_ = rabbitChannel.Close()
		return nil, cerr.Wrap(err).Error("Failed to set channel prefetch")
	}

	return NewQueueWorker(rabbitChannel, queue.Name, handler), nil
}

// Start blocks until the channel closes or the context is cancelled.
func (q *QueueWorker) Start(ctx context.Context) error {
	log.WithField("queue_name", q.queueName).Info("Starting worker")

	q.channelLock.Lock()
	if q.channel == nil {
		q.channelLock.Unlock()
		return cerr.Error("Worker has been stopped")
	}

	messageStream, err := q.channel.Consume(
		q.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	q.channelLock.Unlock()

	if err != nil {
		return cerr.Field("queue_name", q.queueName).
			Wrap(err).Error("Failed to start consuming from channel")
	}

	stopOnCancel := context.AfterFunc(ctx, q.Stop)
	defer stopOnCancel()

	for message := range messageStream {
		q.handle(ctx, message)
	}

	log.Info("Worker stopped")
	return nil
}

func (q *QueueWorker) handle(ctx context.Context, message amqp091.Delivery) {
	logger := log.WithFields(log.Fields{
		"message_type":   message.Type,
		"correlation_id": message.CorrelationId,
	})
	logger.Info("Handling message")

	err := q.handler.HandleMessage(ctx, message)
	if err != nil {
		err = cerr.Field("message_type", message.Type).
			Wrap(err).Error("Failed to process message")

		cerr.Log(err)

		if err = message.Nack(false, false); err != nil {
			logger.Error("Failed to nack message")
		}
		return
	}

	logger.Info("Successfully processed message")
	if err = message.Ack(false); err != nil {
		logger.Error("Failed to ack message")
	}
}

func (q *QueueWorker) Stop() {
	q.channelLock.Lock()
	defer q.channelLock.Unlock()

	if q.channel == nil {
		return
	}

	_ = q.channel.Close()
	q.channel = nil
}
