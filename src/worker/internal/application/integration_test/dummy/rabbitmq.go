package dummy

import (
	"context"
	"sync"

	"github.com/rabbitmq/amqp091-go"
	"github.com/veedubyou/audio-worker/src/shared/lib/rabbitmq"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/worker"
)

var _ rabbitmq.Publisher = &RabbitMQ{}
var _ worker.MessageChannel = &RabbitMQ{}
var _ amqp091.Acknowledger = RabbitMQAcknowledger{}

// RabbitMQ delivers whatever is published to JobQueueName back to its
// consumer and keeps everything published to other queues for inspection.
type RabbitMQ struct {
	mutex        sync.Mutex
	ackCounter   int
	nackCounter  int
	published    map[string][]amqp091.Publishing
	closed       bool
	Unavailable  bool
	JobQueueName string

	MessageChannel chan amqp091.Delivery
}

type RabbitMQAcknowledger struct {
	ack  func()
	nack func()
}

func NewRabbitMQ(jobQueueName string) *RabbitMQ {
	return &RabbitMQ{
		published:      map[string][]amqp091.Publishing{},
		JobQueueName:   jobQueueName,
		MessageChannel: make(chan amqp091.Delivery, 100),
	}
}

func (r *RabbitMQ) Publish(_ context.Context, queueName string, msg amqp091.Publishing) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.Unavailable {
		return NetworkFailure
	}

	if queueName != r.JobQueueName {
		r.published[queueName] = append(r.published[queueName], msg)
		return nil
	}

	acknowledger := RabbitMQAcknowledger{
		ack: func() {
			r.mutex.Lock()
			defer r.mutex.Unlock()
			r.ackCounter++
		},
		nack: func() {
			r.mutex.Lock()
			defer r.mutex.Unlock()
			r.nackCounter++
		},
	}

	r.MessageChannel <- amqp091.Delivery{
		Acknowledger:    acknowledger,
		ContentType:     msg.ContentType,
		ContentEncoding: msg.ContentEncoding,
		DeliveryMode:    msg.DeliveryMode,
		CorrelationId:   msg.CorrelationId,
		ReplyTo:         msg.ReplyTo,
		Timestamp:       msg.Timestamp,
		Type:            msg.Type,
		Body:            msg.Body,
	}
	return nil
}

func (r *RabbitMQ) Consume(_ string, _ string, _ bool, _ bool, _ bool, _ bool, _ amqp091.Table) (<-chan amqp091.Delivery, error) {
	if r.Unavailable {
		return nil, NetworkFailure
	}

	return r.MessageChannel, nil
}

func (r *RabbitMQ) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.closed {
		r.closed = true
		close(r.MessageChannel)
	}
	return nil
}

func (r *RabbitMQ) Published(queueName string) []amqp091.Publishing {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return append([]amqp091.Publishing{}, r.published[queueName]...)
}

func (r *RabbitMQ) AckCount() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.ackCounter
}

func (r *RabbitMQ) NackCount() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.nackCounter
}

func (r RabbitMQAcknowledger) Ack(_ uint64, _ bool) error {
	r.ack()
	return nil
}

func (r RabbitMQAcknowledger) Nack(_ uint64, _ bool, _ bool) error {
	r.nack()
	return nil
}

func (r RabbitMQAcknowledger) Reject(_ uint64, _ bool) error {
	r.nack()
	return nil
}
