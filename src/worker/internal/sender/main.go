// Command sender puts one job on the dev queue and prints the reply. It is
// only meant for trying the worker out locally.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/veedubyou/audio-worker/src/shared/config/dev"
	"github.com/veedubyou/audio-worker/src/shared/config/envvar"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/command"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/jobs/job_message"
)

const replyTimeout = 10 * time.Minute

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: sender <action> [key=value ...]")
		os.Exit(1)
	}

	args, err := command.ParseArgs(os.Args[2:])
	if err != nil {
		panic(err)
	}

	rabbitURL := envvar.Get(envvar.RABBITMQ_URL, dev.RabbitMQHost)
	queueName := envvar.Get(envvar.RABBITMQ_QUEUE_NAME, dev.RabbitMQQueueName)

	conn, err := amqp091.Dial(rabbitURL)
	if err != nil {
		panic(err)
	}
	defer conn.Close()

	rabbitChannel, err := conn.Channel()
	if err != nil {
		panic(err)
	}
	defer rabbitChannel.Close()

	queue, err := rabbitChannel.QueueDeclare(
		queueName,
		true,
		false,
		false,
		false,
		nil,
	)

	if err != nil {
		panic(err)
	}

	// server named, deleted once we disconnect
	replyQueue, err := rabbitChannel.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		panic(err)
	}

	replies, err := rabbitChannel.Consume(replyQueue.Name, "", true, true, false, false, nil)
	if err != nil {
		panic(err)
	}

	jobID := uuid.NewString()
	jobBody, err := json.Marshal(job_message.NewJobMessage(jobID, os.Args[1], args))
	if err != nil {
		panic(err)
	}

	job := amqp091.Publishing{
		Body:          jobBody,
		ReplyTo:       replyQueue.Name,
		CorrelationId: jobID,
	}

	job.DeliveryMode = amqp091.Persistent
	job.ContentType = "application/json"

	ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
	defer cancel()

	err = rabbitChannel.PublishWithContext(ctx, "", queue.Name, true, false, job)
	if err != nil {
		panic(err)
	}

	for {
		select {
		case reply, ok := <-replies:
			if !ok {
				fmt.Fprintln(os.Stderr, "reply queue closed")
				os.Exit(1)
			}
			if reply.CorrelationId == jobID {
				fmt.Print(string(reply.Body))
				return
			}
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr, "timed out waiting for job", jobID)
			os.Exit(1)
		}
	}
}
