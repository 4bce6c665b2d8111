package job_router

import (
	"context"
	"encoding/json"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/veedubyou/audio-worker/src/shared/job/entity"
	"github.com/veedubyou/audio-worker/src/shared/lib/rabbitmq"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/jobs/job_message"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/response"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/cerr"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/errkind"
)

const ResultMessageType = "job_result"

type Dispatcher interface {
	Dispatch(ctx context.Context, action string, args map[string]string) response.Envelope
}

// JobRouter runs one queued job through the dispatcher, records it and
// replies to whoever asked for it.
type JobRouter struct {
	dispatcher Dispatcher
	publisher  rabbitmq.Publisher
	jobStore   jobentity.Store
}

func NewJobRouter(dispatcher Dispatcher, publisher rabbitmq.Publisher, jobStore jobentity.Store) JobRouter {
	return JobRouter{
		dispatcher: dispatcher,
		publisher:  publisher,
		jobStore:   jobStore,
	}
}

func (j JobRouter) HandleMessage(ctx context.Context, message amqp091.Delivery) error {
	jobMessage := job_message.JobMessage{}
	parseErr := json.Unmarshal(message.Body, &jobMessage)

	job := jobentity.Job{
		ID:        jobMessage.Defined.JobID,
		Action:    jobMessage.Defined.Action,
		Args:      job_message.Args(jobMessage),
		Status:    jobentity.ProcessingStatus,
		UpdatedAt: time.Now(),
	}

	if job.ID == "" {
		job.ID = message.CorrelationId
	}
	if job.ID == "" {
		job.ID = uuid.New().String()
	}

	errctx := cerr.Fields(cerr.F{
		"job_id": job.ID,
		"action": job.Action,
	})
	logger := log.WithFields(log.Fields{
		"job_id": job.ID,
		"action": job.Action,
	})

	if err := j.jobStore.SetJob(ctx, job); err != nil {
		return errctx.Wrap(err).Error("Failed to record the job")
	}

	var envelope response.Envelope
	if parseErr != nil {
		envelope = response.FromError(job.Action, cerr.Mark(errkind.InvalidArgumentMark).
			Wrap(parseErr).Error("Job message is not a valid JSON object"))
	} else {
		logger.Info("Dispatching job")
		envelope = j.dispatcher.Dispatch(ctx, job.Action, job.Args)
	}

	body := envelope.Marshal()

	if message.ReplyTo != "" {
		err := j.publisher.Publish(ctx, message.ReplyTo, amqp091.Publishing{
			Type:          ResultMessageType,
			CorrelationId: message.CorrelationId,
			MessageId:     job.ID,
			Body:          body,
		})
		if err != nil {
			return errctx.Field("reply_to", message.ReplyTo).
				Wrap(err).Error("Failed to publish the job result")
		}
	} else {
		logger.Warn("Job has nowhere to reply to, the result is only recorded")
	}

	err := j.jobStore.UpdateJob(ctx, job.ID, func(stored jobentity.Job) (jobentity.Job, error) {
		stored.Action = job.Action
		stored.Args = job.Args
		stored.Status = jobentity.SucceededStatus
		if !envelope.IsSuccess() {
			stored.Status = jobentity.FailedStatus
		}

		envelopeMap := map[string]any{}
		if err := json.Unmarshal(body, &envelopeMap); err != nil {
			return jobentity.Job{}, cerr.Wrap(err).Error("Failed to convert the envelope for storage")
		}
		stored.Envelope = envelopeMap
		stored.UpdatedAt = time.Now()

		return stored, nil
	})
	if err != nil {
		return errctx.Wrap(err).Error("Failed to record the job result")
	}

	logger.WithField("status", envelope.Status).Info("Finished job")
	return nil
}
