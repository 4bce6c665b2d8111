package prod

const (
	DynamoDBRegion    = "us-east-2"
	JobTableName      = "AudioJobs"
	RabbitMQQueueName = "audio-worker-jobs"
)
