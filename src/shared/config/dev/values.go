package dev

import "github.com/veedubyou/audio-worker/src/shared/config"

// DynamoDB
const (
	DynamoAccessKeyID     = "local"
	DynamoSecretAccessKey = "local"
	DynamoDBHost          = "http://localhost:8000"
	DynamoDBRegion        = "localhost"
	JobTableName          = "AudioJobs-dev"
)

var DynamoConfig = config.LocalDynamo{
	AccessKeyID:     DynamoAccessKeyID,
	SecretAccessKey: DynamoSecretAccessKey,
	Region:          DynamoDBRegion,
	Host:            DynamoDBHost,
	TableName:       JobTableName,
}

// RabbitMQ
const (
	RabbitMQHost      = "amqp://localhost:5672"
	RabbitMQQueueName = "audio-worker-jobs-dev"
)

// Cloud storage, served by fake-gcs-server
const CloudStorageHost = "http://localhost:4443/storage/v1/"

var CloudStorageConfig = config.LocalCloudStorage{
	HostEndpoint: CloudStorageHost,
}

const StatusAddr = ":5050"
