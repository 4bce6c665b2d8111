package main

import (
	"os"
	"path/filepath"

	"github.com/veedubyou/audio-worker/src/shared/config"
	"github.com/veedubyou/audio-worker/src/shared/config/dev"
	"github.com/veedubyou/audio-worker/src/shared/config/envvar"
	"github.com/veedubyou/audio-worker/src/shared/config/local"
	"github.com/veedubyou/audio-worker/src/shared/config/prod"
	"github.com/veedubyou/audio-worker/src/shared/lib/env"
	"github.com/veedubyou/audio-worker/src/worker/application"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/capability"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/transcription"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/cerr"
)

type settings struct {
	app       application.Config
	logLevel  string
	logFormat string
}

func loadSettings() (settings, error) {
	values, err := config.Load(envvar.Get(envvar.AUDIO_WORKER_CONFIG, ""))
	if err != nil {
		return settings{}, err
	}

	device, err := capability.ParseDevice(values.Get(envvar.DEVICE, ""))
	if err != nil {
		return settings{}, err
	}

	appConfig := application.Config{
		PythonBinPath:        values.Get(envvar.PYTHON_BIN_PATH, config.BinOrDefault("python3")),
		FFmpegBinPath:        values.Get(envvar.FFMPEG_BIN_PATH, config.BinOrDefault("ffmpeg")),
		SeparationModel:      values.Get(envvar.SEPARATION_MODEL, ""),
		Device:               device,
		TranscriptionBackend: values.Get(envvar.TRANSCRIPTION_BACKEND, transcription.BackendAuto),
	}

	switch env.Get() {
	case env.Production:
		appConfig.WorkingDirPath = values.Get(envvar.WORKING_DIR_PATH, filepath.Join(os.TempDir(), "audio-worker"))
		appConfig.RabbitMQURL = values.Get(envvar.RABBITMQ_URL, "")
		appConfig.RabbitMQQueueName = values.Get(envvar.RABBITMQ_QUEUE_NAME, prod.RabbitMQQueueName)
		appConfig.StatusAddr = values.Get(envvar.STATUS_ADDR, "")

		if key := envvar.Get(envvar.GOOGLE_CLOUD_KEY, ""); key != "" {
			appConfig.CloudStorageConfig = config.ProdCloudStorage{SecretKey: key}
		}

		appConfig.DynamoConfig = prodDynamo(values)

	case env.Development, env.Test:
		appConfig.WorkingDirPath = values.Get(envvar.WORKING_DIR_PATH, filepath.Join(local.ProjectRoot(), "src/worker/wd"))
		appConfig.RabbitMQURL = values.Get(envvar.RABBITMQ_URL, dev.RabbitMQHost)
		appConfig.RabbitMQQueueName = values.Get(envvar.RABBITMQ_QUEUE_NAME, dev.RabbitMQQueueName)
		appConfig.StatusAddr = values.Get(envvar.STATUS_ADDR, dev.StatusAddr)
		appConfig.CloudStorageConfig = dev.CloudStorageConfig
		appConfig.DynamoConfig = dev.DynamoConfig

	default:
		return settings{}, cerr.Error("Unexpected environment")
	}

	return settings{
		app:       appConfig,
		logLevel:  values.Get(envvar.LOG_LEVEL, "info"),
		logFormat: values.Get(envvar.LOG_FORMAT, "text"),
	}, nil
}

// prodDynamo only turns on job recording when credentials are present, so a
// plain `run` never needs AWS.
func prodDynamo(values config.Values) config.Dynamo {
	accessKeyID := envvar.Get(envvar.AWS_ACCESS_KEY_ID, "")
	secretAccessKey := envvar.Get(envvar.AWS_SECRET_ACCESS_KEY, "")
	if accessKeyID == "" || secretAccessKey == "" {
		return nil
	}

	region := values.Get(envvar.AWS_REGION, prod.DynamoDBRegion)
	tableName := values.Get(envvar.JOB_TABLE_NAME, prod.JobTableName)

	if endpoint := values.Get(envvar.DYNAMO_ENDPOINT, ""); endpoint != "" {
		return config.LocalDynamo{
			AccessKeyID:     accessKeyID,
			SecretAccessKey: secretAccessKey,
			Region:          region,
			Host:            endpoint,
			TableName:       tableName,
		}
	}

	return config.ProdDynamo{
		AccessKeyID:     accessKeyID,
		SecretAccessKey: secretAccessKey,
		Region:          region,
		TableName:       tableName,
	}
}
