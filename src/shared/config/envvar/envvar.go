package envvar

import (
	"fmt"
	"os"
)

const (
	ENVIRONMENT           = "ENVIRONMENT"
	AUDIO_WORKER_CONFIG   = "AUDIO_WORKER_CONFIG"
	PYTHON_BIN_PATH       = "PYTHON_BIN_PATH"
	FFMPEG_BIN_PATH       = "FFMPEG_BIN_PATH"
	WORKING_DIR_PATH      = "WORKING_DIR_PATH"
	SEPARATION_MODEL      = "SEPARATION_MODEL"
	DEVICE                = "DEVICE"
	TRANSCRIPTION_BACKEND = "TRANSCRIPTION_BACKEND"
	LOG_LEVEL             = "LOG_LEVEL"
	LOG_FORMAT            = "LOG_FORMAT"
	GOOGLE_CLOUD_KEY      = "GOOGLE_CLOUD_KEY"
	RABBITMQ_URL          = "RABBITMQ_URL"
	RABBITMQ_QUEUE_NAME   = "RABBITMQ_QUEUE_NAME"
	JOB_TABLE_NAME        = "JOB_TABLE_NAME"
	AWS_ACCESS_KEY_ID     = "AWS_ACCESS_KEY_ID"
	AWS_SECRET_ACCESS_KEY = "AWS_SECRET_ACCESS_KEY"
	AWS_REGION            = "AWS_REGION"
	DYNAMO_ENDPOINT       = "DYNAMO_ENDPOINT"
	STATUS_ADDR           = "STATUS_ADDR"
)

func MustGet(key string) string {
	val, isSet := os.LookupEnv(key)
	if !isSet {
		panic(fmt.Sprintf("No env variable found for key %s", key))
	}

	if val == "" {
		panic(fmt.Sprintf("Env variable is empty for key %s", key))
	}

	return val
}

// Get treats an empty variable the same as an unset one.
func Get(key string, fallback string) string {
	val, isSet := os.LookupEnv(key)
	if !isSet || val == "" {
		return fallback
	}

	return val
}
