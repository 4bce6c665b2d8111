package config

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/veedubyou/audio-worker/src/shared/config/envvar"
	"gopkg.in/yaml.v3"
)

type fileValues struct {
	PythonBinPath        string `yaml:"python_bin_path"`
	FFmpegBinPath        string `yaml:"ffmpeg_bin_path"`
	WorkingDirPath       string `yaml:"working_dir_path"`
	SeparationModel      string `yaml:"separation_model"`
	Device               string `yaml:"device"`
	TranscriptionBackend string `yaml:"transcription_backend"`
	LogLevel             string `yaml:"log_level"`
	LogFormat            string `yaml:"log_format"`
	RabbitMQURL          string `yaml:"rabbitmq_url"`
	RabbitMQQueueName    string `yaml:"rabbitmq_queue_name"`
	JobTableName         string `yaml:"job_table_name"`
	AWSRegion            string `yaml:"aws_region"`
	DynamoEndpoint       string `yaml:"dynamo_endpoint"`
	StatusAddr           string `yaml:"status_addr"`
}

func (f fileValues) byEnvVar() map[string]string {
	return map[string]string{
		envvar.PYTHON_BIN_PATH:       f.PythonBinPath,
		envvar.FFMPEG_BIN_PATH:       f.FFmpegBinPath,
		envvar.WORKING_DIR_PATH:      f.WorkingDirPath,
		envvar.SEPARATION_MODEL:      f.SeparationModel,
		envvar.DEVICE:                f.Device,
		envvar.TRANSCRIPTION_BACKEND: f.TranscriptionBackend,
		envvar.LOG_LEVEL:             f.LogLevel,
		envvar.LOG_FORMAT:            f.LogFormat,
		envvar.RABBITMQ_URL:          f.RabbitMQURL,
		envvar.RABBITMQ_QUEUE_NAME:   f.RabbitMQQueueName,
		envvar.JOB_TABLE_NAME:        f.JobTableName,
		envvar.AWS_REGION:            f.AWSRegion,
		envvar.DYNAMO_ENDPOINT:       f.DynamoEndpoint,
		envvar.STATUS_ADDR:           f.StatusAddr,
	}
}

// Values resolves a setting from the environment first, then from the
// optional config file. Secrets are only ever read from the environment.
type Values struct {
	file map[string]string
}

// Load reads the YAML file at path. An empty path gives environment-only
// values.
func Load(path string) (Values, error) {
	if path == "" {
		return Values{file: map[string]string{}}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return Values{}, errors.Wrapf(err, "Failed to open config file %s", path)
	}
	defer file.Close()

	values, err := LoadFromReader(file)
	if err != nil {
		return Values{}, errors.Wrapf(err, "Failed to parse config file %s", path)
	}

	return values, nil
}

func LoadFromReader(r io.Reader) (Values, error) {
	parsed := fileValues{}

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&parsed); err != nil && !errors.Is(err, io.EOF) {
		return Values{}, errors.Wrap(err, "Failed to decode config")
	}

	return Values{file: parsed.byEnvVar()}, nil
}

func (v Values) Get(key string, fallback string) string {
	if fromFile := v.file[key]; fromFile != "" {
		fallback = fromFile
	}

	return envvar.Get(key, fallback)
}

func (v Values) MustGet(key string) string {
	if fromFile := v.file[key]; fromFile != "" {
		return envvar.Get(key, fromFile)
	}

	return envvar.MustGet(key)
}
