package application

import (
	"context"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/cockroachdb/errors"
	"github.com/guregu/dynamo"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"
	"github.com/veedubyou/audio-worker/src/shared/config"
	jobentity "github.com/veedubyou/audio-worker/src/shared/job/entity"
	jobstorage "github.com/veedubyou/audio-worker/src/shared/job/storage"
	dynamolib "github.com/veedubyou/audio-worker/src/shared/lib/dynamo"
	"github.com/veedubyou/audio-worker/src/shared/lib/rabbitmq"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/audio"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/capability"
	filestore "github.com/veedubyou/audio-worker/src/worker/internal/application/cloud_storage/store"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/command"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/executor"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/jobs/job_router"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/response"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/separation/pymodel"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/transcription"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/worker"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/cerr"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/working_dir"
	"golang.org/x/sync/errgroup"
)

const statusShutdownTimeout = 5 * time.Second

type Config struct {
	PythonBinPath        string
	FFmpegBinPath        string
	WorkingDirPath       string
	SeparationModel      string
	Device               capability.Device
	TranscriptionBackend string

	// nil when gs:// paths aren't allowed
	CloudStorageConfig config.CloudStorage

	RabbitMQURL       string
	RabbitMQQueueName string
	// nil when jobs aren't recorded
	DynamoConfig config.Dynamo
	StatusAddr   string
}

type App struct {
	config     Config
	dispatcher command.Dispatcher
	fileStore  *filestore.GoogleFileStore
}

func NewApp(config Config) (App, error) {
	workingDir, err := working_dir.NewWorkingDir(config.WorkingDirPath)
	if err != nil {
		return App{}, cerr.Wrap(err).Error("Failed to set up the working dir")
	}

	var (
		fileStore *filestore.GoogleFileStore
		paths     = command.NewPaths(nil, workingDir)
	)

	if config.CloudStorageConfig != nil {
		googleFileStore, err := filestore.NewGoogleFileStore(config.CloudStorageConfig.ClientOptions()...)
		if err != nil {
			return App{}, cerr.Wrap(err).Error("Failed to create the cloud storage client")
		}

		fileStore = &googleFileStore
		paths = command.NewPaths(googleFileStore, workingDir)
	}

	binaryExecutor := executor.BinaryFileExecutor{}

	dispatcher := command.NewDispatcher(
		capability.NewProber(binaryExecutor, config.PythonBinPath, config.FFmpegBinPath),
		command.Decoders{
			Native: []audio.Decoder{audio.WAVDecoder{}, audio.MP3Decoder{}},
			Codec:  audio.NewFFmpegDecoder(config.FFmpegBinPath, workingDir, binaryExecutor),
		},
		pymodel.NewLoader(binaryExecutor, config.PythonBinPath, config.SeparationModel, workingDir),
		transcription.NewBasicPitch(binaryExecutor, config.PythonBinPath, workingDir),
		paths,
		command.Config{
			Device:               config.Device,
			TranscriptionBackend: config.TranscriptionBackend,
		},
	)

	return App{
		config:     config,
		dispatcher: dispatcher,
		fileStore:  fileStore,
	}, nil
}

// Run handles one action and produces its envelope.
func (a App) Run(ctx context.Context, action string, args command.Args) response.Envelope {
	return a.dispatcher.Dispatch(ctx, action, args)
}

// Serve consumes jobs until the context is cancelled, optionally exposing a
// status endpoint alongside.
func (a App) Serve(ctx context.Context) error {
	if a.config.RabbitMQURL == "" || a.config.RabbitMQQueueName == "" {
		return cerr.Error("RabbitMQ URL and queue name are required to serve jobs")
	}

	publisher, err := rabbitmq.NewQueuePublisher(a.config.RabbitMQURL)
	if err != nil {
		return cerr.Wrap(err).Error("Failed to create the result publisher")
	}
	defer publisher.Close()

	consumerConn, err := amqp091.Dial(a.config.RabbitMQURL)
	if err != nil {
		return cerr.Field("rabbitmq_url", a.config.RabbitMQURL).
			Wrap(err).Error("Failed to connect to RabbitMQ")
	}
	defer consumerConn.Close()

	jobStore, err := newJobStore(a.config.DynamoConfig)
	if err != nil {
		return err
	}

	// capabilities are probed before the first job or status request arrives
	report := a.dispatcher.Report(ctx)
	log.WithFields(log.Fields{
		"can_separate_stems": report.CanSeparateStems,
		"can_extract_midi":   report.CanExtractMIDI,
		"device":             report.Device,
	}).Info("Worker capabilities")

	router := job_router.NewJobRouter(a.dispatcher, publisher, jobStore)
	queueWorker, err := worker.NewQueueWorkerFromConnection(consumerConn, a.config.RabbitMQQueueName, router)
	if err != nil {
		return cerr.Wrap(err).Error("Failed to create the queue worker")
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		defer queueWorker.Stop()
		if err := queueWorker.Start(groupCtx); err != nil {
			return cerr.Wrap(err).Error("Failed to start worker")
		}

		// the broker closed the channel while we were still meant to be running
		if groupCtx.Err() == nil {
			return cerr.Error("Worker stopped unexpectedly")
		}
		return nil
	})

	if a.config.StatusAddr != "" {
		statusServer := a.newStatusServer()

		group.Go(func() error {
			log.WithField("addr", a.config.StatusAddr).Info("Starting status server")
			err := statusServer.Start(a.config.StatusAddr)
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return cerr.Wrap(err).Error("Status server failed")
			}
			return nil
		})

		group.Go(func() error {
			<-groupCtx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), statusShutdownTimeout)
			defer cancel()
			return statusServer.Shutdown(shutdownCtx)
		})
	}

	return group.Wait()
}

func (a App) Close() {
	if a.fileStore == nil {
		return
	}

	if err := a.fileStore.Close(); err != nil {
		log.WithError(err).Warn("Failed to close the cloud storage client")
	}
}

func (a App) newStatusServer() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.GET("/healthz", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	e.GET("/capabilities", func(c echo.Context) error {
		return c.JSON(http.StatusOK, a.dispatcher.Report(c.Request().Context()))
	})

	return e
}

func newJobStore(dynamoConfig config.Dynamo) (jobentity.Store, error) {
	if dynamoConfig == nil {
		log.Info("No job table configured, jobs will not be recorded")
		return jobstorage.Discard{}, nil
	}

	dynamoDB, err := newDynamoDB(dynamoConfig)
	if err != nil {
		return nil, err
	}

	return jobstorage.NewDB(dynamoDB, dynamoConfig.JobTable()), nil
}

func newDynamoDB(dynamoConfig config.Dynamo) (dynamolib.DynamoDBWrapper, error) {
	dbSession, err := session.NewSession()
	if err != nil {
		return dynamolib.DynamoDBWrapper{}, cerr.Wrap(err).Error("Failed to create AWS session")
	}

	var dbConfig *aws.Config

	switch t := dynamoConfig.(type) {
	case config.ProdDynamo:
		dbConfig = aws.NewConfig().
			WithCredentials(credentials.NewStaticCredentials(
				t.AccessKeyID,
				t.SecretAccessKey,
				"",
			)).
			WithRegion(t.Region)

	case config.LocalDynamo:
		dbConfig = aws.NewConfig().
			WithCredentials(credentials.NewStaticCredentials(
				t.AccessKeyID,
				t.SecretAccessKey,
				"",
			)).
			WithRegion(t.Region).
			WithEndpoint(t.Host)

	default:
		return dynamolib.DynamoDBWrapper{}, cerr.Error("Unexpected dynamo config type")
	}

	return dynamolib.NewDynamoDBWrapper(dynamo.New(dbSession, dbConfig)), nil
}
