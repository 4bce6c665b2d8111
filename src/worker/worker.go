package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/apex/log"
	"github.com/spf13/cobra"
	"github.com/veedubyou/audio-worker/src/shared/lib/logging"
	"github.com/veedubyou/audio-worker/src/worker/application"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/command"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/response"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/cerr"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "audio-worker:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var settings settings

	root := &cobra.Command{
		Use:           "audio-worker",
		Short:         "Separates audio into stems and transcribes it to MIDI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := loadSettings()
			if err != nil {
				return err
			}

			settings = loaded
			return logging.Setup(os.Stderr, settings.logFormat, settings.logLevel)
		},
	}
	root.SetOut(os.Stderr)

	root.AddCommand(&cobra.Command{
		Use:   "run <action> [key=value ...]",
		Short: "Run one action and write its result to stdout as one JSON line",
		Long: "Actions: " + fmt.Sprint(command.ValidActions) + "\n" +
			"separate_stems needs input_path and output_dir, extract_midi needs input_path and output_path.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), settings.app, args[0], args[1:])
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Consume jobs from RabbitMQ until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), settings.app)
		},
	})

	return root
}

// run only returns an error when no envelope can be built, which is when the
// invocation itself is malformed. Everything after that is reported on stdout.
func run(ctx context.Context, appConfig application.Config, action string, tokens []string) error {
	args, err := command.PrepareInvocation(action, tokens)
	if err != nil {
		return err
	}

	// anything that writes to stdout while the action runs would corrupt the
	// response, so it is sent to stderr until the envelope is out
	stdout := os.Stdout
	os.Stdout = os.Stderr
	defer func() { os.Stdout = stdout }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	envelope := actionRunner(ctx, appConfig, action, args)
	if err := response.Emit(stdout, envelope); err != nil {
		return cerr.Wrap(err).Error("Failed to write the response")
	}

	return nil
}

var actionRunner = runAction

func runAction(ctx context.Context, appConfig application.Config, action string, args command.Args) response.Envelope {
	app, err := application.NewApp(appConfig)
	if err != nil {
		cerr.Log(err)
		return response.FromError(action, err)
	}
	defer app.Close()

	return app.Run(ctx, action, args)
}

func serve(ctx context.Context, appConfig application.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := application.NewApp(appConfig)
	if err != nil {
		return err
	}
	defer app.Close()

	log.WithField("queue_name", appConfig.RabbitMQQueueName).Info("Serving jobs")
	if err := app.Serve(ctx); err != nil {
		cerr.Log(err)
		return err
	}

	log.Info("Stopped serving jobs")
	return nil
}
