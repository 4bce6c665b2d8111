package logging

import (
	"io"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"
	"github.com/cockroachdb/errors"
)

const (
	TextFormat = "text"
	JSONFormat = "json"
	CLIFormat  = "cli"
)

// Setup points the global apex logger at w. Nothing but the response ever
// goes to stdout, so w is normally stderr.
func Setup(w io.Writer, format string, level string) error {
	handler, err := newHandler(w, format)
	if err != nil {
		return err
	}

	if level == "" {
		level = log.InfoLevel.String()
	}

	parsedLevel, err := log.ParseLevel(level)
	if err != nil {
		return errors.Wrapf(err, "Invalid log level %q", level)
	}

	log.SetHandler(handler)
	log.SetLevel(parsedLevel)
	return nil
}

func newHandler(w io.Writer, format string) (log.Handler, error) {
	switch format {
	case "", TextFormat:
		return text.New(w), nil
	case JSONFormat:
		return json.New(w), nil
	case CLIFormat:
		return cli.New(w), nil
	default:
		return nil, errors.Newf("Unknown log format %q, expected one of text, json, cli", format)
	}
}
