package response

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/apex/log"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/cerr"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/errkind"
)

type Status string

const (
	SuccessStatus Status = "success"
	ErrorStatus   Status = "error"
)

// Envelope is the one message a caller receives per action.
type Envelope struct {
	Status Status     `json:"status"`
	Result any        `json:"result,omitempty"`
	Error  *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

const (
	ErrorTypeKey = "error_type"
	ActionKey    = "action"
)

// written when an envelope can't be encoded, so the caller still gets JSON
var fallbackLine = []byte(`{"status":"error","error":{"message":"Failed to encode response","details":{"error_type":"Internal"}}}` + "\n")

func Success(result any) Envelope {
	return Envelope{
		Status: SuccessStatus,
		Result: result,
	}
}

// FromError classifies the error and flattens every field attached along its
// chain into the details.
func FromError(action string, err error) Envelope {
	if err == nil {
		err = cerr.Error("Action failed without a reason")
	}

	details := map[string]any{}
	for k, v := range cerr.CollectFields(err) {
		details[k] = v
	}

	details[ErrorTypeKey] = errkind.Of(err)
	if action != "" {
		details[ActionKey] = action
	}

	return Envelope{
		Status: ErrorStatus,
		Error: &ErrorBody{
			Message: err.Error(),
			Details: details,
		},
	}
}

func (e Envelope) IsSuccess() bool {
	return e.Status == SuccessStatus
}

// Kind of the reported error, empty for a success.
func (e Envelope) Kind() errkind.Kind {
	if e.Error == nil {
		return ""
	}

	switch kind := e.Error.Details[ErrorTypeKey].(type) {
	case errkind.Kind:
		return kind
	case string:
		return errkind.Kind(kind)
	default:
		return ""
	}
}

// Marshal encodes the envelope as a single newline terminated line.
func (e Envelope) Marshal() []byte {
	line, err := json.Marshal(e)
	if err != nil {
		log.WithError(err).
			WithField("status", e.Status).
			Error("Failed to encode response envelope")
		return fallbackLine
	}

	return append(line, '\n')
}

func Emit(w io.Writer, envelope Envelope) error {
	if _, err := w.Write(envelope.Marshal()); err != nil {
		return cerr.Wrap(err).Error("Failed to write response envelope")
	}

	return nil
}

func (e Envelope) String() string {
	if e.Error != nil {
		return fmt.Sprintf("%s: %s", e.Status, e.Error.Message)
	}

	return string(e.Status)
}
