package job_message

import (
	"encoding/json"
	"fmt"

	"github.com/veedubyou/audio-worker/src/shared/lib/jsonlib"
)

type JobParams struct {
	JobID  string `json:"job_id,omitempty"`
	Action string `json:"action"`
}

// JobMessage is {"action": ..., "job_id": ..., "<arg>": "<value>", ...},
// every field besides the defined ones being an action argument.
type JobMessage = jsonlib.Flatten[JobParams]

func NewJobMessage(jobID string, action string, args map[string]string) JobMessage {
	extra := map[string]any{}
	for k, v := range args {
		extra[k] = v
	}

	return JobMessage{
		Defined: JobParams{JobID: jobID, Action: action},
		Extra:   extra,
	}
}

// Args turns the extra fields into action arguments. Values that aren't
// strings are passed on in their JSON form.
func Args(message JobMessage) map[string]string {
	args := map[string]string{}
	for k, v := range message.Extra {
		switch value := v.(type) {
		case string:
			args[k] = value
		case nil:
			args[k] = ""
		default:
			encoded, err := json.Marshal(value)
			if err != nil {
				args[k] = fmt.Sprint(value)
				continue
			}
			args[k] = string(encoded)
		}
	}

	return args
}
