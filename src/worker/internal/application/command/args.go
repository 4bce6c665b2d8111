package command

import (
	"strings"

	"github.com/veedubyou/audio-worker/src/worker/internal/lib/cerr"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/errkind"
)

type Args = map[string]string

// ParseArgs reads key=value tokens. A later key overrides an earlier one.
func ParseArgs(tokens []string) (Args, error) {
	args := Args{}
	for _, token := range tokens {
		key, value, found := strings.Cut(token, "=")
		if !found || key == "" {
			return nil, cerr.Field("argument", token).
				Mark(errkind.InvalidArgumentMark).
				Error("Malformed argument, expected key=value")
		}

		args[key] = Unescape(value)
	}

	return args, nil
}

// Unescape strips one pair of surrounding double quotes and then turns \"
// into ".
func Unescape(value string) string {
	if len(value) >= 2 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) {
		value = value[1 : len(value)-1]
	}

	return strings.ReplaceAll(value, `\"`, `"`)
}

// PrepareInvocation turns command line tokens into arguments for a run.
// Malformed tokens and missing arguments of a known action are reported
// before anything is dispatched. An unknown action is left for the
// dispatcher, which answers it with an envelope.
func PrepareInvocation(action string, tokens []string) (Args, error) {
	args, err := ParseArgs(tokens)
	if err != nil {
		return nil, err
	}

	if IsValidAction(action) {
		if err := ValidateArgs(action, args); err != nil {
			return nil, err
		}
	}

	return args, nil
}
