package command

import (
	"slices"
	"strings"

	"github.com/veedubyou/audio-worker/src/worker/internal/lib/cerr"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/errkind"
)

const (
	GetCapabilities   = "get_capabilities"
	SeparateStems     = "separate_stems"
	ExtractMIDI       = "extract_midi"
	CheckCapabilities = "check_capabilities"
)

const (
	InputPathArg  = "input_path"
	OutputDirArg  = "output_dir"
	OutputPathArg = "output_path"
)

var ValidActions = []string{GetCapabilities, SeparateStems, ExtractMIDI, CheckCapabilities}

var requiredArgs = map[string][]string{
	SeparateStems: {InputPathArg, OutputDirArg},
	ExtractMIDI:   {InputPathArg, OutputPathArg},
}

func IsValidAction(action string) bool {
	return slices.Contains(ValidActions, action)
}

// MissingArgs lists the required arguments that are absent or empty.
func MissingArgs(action string, args Args) []string {
	missing := []string{}
	for _, key := range requiredArgs[action] {
		if args[key] == "" {
			missing = append(missing, key)
		}
	}

	return missing
}

func ValidateArgs(action string, args Args) error {
	missing := MissingArgs(action, args)
	if len(missing) == 0 {
		return nil
	}

	return cerr.Field("missing_arguments", missing).
		Mark(errkind.InvalidArgumentMark).
		Error("Missing required arguments: " + strings.Join(missing, ", "))
}

func unknownActionError(action string) error {
	return cerr.Fields(cerr.F{
		"provided_action": action,
		"valid_actions":   ValidActions,
	}).Mark(errkind.UnknownActionMark).
		Error("Unknown action: " + action + ". Valid actions: " + strings.Join(ValidActions, ", "))
}

type SeparateStemsArgs struct {
	InputPath string
	OutputDir string
}

type ExtractMIDIArgs struct {
	InputPath  string
	OutputPath string
}

// NewSeparateStemsArgs expects args that already passed ValidateArgs.
func NewSeparateStemsArgs(args Args) SeparateStemsArgs {
	return SeparateStemsArgs{
		InputPath: args[InputPathArg],
		OutputDir: args[OutputDirArg],
	}
}

// NewExtractMIDIArgs expects args that already passed ValidateArgs.
func NewExtractMIDIArgs(args Args) ExtractMIDIArgs {
	return ExtractMIDIArgs{
		InputPath:  args[InputPathArg],
		OutputPath: args[OutputPathArg],
	}
}
