package executor

import (
	"context"
	"io"
	"os/exec"

	"github.com/cockroachdb/errors"
)

type Executor interface {
	CommandContext(ctx context.Context, bin string, args ...string) Command
	LookPath(bin string) (string, error)
}

type Command interface {
	SetDir(dir string)
	SetEnv(env []string)
	SetStderr(w io.Writer)
	CombinedOutput() ([]byte, error)
	Output() ([]byte, error)
	StdinPipe() (io.WriteCloser, error)
	StdoutPipe() (io.ReadCloser, error)
	Start() error
	Wait() error
}

var _ Executor = BinaryFileExecutor{}

type BinaryFileExecutor struct{}

func (BinaryFileExecutor) CommandContext(ctx context.Context, bin string, args ...string) Command {
	return &BinaryFileCommand{Cmd: exec.CommandContext(ctx, bin, args...)}
}

func (BinaryFileExecutor) LookPath(bin string) (string, error) {
	return exec.LookPath(bin)
}

var _ Command = &BinaryFileCommand{}

type BinaryFileCommand struct {
	*exec.Cmd
}

func (b *BinaryFileCommand) SetDir(dir string) {
	b.Cmd.Dir = dir
}

func (b *BinaryFileCommand) SetEnv(env []string) {
	b.Cmd.Env = env
}

func (b *BinaryFileCommand) SetStderr(w io.Writer) {
	b.Cmd.Stderr = w
}

// ExitCode reports the exit status of a finished command, -1 when the
// error did not come from the process exiting.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}

	return -1
}
