package dummy

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/executor"
)

var _ executor.Executor = &Executor{}

type CommandHandler func(dir string, args []string) ([]byte, error)

// Executor answers commands from canned handlers keyed by binary name.
// Binaries without a handler are treated as not installed.
type Executor struct {
	mutex    sync.Mutex
	handlers map[string]CommandHandler
	Calls    [][]string
}

func NewDummyExecutor() *Executor {
	return &Executor{
		handlers: map[string]CommandHandler{},
	}
}

func (e *Executor) Handle(bin string, handler CommandHandler) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.handlers[bin] = handler
}

// HandlePython answers python -c invocations, passing the script.
func (e *Executor) HandlePython(bin string, handler func(script string) ([]byte, error)) {
	e.Handle(bin, func(_ string, args []string) ([]byte, error) {
		if len(args) == 2 && args[0] == "-c" {
			return handler(args[1])
		}
		return handler(strings.Join(args, " "))
	})
}

func (e *Executor) CallsTo(bin string) [][]string {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	calls := [][]string{}
	for _, call := range e.Calls {
		if call[0] == bin {
			calls = append(calls, call)
		}
	}

	return calls
}

func (e *Executor) CommandContext(ctx context.Context, bin string, args ...string) executor.Command {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	e.Calls = append(e.Calls, append([]string{bin}, args...))
	return &Command{
		ctx:     ctx,
		bin:     bin,
		args:    args,
		handler: e.handlers[bin],
	}
}

func (e *Executor) LookPath(bin string) (string, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if _, ok := e.handlers[bin]; !ok {
		return "", errors.Newf("executable file not found in $PATH: %s", bin)
	}

	return bin, nil
}

var _ executor.Command = &Command{}

type Command struct {
	ctx     context.Context
	bin     string
	args    []string
	dir     string
	handler CommandHandler
}

func (c *Command) SetDir(dir string)     { c.dir = dir }
func (c *Command) SetEnv(_ []string)     {}
func (c *Command) SetStderr(_ io.Writer) {}

func (c *Command) CombinedOutput() ([]byte, error) {
	return c.run()
}

func (c *Command) Output() ([]byte, error) {
	return c.run()
}

func (c *Command) run() ([]byte, error) {
	if c.ctx.Err() != nil {
		return nil, c.ctx.Err()
	}

	if c.handler == nil {
		return nil, errors.Newf("exec: %q: executable file not found in $PATH", c.bin)
	}

	return c.handler(c.dir, c.args)
}

func (c *Command) StdinPipe() (io.WriteCloser, error) {
	return nil, errors.New("pipes are not supported by the dummy executor")
}

func (c *Command) StdoutPipe() (io.ReadCloser, error) {
	return nil, errors.New("pipes are not supported by the dummy executor")
}

func (c *Command) Start() error {
	return errors.New("long running processes are not supported by the dummy executor")
}

func (c *Command) Wait() error {
	return errors.New("long running processes are not supported by the dummy executor")
}
