package pymodel

import (
	"bufio"
	"context"
	_ "embed"
	"encoding/binary"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/apex/log"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/capability"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/executor"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/separation"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/cerr"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/errkind"
	"github.com/veedubyou/audio-worker/src/worker/internal/lib/working_dir"
)

//go:embed bridge.py
var bridgeScript []byte

const (
	bridgeScriptName = "separation_bridge.py"
	DefaultModelName = "htdemucs"

	kindOutOfMemory       = "out_of_memory"
	kindDependencyMissing = "dependency_missing"
)

type request struct {
	Op     string `json:"op"`
	Input  string `json:"input,omitempty"`
	Output string `json:"output,omitempty"`
	Shape  []int  `json:"shape,omitempty"`
	separation.InferenceParams
}

type response struct {
	Event      string   `json:"event"`
	OK         bool     `json:"ok"`
	Kind       string   `json:"kind"`
	Message    string   `json:"message"`
	Shape      []int    `json:"shape"`
	Sources    []string `json:"sources"`
	SampleRate int      `json:"sample_rate"`
}

var _ separation.ModelLoader = Loader{}

// Loader starts a python process that loads the model once and then serves
// every Apply for the lifetime of the returned Model.
type Loader struct {
	executor      executor.Executor
	pythonBinPath string
	modelName     string
	workingDir    working_dir.WorkingDir
}

func NewLoader(executor executor.Executor, pythonBinPath string, modelName string, workingDir working_dir.WorkingDir) Loader {
	if modelName == "" {
		modelName = DefaultModelName
	}

	return Loader{
		executor:      executor,
		pythonBinPath: pythonBinPath,
		modelName:     modelName,
		workingDir:    workingDir,
	}
}

func (l Loader) Load(ctx context.Context, device capability.Device) (separation.Model, error) {
	errctx := cerr.Fields(cerr.F{
		"python_bin_path": l.pythonBinPath,
		"model_name":      l.modelName,
		"device":          device,
	})

	scriptPath := filepath.Join(l.workingDir.Root(), bridgeScriptName)
	if err := os.WriteFile(scriptPath, bridgeScript, 0644); err != nil {
		return nil, errctx.Wrap(err).Error("Failed to write model bridge script")
	}

	cmd := l.executor.CommandContext(ctx, l.pythonBinPath, "-u", scriptPath,
		"--model", l.modelName,
		"--device", string(device))
	cmd.SetDir(l.workingDir.Root())
	cmd.SetStderr(os.Stderr)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errctx.Wrap(err).Error("Failed to open bridge stdin")
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errctx.Wrap(err).Error("Failed to open bridge stdout")
	}

	log.WithFields(log.Fields{
		"model":  l.modelName,
		"device": device,
	}).Info("Starting model bridge")

	if err := cmd.Start(); err != nil {
		return nil, errctx.Wrap(err).Error("Failed to start model bridge")
	}

	model, err := newModel(stdin, stdout, cmd.Wait, l.workingDir)
	if err != nil {
		_ = stdin.Close()
		_ = cmd.Wait()
		return nil, errctx.Wrap(err).Error("Model bridge failed to load the model")
	}

	return model, nil
}

var _ separation.Model = &Model{}

type Model struct {
	mutex      sync.Mutex
	stdin      io.WriteCloser
	stdout     *json.Decoder
	wait       func() error
	workingDir working_dir.WorkingDir

	sources    []string
	sampleRate int
	closed     bool
}

// newModel waits for the bridge to announce itself before handing out a model.
func newModel(stdin io.WriteCloser, stdout io.Reader, wait func() error, workingDir working_dir.WorkingDir) (*Model, error) {
	model := &Model{
		stdin:      stdin,
		stdout:     json.NewDecoder(bufio.NewReader(stdout)),
		wait:       wait,
		workingDir: workingDir,
	}

	ready, err := model.receive()
	if err != nil {
		return nil, cerr.Wrap(err).Error("Bridge exited before becoming ready")
	}

	if ready.Event != "ready" {
		return nil, bridgeError(ready, "Bridge could not load the model")
	}

	model.sources = ready.Sources
	model.sampleRate = ready.SampleRate
	return model, nil
}

func (m *Model) Sources() []string {
	return m.sources
}

func (m *Model) SampleRate() int {
	return m.sampleRate
}

func (m *Model) Apply(ctx context.Context, input separation.Tensor, params separation.InferenceParams) (separation.Tensor, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.closed {
		return separation.Tensor{}, cerr.Error("Model has already been closed")
	}

	if ctx.Err() != nil {
		return separation.Tensor{}, cerr.Wrap(ctx.Err()).Error("Context cancelled before inference")
	}

	inputPath, err := m.workingDir.NewScratchFile("tensor-in", ".f32")
	if err != nil {
		return separation.Tensor{}, err
	}
	defer os.Remove(inputPath)

	outputPath, err := m.workingDir.NewScratchFile("tensor-out", ".f32")
	if err != nil {
		return separation.Tensor{}, err
	}
	defer os.Remove(outputPath)

	if err := writeTensor(inputPath, input.Data); err != nil {
		return separation.Tensor{}, err
	}

	err = m.send(request{
		Op:              "apply",
		Input:           inputPath,
		Output:          outputPath,
		Shape:           input.Shape,
		InferenceParams: params,
	})
	if err != nil {
		return separation.Tensor{}, err
	}

	result, err := m.receive()
	if err != nil {
		return separation.Tensor{}, cerr.Wrap(err).Error("Bridge stopped responding during inference")
	}

	if !result.OK {
		return separation.Tensor{}, bridgeError(result, "Bridge failed to apply the model")
	}

	output := separation.Tensor{Shape: result.Shape}
	output.Data, err = readTensor(outputPath, output.Size())
	if err != nil {
		return separation.Tensor{}, err
	}

	return output, nil
}

func (m *Model) Close() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	if err := m.send(request{Op: "close"}); err != nil {
		log.WithError(err).Warn("Failed to ask the model bridge to close")
	} else if _, err := m.receive(); err != nil {
		log.WithError(err).Debug("Model bridge closed without acknowledging")
	}

	_ = m.stdin.Close()
	if err := m.wait(); err != nil {
		return cerr.Wrap(err).Error("Model bridge exited with an error")
	}

	return nil
}

func (m *Model) send(req request) error {
	line, err := json.Marshal(req)
	if err != nil {
		return cerr.Wrap(err).Error("Failed to encode bridge request")
	}

	if _, err := m.stdin.Write(append(line, '\n')); err != nil {
		return cerr.Field("op", req.Op).Wrap(err).Error("Failed to send request to bridge")
	}

	return nil
}

func (m *Model) receive() (response, error) {
	resp := response{}
	if err := m.stdout.Decode(&resp); err != nil {
		return response{}, cerr.Wrap(err).Error("Failed to read bridge response")
	}

	return resp, nil
}

func bridgeError(resp response, msg string) error {
	errctx := cerr.Fields(cerr.F{
		"bridge_kind":    resp.Kind,
		"bridge_message": resp.Message,
	})

	switch resp.Kind {
	case kindOutOfMemory:
		return errctx.Wrap(separation.ErrDeviceOutOfMemory).Error(msg)
	case kindDependencyMissing:
		return errctx.Mark(errkind.DependencyMissingMark).Error(msg + ": " + resp.Message)
	default:
		return errctx.Error(msg + ": " + resp.Message)
	}
}

func writeTensor(path string, data []float32) error {
	file, err := os.Create(path)
	if err != nil {
		return cerr.Field("path", path).Wrap(err).Error("Failed to create tensor file")
	}

	writer := bufio.NewWriter(file)
	if err := binary.Write(writer, binary.LittleEndian, data); err != nil {
		_ = file.Close()
		return cerr.Field("path", path).Wrap(err).Error("Failed to write tensor")
	}

	if err := writer.Flush(); err != nil {
		_ = file.Close()
		return cerr.Field("path", path).Wrap(err).Error("Failed to flush tensor")
	}

	return file.Close()
}

func readTensor(path string, size int) ([]float32, error) {
	errctx := cerr.Fields(cerr.F{"path": path, "expected_size": size})

	file, err := os.Open(path)
	if err != nil {
		return nil, errctx.Wrap(err).Error("Failed to open tensor file")
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, errctx.Wrap(err).Error("Failed to stat tensor file")
	}

	if info.Size() != int64(size)*4 {
		return nil, errctx.Field("actual_bytes", info.Size()).Error("Tensor file does not match its declared shape")
	}

	data := make([]float32, size)
	if err := binary.Read(bufio.NewReader(file), binary.LittleEndian, data); err != nil {
		return nil, errctx.Wrap(err).Error("Failed to read tensor")
	}

	return data, nil
}
