package detect

import (
	"bufio"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"

	"gocv.io/x/gocv"
)

// sidecarAdapter implements Adapter by delegating inference to a Python
// model-runtime sidecar. Frames are sent as length-prefixed JPEG over stdin;
// results come back as one JSON line per frame. The running process is the
// adapter's model handle: Close terminates it and the adapter cannot be
// reloaded afterwards.
type sidecarAdapter struct {
	config Config

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	loaded bool
	closed bool
}

func newSidecarAdapter(cfg Config) *sidecarAdapter {
	return &sidecarAdapter{config: cfg}
}

// Config returns the frozen adapter configuration.
func (a *sidecarAdapter) Config() Config {
	return a.config
}

// Load starts the sidecar process and waits for its ready handshake. The
// model weights load inside the sidecar, so this can take seconds; callers
// run it off the rendering path. Load honors ctx cancellation by tearing
// the process down.
func (a *sidecarAdapter) Load(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return fmt.Errorf("adapter is closed")
	}
	if a.loaded {
		return nil
	}

	scriptPath := findServiceScript()
	if scriptPath == "" {
		return fmt.Errorf("landmark_service.py not found")
	}

	pythonPath := findVenvPython()
	if pythonPath == "" {
		pythonPath = "python3"
	}

	args := []string{
		scriptPath,
		"--model", string(a.config.Variant),
		"--max-subjects", strconv.Itoa(a.config.MaxSubjects),
		"--min-confidence", strconv.FormatFloat(a.config.MinConfidence, 'f', -1, 64),
	}
	if a.config.RefineLandmarks {
		args = append(args, "--refine-landmarks")
	}

	cmd := exec.CommandContext(ctx, pythonPath, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start landmark service: %w", err)
	}

	reader := bufio.NewReader(stdout)

	// The sidecar prints a ready line once the model is warm.
	readyCh := make(chan error, 1)
	go func() {
		line, err := reader.ReadString('\n')
		if err != nil {
			readyCh <- fmt.Errorf("read ready handshake: %w", err)
			return
		}
		var ready struct {
			Status string `json:"status"`
			Error  string `json:"error"`
		}
		if err := json.Unmarshal([]byte(line), &ready); err != nil {
			readyCh <- fmt.Errorf("parse ready handshake: %w", err)
			return
		}
		if ready.Status != "ready" {
			readyCh <- fmt.Errorf("model failed to initialize: %s", ready.Error)
			return
		}
		readyCh <- nil
	}()

	select {
	case err := <-readyCh:
		if err != nil {
			stdin.Close()
			cmd.Process.Kill()
			cmd.Wait()
			return err
		}
	case <-ctx.Done():
		stdin.Close()
		cmd.Process.Kill()
		cmd.Wait()
		return ctx.Err()
	}

	a.cmd = cmd
	a.stdin = stdin
	a.stdout = reader
	a.loaded = true

	return nil
}

// Detect sends one frame to the sidecar and parses the subjects it reports.
func (a *sidecarAdapter) Detect(frame *gocv.Mat) ([]Detection, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.loaded || a.closed {
		return nil, ErrNotLoaded
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()

	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))

	if _, err := a.stdin.Write(length); err != nil {
		return nil, fmt.Errorf("write length: %w", err)
	}
	if _, err := a.stdin.Write(data); err != nil {
		return nil, fmt.Errorf("write data: %w", err)
	}

	line, err := a.stdout.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var response struct {
		Subjects []jsonSubject `json:"subjects"`
	}
	if err := json.Unmarshal([]byte(line), &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	result := make([]Detection, len(response.Subjects))
	for i, s := range response.Subjects {
		result[i] = s.toDetection()
	}
	return result, nil
}

// Close terminates the sidecar process, discarding the model handle.
func (a *sidecarAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	if !a.loaded {
		return nil
	}
	a.loaded = false

	if a.stdin != nil {
		a.stdin.Close()
	}
	err := a.cmd.Wait()
	a.cmd = nil
	a.stdin = nil
	a.stdout = nil

	return err
}

// findServiceScript locates the model sidecar script in the usual places.
func findServiceScript() string {
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		"scripts/landmark_service.py",
		"../scripts/landmark_service.py",
		filepath.Join(execDir, "scripts/landmark_service.py"),
		filepath.Join(os.Getenv("HOME"), ".rangoli/scripts/landmark_service.py"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// findVenvPython looks for a Python interpreter in a project virtualenv.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".rangoli/venv/bin/python"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// jsonSubject is the per-subject JSON structure the sidecar emits.
type jsonSubject struct {
	Points      []jsonPoint `json:"points"`
	Confidences []float64   `json:"confidences"`
	Label       string      `json:"label"`
	Score       float64     `json:"score"`
}

type jsonPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (s jsonSubject) toDetection() Detection {
	d := Detection{
		Points:      make([]Point3D, len(s.Points)),
		Confidences: s.Confidences,
		Label:       s.Label,
		Score:       s.Score,
	}
	for i, p := range s.Points {
		d.Points[i] = Point3D{X: p.X, Y: p.Y, Z: p.Z}
	}
	return d
}
