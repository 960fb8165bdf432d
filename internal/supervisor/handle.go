package supervisor

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/mcpherd/mcpherd/internal/config"
	"github.com/mcpherd/mcpherd/internal/errors"
	"github.com/mcpherd/mcpherd/internal/jsonrpc"
)

// frameChanSize bounds how many undelivered responses a handle buffers before
// the reader goroutine blocks. One in-flight request per server means this is
// only consumed by stale responses left behind by timed-out calls.
const frameChanSize = 8

// Handle owns one spawned MCP server process: its OS process, the write half
// of its stdin pipe, and the read half of its stdout pipe. The two halves are
// independently guarded so a future extension could overlap writing the next
// request with reading an earlier response; today both are held for the
// duration of a single exchange (see Engine).
//
// Stdout is consumed by a dedicated reader goroutine that decodes frames and
// delivers response envelopes on a channel, which keeps blocking pipe reads
// off callers' goroutines and makes exchange deadlines authoritative.
type Handle struct {
	name  string
	cmd   *exec.Cmd
	stdin io.WriteCloser

	// writeMu guards the write half, readMu guards consumption of decoded
	// frames. Lock order is always writeMu then readMu.
	writeMu sync.Mutex
	readMu  sync.Mutex

	frames chan jsonrpc.Response

	// done is closed when the reader goroutine exits; failErr carries the
	// terminal stream error and is written exactly once before the close.
	done    chan struct{}
	failErr error

	// quit is closed by Close so a reader blocked on a full frames buffer
	// (stale responses from timed-out calls) still exits.
	quit      chan struct{}
	closeOnce sync.Once

	stderrDone chan struct{}
	logger     hclog.Logger
}

// spawn launches the configured command with piped stdin/stdout and a drained
// stderr, returning a live handle. Failure to start leaves nothing behind.
func spawn(entry config.ServerEntry, logger hclog.Logger) (*Handle, error) {
	cmd := exec.Command(entry.Command, entry.Args...)
	cmd.Env = mergedEnv(entry.Env)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open stdin pipe for '%s': %w", errors.ErrSpawnFailed, entry.Name, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open stdout pipe for '%s': %w", errors.ErrSpawnFailed, entry.Name, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open stderr pipe for '%s': %w", errors.ErrSpawnFailed, entry.Name, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: '%s' (command '%s'): %w", errors.ErrSpawnFailed, entry.Name, entry.Command, err)
	}

	h := newHandle(entry.Name, stdin, stdout, logger)
	h.cmd = cmd
	h.stderrDone = make(chan struct{})
	go h.drainStderr(stderr)

	return h, nil
}

// newHandle wires a handle around the given stream halves and starts the
// frame reader. Tests use it with in-memory pipes instead of a real process.
func newHandle(name string, stdin io.WriteCloser, stdout io.Reader, logger hclog.Logger) *Handle {
	h := &Handle{
		name:   name,
		stdin:  stdin,
		frames: make(chan jsonrpc.Response, frameChanSize),
		done:   make(chan struct{}),
		quit:   make(chan struct{}),
		logger: logger.Named("handle").With("server", name),
	}
	go h.readLoop(stdout)
	return h
}

// Name returns the server identifier this handle was spawned for.
func (h *Handle) Name() string {
	return h.name
}

// writeFrame writes one encoded frame to the server's stdin.
// Callers must hold writeMu.
func (h *Handle) writeFrame(frame []byte) error {
	if _, err := h.stdin.Write(frame); err != nil {
		return fmt.Errorf("%w: failed to write frame to '%s': %w", errors.ErrTransportFailed, h.name, err)
	}
	return nil
}

// readLoop decodes frames off the server's stdout until the stream fails or
// closes. Notifications and id-less messages are logged and skipped; only
// response envelopes are delivered.
func (h *Handle) readLoop(stdout io.Reader) {
	r := bufio.NewReader(stdout)
	for {
		raw, err := jsonrpc.ReadFrame(r)
		if err != nil {
			h.failErr = err
			close(h.done)
			return
		}

		var probe struct {
			ID     *uint64 `json:"id"`
			Method *string `json:"method"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil || probe.ID == nil || probe.Method != nil {
			method := ""
			if probe.Method != nil {
				method = *probe.Method
			}
			h.logger.Debug("Skipping non-response message", "method", method)
			continue
		}

		resp, err := jsonrpc.DecodeResponse(raw)
		if err != nil {
			h.failErr = fmt.Errorf("%w: %w", errors.ErrTransportFailed, err)
			close(h.done)
			return
		}
		select {
		case h.frames <- resp:
		case <-h.quit:
			h.failErr = fmt.Errorf("%w: handle for '%s' closed", errors.ErrTransportFailed, h.name)
			close(h.done)
			return
		}
	}
}

func (h *Handle) drainStderr(stderr io.Reader) {
	defer close(h.stderrDone)

	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		h.logger.Info("stderr", "line", scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		h.logger.Debug("Stopped reading stderr", "error", err)
	}
}

// Close forcibly terminates and reaps the process, releasing both pipe
// halves and the frame reader. Safe to call on an already-exited process.
func (h *Handle) Close() {
	h.closeOnce.Do(func() { close(h.quit) })
	_ = h.stdin.Close()

	if h.cmd != nil {
		if h.cmd.Process != nil {
			_ = h.cmd.Process.Kill()
		}
		_ = h.cmd.Wait()
	}
	if h.stderrDone != nil {
		<-h.stderrDone
	}
}

// mergedEnv layers the entry's overrides on top of the host environment,
// sorted for deterministic spawns.
func mergedEnv(overrides map[string]string) []string {
	env := append([]string{}, os.Environ()...)
	if len(overrides) == 0 {
		return env
	}

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+overrides[k])
	}
	return env
}
