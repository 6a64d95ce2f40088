package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"sportanalyzer/internal/logging"
	"sportanalyzer/internal/playback"
)

var commandContext = exec.CommandContext

const (
	defaultBinary       = "mpv"
	defaultReadyTimeout = 5 * time.Second
	dialInterval        = 50 * time.Millisecond
	quitTimeout         = 3 * time.Second
)

var observedProperties = []string{"percent-pos", "duration", "pause"}

// Options configures Start.
type Options struct {
	Binary    string
	SocketDir string
	// Ref is a local path or URL mpv can open.
	Ref          string
	Volume       float64
	Muted        bool
	ReadyTimeout time.Duration
	Logger       *slog.Logger
}

// Engine is a connected mpv instance. It implements playback.Engine,
// playback.AudioControl and playback.Fullscreener.
type Engine struct {
	conn   net.Conn
	logger *slog.Logger
	socket string
	cmd    *exec.Cmd
	exited chan struct{}

	writeMu sync.Mutex
	nextID  atomic.Int64

	closeOnce sync.Once
	closeErr  error
}

var (
	_ playback.Engine       = (*Engine)(nil)
	_ playback.AudioControl = (*Engine)(nil)
	_ playback.Fullscreener = (*Engine)(nil)
)

// Args returns the mpv command line used by Start.
func Args(socket string, opts Options) []string {
	args := []string{
		"--idle=no",
		"--pause",
		"--keep-open=yes",
		"--no-terminal",
		"--force-window=yes",
		"--input-ipc-server=" + socket,
		"--volume=" + strconv.Itoa(volumePercent(opts.Volume)),
	}
	if opts.Muted {
		args = append(args, "--mute=yes")
	}
	return append(args, "--", opts.Ref)
}

// Start launches mpv for opts.Ref and connects to its IPC socket.
func Start(ctx context.Context, opts Options) (*Engine, error) {
	if strings.TrimSpace(opts.Ref) == "" {
		return nil, errors.New("mpv: media reference required")
	}
	binary := strings.TrimSpace(opts.Binary)
	if binary == "" {
		binary = defaultBinary
	}
	dir := opts.SocketDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mpv: create socket dir: %w", err)
	}
	socket := filepath.Join(dir, "mpv-"+uuid.NewString()[:8]+".sock")

	cmd := commandContext(ctx, binary, Args(socket, opts)...) //nolint:gosec
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("mpv: start %s: %w", binary, err)
	}
	exited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()

	timeout := opts.ReadyTimeout
	if timeout <= 0 {
		timeout = defaultReadyTimeout
	}
	conn, err := dialWithRetry(ctx, socket, timeout, exited)
	if err != nil {
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		<-exited
		_ = os.Remove(socket)
		return nil, err
	}

	e := newEngine(conn, opts.Logger)
	e.socket = socket
	e.cmd = cmd
	e.exited = exited
	e.logger.Debug("mpv started",
		logging.String("socket", socket),
		logging.String("ref", opts.Ref),
	)
	return e, nil
}

// Dial connects to an mpv instance already listening on socket.
func Dial(socket string, logger *slog.Logger) (*Engine, error) {
	conn, err := net.DialTimeout("unix", socket, 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("mpv: dial %s: %w", socket, err)
	}
	return newEngine(conn, logger), nil
}

func newEngine(conn net.Conn, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{conn: conn, logger: logging.NewComponentLogger(logger, "mpv")}
}

func dialWithRetry(ctx context.Context, socket string, timeout time.Duration, exited <-chan struct{}) (net.Conn, error) {
	deadline := time.Now().Add(timeout)
	for {
		conn, err := net.DialTimeout("unix", socket, dialInterval)
		if err == nil {
			return conn, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("mpv: ipc socket not ready after %s: %w", timeout, err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-exited:
			return nil, errors.New("mpv: process exited before ipc socket was ready")
		case <-time.After(dialInterval):
		}
	}
}

type request struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

// command writes one IPC request. Replies are consumed by Run.
func (e *Engine) command(args ...any) error {
	line, err := json.Marshal(request{Command: args, RequestID: e.nextID.Add(1)})
	if err != nil {
		return fmt.Errorf("mpv: encode command: %w", err)
	}
	line = append(line, '\n')

	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	if _, err := e.conn.Write(line); err != nil {
		return fmt.Errorf("mpv: %v: %w", args[0], err)
	}
	return nil
}

func (e *Engine) Play() error {
	return e.command("set_property", "pause", false)
}

func (e *Engine) Pause() error {
	return e.command("set_property", "pause", true)
}

func (e *Engine) Seek(seconds float64) error {
	if seconds < 0 {
		seconds = 0
	}
	return e.command("seek", seconds, "absolute")
}

func (e *Engine) SetMuted(muted bool) error {
	return e.command("set_property", "mute", muted)
}

func (e *Engine) SetVolume(volume float64) error {
	return e.command("set_property", "volume", volumePercent(volume))
}

func (e *Engine) RequestFullscreen() error {
	return e.command("set_property", "fullscreen", true)
}

// Run observes playback properties and forwards events to sink until the
// connection closes or ctx is canceled.
func (e *Engine) Run(ctx context.Context, sink playback.EventSink) error {
	for i, name := range observedProperties {
		if err := e.command("observe_property", i+1, name); err != nil {
			return err
		}
	}

	stop := context.AfterFunc(ctx, func() {
		_ = e.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	scanner := bufio.NewScanner(e.conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		event, err := decodeEvent(scanner.Bytes())
		if err != nil {
			e.logger.Debug("mpv message skipped", logging.Error(err))
			continue
		}
		e.dispatch(event, sink)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("mpv: read events: %w", err)
	}
	return nil
}

func (e *Engine) dispatch(event Event, sink playback.EventSink) {
	switch event.Kind {
	case EventProgress:
		sink.OnEngineProgress(event.Fraction)
	case EventDuration:
		sink.OnEngineDuration(event.Seconds)
	case EventPause:
		sink.OnEnginePlaying(!event.Paused)
	case EventReady:
		sink.OnEngineReady()
	case EventError:
		sink.OnEngineError(event.Err)
	case EventReply:
		e.logger.Debug("mpv command rejected", logging.Error(event.Err))
	}
}

// Close asks mpv to quit, waits for the process, and removes the socket.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		_ = e.command("quit")
		e.closeErr = e.conn.Close()
		if e.exited != nil {
			select {
			case <-e.exited:
			case <-time.After(quitTimeout):
				if e.cmd != nil && e.cmd.Process != nil {
					_ = e.cmd.Process.Kill()
				}
				<-e.exited
			}
		}
		if e.socket != "" {
			_ = os.Remove(e.socket)
		}
	})
	return e.closeErr
}

func volumePercent(volume float64) int {
	switch {
	case math.IsNaN(volume) || volume <= 0:
		return 0
	case volume >= 1:
		return 100
	default:
		return int(volume*100 + 0.5)
	}
}
