package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeServer struct {
	listener net.Listener
	conns    chan net.Conn
	mu       sync.Mutex
	commands [][]any
	received chan struct{}
}

func newFakeServer(t *testing.T) (*fakeServer, string) {
	t.Helper()
	socket := filepath.Join(t.TempDir(), "mpv.sock")
	listener, err := net.Listen("unix", socket)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping mpv socket test: %v", err)
		}
		t.Fatalf("listen: %v", err)
	}
	srv := &fakeServer{listener: listener, conns: make(chan net.Conn, 1), received: make(chan struct{}, 64)}
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		srv.conns <- conn
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			var req request
			if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
				continue
			}
			srv.mu.Lock()
			srv.commands = append(srv.commands, req.Command)
			srv.mu.Unlock()
			srv.received <- struct{}{}
		}
	}()
	t.Cleanup(func() { listener.Close() })
	return srv, socket
}

func (s *fakeServer) waitCommands(t *testing.T, n int) [][]any {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		s.mu.Lock()
		if len(s.commands) >= n {
			out := append([][]any(nil), s.commands...)
			s.mu.Unlock()
			return out
		}
		s.mu.Unlock()
		select {
		case <-s.received:
		case <-deadline:
			t.Fatalf("timed out waiting for %d commands", n)
		}
	}
}

func (s *fakeServer) conn(t *testing.T) net.Conn {
	t.Helper()
	select {
	case c := <-s.conns:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for connection")
		return nil
	}
}

type recordingSink struct {
	mu        sync.Mutex
	progress  []float64
	durations []float64
	playing   []bool
	ready     int
	errs      []error
}

func (s *recordingSink) OnEngineProgress(f float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = append(s.progress, f)
}

func (s *recordingSink) OnEngineDuration(d float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.durations = append(s.durations, d)
}

func (s *recordingSink) OnEnginePlaying(p bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = append(s.playing, p)
}

func (s *recordingSink) OnEngineError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

func (s *recordingSink) OnEngineReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready++
}

func TestCommandsAreJSONLines(t *testing.T) {
	srv, socket := newFakeServer(t)
	engine, err := Dial(socket, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer engine.Close()

	calls := []func() error{
		engine.Play,
		engine.Pause,
		func() error { return engine.Seek(12.5) },
		func() error { return engine.SetMuted(true) },
		func() error { return engine.SetVolume(0.42) },
		engine.RequestFullscreen,
	}
	for i, call := range calls {
		if err := call(); err != nil {
			t.Fatalf("command %d: %v", i, err)
		}
	}

	got := srv.waitCommands(t, len(calls))
	want := []string{
		`["set_property","pause",false]`,
		`["set_property","pause",true]`,
		`["seek",12.5,"absolute"]`,
		`["set_property","mute",true]`,
		`["set_property","volume",42]`,
		`["set_property","fullscreen",true]`,
	}
	for i, w := range want {
		encoded, _ := json.Marshal(got[i])
		if string(encoded) != w {
			t.Errorf("command %d: got %s want %s", i, encoded, w)
		}
	}
}

func TestRunForwardsEvents(t *testing.T) {
	srv, socket := newFakeServer(t)
	engine, err := Dial(socket, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer engine.Close()

	sink := &recordingSink{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- engine.Run(ctx, sink) }()

	observed := srv.waitCommands(t, len(observedProperties))
	for i, name := range observedProperties {
		if observed[i][0] != "observe_property" || observed[i][2] != name {
			t.Fatalf("unexpected observe command %v", observed[i])
		}
	}

	conn := srv.conn(t)
	lines := []string{
		`{"event":"file-loaded"}`,
		`{"event":"property-change","id":2,"name":"duration","data":30}`,
		`{"event":"property-change","id":1,"name":"percent-pos","data":50}`,
		`{"event":"property-change","id":3,"name":"pause","data":false}`,
		`garbage`,
		`{"event":"end-file","reason":"error","file_error":"codec missing"}`,
	}
	for _, line := range lines {
		if _, err := conn.Write([]byte(line + "\n")); err != nil {
			t.Fatalf("write event: %v", err)
		}
	}
	conn.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after connection closed")
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if sink.ready != 1 || len(sink.durations) != 1 || sink.durations[0] != 30 {
		t.Fatalf("unexpected ready/duration: %d %v", sink.ready, sink.durations)
	}
	if len(sink.progress) != 1 || sink.progress[0] != 0.5 {
		t.Fatalf("unexpected progress: %v", sink.progress)
	}
	if len(sink.playing) != 1 || !sink.playing[0] {
		t.Fatalf("unexpected playing: %v", sink.playing)
	}
	if len(sink.errs) != 1 || sink.errs[0].Error() != "codec missing" {
		t.Fatalf("unexpected errors: %v", sink.errs)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	_, socket := newFakeServer(t)
	engine, err := Dial(socket, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer engine.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- engine.Run(ctx, &recordingSink{}) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

func TestCloseSendsQuit(t *testing.T) {
	srv, socket := newFakeServer(t)
	engine, err := Dial(socket, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	if err := engine.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	got := srv.waitCommands(t, 1)
	if got[0][0] != "quit" {
		t.Fatalf("expected quit, got %v", got[0])
	}
	if err := engine.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := engine.Play(); err == nil {
		t.Fatal("expected command after close to fail")
	}
}

func TestArgs(t *testing.T) {
	args := Args("/tmp/s.sock", Options{Ref: "/videos/clip.mp4", Volume: 0.8, Muted: true})
	joined := strings.Join(args, " ")
	for _, want := range []string{"--pause", "--keep-open=yes", "--input-ipc-server=/tmp/s.sock", "--volume=80", "--mute=yes"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in %q", want, joined)
		}
	}
	if args[len(args)-1] != "/videos/clip.mp4" || args[len(args)-2] != "--" {
		t.Fatalf("expected reference last, got %v", args)
	}
}

func TestStartRequiresReference(t *testing.T) {
	if _, err := Start(context.Background(), Options{}); err == nil {
		t.Fatal("expected error without reference")
	}
}

func TestVolumePercent(t *testing.T) {
	cases := map[float64]int{-1: 0, 0: 0, 0.5: 50, 0.333: 33, 1: 100, 2: 100}
	for in, want := range cases {
		if got := volumePercent(in); got != want {
			t.Errorf("volumePercent(%v) = %d, want %d", in, got, want)
		}
	}
}
