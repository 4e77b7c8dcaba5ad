package console

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pixil98/go-craftgames/internal/host"
	"github.com/pixil98/go-craftgames/internal/messaging"
	"github.com/pixil98/go-testutil"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// echoCommands replies to every line with the line itself.
type echoCommands struct {
	mu    sync.Mutex
	lines []string
}

func (e *echoCommands) Run(_ context.Context, actor host.Actor, line string) {
	e.mu.Lock()
	e.lines = append(e.lines, line)
	e.mu.Unlock()

	_ = actor.SendMessage("echo: " + line)
}

func (e *echoCommands) Complete(_ host.Actor, line string) []string {
	if line == "game s" {
		return []string{"start", "stop"}
	}
	return nil
}

func startServer(t *testing.T) *messaging.NatsServer {
	t.Helper()

	s, err := messaging.NewNatsServer()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Start(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return s
}

func waitFor(t *testing.T, out *syncBuffer, want string) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(out.String(), want) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("output %q never contained %q", out.String(), want)
}

func TestConsole_Start(t *testing.T) {
	s := startServer(t)
	pub := messaging.NewNatsPublisher(s)

	inR, inW := io.Pipe()
	out := &syncBuffer{}
	cmds := &echoCommands{}
	c := NewConsole(inR, out, cmds, pub, WithReady(s.Ready()), WithWidth(40))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- c.Start(ctx)
	}()

	write := func(line string) {
		t.Helper()
		if _, err := io.WriteString(inW, line+"\n"); err != nil {
			t.Fatalf("failed to write input: %v", err)
		}
	}

	write("game list")
	waitFor(t, out, "echo: game list")

	write("game s?")
	waitFor(t, out, "start  stop")

	write("nothing?")
	waitFor(t, out, "No completions.")

	write("pos 1.5 64 -2")
	waitFor(t, out, "Console position:")
	testutil.AssertEqual(t, "location", c.Actor().Location(), host.Location{X: 1.5, Y: 64, Z: -2})

	write("pos 1 2")
	waitFor(t, out, "usage: pos")

	write("")
	if err := inW.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("console did not stop")
	}

	cmds.mu.Lock()
	defer cmds.mu.Unlock()
	testutil.AssertEqual(t, "lines run", strings.Join(cmds.lines, "|"), "game list")
}

func TestConsole_StopsBeforeReady(t *testing.T) {
	c := NewConsole(strings.NewReader(""), io.Discard, &echoCommands{}, nil, WithReady(make(chan struct{})))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Start(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParsePosition(t *testing.T) {
	tests := map[string]struct {
		args   []string
		exp    host.Location
		expErr string
	}{
		"xyz":         {args: []string{"1", "2", "3"}, exp: host.Location{X: 1, Y: 2, Z: 3}},
		"with facing": {args: []string{"1", "2", "3", "90", "-10"}, exp: host.Location{X: 1, Y: 2, Z: 3, Yaw: 90, Pitch: -10}},
		"wrong count": {args: []string{"1"}, expErr: "usage"},
		"not numeric": {args: []string{"a", "2", "3"}, expErr: `invalid number "a"`},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := parsePosition(tt.args)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "location", got, tt.exp)
		})
	}
}
