package listener

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func socketPath(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "vrender")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "cmd.sock")
}

// syncBuffer collects log output written from connection goroutines.
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

func startServer(t *testing.T, path string) (<-chan Command, func() error) {
	t.Helper()
	return startServerLogging(t, path, io.Discard)
}

func startServerLogging(t *testing.T, path string, out io.Writer) (<-chan Command, func() error) {
	t.Helper()
	cmds := make(chan Command, 16)
	srv := &Server{
		Path:    path,
		Handler: func(c Command) { cmds <- c },
		Logger:  log.New(out, "", 0),
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx) }()

	require.Eventually(t, func() bool {
		conn, err := net.Dial("unix", path)
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)

	stop := func() error {
		cancel()
		select {
		case err := <-done:
			return err
		case <-time.After(2 * time.Second):
			return fmt.Errorf("server did not stop")
		}
	}
	t.Cleanup(func() { stop() })
	return cmds, stop
}

func receive(t *testing.T, cmds <-chan Command) Command {
	t.Helper()
	select {
	case c := <-cmds:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for command")
		return Command{}
	}
}

func TestServerDispatchesKnownCommands(t *testing.T) {
	path := socketPath(t)
	cmds, stop := startServer(t, path)

	conn, err := net.Dial("unix", path)
	require.NoError(t, err)
	_, err = io.WriteString(conn, "spawn_window\n\nnot_a_command\n{broken\n"+
		`{"command":"spawn_window","title":"second"}`+"\n")
	require.NoError(t, err)

	assert.Equal(t, Command{Name: SpawnWindow}, receive(t, cmds))
	assert.Equal(t, Command{Name: SpawnWindow, Title: "second"}, receive(t, cmds))

	// the connection stays usable after bad lines
	_, err = io.WriteString(conn, "spawn_window\n")
	require.NoError(t, err)
	assert.Equal(t, Command{Name: SpawnWindow}, receive(t, cmds))
	conn.Close()

	require.NoError(t, stop())
	select {
	case c := <-cmds:
		t.Fatalf("unexpected command %+v", c)
	default:
	}
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "socket file should be removed")
}

func TestServerMultipleConnections(t *testing.T) {
	path := socketPath(t)
	cmds, _ := startServer(t, path)

	for i := 0; i < 3; i++ {
		conn, err := net.Dial("unix", path)
		require.NoError(t, err)
		_, err = io.WriteString(conn, "spawn_window\n")
		require.NoError(t, err)
		defer conn.Close()
	}
	for i := 0; i < 3; i++ {
		assert.Equal(t, SpawnWindow, receive(t, cmds).Name)
	}
}

func TestServerStopsWithOpenConnection(t *testing.T) {
	path := socketPath(t)
	_, stop := startServer(t, path)

	conn, err := net.Dial("unix", path)
	require.NoError(t, err)
	defer conn.Close()

	assert.NoError(t, stop())
}

func TestServerReplacesStaleSocket(t *testing.T) {
	path := socketPath(t)
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	cmds, _ := startServer(t, path)
	conn, err := net.Dial("unix", path)
	require.NoError(t, err)
	defer conn.Close()
	_, err = io.WriteString(conn, "spawn_window\n")
	require.NoError(t, err)
	assert.Equal(t, SpawnWindow, receive(t, cmds).Name)
}

func TestServerLogsOversizedLine(t *testing.T) {
	path := socketPath(t)
	var logs syncBuffer
	cmds, _ := startServerLogging(t, path, &logs)

	conn, err := net.Dial("unix", path)
	require.NoError(t, err)
	defer conn.Close()
	// the server may hang up before the whole line is written
	io.WriteString(conn, strings.Repeat("a", 70*1024)+"\n")

	require.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "read command: bufio.Scanner: token too long")
	}, 2*time.Second, 10*time.Millisecond)

	// other connections are unaffected
	other, err := net.Dial("unix", path)
	require.NoError(t, err)
	defer other.Close()
	_, err = io.WriteString(other, "spawn_window\n")
	require.NoError(t, err)
	assert.Equal(t, SpawnWindow, receive(t, cmds).Name)
}
