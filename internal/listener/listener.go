// Package listener accepts window commands on a local Unix socket.
//
// Each connection carries newline-framed commands, either bare names or
// JSON objects. Parsing is best-effort: bad lines are logged and skipped.
package listener

import (
	"bufio"
	"context"
	"log"
	"net"
	"os"
	"sync"

	"github.com/pkg/errors"
)

// DefaultPath is the socket the host listens on unless told otherwise.
const DefaultPath = "/tmp/vrender.sock"

// Server dispatches recognised commands to Handler. Handler is called from
// connection goroutines and must be safe for concurrent use.
type Server struct {
	Path    string
	Handler func(Command)
	Logger  *log.Logger
}

func (s *Server) logger() *log.Logger {
	if s.Logger == nil {
		return log.Default()
	}
	return s.Logger
}

// ListenAndServe removes a stale socket at s.Path, listens on it and serves
// connections until ctx is cancelled. The socket file is removed on return.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if _, err := os.Stat(s.Path); err == nil {
		if err := os.Remove(s.Path); err != nil {
			return errors.Wrap(err, "remove stale socket")
		}
	}
	ln, err := net.Listen("unix", s.Path)
	if err != nil {
		return errors.Wrap(err, "listen")
	}
	s.logger().Printf("listening on unix socket %s", s.Path)
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled. Open
// connections are closed on shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	var (
		wg     sync.WaitGroup
		once   sync.Once
		mu     sync.Mutex
		closed bool
		conns  = map[net.Conn]struct{}{}
	)
	shutdown := func() {
		once.Do(func() {
			ln.Close()
			mu.Lock()
			closed = true
			for c := range conns {
				c.Close()
			}
			mu.Unlock()
		})
	}
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			shutdown()
		case <-stop:
		}
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			shutdown()
			wg.Wait()
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "accept")
		}
		mu.Lock()
		if closed {
			mu.Unlock()
			conn.Close()
			continue
		}
		conns[conn] = struct{}{}
		mu.Unlock()

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.serveConn(conn)
			mu.Lock()
			delete(conns, conn)
			mu.Unlock()
		}()
	}
}

func (s *Server) serveConn(conn net.Conn) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		cmd, err := ParseCommand(scanner.Text())
		switch {
		case errors.Is(err, ErrEmptyCommand):
			continue
		case err != nil:
			s.logger().Printf("bad command %q: %v", scanner.Text(), err)
			continue
		}
		s.logger().Printf("received command: %s", cmd.Name)
		if !cmd.Known() {
			s.logger().Printf("unknown command: %s", cmd.Name)
			continue
		}
		if s.Handler != nil {
			s.Handler(cmd)
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger().Printf("read command: %v", err)
	}
}
