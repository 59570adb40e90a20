package control

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"
)

// Handlers supplies the orchestrator-side behaviour for each command; the
// control package itself knows nothing about torrents or disk budgets.
type Handlers struct {
	Status func() map[string]string
	List   func() []map[string]string
	Pause  func()
	Resume func()
}

// Server listens on a Unix domain socket and serves one request/reply per
// connection. All requests are handled synchronously on whichever
// goroutine calls Poll — by convention, the orchestrator's tick thread.
type Server struct {
	path     string
	listener *net.UnixListener
	handlers Handlers
}

// NewServer binds path, removing any stale socket left behind by a
// previous unclean shutdown.
func NewServer(path string, handlers Handlers) (*Server, error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("removing stale socket: %w", err)
	}

	addr, err := net.ResolveUnixAddr("unix", path)
	if err != nil {
		return nil, err
	}
	l, err := net.ListenUnix("unix", addr)
	if err != nil {
		return nil, fmt.Errorf("binding control socket: %w", err)
	}

	return &Server{path: path, listener: l, handlers: handlers}, nil
}

// Close shuts down the listener and removes the socket file.
func (s *Server) Close() error {
	err := s.listener.Close()
	os.Remove(s.path)
	return err
}

// Poll accepts and serves at most one pending connection without blocking
// beyond a tiny deadline; call it once per tick.
func (s *Server) Poll() {
	s.listener.SetDeadline(time.Now().Add(10 * time.Millisecond))
	conn, err := s.listener.Accept()
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return
		}
		return // any other accept error is transient; dropped per policy
	}
	defer conn.Close()

	req, err := readLine(conn, readWriteTimeout)
	if err != nil {
		writeLine(conn, message{"error": "malformed request"})
		return
	}

	reply := s.dispatch(req)
	writeLine(conn, reply)
}

func (s *Server) dispatch(req message) message {
	switch req["command"] {
	case "status":
		return toMessage(s.handlers.Status())
	case "list":
		return listToMessage(s.handlers.List())
	case "pause":
		s.handlers.Pause()
		return message{"ok": "1"}
	case "resume":
		s.handlers.Resume()
		return message{"ok": "1"}
	default:
		return message{"error": "unknown command: " + req["command"]}
	}
}

func toMessage(fields map[string]string) message {
	m := make(message, len(fields))
	for k, v := range fields {
		m[k] = v
	}
	return m
}

func listToMessage(torrents []map[string]string) message {
	m := message{"count": fmt.Sprintf("%d", len(torrents))}
	for i, t := range torrents {
		for k, v := range t {
			m[fmt.Sprintf("t%d_%s", i, k)] = v
		}
	}
	return m
}
