package control

import (
	"fmt"
	"net"
	"time"
)

const dialTimeout = 5 * time.Second

// Client dials the daemon's control socket for a single request/reply,
// the way the CLI subcommands talk to the running daemon.
type Client struct {
	Path string
}

// Send issues one command and returns the reply fields.
func (c Client) Send(command string) (map[string]string, error) {
	conn, err := net.DialTimeout("unix", c.Path, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("connecting to levin daemon: %w", err)
	}
	defer conn.Close()

	if err := writeLine(conn, message{"command": command}); err != nil {
		return nil, err
	}

	reply, err := readLine(conn, dialTimeout)
	if err != nil {
		return nil, err
	}
	if errMsg, ok := reply["error"]; ok {
		return nil, fmt.Errorf("daemon error: %s", errMsg)
	}
	return reply, nil
}
