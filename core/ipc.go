package core

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/encodeous/lsr/state"
)

var ipcTimeout = 5 * time.Second

// IPCGet asks the router listening on the control socket at path for its current state.
func IPCGet(path string) (string, error) {
	conn, err := net.DialTimeout("unix", path, ipcTimeout)
	if err != nil {
		return "", err
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(ipcTimeout))
	rw := bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn))

	_, err = rw.WriteString("inspect\n")
	if err != nil {
		return "", err
	}
	err = rw.Flush()
	if err != nil {
		return "", err
	}

	res, err := rw.ReadString(0)
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSuffix(res, "\x00"), nil
}

func HandleIPCGet(s *state.State, rw *bufio.ReadWriter) error {
	cmd, err := rw.ReadString('\n')
	if err != nil {
		return err
	}
	sb := strings.Builder{}
	switch cmd {
	case "inspect\n":
		sb.WriteString(fmt.Sprintf("Router %s (%d) of %d nodes\n", s.Label(), s.Id, s.TotalNodes))

		sb.WriteString("\nNeighbours:\n")
		if len(s.Neighbours) == 0 {
			sb.WriteString("    (none)\n")
		}
		for _, n := range s.Neighbours {
			sb.WriteString(fmt.Sprintf(" - %s (%d) cost %d at %s\n", s.Labels.Of(n.Id), n.Id, n.Cost, n.Endpoint(s.HostIP)))
		}

		sb.WriteString("\nLink State Database:\n")
		snap := s.Topology.Snapshot()
		for _, origin := range s.Topology.Origins() {
			sb.WriteString(fmt.Sprintf(" - %s: %v\n", s.Labels.Of(origin), snap[origin]))
		}
		sb.WriteString(fmt.Sprintf("   %d of %d origins known\n", len(snap), s.TotalNodes))

		sb.WriteString("\nRoute Table:\n")
		rt := Get[*LinkStateRouter](s).Routes()
		if rt == nil {
			sb.WriteString("    (not computed yet)\n")
		} else {
			for _, e := range rt.Forward {
				dist := "unreachable"
				if e.Reachable() {
					dist = fmt.Sprintf("dist %d", rt.Dist[e.Dest])
				}
				sb.WriteString(fmt.Sprintf(" - %s via %s, %s\n", s.Labels.Of(e.Dest), e.Label, dist))
			}
			sb.WriteString(fmt.Sprintf("   computed %s ago\n", time.Since(rt.ComputedAt).Round(time.Millisecond)))
		}
		sb.WriteRune(0)
		_, err = rw.WriteString(sb.String())
		if err != nil {
			return err
		}
		return rw.Flush()
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// ControlServer answers inspect requests on a unix socket.
type ControlServer struct {
	listener net.Listener
}

func (c *ControlServer) Init(s *state.State) error {
	if s.CtlPath == "" {
		return nil
	}
	s.Log.Debug("init control socket", "path", s.CtlPath)
	// a socket left over from a previous run
	_ = os.Remove(s.CtlPath)
	l, err := net.Listen("unix", s.CtlPath)
	if err != nil {
		return fmt.Errorf("failed to listen on control socket: %w", err)
	}
	c.listener = l
	s.Go(c.serve)
	return nil
}

func (c *ControlServer) serve(s *state.State) error {
	for {
		conn, err := c.listener.Accept()
		if err != nil {
			if s.Context.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.Log.Warn("control socket accept failed", "err", err)
			continue
		}
		_ = conn.SetDeadline(time.Now().Add(ipcTimeout))
		err = HandleIPCGet(s, bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn)))
		if err != nil {
			s.Log.Debug("control request failed", "err", err)
		}
		_ = conn.Close()
	}
}

func (c *ControlServer) Cleanup(s *state.State) error {
	if c.listener == nil {
		return nil
	}
	err := c.listener.Close()
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}
