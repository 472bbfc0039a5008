package state

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"net/netip"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

var ErrConfig = errors.New("invalid config")

// NeighbourCfg is one directly connected router, as listed in the topology file.
type NeighbourCfg struct {
	Label string `yaml:"label"`
	Id    NodeId `yaml:"id"`
	Cost  int    `yaml:"cost"`
	Port  uint16 `yaml:"port"`
}

func (n NeighbourCfg) Endpoint(host netip.Addr) netip.AddrPort {
	return netip.AddrPortFrom(host, n.Port)
}

// TopologyCfg is the static view a router has of the network at startup
type TopologyCfg struct {
	TotalNodes int            `yaml:"total_nodes"`
	Neighbours []NeighbourCfg `yaml:"neighbours"`
}

func (c *TopologyCfg) GetNeighbour(id NodeId) *NeighbourCfg {
	for i := range c.Neighbours {
		if c.Neighbours[i].Id == id {
			return &c.Neighbours[i]
		}
	}
	return nil
}

// LocalCfg represents the process-level configuration of a single router
type LocalCfg struct {
	Id      NodeId
	Port    uint16
	Host    string // host every router (including this one) is reachable at
	LogPath string // if not empty, logs are also written to this file
	Dedup   bool   // suppress relays that do not carry a fresher ttl for their origin
	Seqno   bool   // stamp and check per-origin sequence numbers
	// CtlPath is the unix socket the router answers inspect requests on, empty disables it
	CtlPath string
}

// ParseConfig reads the text topology format:
//
//	<total nodes>
//	<label> <id> <cost> <port>
//	...
func ParseConfig(r io.Reader) (*TopologyCfg, error) {
	cfg := &TopologyCfg{}
	sc := bufio.NewScanner(r)
	lineNo := 0
	seenTotal := false
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if !seenTotal {
			total, err := strconv.Atoi(line)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: node count %q is not an integer", ErrConfig, lineNo, line)
			}
			cfg.TotalNodes = total
			seenTotal = true
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, fmt.Errorf("%w: line %d: expected <label> <id> <cost> <port>, got %q", ErrConfig, lineNo, line)
		}
		id, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: neighbour id %q is not an integer", ErrConfig, lineNo, fields[1])
		}
		cost, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: link cost %q is not an integer", ErrConfig, lineNo, fields[2])
		}
		port, err := strconv.ParseUint(fields[3], 10, 16)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: port %q is not valid", ErrConfig, lineNo, fields[3])
		}
		cfg.Neighbours = append(cfg.Neighbours, NeighbourCfg{
			Label: fields[0],
			Id:    NodeId(id),
			Cost:  cost,
			Port:  uint16(port),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !seenTotal {
		return nil, fmt.Errorf("%w: missing node count", ErrConfig)
	}
	return cfg, nil
}

// WriteText writes the config back out in the text topology format.
func (c *TopologyCfg) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%d\n", c.TotalNodes)
	if err != nil {
		return err
	}
	for _, n := range c.Neighbours {
		_, err = fmt.Fprintf(w, "%s %d %d %d\n", n.Label, n.Id, n.Cost, n.Port)
		if err != nil {
			return err
		}
	}
	return nil
}

func isYaml(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// ReadConfig loads a topology file, either in the text format or, for .yaml/.yml files, as YAML.
func ReadConfig(path string) (*TopologyCfg, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if isYaml(path) {
		cfg := &TopologyCfg{}
		err = yaml.Unmarshal(file, cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfig, err)
		}
		return cfg, nil
	}
	return ParseConfig(bytes.NewReader(file))
}

// ResolveHost turns the configured host into the address neighbours are reached at.
func ResolveHost(host string) (netip.Addr, error) {
	if host == "" || host == "localhost" {
		return netip.AddrFrom4([4]byte{127, 0, 0, 1}), nil
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		return addr, nil
	}
	addrs, err := net.LookupHost(host)
	if err != nil {
		return netip.Addr{}, err
	}
	for _, a := range addrs {
		addr, err := netip.ParseAddr(a)
		if err == nil {
			return addr.Unmap(), nil
		}
	}
	return netip.Addr{}, fmt.Errorf("no usable address for host %s", host)
}
