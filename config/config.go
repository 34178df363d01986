// Package config loads process-level listener/client endpoint
// descriptors from JSON. It is strictly additive convenience: the
// protocol itself (value, wire, transport, conn) needs no configuration
// at all, the way spec.md §6 specifies.
//
// Grounded on the teacher's pervasive jsoniter usage for wire/control
// messages (api/apc/actmsg.go, ais/prxnotif.go, ais/tgtcp.go).
package config

import (
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/lemon4ex/ipc/transport"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Endpoint is the JSON-serializable form of a transport.Endpoint: exactly
// one of Path (UNIX) or Host+Port (TCP) is set.
type Endpoint struct {
	Network string `json:"network"` // "unix" or "tcp"
	Path    string `json:"path,omitempty"`
	Host    string `json:"host,omitempty"`
	Port    uint16 `json:"port,omitempty"`
}

// Resolve converts e to the transport.Endpoint the rest of the library
// expects.
func (e Endpoint) Resolve() (transport.Endpoint, error) {
	switch e.Network {
	case "unix":
		if e.Path == "" {
			return nil, errors.New("config: unix endpoint requires a path")
		}
		return transport.UnixEndpoint{Path: e.Path}, nil
	case "tcp":
		if e.Host == "" || e.Port == 0 {
			return nil, errors.New("config: tcp endpoint requires host and port")
		}
		return transport.TCPEndpoint{Host: e.Host, Port: e.Port}, nil
	default:
		return nil, errors.Errorf("config: unknown endpoint network %q", e.Network)
	}
}

// ProcessConfig is the top-level document a process may load to learn
// which endpoints to listen on and which to dial as a client.
type ProcessConfig struct {
	Listeners []Endpoint `json:"listeners"`
	Clients   []Endpoint `json:"clients"`
}

// Load reads and parses a ProcessConfig from path.
func Load(path string) (*ProcessConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: read %s", path)
	}
	var cfg ProcessConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, errors.Wrapf(err, "config: parse %s", path)
	}
	return &cfg, nil
}
