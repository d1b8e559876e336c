// Package tcpfabric implements the fabric collectives over a star
// topology: rank 0 listens, every other rank dials it. The root folds
// gathered candidates in rank order and broadcasts the winner, so the
// reduction result is deterministic for a fixed topology.
package tcpfabric

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes one participant's place in the cluster topology.
type Config struct {
	// Rank is this process's rank in [0, len(Peers)).
	Rank int `yaml:"rank"`

	// Peers lists the address of every rank in rank order. Peers[0] is
	// the root every other rank dials.
	Peers []string `yaml:"peers"`
}

// LoadConfig reads and validates a YAML topology file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: Path is configurable
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing cluster config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("cluster config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks the topology for consistency.
func (c *Config) Validate() error {
	if len(c.Peers) == 0 {
		return fmt.Errorf("no peers configured")
	}
	if c.Rank < 0 || c.Rank >= len(c.Peers) {
		return fmt.Errorf("rank %d out of range [0, %d)", c.Rank, len(c.Peers))
	}
	for i, addr := range c.Peers {
		if addr == "" {
			return fmt.Errorf("peer %d has an empty address", i)
		}
	}
	return nil
}
