// Package cluster provides a default, YAML-configured Router and Cluster
// implementation for github.com/txodds/rb: a static host list plus a
// deterministic crc32-mod-N router. It generalizes the teacher's own
// Twemproxy pool-config loader (one named pool, a flat "servers" list, a
// redis_auth string) to multiple named clusters.
package cluster

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// HostConfig describes one backend server.
type HostConfig struct {
	ID   string `yaml:"id"`
	Addr string `yaml:"addr"`
	Auth string `yaml:"auth,omitempty"`
}

// ClusterConfig is one named cluster: an ordered list of hosts. Order
// matters, since StaticRouter hashes modulo len(Hosts) and changing the
// order reshuffles every key's owner.
type ClusterConfig struct {
	Hosts []HostConfig `yaml:"hosts"`
}

// Config is the top-level YAML document: a map of cluster name to
// ClusterConfig, mirroring the shape of a Twemproxy configuration file
// where each top-level key names one pool.
type Config struct {
	Clusters map[string]ClusterConfig
}

// LoadConfig reads and parses a cluster configuration document from path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cluster: read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses a cluster configuration document already in memory.
// The document's top-level keys name clusters, each mapping to a
// ClusterConfig, the same flat shape the teacher parsed for a single named
// Twemproxy pool.
func ParseConfig(data []byte) (*Config, error) {
	var raw map[string]ClusterConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("cluster: parse config: %w", err)
	}
	return &Config{Clusters: raw}, nil
}

// Pool returns the named cluster's configuration, analogous to the
// teacher's lookup of one Twemproxy pool by name out of the parsed file.
func (c *Config) Pool(name string) (ClusterConfig, error) {
	cc, ok := c.Clusters[name]
	if !ok {
		return ClusterConfig{}, fmt.Errorf("cluster: no such cluster %q", name)
	}
	return cc, nil
}
