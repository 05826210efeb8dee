package types

import (
	"fmt"
	"strings"
)

const (
	DefaultClusterHost   = "search-centralized-logging-ejzwewbtt2vlndvvji2orm55vu.us-east-1.es.amazonaws.com"
	DefaultClusterPort   = 443
	DefaultClusterScheme = "https"
	DefaultRegion        = "us-east-1"
	DefaultSigningName   = "es"
	DefaultTimeoutSec    = 60
)

// ClusterSettings describes how to reach and authenticate against the search
// cluster. It is populated once at startup and passed down explicitly.
type ClusterSettings struct {
	Host       string `mapstructure:"es_host" yaml:"es_host"`
	Port       int    `mapstructure:"es_port" yaml:"es_port"`
	Scheme     string `mapstructure:"es_scheme" yaml:"es_scheme"`
	Region     string `mapstructure:"aws_region" yaml:"aws_region"`
	Signing    bool   `mapstructure:"signing" yaml:"signing"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

func DefaultClusterSettings() ClusterSettings {
	return ClusterSettings{
		Host:       DefaultClusterHost,
		Port:       DefaultClusterPort,
		Scheme:     DefaultClusterScheme,
		Region:     DefaultRegion,
		Signing:    true,
		TimeoutSec: DefaultTimeoutSec,
	}
}

// Endpoint returns the cluster base URL, e.g. https://host:443.
func (s ClusterSettings) Endpoint() string {
	scheme := strings.ToLower(strings.TrimSpace(s.Scheme))
	if scheme == "" {
		scheme = DefaultClusterScheme
	}
	port := s.Port
	if port <= 0 {
		port = DefaultClusterPort
	}
	return fmt.Sprintf("%s://%s:%d", scheme, strings.TrimSpace(s.Host), port)
}
