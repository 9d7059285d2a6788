// Package config loads lvunit configuration files written in JSON or YAML.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Config represents a complete lvunit configuration file.
type Config struct {
	Schema      string      `json:"$schema,omitempty" yaml:"$schema,omitempty"`
	CLI         string      `json:"cli,omitempty" yaml:"cli,omitempty"`
	HostProcess string      `json:"host_process,omitempty" yaml:"host_process,omitempty"`
	EnvPrefix   string      `json:"env_prefix,omitempty" yaml:"env_prefix,omitempty"`
	Terminate   string      `json:"terminate,omitempty" yaml:"terminate,omitempty"`
	Timeout     string      `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Strict      bool        `json:"strict,omitempty" yaml:"strict,omitempty"`
	Runs        []RunConfig `json:"runs,omitempty" yaml:"runs,omitempty"`
}

// RunConfig describes one unit-test run in a batch.
type RunConfig struct {
	Project string `json:"project" yaml:"project"`
	Report  string `json:"report" yaml:"report"`
	Version Scalar `json:"version" yaml:"version"`
	Bitness Scalar `json:"bitness" yaml:"bitness"`
}

// Scalar is a string that may be written as either a JSON string or an integer,
// so that both "version": "2021" and "version": 2021 are accepted.
type Scalar string

// UnmarshalJSON implements json.Unmarshaler.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Scalar(str)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*s = Scalar(n.String())
	return nil
}

// TimeoutDuration returns the parsed per-run timeout. Zero means no limit.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(c.Timeout)
}
