package devtools

import "time"

// Config holds the inspector server settings.
type Config struct {
	Addr         string        `json:"addr" yaml:"addr" toml:"addr"`
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout" toml:"write_timeout"`
	// Buffer bounds the pending broadcast messages; overflow is dropped.
	Buffer int `json:"buffer" yaml:"buffer" toml:"buffer"`
}

// DefaultConfig listens on loopback only.
func DefaultConfig() Config {
	return Config{
		Addr:         "127.0.0.1:7070",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		Buffer:       256,
	}
}

// Merge applies non-zero values from source.
func (c *Config) Merge(source *Config) {
	if source.Addr != "" {
		c.Addr = source.Addr
	}
	if source.ReadTimeout > 0 {
		c.ReadTimeout = source.ReadTimeout
	}
	if source.WriteTimeout > 0 {
		c.WriteTimeout = source.WriteTimeout
	}
	if source.Buffer > 0 {
		c.Buffer = source.Buffer
	}
}
