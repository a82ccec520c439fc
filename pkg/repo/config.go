package repo

import (
	"bytes"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

const (
	ConfigFile     = "config.toml"
	PackagesDir    = "packages"
	DefaultVersion = "0.1.0"
)

// Config is stored at the repository root as config.toml.
type Config struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// rawConfig distinguishes a missing key from an empty one.
type rawConfig struct {
	Name    *string `toml:"name"`
	Version *string `toml:"version"`
}

func encodeConfig(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer

	enc := toml.NewEncoder(&buf)

	err := enc.Encode(cfg)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return buf.Bytes(), nil
}

func decodeConfig(data []byte) (*Config, error) {
	var raw rawConfig

	err := toml.Unmarshal(data, &raw)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	switch {
	case raw.Name == nil:
		return nil, errors.New("missing field `name`")
	case raw.Version == nil:
		return nil, errors.New("missing field `version`")
	}

	return &Config{Name: *raw.Name, Version: *raw.Version}, nil
}
