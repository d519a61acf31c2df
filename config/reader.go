package config

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"
)

// Read reads a config from the given file.
func Read(filePath string) (*Config, error) {
	buf, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	return FromReader(filePath, bytes.NewReader(buf))
}

// FromReader reads a config from the given reader, substituting ${ENV} references and
// validating the result. originalPath names the source in errors.
func FromReader(originalPath string, r io.Reader) (*Config, error) {
	rd, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	substituted, err := envsubst.Bytes(rd)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot substitute environment variables in %q", originalPath)
	}

	cfg := &Config{}
	decoder := json.NewDecoder(bytes.NewReader(substituted))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		return nil, errors.Wrapf(err, "cannot parse config %q", originalPath)
	}

	if err := cfg.Validate("config"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a validated config with every default applied.
func Default() *Config {
	cfg := &Config{}
	// defaults never fail validation
	_ = cfg.Validate("config")
	return cfg
}
