// Package yaml reads configuration documents with gopkg.in/yaml.v3.
// JSON documents are accepted as well since JSON is valid YAML.
package yaml

import (
	"errors"
	"io"
	"os"

	"github.com/fwojciec/harvest"
	"gopkg.in/yaml.v3"
)

// Decode decodes one document from r into v. Unknown keys are rejected.
// An empty document leaves v unchanged.
func Decode(r io.Reader, v any) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return harvest.Errorf(harvest.EINVALID, "invalid configuration: %v", err)
	}
	return nil
}

// DecodeConfig decodes a configuration document on top of the defaults
// and validates the result.
func DecodeConfig(r io.Reader) (harvest.Config, error) {
	cfg := harvest.DefaultConfig()
	if err := Decode(r, &cfg); err != nil {
		return harvest.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return harvest.Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads the configuration file at path.
func LoadConfig(path string) (harvest.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return harvest.Config{}, harvest.Errorf(harvest.ENOTFOUND, "config file %s not found", path)
		}
		return harvest.Config{}, err
	}
	defer f.Close()

	return DecodeConfig(f)
}
