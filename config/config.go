package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/achilleasa/wbvh/asset/compiler/bvh"
	"github.com/achilleasa/wbvh/log"
)

// A Profile groups the settings that can be loaded from a build profile file.
type Profile struct {
	Build    bvh.Options `toml:"build" yaml:"build"`
	LogLevel string      `toml:"log_level" yaml:"log_level"`
}

// Get a profile populated with the default settings.
func Default() *Profile {
	return &Profile{
		Build:    bvh.DefaultOptions(),
		LogLevel: "notice",
	}
}

// Load a build profile from a toml or yaml file. Settings that are not
// present in the file keep their default values.
func Load(filename string) (*Profile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	p := Default()
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml":
		err = decodeTOML(filename, data, p)
	case ".yaml", ".yml":
		err = decodeYAML(filename, data, p)
	default:
		return nil, fmt.Errorf("config: unsupported profile format %q", filepath.Ext(filename))
	}
	if err != nil {
		return nil, err
	}

	if err = p.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", filename, err)
	}
	return p, nil
}

// Check that the profile settings are valid.
func (p *Profile) Validate() error {
	if _, err := log.ParseLevel(p.LogLevel); err != nil {
		return err
	}
	return p.Build.Validate()
}

func decodeTOML(filename string, data []byte, p *Profile) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	err := dec.Decode(p)
	if err == nil {
		return nil
	}

	var strictErr *toml.StrictMissingError
	if errors.As(err, &strictErr) && len(strictErr.Errors) != 0 {
		row, _ := strictErr.Errors[0].Position()
		return fmt.Errorf("[%s: %d] error: unknown setting %q", filename, row, strings.Join(strictErr.Errors[0].Key(), "."))
	}

	var decErr *toml.DecodeError
	if errors.As(err, &decErr) {
		row, _ := decErr.Position()
		return fmt.Errorf("[%s: %d] error: %s", filename, row, decErr.Error())
	}
	return fmt.Errorf("[%s] error: %s", filename, err.Error())
}

func decodeYAML(filename string, data []byte, p *Profile) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	// Documents without any settings decode to io.EOF
	if err := dec.Decode(p); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("[%s] error: %s", filename, err.Error())
	}
	return nil
}
