// Package config resolves server settings from defaults, an optional YAML
// file and command-line overrides, in that order.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/limitless/internal/badges"
	"github.com/julianstephens/limitless/internal/constants"
	"github.com/julianstephens/limitless/internal/utils"
)

// Config holds every setting of a limitless process.
type Config struct {
	DataDir       string       `yaml:"dataDir"`
	Addr          string       `yaml:"addr"`
	Storage       string       `yaml:"storage"`
	Timezone      string       `yaml:"timezone"`
	RetentionDays int          `yaml:"retentionDays"`
	CORSOrigins   []string     `yaml:"corsOrigins"`
	Debug         bool         `yaml:"debug"`
	Badges        badges.Rules `yaml:"badges"`
}

// Overrides are values given on the command line or through the environment.
// Zero values leave the file or default setting in place.
type Overrides struct {
	DataDir  string
	Addr     string
	Storage  string
	Timezone string
	Debug    bool
}

var storageKinds = []string{
	constants.StorageFile,
	constants.StorageMemory,
	constants.StorageSQLite,
	constants.StoragePostgres,
}

func Default() Config {
	return Config{
		DataDir:       constants.DefaultDataDir,
		Addr:          constants.DefaultAddr,
		Storage:       constants.StorageFile,
		Timezone:      constants.DefaultTimezone,
		RetentionDays: constants.DefaultRetentionDays,
		CORSOrigins:   []string{"*"},
		Badges:        badges.DefaultRules(),
	}
}

// Load reads path on top of the defaults. An empty path returns the defaults.
// Keys absent from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	expanded, err := utils.ExpandPath(path)
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", filepath.Base(expanded), err)
	}
	return cfg, nil
}

// Apply layers command-line overrides over c.
func (c *Config) Apply(o Overrides) {
	if o.DataDir != "" {
		c.DataDir = o.DataDir
	}
	if o.Addr != "" {
		c.Addr = o.Addr
	}
	if o.Storage != "" {
		c.Storage = o.Storage
	}
	if o.Timezone != "" {
		c.Timezone = o.Timezone
	}
	if o.Debug {
		c.Debug = true
	}
}

// Validate checks every setting and expands DataDir in place.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory is required")
	}
	dir, err := utils.ExpandPath(c.DataDir)
	if err != nil {
		return err
	}
	c.DataDir = dir

	if c.Addr == "" {
		return fmt.Errorf("listen address is required")
	}
	if !slices.Contains(storageKinds, c.Storage) {
		return fmt.Errorf("unknown storage %q (want one of %v)", c.Storage, storageKinds)
	}
	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid timezone %q", c.Timezone)
	}
	if c.RetentionDays < 1 {
		return fmt.Errorf("retentionDays must be at least 1, got %d", c.RetentionDays)
	}
	if err := c.Badges.Validate(); err != nil {
		return fmt.Errorf("invalid badge rules: %w", err)
	}
	return nil
}
