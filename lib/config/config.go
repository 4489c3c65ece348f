// Copyright 2026 The Canvas Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the canvas sync
// service. Configuration comes from a single YAML file passed via
// --config; there is no automatic discovery or layered override
// machinery. Fields left out of the file keep their defaults; command
// line flags override the file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the canvas sync service configuration.
type Config struct {
	// Listen is the HTTP listen address for the sync API, the event
	// stream, and uploads.
	Listen string `yaml:"listen"`

	// SocketPath is the Unix socket path for the admin protocol
	// (canvasctl). Empty disables the admin socket.
	SocketPath string `yaml:"socket"`

	// BaseURL is the externally visible URL prefix used when
	// constructing upload URLs handed back to clients.
	BaseURL string `yaml:"base_url"`

	// UploadDir is the directory uploaded images are written to and
	// served from. Created at startup if missing.
	UploadDir string `yaml:"upload_dir"`

	// MaxUploadBytes caps the size of a single uploaded image.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// HeartbeatInterval is the idle window after which a subscriber
	// stream receives a keep-alive comment instead of data.
	HeartbeatInterval Duration `yaml:"heartbeat_interval"`

	// SubscriberBuffer is the per-subscriber outbound queue length.
	// A subscriber whose queue overflows is treated as a failed
	// transport and disconnected.
	SubscriberBuffer int `yaml:"subscriber_buffer"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Listen:            "127.0.0.1:3001",
		SocketPath:        DefaultSocketPath(),
		BaseURL:           "http://localhost:3001",
		UploadDir:         "uploads",
		MaxUploadBytes:    50 * 1024 * 1024,
		HeartbeatInterval: Duration(30 * time.Second),
		SubscriberBuffer:  256,
	}
}

// DefaultSocketPath returns the admin socket path: under
// XDG_RUNTIME_DIR when set, otherwise /tmp.
func DefaultSocketPath() string {
	if runDir := os.Getenv("XDG_RUNTIME_DIR"); runDir != "" {
		return runDir + "/canvas-sync.sock"
	}
	return "/tmp/canvas-sync.sock"
}

// Load reads a YAML config file over the defaults. Unknown fields are
// an error — a typo in a config file should fail loudly, not silently
// fall back to a default.
func Load(path string) (Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return config, nil
}

// Validate checks invariants that hold for any usable configuration.
func (c Config) Validate() error {
	if c.Listen == "" {
		return errors.New("listen address must not be empty")
	}
	if c.BaseURL == "" {
		return errors.New("base_url must not be empty")
	}
	if c.UploadDir == "" {
		return errors.New("upload_dir must not be empty")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("max_upload_bytes must be positive")
	}
	if c.HeartbeatInterval <= 0 {
		return errors.New("heartbeat_interval must be positive")
	}
	if c.SubscriberBuffer <= 0 {
		return errors.New("subscriber_buffer must be positive")
	}
	return nil
}

// Duration is a time.Duration that unmarshals from YAML strings in
// time.ParseDuration syntax ("30s", "1m30s").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var text string
	if err := value.Decode(&text); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(text)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}
