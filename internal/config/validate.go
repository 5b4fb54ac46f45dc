package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateBus(); err != nil {
		return err
	}
	if err := c.validateBackend(); err != nil {
		return err
	}
	switch c.Network.Force {
	case "", "online", "offline":
	default:
		return fmt.Errorf("network.force: unsupported value %q (want online or offline)", c.Network.Force)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateBus() error {
	if !strings.HasPrefix(c.Bus.ObjectPath, "/") {
		return fmt.Errorf("bus.object_path: %q must be absolute", c.Bus.ObjectPath)
	}
	if !strings.Contains(c.Bus.Service, ".") {
		return fmt.Errorf("bus.service: %q is not a well-known bus name", c.Bus.Service)
	}
	if !strings.Contains(c.Bus.Interface, ".") {
		return fmt.Errorf("bus.interface: %q is not an interface name", c.Bus.Interface)
	}
	return nil
}

func (c *Config) validateBackend() error {
	if c.Backend.Name == "" {
		return errors.New("backend.name must be set")
	}
	if strings.ContainsAny(c.Backend.Name, "/\\") {
		return fmt.Errorf("backend.name: %q must not contain path separators", c.Backend.Name)
	}
	if c.Backend.HelperDir == "" {
		return errors.New("backend.helper_dir must be set")
	}
	if c.Backend.CancelGraceSeconds <= 0 {
		return errors.New("backend.cancel_grace_seconds must be positive")
	}
	return nil
}
