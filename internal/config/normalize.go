package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.applyEnv()
	c.normalizeBus()
	if err := c.normalizeBackend(); err != nil {
		return err
	}
	c.Network.Force = strings.ToLower(strings.TrimSpace(c.Network.Force))
	return c.normalizeLogging()
}

func (c *Config) applyEnv() {
	if value, ok := os.LookupEnv("PKCON_BUS_ADDRESS"); ok && strings.TrimSpace(value) != "" {
		c.Bus.Address = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("PKCON_BACKEND"); ok && strings.TrimSpace(value) != "" {
		c.Backend.Name = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("PKCON_NETWORK"); ok {
		c.Network.Force = value
	}
}

func (c *Config) normalizeBus() {
	c.Bus.Address = strings.TrimSpace(c.Bus.Address)
	switch strings.ToLower(c.Bus.Address) {
	case "", BusSystem:
		c.Bus.Address = BusSystem
	case BusSession:
		c.Bus.Address = BusSession
	}
	c.Bus.Service = strings.TrimSpace(c.Bus.Service)
	if c.Bus.Service == "" {
		c.Bus.Service = defaultServiceName
	}
	c.Bus.ObjectPath = strings.TrimSpace(c.Bus.ObjectPath)
	if c.Bus.ObjectPath == "" {
		c.Bus.ObjectPath = defaultObjectPath
	}
	c.Bus.Interface = strings.TrimSpace(c.Bus.Interface)
	if c.Bus.Interface == "" {
		c.Bus.Interface = defaultInterfaceName
	}
}

func (c *Config) normalizeBackend() error {
	c.Backend.Name = strings.TrimSpace(c.Backend.Name)
	var err error
	if c.Backend.HelperDir, err = expandPath(strings.TrimSpace(c.Backend.HelperDir)); err != nil {
		return fmt.Errorf("backend.helper_dir: %w", err)
	}
	if c.Backend.LockPath, err = expandPath(strings.TrimSpace(c.Backend.LockPath)); err != nil {
		return fmt.Errorf("backend.lock_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.Dir, err = expandPath(strings.TrimSpace(c.Logging.Dir)); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}
