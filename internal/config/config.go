package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var ConfigFileOverride = ""

// Config is the ifcfg configuration file.
type Config struct {
	// NetNS names a network namespace (see "ip netns") to operate in.
	// Empty means the namespace ifcfg was started in.
	NetNS string `yaml:"netns"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Sim runs against a simulated kernel instead of the real one.
	Sim bool `yaml:"sim"`
}

func defaults() Config {
	return Config{
		LogLevel:  "warn",
		LogFormat: "text",
	}
}

var Cfg = defaults()

func resolveConfigFile() string {
	if ConfigFileOverride != "" {
		return ConfigFileOverride
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		dir, err = os.Getwd()
		if err != nil {
			panic(err)
		}
	}

	return filepath.Join(dir, "ifcfg", "config.yaml")
}

func SaveConfigFile() error {
	path := resolveConfigFile()

	base := filepath.Dir(path)
	if err := os.MkdirAll(base, 0o777); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(&Cfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return enc.Close()
}

// ReadConfigFile loads the configuration file, creating it with the defaults
// if it does not exist, then applies environment overrides.
func ReadConfigFile() error {
	path := resolveConfigFile()

	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := SaveConfigFile(); err != nil {
			return err
		}
		applyEnv()
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	c := defaults()
	if err := yaml.NewDecoder(f).Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%s: unknown log_format %q", path, c.LogFormat)
	}

	Cfg = c
	applyEnv()
	return nil
}

func applyEnv() {
	if v, ok := os.LookupEnv("IFCFG_NETNS"); ok {
		Cfg.NetNS = v
	}
	if v, ok := os.LookupEnv("IFCFG_LOG_LEVEL"); ok {
		Cfg.LogLevel = v
	}
}
