// Package config loads and edits the CLI configuration file: a TOML
// file with one section per profile, each holding an API token and
// optional per-profile defaults. The loaded configuration is immutable
// for the lifetime of the process.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// DefaultProfile is used when --profile / NIMBUS_PROFILE is not set.
const DefaultProfile = "default"

// Environment variable names understood by the CLI.
const (
	EnvToken      = "NIMBUS_TOKEN"
	EnvConfigFile = "NIMBUS_CONFIG_FILE"
	EnvProfile    = "NIMBUS_PROFILE"
	EnvOutput     = "NIMBUS_OUTPUT_FORMAT"
	EnvEndpoint   = "NIMBUS_ENDPOINT"
	EnvRegion     = "NIMBUS_REGION"
	EnvDebug      = "NIMBUS_DEBUG"
)

// configFileNames are probed in the home directory, in order.
var configFileNames = []string{".nimbusrc", ".nimbusrc.toml"}

// Config is the resolved configuration for one CLI invocation.
type Config struct {
	Path    string // config file the values came from
	Profile string

	Token        string
	BaseURL      string // empty means the production endpoint
	OutputFormat string
	Region       string
	Zone         string
}

// Profile is one section of the configuration file.
type Profile struct {
	Token        string `mapstructure:"token" toml:"token"`
	OutputFormat string `mapstructure:"output_format" toml:"output_format,omitempty"`
	Region       string `mapstructure:"region" toml:"region,omitempty"`
	Zone         string `mapstructure:"zone" toml:"zone,omitempty"`
}

// DefaultPath returns the first existing config file in the home
// directory, or the preferred name if none exists yet.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return configFileNames[0]
	}
	for _, name := range configFileNames {
		p := filepath.Join(home, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return filepath.Join(home, configFileNames[0])
}

// ResolvePath picks the config file path: flag value, then
// NIMBUS_CONFIG_FILE, then the default location.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(EnvConfigFile); env != "" {
		return env
	}
	return DefaultPath()
}

// ResolveProfile picks the profile name: flag value, then
// NIMBUS_PROFILE, then "default".
func ResolveProfile(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(EnvProfile); env != "" {
		return env
	}
	return DefaultProfile
}

// Load reads the configuration for the given profile. Environment
// variables override file values; a token from NIMBUS_TOKEN makes the
// file itself optional.
func Load(path, profile string) (*Config, error) {
	cfg := &Config{
		Path:    path,
		Profile: profile,
		Token:   os.Getenv(EnvToken),
		BaseURL: os.Getenv(EnvEndpoint),
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	err := v.ReadInConfig()
	switch {
	case err == nil:
		sub := v.Sub(profile)
		if sub == nil {
			if cfg.Token == "" {
				return nil, fmt.Errorf("profile %q not found in %s", profile, path)
			}
		} else {
			var p Profile
			if err := sub.Unmarshal(&p); err != nil {
				return nil, fmt.Errorf("parse profile %q: %w", profile, err)
			}
			if cfg.Token == "" {
				cfg.Token = p.Token
			}
			cfg.OutputFormat = p.OutputFormat
			cfg.Region = p.Region
			cfg.Zone = p.Zone
		}
	case errors.Is(err, os.ErrNotExist):
		if cfg.Token == "" {
			return nil, fmt.Errorf("configuration file %s not found, run 'nimbus config init'", path)
		}
	default:
		var parseErr viper.ConfigParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("check TOML syntax in %s: %w", path, err)
		}
		if cfg.Token == "" {
			return nil, fmt.Errorf("read configuration file %s: %w", path, err)
		}
	}

	if env := os.Getenv(EnvOutput); env != "" {
		cfg.OutputFormat = env
	}
	if env := os.Getenv(EnvRegion); env != "" {
		cfg.Region = env
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("no API token for profile %q, set it with 'nimbus config set token VALUE' or %s", profile, EnvToken)
	}
	return cfg, nil
}

// file is the on-disk document: profile name -> key -> value. Raw maps
// keep unknown keys intact across edits.
type file map[string]map[string]any

func readFile(path string) (file, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc file
	if err := toml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("check TOML syntax in %s: %w", path, err)
	}
	if doc == nil {
		doc = file{}
	}
	return doc, nil
}

func writeFile(path string, doc file) error {
	raw, err := toml.Marshal(doc)
	if err != nil {
		return err
	}
	// Tokens live here, keep the file owner-only.
	return os.WriteFile(path, raw, 0o600)
}

// Init creates a new configuration file with one profile holding the
// token. It refuses to overwrite an existing file.
func Init(path, profile, token string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("file %s already exists", path)
	}
	return writeFile(path, file{profile: {"token": token}})
}

// Set stores key = value in the given profile, creating the file or
// profile as needed.
func Set(path, profile, key string, value any) error {
	doc, err := readFile(path)
	if errors.Is(err, os.ErrNotExist) {
		doc = file{}
	} else if err != nil {
		return err
	}
	if doc[profile] == nil {
		doc[profile] = map[string]any{}
	}
	doc[profile][key] = value
	return writeFile(path, doc)
}

// Unset removes a key from the given profile. Removing the last key
// removes the profile section.
func Unset(path, profile, key string) error {
	doc, err := readFile(path)
	if err != nil {
		return err
	}
	section, ok := doc[profile]
	if !ok {
		return fmt.Errorf("profile %q not found in %s", profile, path)
	}
	if _, ok := section[key]; !ok {
		return fmt.Errorf("key %q not set in profile %q", key, profile)
	}
	delete(section, key)
	if len(section) == 0 {
		delete(doc, profile)
	}
	return writeFile(path, doc)
}

// Profiles lists the profile names defined in the file.
func Profiles(path string) ([]string, error) {
	doc, err := readFile(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}
	return names, nil
}

// Dump returns the file contents with token values masked.
func Dump(path string) ([]byte, error) {
	doc, err := readFile(path)
	if err != nil {
		return nil, err
	}
	for _, section := range doc {
		if _, ok := section["token"]; ok {
			section["token"] = "***"
		}
	}
	return toml.Marshal(doc)
}
