package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dura2d/navgen/internal/errors"
	"github.com/dura2d/navgen/internal/logging"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ConfigNames are searched in each directory, in order.
var ConfigNames = []string{
	"navgen.yml",
	"navgen.yaml",
	".navgen.yml",
	"navgen.toml",
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read configuration")
	}

	cfg, err := LoadFromBytes(data, formatOf(path))
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	cfg.Path = abs
	cfg.Root = filepath.Dir(abs)

	logging.NewLogger("config").WithField("path", abs).Debug("Loaded configuration")
	return cfg, nil
}

// LoadFrom searches startDir and its parents for a configuration file.
func LoadFrom(startDir string) (*Config, error) {
	path, err := FindConfigFile(startDir)
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// LoadFromBytes parses configuration data. format is "yaml" or "toml".
func LoadFromBytes(data []byte, format string) (*Config, error) {
	expanded := []byte(expandEnvVars(string(data)))

	var cfg Config
	switch format {
	case "toml":
		dec := toml.NewDecoder(bytes.NewReader(expanded))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse TOML configuration")
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(expanded))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && err != io.EOF {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse YAML configuration")
		}
	}

	validator, err := NewSchemaValidator()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to create validator")
	}
	if err := validator.Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigValidation, "schema validation failed")
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file exists.
func Default(root string) *Config {
	cfg := &Config{Root: root}
	cfg.SetDefaults()
	return cfg
}

// FindConfigFile searches from startDir up to the filesystem root.
func FindConfigFile(startDir string) (string, error) {
	dir := startDir
	for {
		for _, name := range ConfigNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", errors.ConfigNotFound(startDir).WithDetail("searchPath", startDir)
}

// ApplyOverrides sets values given as "section.key=value", as accepted by
// --set. Lists are comma separated.
func (c *Config) ApplyOverrides(overrides []string) error {
	if len(overrides) == 0 {
		return nil
	}

	tree := make(map[string]interface{})
	for _, override := range overrides {
		key, value, ok := strings.Cut(override, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("override %q is not of the form key=value", override))
		}
		parts := strings.Split(key, ".")
		node := tree
		for _, part := range parts[:len(parts)-1] {
			next, ok := node[part].(map[string]interface{})
			if !ok {
				next = make(map[string]interface{})
				node[part] = next
			}
			node = next
		}
		node[parts[len(parts)-1]] = value
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           c,
		TagName:          "yaml",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		ErrorUnused:      true,
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}
	if err := decoder.Decode(tree); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to apply overrides").
			WithDetail("overrides", overrides)
	}

	c.SetDefaults()
	return c.Validate()
}

// Abs resolves a project-relative path.
func (c *Config) Abs(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(c.Root, filepath.FromSlash(rel))
}

// OutputDir is the absolute output directory.
func (c *Config) OutputDir() string {
	return c.Abs(c.Output.Dir)
}

func formatOf(p string) string {
	if strings.EqualFold(filepath.Ext(p), ".toml") {
		return "toml"
	}
	return "yaml"
}

func isAbsoluteOrEscaping(p string) bool {
	if p == "" {
		return false
	}
	if filepath.IsAbs(p) || strings.HasPrefix(p, "/") {
		return true
	}
	clean := path.Clean(filepath.ToSlash(p))
	return clean == ".." || strings.HasPrefix(clean, "../")
}

// expandEnvVars replaces ${VAR} with environment variable values
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		varName := envVarRegex.FindStringSubmatch(match)[1]

		// Handle default values: ${VAR:-default}
		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]
		defaultValue := ""
		if len(parts) > 1 {
			defaultValue = parts[1]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}
