package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dura2d/navgen/internal/config"
	navgenerrors "github.com/dura2d/navgen/internal/errors"
	"github.com/dura2d/navgen/internal/ignore"
	"github.com/dura2d/navgen/internal/logging"
	"github.com/dura2d/navgen/internal/navjs"
	"github.com/spf13/cobra"
)

func resolveWorkingDirectory() (string, error) {
	rootPath, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return rootPath, nil
}

// LoadProject loads the configuration for a command: --config when given,
// else the nearest configuration file above startDir. --set overrides are
// applied and logging is configured from the result.
func LoadProject(cmd *cobra.Command, startDir string) (*config.Config, error) {
	configPath, err := OptionalStringFlag(cmd, "config")
	if err != nil {
		return nil, err
	}

	var cfg *config.Config
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadFrom(startDir)
	}
	if err != nil {
		if navgenerrors.Is(err, navgenerrors.ErrCodeConfigNotFound) {
			return nil, fmt.Errorf("%w (run \"navgen init\" to create %s)", err, config.DefaultFileName)
		}
		return nil, err
	}

	overrides, err := OptionalStringArrayFlag(cmd, "set")
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyOverrides(overrides); err != nil {
		return nil, err
	}

	if level, _ := OptionalStringFlag(cmd, "log-level"); level != "" {
		cfg.Logging.Level = level
	}
	logging.Configure(cfg.Logging)
	return cfg, nil
}

// LoadIgnoreRules returns the .navgenignore rules followed by input.exclude.
func LoadIgnoreRules(cfg *config.Config) ([]string, error) {
	rules, err := ignore.LoadRules(cfg.Root)
	if err != nil {
		return nil, err
	}
	return append(rules, cfg.Input.Exclude...), nil
}

// ResolveDataFile picks the navtreedata.js a read-only command works on:
// the argument, else the configured output directory, else the working
// directory.
func ResolveDataFile(cmd *cobra.Command, args []string) (string, *config.Config, error) {
	if len(args) > 0 {
		path, err := filepath.Abs(args[0])
		if err != nil {
			return "", nil, fmt.Errorf("failed to resolve path %q: %w", args[0], err)
		}
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			path = filepath.Join(path, navjs.DataFile)
		}
		return path, nil, nil
	}

	cwd, err := resolveWorkingDirectory()
	if err != nil {
		return "", nil, err
	}
	cfg, err := LoadProject(cmd, cwd)
	if err != nil {
		if navgenerrors.Is(err, navgenerrors.ErrCodeConfigNotFound) {
			return filepath.Join(cwd, navjs.DataFile), nil, nil
		}
		return "", nil, err
	}
	return filepath.Join(cfg.OutputDir(), navjs.DataFile), cfg, nil
}

func IsCorruptStateError(err error) bool {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return true
	}
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &typeErr)
}

func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
