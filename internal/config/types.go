// Package config loads and validates navgen.yml / navgen.toml.
package config

import (
	"github.com/dura2d/navgen/internal/errors"
	"github.com/dura2d/navgen/internal/fileutil"
	"github.com/dura2d/navgen/internal/logging"
	"github.com/dura2d/navgen/internal/navtree"
	"gopkg.in/yaml.v3"
)

// Default values applied by SetDefaults.
const (
	DefaultMainPage           = "README.md"
	DefaultOutputDir          = "docs/html"
	DefaultMultipageThreshold = 200
	DefaultTOCIncludeHeadings = 5
)

// Config is the root of a navgen configuration file.
type Config struct {
	Project ProjectConfig  `yaml:"project,omitempty" toml:"project,omitempty" json:"project,omitempty" jsonschema:"description=Project metadata"`
	Input   InputConfig    `yaml:"input,omitempty" toml:"input,omitempty" json:"input,omitempty" jsonschema:"description=Documentation sources"`
	Output  OutputConfig   `yaml:"output,omitempty" toml:"output,omitempty" json:"output,omitempty" jsonschema:"description=Generated navigation scripts"`
	UI      UIConfig       `yaml:"ui,omitempty" toml:"ui,omitempty" json:"ui,omitempty" jsonschema:"description=Navigation panel strings"`
	Logging logging.Config `yaml:"logging,omitempty" toml:"logging,omitempty" json:"logging,omitempty" jsonschema:"description=Logging configuration"`

	// Path is the file the configuration was loaded from; Root its directory.
	Path string `yaml:"-" toml:"-" json:"-"`
	Root string `yaml:"-" toml:"-" json:"-"`
}

// ProjectConfig names the documentation set.
type ProjectConfig struct {
	Name string `yaml:"name,omitempty" toml:"name,omitempty" json:"name,omitempty" jsonschema:"description=Label of the navigation root (defaults to the main page title)"`
}

// InputConfig lists the documentation sources, relative to the config file.
type InputConfig struct {
	MainPage      string   `yaml:"mainpage,omitempty" toml:"mainpage,omitempty" json:"mainpage,omitempty" jsonschema:"description=Markdown file used as index.html"`
	Pages         []string `yaml:"pages,omitempty" toml:"pages,omitempty" json:"pages,omitempty" jsonschema:"description=Extra markdown pages or globs in navigation order"`
	Sources       []string `yaml:"sources,omitempty" toml:"sources,omitempty" json:"sources,omitempty" jsonschema:"description=C/C++ source files or directories"`
	Exclude       []string `yaml:"exclude,omitempty" toml:"exclude,omitempty" json:"exclude,omitempty" jsonschema:"description=Gitignore-style exclusion rules"`
	StripMacros   []string `yaml:"strip_macros,omitempty" toml:"strip_macros,omitempty" json:"strip_macros,omitempty" jsonschema:"description=Export macros removed before parsing (e.g. D2_API)"`
	StripFromPath []string `yaml:"strip_from_path,omitempty" toml:"strip_from_path,omitempty" json:"strip_from_path,omitempty" jsonschema:"description=Path prefixes removed in the file list"`
}

// OutputConfig controls the generated scripts.
type OutputConfig struct {
	Dir                string `yaml:"dir,omitempty" toml:"dir,omitempty" json:"dir,omitempty" jsonschema:"description=Directory receiving navtreedata.js and its scripts"`
	ShardSize          int    `yaml:"shard_size,omitempty" toml:"shard_size,omitempty" json:"shard_size,omitempty" jsonschema:"minimum=1,description=Links per navtreeindex script"`
	MultipageThreshold int    `yaml:"multipage_threshold,omitempty" toml:"multipage_threshold,omitempty" json:"multipage_threshold,omitempty" jsonschema:"minimum=1,description=Member count above which an index is split per letter"`
	TOCIncludeHeadings int    `yaml:"toc_include_headings,omitempty" toml:"toc_include_headings,omitempty" json:"toc_include_headings,omitempty" jsonschema:"minimum=1,maximum=6,description=Deepest heading level listed in the tree"`
	CaseSenseNames     bool   `yaml:"case_sense_names,omitempty" toml:"case_sense_names,omitempty" json:"case_sense_names,omitempty" jsonschema:"description=Keep upper-case letters in page names"`
}

// UIConfig holds the panel synchronisation toggle labels.
type UIConfig struct {
	SyncOnMessage  string `yaml:"sync_on_message,omitempty" toml:"sync_on_message,omitempty" json:"sync_on_message,omitempty"`
	SyncOffMessage string `yaml:"sync_off_message,omitempty" toml:"sync_off_message,omitempty" json:"sync_off_message,omitempty"`
}

// SetDefaults fills every unset value.
func (c *Config) SetDefaults() {
	if c.Input.MainPage == "" {
		c.Input.MainPage = DefaultMainPage
	}
	if len(c.Input.Sources) == 0 {
		c.Input.Sources = []string{"include"}
	}
	if c.Output.Dir == "" {
		c.Output.Dir = DefaultOutputDir
	}
	if c.Output.ShardSize == 0 {
		c.Output.ShardSize = navtree.DefaultShardSize
	}
	if c.Output.MultipageThreshold == 0 {
		c.Output.MultipageThreshold = DefaultMultipageThreshold
	}
	if c.Output.TOCIncludeHeadings == 0 {
		c.Output.TOCIncludeHeadings = DefaultTOCIncludeHeadings
	}
	if c.UI.SyncOnMessage == "" {
		c.UI.SyncOnMessage = navtree.DefaultSyncOnMessage
	}
	if c.UI.SyncOffMessage == "" {
		c.UI.SyncOffMessage = navtree.DefaultSyncOffMessage
	}
}

// Validate checks the semantic constraints the schema cannot express.
func (c *Config) Validate() error {
	switch {
	case c.Output.ShardSize < 1:
		return errors.New(errors.ErrCodeConfigValidation, "output.shard_size must be at least 1").
			WithDetail("value", c.Output.ShardSize)
	case c.Output.MultipageThreshold < 1:
		return errors.New(errors.ErrCodeConfigValidation, "output.multipage_threshold must be at least 1").
			WithDetail("value", c.Output.MultipageThreshold)
	case c.Output.TOCIncludeHeadings < 1 || c.Output.TOCIncludeHeadings > 6:
		return errors.New(errors.ErrCodeConfigValidation, "output.toc_include_headings must be between 1 and 6").
			WithDetail("value", c.Output.TOCIncludeHeadings)
	}
	for _, p := range append([]string{c.Input.MainPage, c.Output.Dir}, c.Input.Sources...) {
		if isAbsoluteOrEscaping(p) {
			return errors.New(errors.ErrCodeConfigValidation, "input and output paths must stay inside the project").
				WithDetail("path", p)
		}
	}
	return nil
}

// Fingerprint hashes the effective configuration. Generated outputs are
// stale when it changes.
func (c *Config) Fingerprint() string {
	data, err := yaml.Marshal(c)
	if err != nil {
		return ""
	}
	return fileutil.HashBytes(data)
}
