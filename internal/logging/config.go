package logging

// Config defines the structure for logging configuration in navgen.yml.
type Config struct {
	// Level is the minimum log level to output (e.g., "debug", "info", "warn", "error").
	// Can be overridden by the NAVGEN_LOG_LEVEL environment variable.
	Level string `yaml:"level,omitempty" toml:"level,omitempty" json:"level,omitempty" jsonschema:"enum=debug,enum=info,enum=warn,enum=error,description=Minimum log level"`

	// Format is "text" (default) or "json".
	Format string `yaml:"format,omitempty" toml:"format,omitempty" json:"format,omitempty" jsonschema:"enum=text,enum=json,description=Log output format"`

	// ReportCaller includes the file, line, and function name in the log output.
	ReportCaller bool `yaml:"report_caller,omitempty" toml:"report_caller,omitempty" json:"report_caller,omitempty"`
}
