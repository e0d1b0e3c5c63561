package config

// DefaultFileName is written by "navgen init".
const DefaultFileName = "navgen.yml"

// Template returns the annotated default configuration.
func Template(projectName string) string {
	if projectName == "" {
		projectName = "${NAVGEN_PROJECT:-My Project}"
	}
	return `project:
  name: "` + projectName + `"

input:
  # Markdown file rendered as index.html.
  mainpage: README.md
  # Extra markdown pages, in navigation order. Globs use .dockerignore syntax.
  pages: []
  # Headers and sources scanned for classes, members and globals.
  sources:
    - include
  exclude: []
  # Export macros blanked out before parsing, e.g. D2_API.
  strip_macros: []
  strip_from_path:
    - include

output:
  dir: docs/html
  shard_size: 250
  multipage_threshold: 200
  toc_include_headings: 5

logging:
  level: info
  format: text
`
}
