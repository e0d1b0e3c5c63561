package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dura2d/navgen/internal/config"
	"github.com/dura2d/navgen/internal/fileutil"
	"github.com/dura2d/navgen/internal/ignore"
	"github.com/spf13/cobra"
)

const ignoreTemplate = `# Paths excluded from source parsing, gitignore syntax.
third_party/
examples/
`

func RunInit(cmd *cobra.Command, args []string) error {
	rootPath, err := resolveWorkingDirectory()
	if err != nil {
		return err
	}

	name, err := OptionalStringFlag(cmd, "name")
	if err != nil {
		return err
	}
	if name == "" {
		name = filepath.Base(rootPath)
	}

	configPath := filepath.Join(rootPath, config.DefaultFileName)
	created, err := fileutil.WriteIfMissing(configPath, []byte(config.Template(name)), 0644)
	if err != nil {
		return err
	}
	if created {
		fmt.Printf("Created %s\n", configPath)
	} else {
		fmt.Printf("%s already exists; leaving it unchanged\n", configPath)
	}

	ignorePath := filepath.Join(rootPath, ignore.FileName)
	if created, err := fileutil.WriteIfMissing(ignorePath, []byte(ignoreTemplate), 0644); err != nil {
		return err
	} else if created {
		fmt.Printf("Created %s\n", ignorePath)
	}

	noGenerate, err := OptionalBoolFlag(cmd, "no-generate")
	if err != nil {
		return err
	}
	if noGenerate {
		return nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfg.Abs(cfg.Input.MainPage)); err != nil {
		fmt.Printf("Skipping initial generate: %s not found\n", cfg.Input.MainPage)
		return nil
	}

	fmt.Println("Running initial generate...")
	summary, err := GenerateNavigation(cfg, false)
	if err != nil {
		return err
	}
	return PrintRunSummary(*summary, false)
}
