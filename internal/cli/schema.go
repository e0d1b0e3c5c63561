package cli

import (
	"fmt"

	"github.com/dura2d/navgen/internal/config"
	"github.com/dura2d/navgen/internal/fileutil"
	"github.com/spf13/cobra"
)

func RunSchema(cmd *cobra.Command, args []string) error {
	data, err := config.GenerateSchema()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}
	text := fileutil.EnsureTrailingNewline(string(data))

	output, err := OptionalStringFlag(cmd, "output")
	if err != nil {
		return err
	}
	if output == "" {
		_, err = fmt.Fprint(cmd.OutOrStdout(), text)
		return err
	}
	if err := fileutil.WriteIfChanged(output, []byte(text)); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
	return nil
}
