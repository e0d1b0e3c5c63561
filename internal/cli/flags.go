package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func OptionalStringFlag(cmd *cobra.Command, name string) (string, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return "", nil
	}
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return strings.TrimSpace(value), nil
}

func OptionalStringArrayFlag(cmd *cobra.Command, name string) ([]string, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return nil, nil
	}
	values, err := cmd.Flags().GetStringArray(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return values, nil
}

func OptionalBoolFlag(cmd *cobra.Command, name string) (bool, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return false, nil
	}
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}

func OptionalIntFlag(cmd *cobra.Command, name string, fallback int) (int, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return fallback, nil
	}
	value, err := cmd.Flags().GetInt(name)
	if err != nil {
		return 0, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("--%s must not be negative", name)
	}
	return value, nil
}
