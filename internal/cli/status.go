package cli

import (
	"time"

	"github.com/dura2d/navgen/internal/logging"
	"github.com/dura2d/navgen/internal/state"
	"github.com/spf13/cobra"
)

func RunStatus(cmd *cobra.Command, args []string) error {
	start := time.Now()
	rootPath, err := resolveWorkingDirectory()
	if err != nil {
		return err
	}
	asJSON, err := OptionalBoolFlag(cmd, "json")
	if err != nil {
		return err
	}

	cfg, err := LoadProject(cmd, rootPath)
	if err != nil {
		return err
	}

	outputDir := cfg.OutputDir()
	st, err := state.Load(outputDir)
	if err != nil {
		if !IsCorruptStateError(err) {
			return err
		}
		logging.NewLogger("status").WithError(err).Warn("Corrupt state file; treating every input as changed")
		st = state.NewState()
	}

	inputs, err := ReadInputs(cfg, true)
	if err != nil {
		return err
	}

	status := st.Compare(inputs.Hashes, cfg.Fingerprint(), outputDir)
	summary := StatusSummary{
		Mode:          "status",
		RootPath:      cfg.Root,
		OutputDir:     outputDir,
		Generated:     status.Generated,
		UpToDate:      status.UpToDate(),
		Scanned:       len(inputs.Hashes),
		Changed:       len(status.Changed),
		Deleted:       len(status.Deleted),
		Impacted:      len(status.Impacted),
		ConfigChanged: status.ConfigChanged,
		ChangedFiles:  status.Changed,
		DeletedFiles:  status.Deleted,
		ImpactedFiles: status.Impacted,
		StaleOutputs:  status.StaleOutputs,
		DurationMS:    time.Since(start).Milliseconds(),
	}
	return PrintStatusSummary(summary, asJSON)
}
