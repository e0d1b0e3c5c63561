package cli

import (
	"fmt"
	"strings"

	"github.com/dura2d/navgen/internal/navtree"
)

type RunSummary struct {
	Mode         string   `json:"mode"`
	RootPath     string   `json:"root_path"`
	OutputDir    string   `json:"output_dir,omitempty"`
	Pages        int      `json:"pages"`
	Sources      int      `json:"sources"`
	Symbols      int      `json:"symbols"`
	Nodes        int      `json:"nodes"`
	Anchors      int      `json:"anchors"`
	Scripts      int      `json:"scripts"`
	Shards       int      `json:"shards"`
	Written      int      `json:"written"`
	Rewritten    int      `json:"rewritten"`
	Pruned       int      `json:"pruned"`
	Changed      int      `json:"changed"`
	Deleted      int      `json:"deleted"`
	Warnings     int      `json:"warnings"`
	DurationMS   int64    `json:"duration_ms"`
	Index        []string `json:"index,omitempty"`
	ChangedFiles []string `json:"changed_files,omitempty"`
	DeletedFiles []string `json:"deleted_files,omitempty"`
	Rewrote      []string `json:"rewritten_files,omitempty"`
}

type StatusSummary struct {
	Mode          string   `json:"mode"`
	RootPath      string   `json:"root_path"`
	OutputDir     string   `json:"output_dir"`
	Generated     bool     `json:"generated"`
	UpToDate      bool     `json:"up_to_date"`
	Scanned       int      `json:"scanned"`
	Changed       int      `json:"changed"`
	Deleted       int      `json:"deleted"`
	Impacted      int      `json:"impacted"`
	ConfigChanged bool     `json:"config_changed"`
	ChangedFiles  []string `json:"changed_files,omitempty"`
	DeletedFiles  []string `json:"deleted_files,omitempty"`
	ImpactedFiles []string `json:"impacted_files,omitempty"`
	StaleOutputs  []string `json:"stale_outputs,omitempty"`
	DurationMS    int64    `json:"duration_ms"`
}

type CheckReport struct {
	Path     string          `json:"path"`
	Nodes    int             `json:"nodes"`
	Links    int             `json:"links"`
	Anchors  int             `json:"anchors"`
	Scripts  int             `json:"scripts"`
	Shards   int             `json:"shards"`
	Resolved bool            `json:"resolved"`
	Errors   int             `json:"errors"`
	Warnings int             `json:"warnings"`
	Issues   []navtree.Issue `json:"issues"`
}

func PrintRunSummary(summary RunSummary, asJSON bool) error {
	if asJSON {
		return printJSON(summary)
	}

	fmt.Printf("%s complete in %dms\n", summary.Mode, summary.DurationMS)
	if summary.OutputDir != "" {
		fmt.Printf("output: %s\n", summary.OutputDir)
	}
	fmt.Printf("inputs: pages=%d sources=%d symbols=%d\n", summary.Pages, summary.Sources, summary.Symbols)
	fmt.Printf("tree: nodes=%d anchors=%d scripts=%d shards=%d\n", summary.Nodes, summary.Anchors, summary.Scripts, summary.Shards)
	fmt.Printf("files: written=%d rewritten=%d pruned=%d\n", summary.Written, summary.Rewritten, summary.Pruned)
	fmt.Printf("changes: changed=%d deleted=%d warnings=%d\n", summary.Changed, summary.Deleted, summary.Warnings)
	if len(summary.ChangedFiles) > 0 {
		fmt.Printf("changed files (%d): %s\n", len(summary.ChangedFiles), SummarizePaths(summary.ChangedFiles, 8))
	}
	if len(summary.DeletedFiles) > 0 {
		fmt.Printf("deleted files (%d): %s\n", len(summary.DeletedFiles), SummarizePaths(summary.DeletedFiles, 8))
	}
	return nil
}

func PrintStatusSummary(summary StatusSummary, asJSON bool) error {
	if asJSON {
		return printJSON(summary)
	}

	state := "up to date"
	switch {
	case !summary.Generated:
		state = "never generated"
	case !summary.UpToDate:
		state = "stale"
	}
	fmt.Printf("status: %s (scanned=%d changed=%d deleted=%d impacted=%d duration=%dms)\n",
		state, summary.Scanned, summary.Changed, summary.Deleted, summary.Impacted, summary.DurationMS)
	if summary.ConfigChanged {
		fmt.Println("configuration changed since the last generate")
	}
	if len(summary.ChangedFiles) > 0 {
		fmt.Printf("changed files (%d): %s\n", len(summary.ChangedFiles), SummarizePaths(summary.ChangedFiles, 8))
	}
	if len(summary.DeletedFiles) > 0 {
		fmt.Printf("deleted files (%d): %s\n", len(summary.DeletedFiles), SummarizePaths(summary.DeletedFiles, 8))
	}
	if len(summary.ImpactedFiles) > len(summary.ChangedFiles)+len(summary.DeletedFiles) {
		fmt.Printf("impacted files (%d): %s\n", len(summary.ImpactedFiles), SummarizePaths(summary.ImpactedFiles, 8))
	}
	if len(summary.StaleOutputs) > 0 {
		fmt.Printf("stale outputs (%d): %s\n", len(summary.StaleOutputs), SummarizePaths(summary.StaleOutputs, 8))
	}
	return nil
}

func PrintCheckReport(report CheckReport, asJSON bool) error {
	if asJSON {
		return printJSON(report)
	}

	for _, issue := range report.Issues {
		fmt.Println(issue.String())
	}
	fmt.Printf("%s: nodes=%d links=%d anchors=%d scripts=%d shards=%d errors=%d warnings=%d\n",
		report.Path, report.Nodes, report.Links, report.Anchors, report.Scripts, report.Shards, report.Errors, report.Warnings)
	return nil
}

func SummarizePaths(paths []string, max int) string {
	if len(paths) <= max {
		return strings.Join(paths, ", ")
	}
	return fmt.Sprintf("%s ... (+%d more)", strings.Join(paths[:max], ", "), len(paths)-max)
}
