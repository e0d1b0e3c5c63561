package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dura2d/navgen/internal/config"
	"github.com/dura2d/navgen/internal/doctree"
	"github.com/dura2d/navgen/internal/errors"
	"github.com/dura2d/navgen/internal/fileutil"
	"github.com/dura2d/navgen/internal/languages"
	"github.com/dura2d/navgen/internal/logging"
	"github.com/dura2d/navgen/internal/navjs"
	"github.com/dura2d/navgen/internal/navtree"
	"github.com/dura2d/navgen/internal/parser"
	"github.com/dura2d/navgen/internal/state"
	"github.com/spf13/cobra"
)

func RunGenerate(cmd *cobra.Command, args []string) error {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}

	asJSON, err := OptionalBoolFlag(cmd, "json")
	if err != nil {
		return err
	}

	rootPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path %q: %w", path, err)
	}
	info, err := os.Stat(rootPath)
	if err != nil {
		return fmt.Errorf("failed to access path %q: %w", rootPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path %q is not a directory", rootPath)
	}

	cfg, err := LoadProject(cmd, rootPath)
	if err != nil {
		return err
	}

	summary, err := GenerateNavigation(cfg, asJSON)
	if err != nil {
		return err
	}
	return PrintRunSummary(*summary, asJSON)
}

// Inputs are the documentation sources of one generation.
type Inputs struct {
	Sources doctree.Sources
	// Hashes maps every project-relative input path to its content hash.
	Hashes map[string]string
}

// ReadInputs reads the main page and extra pages and parses the sources.
func ReadInputs(cfg *config.Config, asJSON bool) (*Inputs, error) {
	log := logging.NewLogger("generate")
	inputs := &Inputs{Hashes: make(map[string]string)}

	mainPath := cfg.Abs(cfg.Input.MainPage)
	mainSrc, err := os.ReadFile(mainPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.InputNotFound("main page", cfg.Input.MainPage)
		}
		return nil, fmt.Errorf("failed to read main page: %w", err)
	}
	inputs.Sources.MainPage = &doctree.Page{Path: cfg.Input.MainPage, Source: mainSrc}
	inputs.Hashes[filepath.ToSlash(cfg.Input.MainPage)] = fileutil.HashBytes(mainSrc)

	pages, err := cfg.ResolvePages()
	if err != nil {
		return nil, err
	}
	progress := newProgressReporter("pages", len(pages), asJSON)
	for i, rel := range pages {
		progress.Update(rel, i+1)
		src, err := os.ReadFile(cfg.Abs(rel))
		if err != nil {
			return nil, errors.InputNotFound("page", rel)
		}
		inputs.Sources.Pages = append(inputs.Sources.Pages, doctree.Page{Path: rel, Source: src})
		inputs.Hashes[rel] = fileutil.HashBytes(src)
	}
	progress.Done(len(pages))

	rules, err := LoadIgnoreRules(cfg)
	if err != nil {
		return nil, err
	}
	// Generated HTML often lives below the project; never parse it.
	if rel, relErr := filepath.Rel(cfg.Root, cfg.OutputDir()); relErr == nil {
		rules = append(rules, filepath.ToSlash(rel)+"/")
	}

	registry := languages.NewDefaultRegistry(languages.Options{StripMacros: cfg.Input.StripMacros})
	code, err := registry.ParsePaths(cfg.Root, cfg.Input.Sources, rules)
	if err != nil {
		return nil, errors.ParseFailed(cfg.Root, err)
	}
	ReportParseIssues(code.Issues)
	for _, file := range code.Files {
		inputs.Hashes[file.Path] = file.Hash
	}
	inputs.Sources.Code = code

	log.WithField("pages", len(pages)+1).WithField("sources", len(code.Files)).Debug("Read inputs")
	return inputs, nil
}

// BuildOptions maps the configuration onto tree options.
func BuildOptions(cfg *config.Config) doctree.Options {
	return doctree.Options{
		ProjectName:        cfg.Project.Name,
		MaxHeadingLevel:    cfg.Output.TOCIncludeHeadings,
		MultipageThreshold: cfg.Output.MultipageThreshold,
		ShardSize:          cfg.Output.ShardSize,
		StripFromPath:      cfg.Input.StripFromPath,
		CaseSense:          cfg.Output.CaseSenseNames,
		Messages:           navtree.Messages{SyncOn: cfg.UI.SyncOnMessage, SyncOff: cfg.UI.SyncOffMessage},
	}
}

// GenerateNavigation builds the navigation index of cfg and writes it to the
// output directory, together with the generation state.
func GenerateNavigation(cfg *config.Config, asJSON bool) (*RunSummary, error) {
	start := time.Now()
	log := logging.NewLogger("generate")
	outputDir := cfg.OutputDir()

	previous, err := state.Load(outputDir)
	if err != nil {
		if !IsCorruptStateError(err) {
			return nil, fmt.Errorf("failed to load state: %w", err)
		}
		log.WithError(err).Warn("Corrupt state file; treating every input as changed")
		previous = state.NewState()
	}

	inputs, err := ReadInputs(cfg, asJSON)
	if err != nil {
		return nil, err
	}

	result, err := doctree.Build(inputs.Sources, BuildOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to build navigation tree: %w", err)
	}

	issues := navtree.Validate(result.Tree, navtree.ValidateOptions{ShardSize: cfg.Output.ShardSize})
	for _, issue := range issues {
		log.Warn(issue.String())
	}
	if navtree.HasErrors(issues) {
		return nil, errors.New(errors.ErrCodeInternal, "generated navigation index is malformed").
			WithDetail("issues", len(issues))
	}

	written, err := navjs.Write(outputDir, result.Tree, result.Shards)
	if err != nil {
		return nil, err
	}
	pruned := PruneOutputs(outputDir, previous.OutputHashes, written.Hashes)

	current := state.NewState()
	current.ConfigFingerprint = cfg.Fingerprint()
	for _, page := range append([]doctree.Page{*inputs.Sources.MainPage}, inputs.Sources.Pages...) {
		current.SetFileHash(filepath.ToSlash(page.Path), state.KindPage, inputs.Hashes[filepath.ToSlash(page.Path)])
	}
	for _, file := range inputs.Sources.Code.Files {
		current.SetFileData(file)
	}
	current.SetOutputs(written.Hashes)
	if err := current.Save(outputDir); err != nil {
		return nil, fmt.Errorf("failed to persist state: %w", err)
	}

	changed := previous.ChangedFiles(inputs.Hashes)
	deleted := previous.DeletedFiles(fileutil.ToSet(mapKeys(inputs.Hashes)))

	summary := &RunSummary{
		Mode:         "generate",
		RootPath:     cfg.Root,
		OutputDir:    outputDir,
		Pages:        len(result.Pages),
		Sources:      len(inputs.Sources.Code.Files),
		Symbols:      len(inputs.Sources.Code.Symbols()),
		Nodes:        navtree.Count(result.Tree.Root),
		Anchors:      len(navtree.Anchors(result.Tree.Root)),
		Scripts:      len(result.Tree.Scripts()),
		Shards:       len(result.Shards),
		Written:      len(written.Files),
		Rewritten:    len(written.Rewritten),
		Pruned:       len(pruned),
		Changed:      len(changed),
		Deleted:      len(deleted),
		Warnings:     len(issues) + len(inputs.Sources.Code.Issues),
		DurationMS:   time.Since(start).Milliseconds(),
		Index:        result.Tree.Index,
		ChangedFiles: changed,
		DeletedFiles: deleted,
		Rewrote:      written.Rewritten,
	}
	log.WithField("rewritten", summary.Rewritten).WithField("shards", summary.Shards).Info("Navigation index generated")
	return summary, nil
}

// PruneOutputs removes scripts written by the previous generation that the
// current one no longer produces. Files edited since are kept.
func PruneOutputs(outputDir string, before, after map[string]string) []string {
	log := logging.NewLogger("generate")
	stale := make(map[string]bool)
	for name, hash := range before {
		if _, ok := after[name]; ok {
			continue
		}
		path := filepath.Join(outputDir, filepath.FromSlash(name))
		current, err := fileutil.HashFile(path)
		if err != nil || current != hash {
			continue
		}
		if err := os.Remove(path); err != nil {
			log.WithError(err).Warnf("Failed to remove stale script %s", name)
			continue
		}
		stale[name] = true
	}
	return fileutil.MapKeysSorted(stale)
}

func ReportParseIssues(issues []parser.ParseIssue) {
	log := logging.NewLogger("parser")
	for _, issue := range issues {
		entry := log.WithField("file", issue.File)
		if issue.Language != "" {
			entry = entry.WithField("language", issue.Language)
		}
		if issue.Severity == "error" {
			entry.Error(issue.Message)
			continue
		}
		entry.Warn(issue.Message)
	}
}

func mapKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
