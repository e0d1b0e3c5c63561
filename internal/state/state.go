// Package state records what the last generation read and wrote, so that
// status can report stale outputs and generate can skip unchanged files.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dura2d/navgen/internal/errors"
	"github.com/dura2d/navgen/internal/fileutil"
	"github.com/dura2d/navgen/internal/parser"
)

const (
	StateFile               = ".navgen-state.json"
	CurrentStateVersion     = "2"
	CurrentGeneratorVersion = "navtree-v1"
)

// Input kinds.
const (
	KindPage   = "page"
	KindSource = "source"
)

// FileState tracks one input file.
type FileState struct {
	Hash      string    `json:"hash"`
	Kind      string    `json:"kind,omitempty"`
	Language  string    `json:"language,omitempty"`
	Symbols   int       `json:"symbols,omitempty"`
	Includes  []string  `json:"includes,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// State is the content of StateFile.
type State struct {
	Version           string               `json:"version"`
	GeneratorVersion  string               `json:"generator_version,omitempty"`
	UpdatedAt         time.Time            `json:"updated_at"`
	ConfigFingerprint string               `json:"config_fingerprint,omitempty"`
	Files             map[string]FileState `json:"files"`
	OutputHashes      map[string]string    `json:"output_hashes,omitempty"`
}

// Status summarises the difference between the recorded and current inputs.
type Status struct {
	Generated     bool      `json:"generated"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
	Changed       []string  `json:"changed"`
	Deleted       []string  `json:"deleted"`
	Impacted      []string  `json:"impacted,omitempty"`
	StaleOutputs  []string  `json:"stale_outputs"`
	ConfigChanged bool      `json:"config_changed"`
}

// UpToDate reports whether regenerating would change nothing.
func (s Status) UpToDate() bool {
	return s.Generated && len(s.Changed) == 0 && len(s.Deleted) == 0 &&
		len(s.StaleOutputs) == 0 && !s.ConfigChanged
}

// NewState creates a new empty state
func NewState() *State {
	return &State{
		Version:          CurrentStateVersion,
		GeneratorVersion: CurrentGeneratorVersion,
		Files:            make(map[string]FileState),
		OutputHashes:     make(map[string]string),
	}
}

// Load reads state from outputDir. A missing file yields an empty state.
func Load(outputDir string) (*State, error) {
	path := filepath.Join(outputDir, StateFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewState(), nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", StateFile, err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", StateFile, err)
	}

	migrateState(&state)

	return &state, nil
}

// Exists reports whether a generation has been recorded in outputDir.
func Exists(outputDir string) bool {
	_, err := os.Stat(filepath.Join(outputDir, StateFile))
	return err == nil
}

// Save writes state to outputDir.
func (s *State) Save(outputDir string) error {
	migrateState(s)
	s.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	path := filepath.Join(outputDir, StateFile)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return errors.WriteFailed(outputDir, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return errors.WriteFailed(path, err)
	}
	return nil
}

// SetFileHash updates the hash for a file
func (s *State) SetFileHash(file, kind, hash string) {
	s.Files[file] = FileState{
		Hash:      hash,
		Kind:      kind,
		UpdatedAt: time.Now().UTC(),
	}
}

// SetFileData stores a parsed source file.
func (s *State) SetFileData(file parser.FileSymbols) {
	s.Files[file.Path] = FileState{
		Hash:      file.Hash,
		Kind:      KindSource,
		Language:  file.Language,
		Symbols:   len(file.Symbols),
		Includes:  fileutil.DedupeStrings(file.Includes),
		UpdatedAt: time.Now().UTC(),
	}
}

// GetFileHash returns the stored hash for a file
func (s *State) GetFileHash(file string) (string, bool) {
	fs, ok := s.Files[file]
	if !ok {
		return "", false
	}
	return fs.Hash, true
}

// HasChanged returns true if the file hash differs from stored
func (s *State) HasChanged(file, currentHash string) bool {
	storedHash, ok := s.GetFileHash(file)
	if !ok {
		return true
	}
	return storedHash != currentHash
}

// RemoveFile removes a file from state tracking
func (s *State) RemoveFile(file string) {
	delete(s.Files, file)
}

// ChangedFiles returns new or modified files, sorted.
func (s *State) ChangedFiles(currentHashes map[string]string) []string {
	changed := make(map[string]bool)
	for file, hash := range currentHashes {
		if s.HasChanged(file, hash) {
			changed[file] = true
		}
	}
	return fileutil.MapKeysSorted(changed)
}

// DeletedFiles returns recorded files that are no longer inputs, sorted.
func (s *State) DeletedFiles(currentFiles map[string]bool) []string {
	deleted := make(map[string]bool)
	for file := range s.Files {
		if !currentFiles[file] {
			deleted[file] = true
		}
	}
	return fileutil.MapKeysSorted(deleted)
}

// ImpactedFiles returns changed/deleted files plus every recorded source
// that includes one of them, directly or transitively.
func (s *State) ImpactedFiles(changedFiles, deletedFiles []string) []string {
	reverse := make(map[string][]string)
	for file, fileState := range s.Files {
		for _, inc := range fileState.Includes {
			for _, target := range s.resolveInclude(inc) {
				reverse[target] = append(reverse[target], file)
			}
		}
	}

	impacted := make(map[string]bool)
	queue := make([]string, 0, len(changedFiles)+len(deletedFiles))
	for _, file := range fileutil.DedupeStrings(append(append([]string{}, changedFiles...), deletedFiles...)) {
		impacted[file] = true
		queue = append(queue, file)
	}

	for len(queue) > 0 {
		file := queue[0]
		queue = queue[1:]
		for _, depender := range reverse[file] {
			if impacted[depender] {
				continue
			}
			impacted[depender] = true
			queue = append(queue, depender)
		}
	}

	return fileutil.MapKeysSorted(impacted)
}

// resolveInclude maps an include directive to the recorded files it may
// name: an exact path or a path ending in "/"+inc.
func (s *State) resolveInclude(inc string) []string {
	var out []string
	for file := range s.Files {
		if file == inc || strings.HasSuffix(file, "/"+inc) {
			out = append(out, file)
		}
	}
	sort.Strings(out)
	return out
}

// SetOutputHash records the content hash for a generated output file.
func (s *State) SetOutputHash(path, hash string) {
	if s.OutputHashes == nil {
		s.OutputHashes = make(map[string]string)
	}
	s.OutputHashes[path] = hash
}

// GetOutputHash returns the previously stored hash for a generated output file.
func (s *State) GetOutputHash(path string) (string, bool) {
	hash, ok := s.OutputHashes[path]
	return hash, ok
}

// SetOutputs replaces the recorded outputs.
func (s *State) SetOutputs(hashes map[string]string) {
	s.OutputHashes = make(map[string]string, len(hashes))
	for path, hash := range hashes {
		s.OutputHashes[path] = hash
	}
}

// StaleOutputs returns recorded outputs under outputDir that are missing or
// were modified since they were written.
func (s *State) StaleOutputs(outputDir string) []string {
	stale := make(map[string]bool)
	for name, want := range s.OutputHashes {
		got, err := fileutil.HashFile(filepath.Join(outputDir, filepath.FromSlash(name)))
		if err != nil || got != want {
			stale[name] = true
		}
	}
	return fileutil.MapKeysSorted(stale)
}

// Compare reports how the current inputs differ from the recorded ones.
// inputs maps project-relative paths to content hashes.
func (s *State) Compare(inputs map[string]string, fingerprint, outputDir string) Status {
	current := make(map[string]bool, len(inputs))
	for file := range inputs {
		current[file] = true
	}

	changed := s.ChangedFiles(inputs)
	deleted := s.DeletedFiles(current)
	return Status{
		Generated:     len(s.Files) > 0 || len(s.OutputHashes) > 0,
		UpdatedAt:     s.UpdatedAt,
		Changed:       changed,
		Deleted:       deleted,
		Impacted:      s.ImpactedFiles(changed, deleted),
		StaleOutputs:  s.StaleOutputs(outputDir),
		ConfigChanged: s.ConfigFingerprint != "" && s.ConfigFingerprint != fingerprint,
	}
}

func migrateState(s *State) {
	if s.Files == nil {
		s.Files = make(map[string]FileState)
	}
	if s.OutputHashes == nil {
		s.OutputHashes = make(map[string]string)
	}
	if s.GeneratorVersion == "" {
		s.GeneratorVersion = CurrentGeneratorVersion
	}

	switch s.Version {
	case "", "1":
		s.Version = CurrentStateVersion
	case CurrentStateVersion:
	default:
		// Unknown versions are kept; only the maps are initialised.
	}
}
