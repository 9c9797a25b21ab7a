// Package catalog loads the skill catalog: display names, descriptions,
// per-difficulty hints and parent notes for each practice skill.
package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/p-n-ai/pai-practice/internal/practice"
)

// Loader loads and caches the skill catalog from the filesystem.
type Loader struct {
	rootDir string
	entries map[practice.Skill]Entry
	notes   map[practice.Skill]string
	mu      sync.RWMutex
}

// NewLoader creates a catalog loader and loads every skill file under
// rootDir. A missing or empty directory yields the default catalog.
func NewLoader(rootDir string) (*Loader, error) {
	l := &Loader{
		rootDir: rootDir,
		entries: make(map[practice.Skill]Entry),
		notes:   make(map[practice.Skill]string),
	}

	if err := l.loadAll(); err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	slog.Info("catalog loaded", "skills", len(l.entries), "dir", rootDir)
	return l, nil
}

// Default returns a catalog with default entries for every skill.
func Default() *Loader {
	return &Loader{
		entries: make(map[practice.Skill]Entry),
		notes:   make(map[practice.Skill]string),
	}
}

// Get returns the entry for skill. Skills missing from the catalog get a
// default entry; found reports whether one was loaded from disk.
func (l *Loader) Get(skill practice.Skill) (entry Entry, found bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if e, ok := l.entries[skill]; ok {
		return e, true
	}
	return defaultEntry(skill), false
}

// Notes returns the parent notes for skill.
func (l *Loader) Notes(skill practice.Skill) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n, ok := l.notes[skill]
	return n, ok
}

// All returns an entry for every skill in display order.
func (l *Loader) All() []Entry {
	out := make([]Entry, 0, len(practice.AllSkills()))
	for _, s := range practice.AllSkills() {
		e, _ := l.Get(s)
		out = append(out, e)
	}
	return out
}

// Enabled returns the skills offered for practice, in display order.
func (l *Loader) Enabled() []Entry {
	var out []Entry
	for _, e := range l.All() {
		if e.IsEnabled() {
			out = append(out, e)
		}
	}
	return out
}

// Hint returns the configured hint for skill at difficulty d.
func (l *Loader) Hint(skill practice.Skill, d practice.Difficulty) string {
	e, _ := l.Get(skill)
	return e.Hints.For(d)
}

// Labels maps every skill to its display name.
func (l *Loader) Labels() map[practice.Skill]string {
	labels := make(map[practice.Skill]string)
	for _, e := range l.All() {
		labels[e.Skill] = e.Name
	}
	return labels
}

// DisplayName title-cases a skill identifier.
func DisplayName(skill practice.Skill) string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(skill), "_", " "))
}

func defaultEntry(skill practice.Skill) Entry {
	return Entry{Skill: skill, Name: DisplayName(skill)}
}

func (l *Loader) loadAll() error {
	return filepath.Walk(l.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}

		switch {
		case strings.HasSuffix(path, ".notes.md"):
			return l.loadNotes(path)
		case strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml"):
			return l.loadEntry(path)
		}
		return nil
	})
}

func (l *Loader) loadEntry(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var entry Entry
	if err := yaml.Unmarshal(data, &entry); err != nil {
		slog.Warn("skipping invalid skill YAML", "path", path, "error", err)
		return nil
	}

	if entry.Skill == "" {
		return nil // Not a skill file
	}
	if !entry.Skill.Valid() {
		slog.Warn("skipping unknown skill", "path", path, "skill", entry.Skill)
		return nil
	}
	if entry.Name == "" {
		entry.Name = DisplayName(entry.Skill)
	}

	l.mu.Lock()
	l.entries[entry.Skill] = entry
	l.mu.Unlock()

	return nil
}

func (l *Loader) loadNotes(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(path, ".notes.md")
	var yamlData []byte
	for _, ext := range []string{".yaml", ".yml"} {
		if yamlData, err = os.ReadFile(base + ext); err == nil {
			break
		}
	}
	if yamlData == nil {
		return nil // No matching skill file
	}

	var partial struct {
		Skill practice.Skill `yaml:"skill"`
	}
	if err := yaml.Unmarshal(yamlData, &partial); err != nil || !partial.Skill.Valid() {
		return nil
	}

	l.mu.Lock()
	l.notes[partial.Skill] = string(data)
	l.mu.Unlock()

	return nil
}
