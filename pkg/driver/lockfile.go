package driver

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LockfileName is written next to the suite it pins.
const LockfileName = "suite.lock"

// Lockfile models the suite.lock contents.
type Lockfile struct {
	Path      string
	Suite     string
	Generated string
	Tool      string
	Sources   []*LockedSource
}

// LockedSource pins one fetched suite source to a commit.
type LockedSource struct {
	Name     string
	Version  string
	Source   string
	Checksum string
}

// NewLockfile constructs a lockfile with metadata seeded for the provided suite.
func NewLockfile(suite, tool string) *Lockfile {
	return &Lockfile{
		Suite:     sanitizeSegment(suite),
		Generated: time.Now().UTC().Format(time.RFC3339),
		Tool:      strings.TrimSpace(tool),
		Sources:   []*LockedSource{},
	}
}

// LockfilePathFor returns the lockfile location for a suite file.
func LockfilePathFor(suitePath string) string {
	return filepath.Join(filepath.Dir(suitePath), LockfileName)
}

// LoadLockfile parses suite.lock from disk.
func LoadLockfile(path string) (*Lockfile, error) {
	if path == "" {
		return nil, fmt.Errorf("lockfile: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var raw lockfileDisk
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("lockfile: parse %s: %w", abs, err)
	}

	lock := raw.toLockfile()
	lock.Path = abs
	lock.normalize()
	return lock, nil
}

// WriteLockfile serialises the lockfile back to disk, refreshing metadata.
func WriteLockfile(lock *Lockfile, path string) error {
	if lock == nil {
		return fmt.Errorf("lockfile: nil lockfile")
	}
	if path == "" {
		if lock.Path == "" {
			return fmt.Errorf("lockfile: missing path")
		}
		path = lock.Path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}

	if lock.Generated == "" {
		lock.Generated = time.Now().UTC().Format(time.RFC3339)
	}
	lock.Path = abs
	lock.normalize()

	data := lock.toDisk()
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("lockfile: marshal %s: %w", abs, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("lockfile: encoder close: %w", err)
	}
	if err := os.WriteFile(abs, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("lockfile: write %s: %w", abs, err)
	}
	return nil
}

// Find returns the entry for name, or nil.
func (l *Lockfile) Find(name string) *LockedSource {
	if l == nil {
		return nil
	}
	name = sanitizeSegment(name)
	for _, src := range l.Sources {
		if src != nil && src.Name == name {
			return src
		}
	}
	return nil
}

// Put adds or replaces the entry with the same name and reports whether the
// lockfile changed.
func (l *Lockfile) Put(entry *LockedSource) bool {
	if entry == nil {
		return false
	}
	for i, src := range l.Sources {
		if src != nil && src.Name == entry.Name {
			if *src == *entry {
				return false
			}
			l.Sources[i] = entry
			return true
		}
	}
	l.Sources = append(l.Sources, entry)
	return true
}

// Prune drops entries whose name is not in keep and reports whether any were
// removed.
func (l *Lockfile) Prune(keep map[string]struct{}) bool {
	kept := l.Sources[:0]
	for _, src := range l.Sources {
		if src == nil {
			continue
		}
		if _, ok := keep[src.Name]; ok {
			kept = append(kept, src)
		}
	}
	changed := len(kept) != len(l.Sources)
	l.Sources = kept
	return changed
}

func (l *Lockfile) normalize() {
	if l == nil {
		return
	}
	l.Suite = sanitizeSegment(l.Suite)
	l.Tool = strings.TrimSpace(l.Tool)
	sort.SliceStable(l.Sources, func(i, j int) bool {
		return l.Sources[i].Name < l.Sources[j].Name
	})
	for _, src := range l.Sources {
		if src == nil {
			continue
		}
		src.Name = sanitizeSegment(src.Name)
		src.Version = strings.TrimSpace(src.Version)
		src.Source = strings.TrimSpace(src.Source)
		src.Checksum = strings.TrimSpace(src.Checksum)
	}
}

func (l *Lockfile) toDisk() lockfileDisk {
	srcs := make([]lockfileSource, 0, len(l.Sources))
	for _, src := range l.Sources {
		if src == nil {
			continue
		}
		srcs = append(srcs, lockfileSource{
			Name:     src.Name,
			Version:  src.Version,
			Source:   src.Source,
			Checksum: src.Checksum,
		})
	}
	return lockfileDisk{
		Suite:     l.Suite,
		Generated: l.Generated,
		Tool:      l.Tool,
		Sources:   srcs,
	}
}

type lockfileDisk struct {
	Suite     string           `yaml:"suite"`
	Generated string           `yaml:"generated"`
	Tool      string           `yaml:"tool"`
	Sources   []lockfileSource `yaml:"sources"`
}

type lockfileSource struct {
	Name     string `yaml:"name"`
	Version  string `yaml:"version"`
	Source   string `yaml:"source"`
	Checksum string `yaml:"checksum"`
}

func (d lockfileDisk) toLockfile() *Lockfile {
	lock := &Lockfile{
		Suite:     sanitizeSegment(d.Suite),
		Generated: strings.TrimSpace(d.Generated),
		Tool:      strings.TrimSpace(d.Tool),
		Sources:   make([]*LockedSource, 0, len(d.Sources)),
	}
	for _, src := range d.Sources {
		lock.Sources = append(lock.Sources, &LockedSource{
			Name:     sanitizeSegment(src.Name),
			Version:  strings.TrimSpace(src.Version),
			Source:   strings.TrimSpace(src.Source),
			Checksum: strings.TrimSpace(src.Checksum),
		})
	}
	lock.normalize()
	return lock
}

// CheckoutDir is where a fetched source version lives under the cache.
func CheckoutDir(cacheDir, name, version string) string {
	return filepath.Join(cacheDir, "src", sanitizeSegment(name), SanitizePathSegment(version))
}

// SanitizePathSegment maps a version string onto a single safe path element.
func SanitizePathSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "head"
	}
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// LockResolver resolves suite sources through a lockfile and the cache
// directory the sources were installed into.
type LockResolver struct {
	CacheDir string
	Lock     *Lockfile
}

func (r *LockResolver) SourceDir(name string) (string, error) {
	entry := r.Lock.Find(name)
	if entry == nil {
		return "", fmt.Errorf("source %q is not locked (run bfi deps install)", name)
	}
	dir := CheckoutDir(r.CacheDir, entry.Name, entry.Version)
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("source %q not found in cache: %w", name, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("source %q: expected directory at %s", name, dir)
	}
	return dir, nil
}
