package main

import (
	"fmt"

	"bfi/interpreter-go/pkg/driver"
)

// dependencyInstaller keeps a suite's lockfile in step with its declared git
// sources and the checkouts in the cache.
type dependencyInstaller struct {
	suite   *driver.Suite
	fetcher *gitFetcher
}

func newDependencyInstaller(suite *driver.Suite, cacheDir string) *dependencyInstaller {
	return &dependencyInstaller{suite: suite, fetcher: newGitFetcher(cacheDir)}
}

// Install fetches every declared source. Sources already in the lockfile are
// restored at their pinned commit; new ones are resolved from the suite.
// Entries for sources no longer declared are dropped.
func (d *dependencyInstaller) Install(lock *driver.Lockfile) (bool, []string, error) {
	var logs []string
	changed := d.prune(lock, &logs)
	for _, name := range d.suite.SourceNames() {
		spec := d.suite.Sources[name]
		if entry := lock.Find(name); entry != nil && entry.Source == lockedSourcePrefix(spec)+commitOf(entry) {
			if err := d.fetcher.FetchLocked(entry); err != nil {
				return changed, logs, err
			}
			logs = append(logs, fmt.Sprintf("%s: using locked %s", name, entry.Version))
			continue
		}
		entry, err := d.fetcher.Fetch(spec)
		if err != nil {
			return changed, logs, err
		}
		if lock.Put(entry) {
			changed = true
		}
		logs = append(logs, fmt.Sprintf("%s: fetched %s (%s)", name, spec.Git, entry.Version))
	}
	return changed, logs, nil
}

// Update re-resolves the named sources, or all of them when names is empty,
// ignoring what the lockfile pins.
func (d *dependencyInstaller) Update(lock *driver.Lockfile, names ...string) (bool, []string, error) {
	targets := names
	if len(targets) == 0 {
		targets = d.suite.SourceNames()
	}
	var logs []string
	changed := d.prune(lock, &logs)
	for _, raw := range targets {
		spec, ok := d.suite.Sources[sanitizeName(raw)]
		if !ok {
			return changed, logs, fmt.Errorf("source %q is not declared in %s", raw, d.suite.Path)
		}
		entry, err := d.fetcher.Fetch(spec)
		if err != nil {
			return changed, logs, err
		}
		if lock.Put(entry) {
			changed = true
			logs = append(logs, fmt.Sprintf("%s: updated to %s", spec.Name, entry.Version))
		} else {
			logs = append(logs, fmt.Sprintf("%s: already at %s", spec.Name, entry.Version))
		}
	}
	return changed, logs, nil
}

func (d *dependencyInstaller) prune(lock *driver.Lockfile, logs *[]string) bool {
	keep := make(map[string]struct{}, len(d.suite.Sources))
	for name := range d.suite.Sources {
		keep[name] = struct{}{}
	}
	before := make([]string, 0, len(lock.Sources))
	for _, entry := range lock.Sources {
		if entry != nil {
			before = append(before, entry.Name)
		}
	}
	if !lock.Prune(keep) {
		return false
	}
	for _, name := range before {
		if _, ok := keep[name]; !ok {
			*logs = append(*logs, fmt.Sprintf("%s: removed from lockfile", name))
		}
	}
	return true
}

func lockedSourcePrefix(spec *driver.SourceSpec) string {
	return fmt.Sprintf("git+%s@", spec.Git)
}

func commitOf(entry *driver.LockedSource) string {
	_, commit, err := parseGitSource(entry.Source)
	if err != nil {
		return ""
	}
	return commit
}
