package main

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"bfi/interpreter-go/pkg/driver"
)

// dirChecksum hashes every file under path by name and content. Git metadata
// is skipped so a fresh clone of the same commit hashes identically.
func dirChecksum(path string) (string, error) {
	h := sha256.New()
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return fs.SkipDir
			}
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		h.Write([]byte(filepath.ToSlash(rel)))
		h.Write(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

type gitFetcher struct {
	cacheDir string
}

func newGitFetcher(cacheDir string) *gitFetcher {
	if cacheDir == "" {
		return nil
	}
	return &gitFetcher{cacheDir: cacheDir}
}

// Fetch resolves spec's revision and checks it out into the cache.
func (g *gitFetcher) Fetch(spec *driver.SourceSpec) (*driver.LockedSource, error) {
	if g == nil {
		return nil, errors.New("git fetcher unavailable")
	}
	url := strings.TrimSpace(spec.Git)
	if url == "" {
		return nil, fmt.Errorf("source %q: git URL required", spec.Name)
	}
	revision, descriptor, err := gitRevisionFromSpec(spec)
	if err != nil {
		return nil, fmt.Errorf("source %q: %w", spec.Name, err)
	}

	baseDir := filepath.Join(g.cacheDir, "src", spec.Name)
	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		existing := driver.CheckoutDir(g.cacheDir, spec.Name, rev)
		if _, err := os.Stat(existing); err == nil {
			return lockedEntry(spec.Name, url, rev, rev, existing)
		}
	}

	version, commit, err := ensureGitCheckout(baseDir, url, revision, descriptor)
	if err != nil {
		return nil, err
	}
	return lockedEntry(spec.Name, url, version, commit, driver.CheckoutDir(g.cacheDir, spec.Name, version))
}

// FetchLocked makes sure the commit pinned by entry is checked out and still
// matches its recorded checksum.
func (g *gitFetcher) FetchLocked(entry *driver.LockedSource) error {
	if g == nil {
		return errors.New("git fetcher unavailable")
	}
	url, commit, err := parseGitSource(entry.Source)
	if err != nil {
		return fmt.Errorf("source %q: %w", entry.Name, err)
	}
	dir := driver.CheckoutDir(g.cacheDir, entry.Name, entry.Version)
	if _, err := os.Stat(dir); err != nil {
		descriptor := strings.TrimSuffix(entry.Version, "@"+commit)
		baseDir := filepath.Join(g.cacheDir, "src", entry.Name)
		if _, _, err := ensureGitCheckout(baseDir, url, plumbing.Revision(commit), descriptor); err != nil {
			return err
		}
	}
	if entry.Checksum == "" {
		return nil
	}
	checksum, err := dirChecksum(dir)
	if err != nil {
		return err
	}
	if checksum != entry.Checksum {
		return fmt.Errorf("source %q: checksum mismatch for %s (run bfi deps update)", entry.Name, entry.Version)
	}
	return nil
}

func lockedEntry(name, url, version, commit, dir string) (*driver.LockedSource, error) {
	checksum, err := dirChecksum(dir)
	if err != nil {
		return nil, err
	}
	return &driver.LockedSource{
		Name:     name,
		Version:  version,
		Source:   fmt.Sprintf("git+%s@%s", url, commit),
		Checksum: checksum,
	}, nil
}

func ensureGitCheckout(baseDir, url string, revision plumbing.Revision, descriptor string) (string, string, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", err
	}

	tmpDir, err := os.MkdirTemp(baseDir, "git-fetch-*")
	if err != nil {
		return "", "", err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return "", "", err
	}

	repo, err := git.PlainClone(tmpDir, false, &git.CloneOptions{
		URL:               url,
		Depth:             0,
		RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
	})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git clone %s: %w", url, err)
	}

	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("resolve revision %s: %w", revision, err)
	}

	version := gitPinnedVersion(descriptor, hash.String())
	targetDir := filepath.Join(baseDir, driver.SanitizePathSegment(version))
	if _, err := os.Stat(targetDir); err == nil {
		_ = os.RemoveAll(tmpDir)
		return version, hash.String(), nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{
		Hash:  *hash,
		Force: true,
	}); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git checkout %s: %w", revision, err)
	}

	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	return version, hash.String(), nil
}

func gitPinnedVersion(descriptor, commit string) string {
	commit = strings.TrimSpace(commit)
	descriptor = strings.TrimSpace(descriptor)
	if commit == "" {
		return descriptor
	}
	if descriptor == "" || descriptor == commit {
		return commit
	}
	return fmt.Sprintf("%s@%s", descriptor, commit)
}

func gitRevisionFromSpec(spec *driver.SourceSpec) (plumbing.Revision, string, error) {
	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		return plumbing.Revision(rev), rev, nil
	}
	if tag := strings.TrimSpace(spec.Tag); tag != "" {
		return plumbing.Revision("refs/tags/" + tag), tag, nil
	}
	if branch := strings.TrimSpace(spec.Branch); branch != "" {
		return plumbing.Revision("refs/heads/" + branch), branch, nil
	}
	return "", "", fmt.Errorf("git sources require rev, tag, or branch")
}

// parseGitSource splits a "git+URL@commit" lock source.
func parseGitSource(source string) (string, string, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(source), "git+")
	if !ok {
		return "", "", fmt.Errorf("unsupported lock source %q", source)
	}
	idx := strings.LastIndex(rest, "@")
	if idx <= 0 || idx == len(rest)-1 {
		return "", "", fmt.Errorf("lock source %q has no commit", source)
	}
	return rest[:idx], rest[idx+1:], nil
}
