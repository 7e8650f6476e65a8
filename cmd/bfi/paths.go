package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"bfi/interpreter-go/pkg/driver"
)

const suiteFileName = "suite.yml"

// findSuite walks from start towards the filesystem root looking for
// suite.yml.
func findSuite(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, suiteFileName)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errSuiteNotFound
		}
		dir = parent
	}
}

// resolveSuitePaths maps test targets to suite files: files are taken as
// given and directories contribute their suite.yml. With no targets the
// nearest suite.yml above the working directory is used.
func resolveSuitePaths(targets []string) ([]string, error) {
	if len(targets) == 0 {
		path, err := findSuite(".")
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	}
	seen := make(map[string]struct{}, len(targets))
	var resolved []string
	for _, target := range targets {
		abs, err := filepath.Abs(target)
		if err != nil {
			return nil, fmt.Errorf("unable to resolve %s: %w", target, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("unable to access %s: %w", abs, err)
		}
		if info.IsDir() {
			abs = filepath.Join(abs, suiteFileName)
			if _, err := os.Stat(abs); err != nil {
				return nil, fmt.Errorf("unable to access %s: %w", abs, err)
			}
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		resolved = append(resolved, abs)
	}
	return resolved, nil
}

// loadLockfileForSuite returns the suite's lockfile, or nil when none has been
// written yet.
func loadLockfileForSuite(suitePath string) (*driver.Lockfile, error) {
	lock, err := driver.LoadLockfile(driver.LockfilePathFor(suitePath))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return lock, err
}
