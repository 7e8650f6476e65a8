package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"bfi/interpreter-go/pkg/driver"
)

func runDeps(args []string, cfg cliConfig) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "bfi deps expects a subcommand (install or update)")
		return 1
	}
	sub := args[0]
	rest := args[1:]
	switch sub {
	case "install":
		if len(rest) > 0 {
			fmt.Fprintf(os.Stderr, "bfi deps install does not take arguments (received %s)\n", strings.Join(rest, " "))
			return 1
		}
	case "update":
	default:
		fmt.Fprintf(os.Stderr, "unknown bfi deps subcommand '%s' (expected install or update)\n", sub)
		return 1
	}

	suitePath, err := findSuite(".")
	if err != nil {
		if errors.Is(err, errSuiteNotFound) {
			fmt.Fprintln(os.Stderr, "bfi deps: suite.yml not found in this directory or any parent")
			return 1
		}
		fmt.Fprintf(os.Stderr, "bfi deps: %v\n", err)
		return 1
	}
	suite, err := driver.LoadSuite(suitePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bfi deps: %v\n", err)
		return 1
	}
	lock, err := loadLockfileForSuite(suite.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bfi deps: %v\n", err)
		return 1
	}
	if lock == nil {
		lock = driver.NewLockfile(suite.Name, cliToolVersion)
	}

	installer := newDependencyInstaller(suite, cfg.CacheDir)
	var (
		changed bool
		logs    []string
	)
	if sub == "install" {
		changed, logs, err = installer.Install(lock)
	} else {
		changed, logs, err = installer.Update(lock, rest...)
	}
	for _, line := range logs {
		fmt.Fprintln(os.Stdout, line)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "bfi deps %s: %v\n", sub, err)
		return 1
	}

	lockPath := driver.LockfilePathFor(suite.Path)
	if !changed {
		if _, statErr := os.Stat(lockPath); statErr == nil {
			fmt.Fprintf(os.Stdout, "bfi deps: %s up to date\n", driver.LockfileName)
			return 0
		}
	}
	lock.Tool = cliToolVersion
	lock.Generated = ""
	if err := driver.WriteLockfile(lock, lockPath); err != nil {
		fmt.Fprintf(os.Stderr, "bfi deps: %v\n", err)
		return 1
	}
	fmt.Fprintf(os.Stdout, "bfi deps: wrote %s\n", driver.LockfileName)
	return 0
}

// sanitizeName normalizes a source name given on the command line the same
// way suite.yml keys are.
func sanitizeName(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), "-", "_")
}
