package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"bfi/interpreter-go/pkg/driver"
)

// TestCliConfig is the parsed form of the bfi test arguments.
type TestCliConfig struct {
	Targets  []string
	Names    []string
	FailFast bool
	ListOnly bool
	Parallel int
}

type testTally struct {
	Passed          int
	Failed          int
	FrameworkErrors int
}

func runTest(args []string, cfg cliConfig) int {
	config, err := parseTestArguments(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bfi test: %v\n", err)
		return 1
	}

	paths, err := resolveSuitePaths(config.Targets)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bfi test: %v\n", err)
		return 2
	}

	suites := make([]*driver.Suite, 0, len(paths))
	for _, path := range paths {
		suite, err := driver.LoadSuite(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bfi test: %v\n", err)
			return 2
		}
		suites = append(suites, suite)
	}

	if config.ListOnly {
		for _, suite := range suites {
			for _, c := range suite.Cases {
				if matchesNameFilter(c.Name, config.Names) {
					fmt.Fprintf(os.Stdout, "%s/%s\n", suite.Name, c.Name)
				}
			}
		}
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var tally testTally
	for _, suite := range suites {
		runner, err := newSuiteRunner(suite, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bfi test: %v\n", err)
			return 2
		}
		runner.Parallelism = config.Parallel
		selected := make([]*driver.Case, 0, len(suite.Cases))
		for _, c := range suite.Cases {
			if matchesNameFilter(c.Name, config.Names) {
				selected = append(selected, c)
			}
		}
		if config.FailFast {
			for _, c := range selected {
				reportCaseResult(suite, runner.RunCase(ctx, suite, c), &tally)
				if tally.Failed+tally.FrameworkErrors > 0 {
					break
				}
			}
		} else {
			for _, result := range runner.RunCases(ctx, suite, selected) {
				reportCaseResult(suite, result, &tally)
			}
		}
		if config.FailFast && tally.Failed+tally.FrameworkErrors > 0 {
			break
		}
	}

	fmt.Fprintf(os.Stdout, "bfi test: %d passed, %d failed, %d errors\n", tally.Passed, tally.Failed, tally.FrameworkErrors)
	if tally.FrameworkErrors > 0 {
		return 2
	}
	if tally.Failed > 0 {
		return 1
	}
	return 0
}

// newSuiteRunner wires the suite's lockfile, when it has one, as the resolver
// for remote sources.
func newSuiteRunner(suite *driver.Suite, cfg cliConfig) (*driver.Runner, error) {
	if len(suite.Sources) == 0 {
		return driver.NewRunner(nil), nil
	}
	lock, err := loadLockfileForSuite(suite.Path)
	if err != nil {
		return nil, err
	}
	if lock == nil {
		return driver.NewRunner(nil), nil
	}
	return driver.NewRunner(&driver.LockResolver{CacheDir: cfg.CacheDir, Lock: lock}), nil
}

func reportCaseResult(suite *driver.Suite, result *driver.CaseResult, tally *testTally) {
	label := fmt.Sprintf("%s/%s", suite.Name, result.Case.Name)
	switch {
	case result.Err != nil:
		tally.FrameworkErrors++
		fmt.Fprintf(os.Stdout, "ERROR %s: %v\n", label, result.Err)
	case result.Passed():
		tally.Passed++
		fmt.Fprintf(os.Stdout, "PASS  %s\n", label)
	default:
		tally.Failed++
		fmt.Fprintf(os.Stdout, "FAIL  %s\n", label)
		for _, problem := range result.Problems {
			fmt.Fprintf(os.Stdout, "      %s\n", problem)
		}
	}
}

func parseTestArguments(args []string) (TestCliConfig, error) {
	var config TestCliConfig
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--list":
			config.ListOnly = true
		case "--fail-fast":
			config.FailFast = true
		case "--name":
			val, err := expectFlagValue(arg, nextArg(args, &i))
			if err != nil {
				return TestCliConfig{}, err
			}
			config.Names = append(config.Names, val)
		case "--parallel":
			val, err := expectFlagValue(arg, nextArg(args, &i))
			if err != nil {
				return TestCliConfig{}, err
			}
			count, err := parsePositiveInt(val, arg, 1)
			if err != nil {
				return TestCliConfig{}, err
			}
			config.Parallel = count
		default:
			if strings.HasPrefix(arg, "-") {
				return TestCliConfig{}, fmt.Errorf("unknown bfi test flag '%s'", arg)
			}
			config.Targets = append(config.Targets, filepath.Clean(arg))
		}
	}
	return config, nil
}

func matchesNameFilter(name string, filters []string) bool {
	if len(filters) == 0 {
		return true
	}
	for _, filter := range filters {
		if strings.Contains(name, filter) {
			return true
		}
	}
	return false
}

func parsePositiveInt(value string, flag string, min int) (int, error) {
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < min {
		return 0, fmt.Errorf("%s expects an integer >= %d", flag, min)
	}
	return parsed, nil
}

func nextArg(args []string, index *int) string {
	*index = *index + 1
	if *index >= len(args) {
		return ""
	}
	return args[*index]
}

func expectFlagValue(flag string, value string) (string, error) {
	if value == "" || strings.HasPrefix(value, "-") {
		return "", fmt.Errorf("%s expects a value", flag)
	}
	return value, nil
}
