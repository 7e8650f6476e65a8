package main

import (
	"errors"
	"fmt"
	"os"
)

const cliToolVersion = "bfi 0.1.0-dev"

var errSuiteNotFound = errors.New("suite.yml not found")

type executionMode int

const (
	modeRun executionMode = iota
	modeCheck
	modeAST
	modeIR
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg, remaining, err := parseExecOptions(args, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if len(remaining) == 0 {
		if stdinIsTerminal() {
			return runRepl(nil, cfg)
		}
		printUsage()
		return 1
	}

	switch remaining[0] {
	case "--help", "-h", "help":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "run":
		return runEntryWithMode(remaining[1:], cfg, modeRun)
	case "check":
		return runEntryWithMode(remaining[1:], cfg, modeCheck)
	case "ast":
		return runEntryWithMode(remaining[1:], cfg, modeAST)
	case "ir":
		return runEntryWithMode(remaining[1:], cfg, modeIR)
	case "repl":
		return runRepl(remaining[1:], cfg)
	case "test":
		return runTest(remaining[1:], cfg)
	case "deps":
		return runDeps(remaining[1:], cfg)
	default:
		return runEntryWithMode(remaining, cfg, modeRun)
	}
}
