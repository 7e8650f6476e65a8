package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xyproto/env/v2"

	"bfi/interpreter-go/pkg/optimizer"
	"bfi/interpreter-go/pkg/runtime"
)

// cliConfig holds settings shared by every subcommand. Environment variables
// seed it and command-line options override them.
type cliConfig struct {
	Level       optimizer.Level
	EOF         runtime.EOFPolicy
	CacheDir    string
	HistoryPath string
}

func loadConfig() (cliConfig, error) {
	cfg := cliConfig{
		Level:       optimizer.LevelFull,
		EOF:         runtime.EOFZero,
		CacheDir:    env.Str("BFI_CACHE", defaultDotPath(".bfi")),
		HistoryPath: env.Str("BFI_HISTORY", defaultDotPath(".bfi_history")),
	}
	if value := env.Str("BFI_OPT"); value != "" {
		level, err := optimizer.ParseLevel(value)
		if err != nil {
			return cfg, fmt.Errorf("BFI_OPT: %w", err)
		}
		cfg.Level = level
	}
	if value := env.Str("BFI_EOF"); value != "" {
		policy, err := runtime.ParseEOFPolicy(value)
		if err != nil {
			return cfg, fmt.Errorf("BFI_EOF: %w", err)
		}
		cfg.EOF = policy
	}
	return cfg, nil
}

// defaultDotPath places name in the home directory, falling back to the
// working directory when there is none.
func defaultDotPath(name string) string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, name)
	}
	return name
}
