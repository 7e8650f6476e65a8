package main

import (
	"fmt"
	"strings"

	"bfi/interpreter-go/pkg/optimizer"
	"bfi/interpreter-go/pkg/runtime"
)

// parseExecOptions strips the global --opt and --eof options from args,
// applying them over cfg. Arguments after "--" are passed through untouched.
func parseExecOptions(args []string, cfg cliConfig) (cliConfig, []string, error) {
	remaining := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			remaining = append(remaining, args[i+1:]...)
			break
		}
		switch {
		case arg == "--opt" || arg == "--eof":
			if i+1 >= len(args) {
				return cfg, nil, fmt.Errorf("%s expects a value", arg)
			}
			if err := applyExecOption(&cfg, arg, args[i+1]); err != nil {
				return cfg, nil, err
			}
			i++
		case strings.HasPrefix(arg, "--opt="):
			if err := applyExecOption(&cfg, "--opt", strings.TrimPrefix(arg, "--opt=")); err != nil {
				return cfg, nil, err
			}
		case strings.HasPrefix(arg, "--eof="):
			if err := applyExecOption(&cfg, "--eof", strings.TrimPrefix(arg, "--eof=")); err != nil {
				return cfg, nil, err
			}
		default:
			remaining = append(remaining, arg)
		}
	}
	return cfg, remaining, nil
}

func applyExecOption(cfg *cliConfig, flag, value string) error {
	switch flag {
	case "--opt":
		level, err := parseOptValue(value)
		if err != nil {
			return err
		}
		cfg.Level = level
	case "--eof":
		policy, err := parseEOFValue(value)
		if err != nil {
			return err
		}
		cfg.EOF = policy
	}
	return nil
}

func parseOptValue(value string) (optimizer.Level, error) {
	if strings.TrimSpace(value) == "" {
		return optimizer.LevelFull, fmt.Errorf("--opt expects a value")
	}
	level, err := optimizer.ParseLevel(value)
	if err != nil {
		return optimizer.LevelFull, fmt.Errorf("unknown --opt value '%s' (expected none or full)", value)
	}
	return level, nil
}

func parseEOFValue(value string) (runtime.EOFPolicy, error) {
	if strings.TrimSpace(value) == "" {
		return runtime.EOFZero, fmt.Errorf("--eof expects a value")
	}
	policy, err := runtime.ParseEOFPolicy(value)
	if err != nil {
		return runtime.EOFZero, fmt.Errorf("unknown --eof value '%s' (expected zero, max, or error)", value)
	}
	return policy, nil
}
