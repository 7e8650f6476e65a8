//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package main

func stdinIsTerminal() bool {
	return false
}
