// Package interpreter executes instruction trees produced by pkg/ir and
// pkg/optimizer against a growable byte tape. Optimized and unoptimized trees
// of the same program produce the same output; the suites under testdata and
// the parity tests in this package keep the two in step.
package interpreter
