package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"bfi/interpreter-go/pkg/runtime"
)

// Suite models a suite.yml file: a named list of programs with their input
// and expected results.
type Suite struct {
	Path    string
	Name    string
	EOF     runtime.EOFPolicy
	Sources map[string]*SourceSpec
	Cases   []*Case
}

// SourceSpec declares a git repository whose files cases may reference as
// "name:path".
type SourceSpec struct {
	Name   string
	Git    string
	Rev    string
	Tag    string
	Branch string
}

// Case is one program run.
type Case struct {
	Name string
	// Source holds inline program text; File names a program file instead.
	Source string
	File   string
	Input  string
	EOF    runtime.EOFPolicy
	Expect Expectation
}

// Expectation is what a case must produce. Output is only compared when
// HasOutput is set.
type Expectation struct {
	Output    []byte
	HasOutput bool
	Error     FailureKind
}

// Inline reports whether the program text is embedded in the suite.
func (c *Case) Inline() bool {
	return c.File == ""
}

// Dir is the directory relative file references resolve against.
func (s *Suite) Dir() string {
	if s.Path == "" {
		return "."
	}
	return filepath.Dir(s.Path)
}

// SourceNames returns the declared source names in sorted order.
func (s *Suite) SourceNames() []string {
	names := make([]string, 0, len(s.Sources))
	for name := range s.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadSuite parses and validates a suite file.
func LoadSuite(path string) (*Suite, error) {
	if path == "" {
		return nil, fmt.Errorf("suite: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("suite: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var raw suiteDisk
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("suite: parse %s: %w", abs, err)
	}
	suite, problems := raw.toSuite()
	if len(problems) > 0 {
		return nil, fmt.Errorf("suite: %s: %s", abs, strings.Join(problems, "; "))
	}
	suite.Path = abs
	return suite, nil
}

// SplitFileRef splits a case file reference into a source name and a path.
// References without a "name:" prefix return an empty source name.
func SplitFileRef(ref string) (string, string) {
	idx := strings.Index(ref, ":")
	// Single-letter prefixes are drive letters.
	if idx <= 1 || strings.ContainsAny(ref[:idx], `/\.`) {
		return "", ref
	}
	return sanitizeSegment(ref[:idx]), ref[idx+1:]
}

type suiteDisk struct {
	Name    string                `yaml:"name"`
	EOF     string                `yaml:"eof"`
	Sources map[string]sourceDisk `yaml:"sources"`
	Cases   []caseDisk            `yaml:"cases"`
}

type sourceDisk struct {
	Git    string `yaml:"git"`
	Rev    string `yaml:"rev"`
	Tag    string `yaml:"tag"`
	Branch string `yaml:"branch"`
}

type caseDisk struct {
	Name   string     `yaml:"name"`
	Source *string    `yaml:"source"`
	File   string     `yaml:"file"`
	Input  string     `yaml:"input"`
	EOF    string     `yaml:"eof"`
	Expect expectDisk `yaml:"expect"`
}

type expectDisk struct {
	Output      *string `yaml:"output"`
	OutputBytes []int   `yaml:"output_bytes"`
	Error       string  `yaml:"error"`
}

func (d suiteDisk) toSuite() (*Suite, []string) {
	var problems []string
	suite := &Suite{
		Name:    strings.TrimSpace(d.Name),
		EOF:     runtime.EOFZero,
		Sources: make(map[string]*SourceSpec, len(d.Sources)),
		Cases:   make([]*Case, 0, len(d.Cases)),
	}
	if suite.Name == "" {
		problems = append(problems, "name must be provided")
	}
	if strings.TrimSpace(d.EOF) != "" {
		policy, err := runtime.ParseEOFPolicy(d.EOF)
		if err != nil {
			problems = append(problems, fmt.Sprintf("eof: %v", err))
		}
		suite.EOF = policy
	}

	for rawName, src := range d.Sources {
		name := sanitizeSegment(rawName)
		spec := &SourceSpec{
			Name:   name,
			Git:    strings.TrimSpace(src.Git),
			Rev:    strings.TrimSpace(src.Rev),
			Tag:    strings.TrimSpace(src.Tag),
			Branch: strings.TrimSpace(src.Branch),
		}
		switch {
		case name == "":
			problems = append(problems, "sources: empty source name")
			continue
		case spec.Git == "":
			problems = append(problems, fmt.Sprintf("sources.%s: git URL required", name))
		case spec.Rev == "" && spec.Tag == "" && spec.Branch == "":
			problems = append(problems, fmt.Sprintf("sources.%s: must specify rev, tag, or branch", name))
		}
		suite.Sources[name] = spec
	}

	seen := make(map[string]struct{}, len(d.Cases))
	for idx, raw := range d.Cases {
		c, caseProblems := raw.toCase(suite)
		label := c.Name
		if label == "" {
			label = fmt.Sprintf("#%d", idx+1)
			problems = append(problems, fmt.Sprintf("cases[%d]: name must be provided", idx))
		} else if _, dup := seen[label]; dup {
			problems = append(problems, fmt.Sprintf("cases.%s: duplicate case name", label))
		}
		seen[label] = struct{}{}
		for _, problem := range caseProblems {
			problems = append(problems, fmt.Sprintf("cases.%s: %s", label, problem))
		}
		suite.Cases = append(suite.Cases, c)
	}
	sort.Strings(problems)
	return suite, problems
}

func (d caseDisk) toCase(suite *Suite) (*Case, []string) {
	var problems []string
	c := &Case{
		Name:  strings.TrimSpace(d.Name),
		File:  strings.TrimSpace(d.File),
		Input: d.Input,
		EOF:   suite.EOF,
	}
	switch {
	case d.Source != nil && c.File != "":
		problems = append(problems, "source and file are mutually exclusive")
	case d.Source == nil && c.File == "":
		problems = append(problems, "must specify source or file")
	case d.Source != nil:
		c.Source = *d.Source
	}
	if c.File != "" {
		if name, rel := SplitFileRef(c.File); name != "" {
			if _, ok := suite.Sources[name]; !ok {
				problems = append(problems, fmt.Sprintf("file references undeclared source %q", name))
			}
			if strings.TrimSpace(rel) == "" {
				problems = append(problems, "file reference has no path")
			}
		}
	}
	if strings.TrimSpace(d.EOF) != "" {
		policy, err := runtime.ParseEOFPolicy(d.EOF)
		if err != nil {
			problems = append(problems, fmt.Sprintf("eof: %v", err))
		}
		c.EOF = policy
	}

	if d.Expect.Output != nil && d.Expect.OutputBytes != nil {
		problems = append(problems, "expect: output and output_bytes are mutually exclusive")
	}
	if d.Expect.Output != nil {
		c.Expect.Output = []byte(*d.Expect.Output)
		c.Expect.HasOutput = true
	}
	if d.Expect.OutputBytes != nil {
		out := make([]byte, 0, len(d.Expect.OutputBytes))
		for _, value := range d.Expect.OutputBytes {
			if value < 0 || value > 255 {
				problems = append(problems, fmt.Sprintf("expect: output byte %d out of range", value))
				continue
			}
			out = append(out, byte(value))
		}
		c.Expect.Output = out
		c.Expect.HasOutput = true
	}
	if strings.TrimSpace(d.Expect.Error) != "" {
		kind, err := ParseFailureKind(d.Expect.Error)
		if err != nil {
			problems = append(problems, fmt.Sprintf("expect: %v", err))
		}
		c.Expect.Error = kind
	}
	return c, problems
}

func sanitizeSegment(seg string) string {
	seg = strings.TrimSpace(seg)
	seg = strings.ReplaceAll(seg, "-", "_")
	return seg
}
