package fs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IgnoreFileName is the per-directory file listing patterns to skip when
// registering files.
const IgnoreFileName = ".tagignore"

// defaultIgnorePatterns are always applied regardless of config or .tagignore.
var defaultIgnorePatterns = []string{IgnoreFileName}

type patternKind int

const (
	// matchName matches any single path component: "*.tmp", ".git".
	matchName patternKind = iota
	// matchDir matches directory components only: "build/".
	matchDir
	// matchPath matches the relative path or one of its leading directories:
	// "photos/raw", "cache/*.bin".
	matchPath
)

// ignorePattern is a parsed ignore pattern with its matching strategy.
type ignorePattern struct {
	pattern string
	kind    patternKind
}

// IgnoreMatcher checks file paths against a set of ignore patterns.
// A path is ignored when a pattern matches the file itself or any directory
// it sits under, relative to the root the patterns apply to.
type IgnoreMatcher struct {
	patterns []ignorePattern
}

// NewIgnoreMatcher creates an IgnoreMatcher from raw pattern strings.
// Blank lines and lines starting with '#' are skipped.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	var patterns []ignorePattern
	for _, raw := range rawPatterns {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}

		p := ignorePattern{pattern: raw, kind: matchName}
		switch {
		case strings.HasSuffix(raw, "/") && !strings.Contains(strings.TrimSuffix(raw, "/"), "/"):
			p.pattern = strings.TrimSuffix(raw, "/")
			p.kind = matchDir
		case strings.Contains(raw, "/"):
			p.pattern = strings.Trim(raw, "/")
			p.kind = matchPath
		}
		// Malformed globs would never match; drop them up front.
		if _, err := filepath.Match(p.pattern, ""); err != nil {
			continue
		}
		patterns = append(patterns, p)
	}
	return &IgnoreMatcher{patterns: patterns}
}

// Match reports whether the given relative path should be ignored.
// relativePath should use filepath separators and be relative to the directory root.
func (m *IgnoreMatcher) Match(relativePath string) bool {
	if len(m.patterns) == 0 || relativePath == "" {
		return false
	}

	components := strings.Split(filepath.ToSlash(relativePath), "/")
	dirs := components[:len(components)-1]

	for _, p := range m.patterns {
		switch p.kind {
		case matchName:
			if anyMatch(p.pattern, components) {
				return true
			}
		case matchDir:
			if anyMatch(p.pattern, dirs) {
				return true
			}
		case matchPath:
			for i := range components {
				if ok, _ := filepath.Match(p.pattern, strings.Join(components[:i+1], "/")); ok {
					return true
				}
			}
		}
	}
	return false
}

func anyMatch(pattern string, names []string) bool {
	for _, name := range names {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// ParseIgnoreFile reads a .tagignore file and returns the raw pattern strings.
// Returns nil and no error if the file does not exist.
func ParseIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		patterns = append(patterns, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return patterns, nil
}
