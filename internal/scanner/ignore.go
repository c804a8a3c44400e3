package scanner

import (
	"path"
	"strings"
)

// IgnorePattern represents a single gitignore-style pattern.
type IgnorePattern struct {
	pattern     string // Original pattern
	isNegation  bool   // True if pattern starts with !
	isDirectory bool   // True if pattern ends with /
	isAnchored  bool   // True if pattern contains a slash before its end
	segments    []string
}

// ParseIgnorePattern parses a gitignore-style pattern string.
func ParseIgnorePattern(pattern string) IgnorePattern {
	p := IgnorePattern{pattern: pattern}

	if strings.HasPrefix(pattern, "!") {
		p.isNegation = true
		pattern = pattern[1:]
	}
	if strings.HasSuffix(pattern, "/") {
		p.isDirectory = true
		pattern = strings.TrimSuffix(pattern, "/")
	}
	// A slash at the start or in the middle anchors the pattern to the
	// directory holding the ignore file.
	if strings.Contains(pattern, "/") {
		p.isAnchored = true
		pattern = strings.TrimPrefix(pattern, "/")
	}

	p.segments = strings.Split(pattern, "/")
	return p
}

// Match reports whether relPath, relative to the ignore file's directory,
// matches the pattern. A pattern matching a directory also matches
// everything below it.
func (p IgnorePattern) Match(relPath string, isDir bool) bool {
	segs := strings.Split(relPath, "/")

	// Try the path itself, then each of its parent directories.
	for n := len(segs); n >= 1; n-- {
		dir := n < len(segs) || isDir
		if p.isDirectory && !dir {
			continue
		}
		if p.matchPrefix(segs[:n]) {
			return true
		}
	}
	return false
}

// IsNegation returns true if this pattern is a negation pattern.
func (p IgnorePattern) IsNegation() bool {
	return p.isNegation
}

// String returns the pattern as written.
func (p IgnorePattern) String() string {
	return p.pattern
}

func (p IgnorePattern) matchPrefix(segs []string) bool {
	if p.isAnchored {
		return matchSegments(p.segments, segs)
	}
	// Unanchored patterns match at any depth.
	for start := 0; start < len(segs); start++ {
		if matchSegments(p.segments, segs[start:]) {
			return true
		}
	}
	return false
}

// matchSegments matches pattern segments against path segments, with **
// standing for any number of directories.
func matchSegments(pattern, segs []string) bool {
	if len(pattern) == 0 {
		return len(segs) == 0
	}
	if pattern[0] == "**" {
		for i := 0; i <= len(segs); i++ {
			if matchSegments(pattern[1:], segs[i:]) {
				return true
			}
		}
		return false
	}
	if len(segs) == 0 {
		return false
	}
	ok, err := path.Match(pattern[0], segs[0])
	if err != nil || !ok {
		return false
	}
	return matchSegments(pattern[1:], segs[1:])
}
