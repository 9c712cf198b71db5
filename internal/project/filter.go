package project

import (
	"path/filepath"
	"strings"
)

// Filter reports whether the slash-separated relative path rel is
// selected by the include and exclude patterns.
//
//  1. When include patterns are set, rel must match at least one.
//  2. When rel matches any exclude pattern it is skipped.
//  3. Otherwise it is selected.
func Filter(rel string, include, exclude []string) bool {
	rel = filepath.ToSlash(rel)

	if len(include) > 0 {
		matched := false
		for _, pattern := range include {
			if matchGlob(pattern, rel) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, pattern := range exclude {
		if matchGlob(pattern, rel) {
			return false
		}
	}
	return true
}

// matchGlob matches rel against a filepath.Match pattern. A trailing
// "/**" matches everything below a directory and a leading "**/"
// matches the rest of the pattern at any depth. Patterns without a
// separator also match the base name.
func matchGlob(pattern, rel string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/**"); ok {
		if rel == prefix || strings.HasPrefix(rel, prefix+"/") {
			return true
		}
		// "**/testdata/**" style: match the directory at any depth.
		if inner, ok := strings.CutPrefix(prefix, "**/"); ok {
			return rel == inner || strings.HasPrefix(rel, inner+"/") ||
				strings.Contains(rel, "/"+inner+"/")
		}
		return false
	}

	if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
		parts := strings.Split(rel, "/")
		for i := range parts {
			if m, err := filepath.Match(rest, strings.Join(parts[i:], "/")); err == nil && m {
				return true
			}
		}
		return false
	}

	if matched, err := filepath.Match(pattern, rel); err == nil && matched {
		return true
	}

	if !strings.Contains(pattern, "/") {
		matched, err := filepath.Match(pattern, filepath.Base(rel))
		return err == nil && matched
	}
	return false
}
