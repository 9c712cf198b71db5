package project

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// WalkOptions configures Walk.
type WalkOptions struct {
	// Extensions selects files by suffix, e.g. ".java". Empty selects
	// every file.
	Extensions []string

	// Include and Exclude are glob patterns over slash-separated paths
	// relative to the root. See Filter.
	Include []string
	Exclude []string

	// Timeout bounds the walk. Zero disables it.
	Timeout time.Duration
}

// Walk returns the slash-separated paths, relative to root, of every
// selected file below root, sorted. Hidden directories are skipped.
// When the timeout or ctx expires the walk stops with an error
// wrapping the context error.
func Walk(ctx context.Context, root string, opts WalkOptions) ([]string, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("walking %s: %w", root, ctxErr)
		}
		if walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			name := d.Name()
			if rel != "." && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if !hasExtension(d.Name(), opts.Extensions) {
			return nil
		}
		if !Filter(rel, opts.Include, opts.Exclude) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(files)
	return files, nil
}

func hasExtension(name string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
