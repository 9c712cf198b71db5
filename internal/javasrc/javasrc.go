// Package javasrc builds the test model of a Java source tree with the
// tree-sitter Java grammar.
package javasrc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/unbound-force/testnames/internal/logging"
	"github.com/unbound-force/testnames/internal/model"
	"github.com/unbound-force/testnames/internal/project"
)

// Options configures LoadProject.
type Options struct {
	// Include and Exclude filter the discovered files. See
	// project.Filter.
	Include []string
	Exclude []string

	// Timeout bounds file discovery. Zero disables it.
	Timeout time.Duration

	// Namespaces mark framework extension classes. Nil means
	// model.DefaultExtensionNamespaces.
	Namespaces []string

	// Jobs bounds concurrent parsing. Values below 1 mean
	// runtime.NumCPU().
	Jobs int
}

// LoadProject discovers and parses every .java file below root. Class
// paths are relative to root and classes are ordered by path.
func LoadProject(ctx context.Context, root string, opts Options) (*model.StaticProject, error) {
	namespaces := opts.Namespaces
	if namespaces == nil {
		namespaces = model.DefaultExtensionNamespaces
	}

	files, err := project.Walk(ctx, root, project.WalkOptions{
		Extensions: []string{".java"},
		Include:    opts.Include,
		Exclude:    opts.Exclude,
		Timeout:    opts.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("discovering java sources: %w", err)
	}
	logging.FromContext(ctx).Debug("discovered java sources",
		logging.FieldPath, root, "files", len(files))

	jobs := opts.Jobs
	if jobs < 1 {
		jobs = runtime.NumCPU()
	}
	parsed := make([]*File, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, rel := range files {
		g.Go(func() error {
			src, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
			if err != nil {
				return fmt.Errorf("reading %s: %w", rel, err)
			}
			parser := NewParser()
			defer parser.Close()

			f, err := Parse(gctx, parser, rel, src, namespaces)
			if err != nil {
				return err
			}
			parsed[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p := &model.StaticProject{}
	for _, f := range parsed {
		p.Tests = append(p.Tests, f.Tests...)
		p.Production = append(p.Production, f.Production...)
	}
	return p, nil
}
