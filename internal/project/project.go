// Package project provides Project decorators and source file
// discovery shared by the model builders.
package project

import "github.com/unbound-force/testnames/internal/model"

// filtered is a Project view without framework extension classes.
type filtered struct {
	inner model.Project
}

// WithoutFrameworkExtensions returns a view of p whose TestClasses
// omit every class marked as a framework extension. Production classes
// pass through unchanged and class order is preserved.
func WithoutFrameworkExtensions(p model.Project) model.Project {
	return filtered{inner: p}
}

func (f filtered) ProductionClasses() []model.ProductionClass {
	return f.inner.ProductionClasses()
}

func (f filtered) TestClasses() []model.TestClass {
	all := f.inner.TestClasses()
	out := make([]model.TestClass, 0, len(all))
	for _, class := range all {
		if class.FrameworkExtension {
			continue
		}
		out = append(out, class)
	}
	return out
}
