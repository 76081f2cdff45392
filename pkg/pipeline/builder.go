package pipeline

import (
	"errors"
	"fmt"
)

// Builder declares a Pipeline step by step.
type Builder struct {
	name     string
	start    string
	order    []string
	steps    map[string]StepFunc
	maxSteps int
	errs     []error
}

// New creates a builder for a named pipeline.
func New(name string) *Builder {
	return &Builder{
		name:     name,
		steps:    make(map[string]StepFunc),
		maxSteps: DefaultMaxSteps,
	}
}

// Step declares a step. Declaring the same id twice is reported by Build.
func (b *Builder) Step(id string, fn StepFunc) *Builder {
	if _, exists := b.steps[id]; exists {
		b.errs = append(b.errs, fmt.Errorf("duplicate step %q", id))
		return b
	}
	if fn == nil {
		b.errs = append(b.errs, fmt.Errorf("step %q has no body", id))
		return b
	}
	b.steps[id] = fn
	b.order = append(b.order, id)
	return b
}

// Start sets the start step.
func (b *Builder) Start(id string) *Builder {
	b.start = id
	return b
}

// MaxSteps overrides DefaultMaxSteps.
func (b *Builder) MaxSteps(n int) *Builder {
	b.maxSteps = n
	return b
}

// Build validates the declaration and returns the Pipeline.
func (b *Builder) Build() (*Pipeline, error) {
	errs := append([]error(nil), b.errs...)
	if b.name == "" {
		errs = append(errs, errors.New("pipeline name is required"))
	}
	if len(b.order) == 0 {
		errs = append(errs, errors.New("pipeline has no steps"))
	}
	start := b.start
	if start == "" && len(b.order) > 0 {
		start = b.order[0]
	}
	if start != "" {
		if _, ok := b.steps[start]; !ok {
			errs = append(errs, fmt.Errorf("start step %q does not exist", start))
		}
	}
	if b.maxSteps <= 0 {
		errs = append(errs, fmt.Errorf("max steps must be positive, got %d", b.maxSteps))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", b.name, err)
	}

	steps := make(map[string]StepFunc, len(b.steps))
	for k, v := range b.steps {
		steps[k] = v
	}
	return &Pipeline{name: b.name, start: start, steps: steps, maxSteps: b.maxSteps}, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Pipeline {
	p, err := b.Build()
	if err != nil {
		panic(err)
	}
	return p
}
