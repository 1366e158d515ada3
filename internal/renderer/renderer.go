// Package renderer turns scan sources that are not plain manifests (Helm
// charts and Kustomize overlays) into rendered YAML streams the loader and
// detector can inspect.
package renderer

import (
	"context"
	"fmt"
)

// Options contains configuration options for renderers
type Options struct {
	// Values is a path to a values.yaml file used for rendering a helm chart
	Values string
}

// DefaultOptions returns a new Options with default values
func DefaultOptions() *Options {
	return &Options{
		Values: "",
	}
}

// Result contains the output of a render operation
type Result struct {
	// Name identifies the rendered source (chart name, directory)
	Name string
	// Raw is the rendered multi-document YAML stream
	Raw []byte
	// Warnings holds non-fatal problems encountered while rendering
	Warnings []string
}

// Error types for the renderer package
var (
	ErrInvalidInput  = fmt.Errorf("invalid input")
	ErrInvalidFormat = fmt.Errorf("invalid format")
)

// Renderer defines the interface for manifest renderers. Implementations
// convert input data into a rendered YAML stream that can be analyzed.
type Renderer interface {
	// Render processes the input data and returns the rendered YAML.
	// The context can be used to cancel long-running render operations.
	Render(ctx context.Context, input []byte) (*Result, error)

	// Validate checks if the input can be handled by this renderer
	Validate(input []byte) error

	// SetOptions configures the renderer with the provided options
	SetOptions(opts *Options) error

	// GetOptions returns the current renderer options
	GetOptions() *Options

	// AddFile adds a file to the renderer's context; renderers that work on
	// directory trees (Helm, Kustomize) receive every file this way
	AddFile(name string, content []byte) error
}
