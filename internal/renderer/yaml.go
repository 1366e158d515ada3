package renderer

import (
	"context"
	"fmt"
	"io"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// YAMLRenderer implements the Renderer interface for plain YAML files. It is
// a passthrough: the input stream is already what the loader needs, so
// Render only checks that at least one document decodes.
type YAMLRenderer struct {
	opts *Options
}

// NewYAMLRenderer creates a new YAMLRenderer with default options
func NewYAMLRenderer() *YAMLRenderer {
	return &YAMLRenderer{
		opts: DefaultOptions(),
	}
}

// Render returns the input unchanged after validation
func (r *YAMLRenderer) Render(ctx context.Context, input []byte) (*Result, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := r.Validate(input); err != nil {
		return nil, err
	}

	return &Result{Raw: input}, nil
}

// Validate checks if the input is non-empty YAML with at least one document
func (r *YAMLRenderer) Validate(input []byte) error {
	if len(input) == 0 {
		return ErrInvalidInput
	}

	decoder := yaml.NewDecoder(strings.NewReader(string(input)))
	docCount := 0

	for {
		var obj interface{}
		err := decoder.Decode(&obj)
		if err == io.EOF {
			break
		}
		if err != nil {
			// A malformed document is still scannable content: the loader
			// reports it as a parse-error finding rather than dropping the
			// file, so it passes validation here as long as something was
			// present.
			docCount++
			break
		}
		docCount++
	}

	if docCount == 0 {
		return fmt.Errorf("%w: no YAML documents found", ErrInvalidFormat)
	}
	return nil
}

// SetOptions configures the renderer with the provided options
func (r *YAMLRenderer) SetOptions(opts *Options) error {
	if opts == nil {
		return ErrInvalidInput
	}
	r.opts = opts
	return nil
}

// GetOptions returns the current renderer options
func (r *YAMLRenderer) GetOptions() *Options {
	return r.opts
}

// AddFile adds a file to the renderer's context
func (r *YAMLRenderer) AddFile(name string, content []byte) error {
	// YAMLRenderer doesn't need additional files
	return nil
}
