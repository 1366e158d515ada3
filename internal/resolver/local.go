package resolver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/k8sec/kubegate/internal/renderer"
)

// LocalYAMLResolver implements SourceResolver for local YAML files
type LocalYAMLResolver struct {
	source string
	opts   *Options
}

// NewLocalYAMLResolver creates a new LocalYAMLResolver
func NewLocalYAMLResolver(source string, opts *Options) *LocalYAMLResolver {
	return &LocalYAMLResolver{
		source: source,
		opts:   opts,
	}
}

// CanResolve checks if this resolver can handle the given source
func (r *LocalYAMLResolver) CanResolve(source string) bool {
	// Check if file exists and has a YAML extension
	if _, err := os.Stat(source); err != nil {
		return false
	}

	ext := strings.ToLower(filepath.Ext(source))
	return ext == ".yaml" || ext == ".yml"
}

// Resolve reads the file and returns it as a single payload
func (r *LocalYAMLResolver) Resolve(ctx context.Context) ([]Payload, *Metadata, error) {
	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	default:
	}

	info, err := os.Stat(r.source)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, nil, fmt.Errorf("not a regular file: %s", r.source)
	}

	content, err := os.ReadFile(r.source)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}

	meta := &Metadata{
		Type:         SourceTypeFile,
		RendererType: renderer.RendererTypeYAML,
		Path:         r.source,
	}
	return []Payload{{Name: r.source, Raw: content}}, meta, nil
}
