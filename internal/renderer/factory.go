package renderer

import (
	"os"
	"path/filepath"
)

// RendererType represents the type of renderer
type RendererType string

const (
	// RendererTypeYAML represents a plain YAML renderer
	RendererTypeYAML RendererType = "yaml"
	// RendererTypeHelm represents a Helm chart renderer
	RendererTypeHelm RendererType = "helm"
	// RendererTypeKustomize represents a Kustomize overlay renderer
	RendererTypeKustomize RendererType = "kustomize"
)

// DetectRendererType determines which renderer to use based on the directory
// contents
func DetectRendererType(dirPath string) RendererType {
	// Check for Chart.yaml (Helm)
	if _, err := os.Stat(filepath.Join(dirPath, "Chart.yaml")); err == nil {
		return RendererTypeHelm
	}

	// Check for kustomization.yaml (Kustomize)
	if _, err := os.Stat(filepath.Join(dirPath, "kustomization.yaml")); err == nil {
		return RendererTypeKustomize
	}

	// Default to YAML renderer
	return RendererTypeYAML
}

// RendererFactory creates renderers based on type
type RendererFactory struct {
	defaultOpts *Options
}

// NewRendererFactory creates a new RendererFactory with default options
func NewRendererFactory(opts *Options) *RendererFactory {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &RendererFactory{defaultOpts: opts}
}

// GetRenderer returns a renderer based on the given type
func (f *RendererFactory) GetRenderer(typ RendererType) (Renderer, error) {
	switch typ {
	case RendererTypeYAML:
		r := NewYAMLRenderer()
		if err := r.SetOptions(f.defaultOpts); err != nil {
			return nil, err
		}
		return r, nil
	case RendererTypeHelm:
		return NewHelmRenderer(f.defaultOpts), nil
	case RendererTypeKustomize:
		return NewKustomizeRenderer(f.defaultOpts), nil
	default:
		return nil, ErrInvalidFormat
	}
}
