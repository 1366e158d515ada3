package renderer

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	yaml "gopkg.in/yaml.v3"
	"sigs.k8s.io/kustomize/api/krusty"
	"sigs.k8s.io/kustomize/kyaml/filesys"
)

// KustomizeRenderer implements Renderer for Kustomize overlays
type KustomizeRenderer struct {
	opts  *Options
	files map[string][]byte // file name -> content, relative to the overlay root
	mux   sync.RWMutex
}

// NewKustomizeRenderer creates a new KustomizeRenderer
func NewKustomizeRenderer(opts *Options) *KustomizeRenderer {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &KustomizeRenderer{
		opts:  opts,
		files: make(map[string][]byte),
	}
}

// Render builds the kustomization in an in-memory filesystem and returns the
// resulting YAML stream
func (r *KustomizeRenderer) Render(ctx context.Context, folder []byte) (*Result, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	// Create an in-memory filesystem
	fs := filesys.MakeFsInMemory()

	r.mux.RLock()
	defer r.mux.RUnlock()

	// Write all files from the map to the in-memory filesystem
	for name, content := range r.files {
		dir := filepath.Dir("/" + name)
		if err := fs.MkdirAll(dir); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		if err := fs.WriteFile("/"+name, content); err != nil {
			return nil, fmt.Errorf("failed to write file %s: %w", name, err)
		}
	}

	// Create kustomize builder
	k := krusty.MakeKustomizer(
		krusty.MakeDefaultOptions(),
	)

	// Build the resources
	resources, err := k.Run(fs, "/")
	if err != nil {
		return nil, fmt.Errorf("failed to build resources: %w", err)
	}

	yamlData, err := resources.AsYaml()
	if err != nil {
		return nil, fmt.Errorf("failed to convert resources to yaml: %w", err)
	}

	return &Result{
		Name: string(folder),
		Raw:  yamlData,
	}, nil
}

// Validate checks if the input is a kustomization file
func (r *KustomizeRenderer) Validate(input []byte) error {
	var obj map[string]interface{}
	if err := yaml.Unmarshal(input, &obj); err != nil {
		return fmt.Errorf("%w: invalid yaml", ErrInvalidInput)
	}

	// Check if it's a kustomization file
	if kind, ok := obj["kind"].(string); !ok || kind != "Kustomization" {
		return fmt.Errorf("%w: not a kustomization file", ErrInvalidInput)
	}

	return nil
}

// SetOptions configures the renderer with the provided options
func (r *KustomizeRenderer) SetOptions(opts *Options) error {
	if opts == nil {
		return ErrInvalidInput
	}
	r.opts = opts
	return nil
}

// GetOptions returns the current renderer options
func (r *KustomizeRenderer) GetOptions() *Options {
	return r.opts
}

// AddFile adds a file to the renderer's context in a thread-safe manner
func (r *KustomizeRenderer) AddFile(name string, content []byte) error {
	if name == "" {
		return fmt.Errorf("file name cannot be empty")
	}
	if content == nil {
		return fmt.Errorf("file content cannot be nil")
	}
	r.mux.Lock()
	defer r.mux.Unlock()
	r.files[name] = content
	return nil
}
