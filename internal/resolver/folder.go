package resolver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/k8sec/kubegate/internal/renderer"
)

// FolderResolver implements SourceResolver for directories. Plain manifest
// directories resolve to one payload per YAML file; Helm charts and
// Kustomize overlays are rendered first and resolve to a single payload.
type FolderResolver struct {
	source string
	opts   *Options
}

// NewFolderResolver creates a new FolderResolver
func NewFolderResolver(source string, opts *Options) *FolderResolver {
	return &FolderResolver{
		source: source,
		opts:   opts,
	}
}

// CanResolve checks if this resolver can handle the given source
func (r *FolderResolver) CanResolve(source string) bool {
	info, err := os.Stat(source)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// Resolve processes the source directory and returns its payloads
func (r *FolderResolver) Resolve(ctx context.Context) ([]Payload, *Metadata, error) {
	info, err := os.Stat(r.source)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("not a directory: %s", r.source)
	}

	rendererType := renderer.DetectRendererType(r.source)
	meta := &Metadata{
		Type:         SourceTypeFolder,
		RendererType: rendererType,
		Path:         r.source,
	}

	if rendererType == renderer.RendererTypeHelm || rendererType == renderer.RendererTypeKustomize {
		payloads, err := r.resolveRendered(ctx, rendererType)
		return payloads, meta, err
	}

	payloads, err := r.resolvePlain()
	return payloads, meta, err
}

// resolvePlain walks the directory collecting YAML files as-is
func (r *FolderResolver) resolvePlain() ([]Payload, error) {
	var payloads []Payload

	err := filepath.WalkDir(r.source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !r.opts.FollowSymlinks && d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		payloads = append(payloads, Payload{Name: path, Raw: content})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	return payloads, nil
}

// resolveRendered feeds every file in the directory to the detected renderer
// and returns the rendered stream as a single payload
func (r *FolderResolver) resolveRendered(ctx context.Context, typ renderer.RendererType) ([]Payload, error) {
	factory := renderer.NewRendererFactory(&renderer.Options{Values: r.opts.Values})
	rend, err := factory.GetRenderer(typ)
	if err != nil {
		return nil, fmt.Errorf("failed to get renderer: %w", err)
	}

	err = filepath.WalkDir(r.source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !r.opts.FollowSymlinks && d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		rel, err := filepath.Rel(r.source, path)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		return rend.AddFile(rel, content)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect files: %w", err)
	}

	result, err := rend.Render(ctx, []byte(r.source))
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", r.source, err)
	}

	name := result.Name
	if name == "" {
		name = r.source
	}
	return []Payload{{Name: name, Raw: result.Raw}}, nil
}
