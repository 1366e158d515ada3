package renderer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/chartutil"
	"helm.sh/helm/v3/pkg/engine"
)

// HelmRenderer implements Renderer for Helm charts. Chart files are supplied
// via AddFile (paths relative to the chart root); alternatively Render
// accepts a packaged .tgz archive as input.
type HelmRenderer struct {
	opts  *Options
	files map[string][]byte
	mux   sync.RWMutex
}

// NewHelmRenderer creates a new HelmRenderer
func NewHelmRenderer(opts *Options) *HelmRenderer {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HelmRenderer{
		opts:  opts,
		files: make(map[string][]byte),
	}
}

// Render loads the chart, renders its templates with the configured values
// and returns the concatenated YAML stream
func (r *HelmRenderer) Render(ctx context.Context, input []byte) (*Result, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	chrt, err := r.loadChart(input)
	if err != nil {
		return nil, err
	}

	values := chrt.Values
	if values == nil {
		values = make(map[string]interface{})
	}

	// An explicit values file overrides the chart defaults
	if r.opts.Values != "" {
		overrides, err := chartutil.ReadValuesFile(r.opts.Values)
		if err != nil {
			return nil, fmt.Errorf("failed to read values file %s: %w", r.opts.Values, err)
		}
		values = chartutil.CoalesceTables(overrides.AsMap(), values)
	}

	options := chartutil.ReleaseOptions{
		Name:      chrt.Name(),
		Namespace: "default",
		Revision:  1,
		IsInstall: true,
	}

	valuesToRender, err := chartutil.ToRenderValues(chrt, values, options, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart values: %w", err)
	}

	eng := engine.Engine{
		LintMode: false,
		Strict:   true,
	}

	rendered, err := eng.Render(chrt, valuesToRender)
	if err != nil {
		return nil, fmt.Errorf("failed to render templates: %w", err)
	}

	result := &Result{
		Name:     chrt.Name(),
		Warnings: make([]string, 0),
	}

	// Deterministic template order
	names := make([]string, 0, len(rendered))
	for name := range rendered {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	for _, name := range names {
		content := strings.TrimSpace(rendered[name])
		if content == "" {
			continue
		}
		// Skip helper output like NOTES.txt
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n---\n")
		}
		buf.WriteString(content)
		buf.WriteString("\n")
	}

	result.Raw = buf.Bytes()
	return result, nil
}

// loadChart builds the chart from AddFile contents, falling back to treating
// input as a packaged chart archive
func (r *HelmRenderer) loadChart(input []byte) (*chart.Chart, error) {
	r.mux.RLock()
	defer r.mux.RUnlock()

	if len(r.files) > 0 {
		buffered := make([]*loader.BufferedFile, 0, len(r.files))
		for name, content := range r.files {
			buffered = append(buffered, &loader.BufferedFile{Name: name, Data: content})
		}
		chrt, err := loader.LoadFiles(buffered)
		if err != nil {
			return nil, fmt.Errorf("failed to load chart files: %w", err)
		}
		return chrt, nil
	}

	if len(input) == 0 {
		return nil, fmt.Errorf("%w: no chart files added and no archive provided", ErrInvalidInput)
	}

	chrt, err := loader.LoadArchive(bytes.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("invalid helm chart archive: %w", err)
	}
	return chrt, nil
}

// Validate checks if the input is a valid packaged Helm chart
func (r *HelmRenderer) Validate(input []byte) error {
	// Create a temporary directory for the chart
	tempDir, err := os.MkdirTemp("", "helm-validate-*")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	// Write the input to a temporary file
	chartPath := filepath.Join(tempDir, "chart.tgz")
	if err := os.WriteFile(chartPath, input, 0644); err != nil {
		return fmt.Errorf("failed to write chart file: %w", err)
	}

	// Try to load the chart
	if _, err = loader.Load(chartPath); err != nil {
		return fmt.Errorf("invalid helm chart: %w", err)
	}

	return nil
}

// SetOptions configures the renderer with the provided options
func (r *HelmRenderer) SetOptions(opts *Options) error {
	if opts == nil {
		return ErrInvalidInput
	}
	r.opts = opts
	return nil
}

// GetOptions returns the current renderer options
func (r *HelmRenderer) GetOptions() *Options {
	return r.opts
}

// AddFile adds a chart file, with name relative to the chart root
func (r *HelmRenderer) AddFile(name string, content []byte) error {
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
