// Package resolver turns a scan source (a local YAML file, a directory of
// plain manifests, a Helm chart or Kustomize overlay, or a remote URL) into
// named raw-YAML payloads ready for the loader.
package resolver

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/k8sec/kubegate/internal/renderer"
)

// SourceType identifies what kind of source was resolved
type SourceType int

const (
	SourceTypeFile SourceType = iota
	SourceTypeFolder
	SourceTypeRemote
)

// String returns the string representation of a SourceType
func (st SourceType) String() string {
	switch st {
	case SourceTypeFile:
		return "file"
	case SourceTypeRemote:
		return "remote"
	case SourceTypeFolder:
		return "folder"
	default:
		return "unknown"
	}
}

// Options contains configuration options for resolvers
type Options struct {
	// FollowSymlinks determines if symlinks are followed during directory
	// traversal
	FollowSymlinks bool
	// Values is a path to a values.yaml file used for rendering helm charts
	Values string
	// HTTPClient fetches remote sources; defaults to a 30s-timeout client
	HTTPClient *http.Client
}

// DefaultOptions returns a new Options with default values
func DefaultOptions() *Options {
	return &Options{
		HTTPClient: defaultHTTPClient,
	}
}

var defaultHTTPClient = &http.Client{Timeout: 30 * time.Second}

// Payload is one named raw-YAML stream produced by a resolver
type Payload struct {
	// Name is the reporting path of the payload (file path, URL, or
	// rendered source name)
	Name string
	// Raw is the YAML content
	Raw []byte
}

// Metadata describes the resolved source
type Metadata struct {
	Type         SourceType
	RendererType renderer.RendererType
	Path         string
}

// SourceResolver defines the interface that all source resolvers must
// implement
type SourceResolver interface {
	// CanResolve checks if this resolver can handle the given source
	CanResolve(source string) bool

	// Resolve processes the source and returns its payloads
	Resolve(ctx context.Context) ([]Payload, *Metadata, error)
}

// ResolverFactory creates the appropriate resolver for a given source
func ResolverFactory(source string, opts *Options) (SourceResolver, error) {
	if source == "" {
		return nil, fmt.Errorf("empty source")
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = defaultHTTPClient
	}

	// Try to parse as URL first
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		ext := strings.ToLower(filepath.Ext(source))
		if ext != ".yaml" && ext != ".yml" {
			return nil, fmt.Errorf("URL does not point to a YAML file: %s", source)
		}
		return NewRemoteYAMLResolver(source, opts), nil
	}

	// Check if it's a directory
	info, err := os.Stat(source)
	if err == nil && info.IsDir() {
		return NewFolderResolver(source, opts), nil
	}

	// Try local YAML resolver
	r := NewLocalYAMLResolver(source, opts)
	if r.CanResolve(source) {
		return r, nil
	}

	return nil, fmt.Errorf("no suitable resolver found for source: %s", source)
}
