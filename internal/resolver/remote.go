package resolver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/k8sec/kubegate/internal/renderer"
)

// maxRemoteSize caps remote manifest downloads at 10 MiB
const maxRemoteSize = 10 << 20

// RemoteYAMLResolver implements SourceResolver for YAML files served over
// HTTP(S)
type RemoteYAMLResolver struct {
	source string
	opts   *Options
	client *http.Client
}

// NewRemoteYAMLResolver creates a new RemoteYAMLResolver
func NewRemoteYAMLResolver(source string, opts *Options) *RemoteYAMLResolver {
	client := opts.HTTPClient
	if client == nil {
		client = defaultHTTPClient
	}
	return &RemoteYAMLResolver{
		source: source,
		opts:   opts,
		client: client,
	}
}

// CanResolve checks if this resolver can handle the given source
func (r *RemoteYAMLResolver) CanResolve(source string) bool {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		return false
	}
	return strings.HasSuffix(source, ".yaml") || strings.HasSuffix(source, ".yml")
}

// Resolve downloads the file and returns it as a single payload
func (r *RemoteYAMLResolver) Resolve(ctx context.Context) ([]Payload, *Metadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.source, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch %s: %w", r.source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, r.source)
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteSize))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// Sanity-check the download before handing it to the loader
	if err := renderer.NewYAMLRenderer().Validate(content); err != nil {
		return nil, nil, fmt.Errorf("remote content is not YAML: %w", err)
	}

	meta := &Metadata{
		Type:         SourceTypeRemote,
		RendererType: renderer.RendererTypeYAML,
		Path:         r.source,
	}
	return []Payload{{Name: r.source, Raw: content}}, meta, nil
}
