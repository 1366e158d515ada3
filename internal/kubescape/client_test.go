package kubescape

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewExecClientDefaults(t *testing.T) {
	c := NewExecClient(nil)
	assert.Equal(t, "kubescape", c.opts.Binary)
	assert.Equal(t, "NSA", c.opts.Framework)

	c = NewExecClient(&Options{Framework: "MITRE"})
	assert.Equal(t, "kubescape", c.opts.Binary, "empty binary falls back to default")
	assert.Equal(t, "MITRE", c.opts.Framework)
}

func TestScanToolUnavailable(t *testing.T) {
	c := NewExecClient(&Options{Binary: "definitely-not-a-real-scanner-binary"})
	_, _, err := c.Scan(context.Background(), []string{"pod.yaml"})
	assert.ErrorIs(t, err, ErrToolUnavailable)
}
