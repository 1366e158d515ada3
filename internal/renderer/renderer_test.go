package renderer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYAMLRenderer(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "valid pod",
			input:   "kind: Pod\nspec:\n  containers:\n    - name: app\n",
			wantErr: false,
		},
		{
			name:    "multi document",
			input:   "kind: Pod\n---\nkind: Service\n",
			wantErr: false,
		},
		{
			name:    "malformed document still passes through",
			input:   "kind: Pod\n  bad: [\n",
			wantErr: false,
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewYAMLRenderer()
			result, err := r.Render(ctx, []byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, string(result.Raw))
		})
	}
}

func TestHelmRenderer(t *testing.T) {
	r := NewHelmRenderer(nil)
	require.NoError(t, r.AddFile("Chart.yaml", []byte("apiVersion: v2\nname: web\nversion: 0.1.0\n")))
	require.NoError(t, r.AddFile("values.yaml", []byte("uid: 0\n")))
	require.NoError(t, r.AddFile("templates/pod.yaml", []byte(`kind: Pod
metadata:
  name: {{ .Chart.Name }}
spec:
  containers:
    - name: app
      securityContext:
        runAsUser: {{ .Values.uid }}
`)))

	result, err := r.Render(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "web", result.Name)
	assert.Contains(t, string(result.Raw), "name: web")
	assert.Contains(t, string(result.Raw), "runAsUser: 0")
}

func TestHelmRendererValuesOverride(t *testing.T) {
	valuesPath := filepath.Join(t.TempDir(), "values.yaml")
	require.NoError(t, os.WriteFile(valuesPath, []byte("uid: 1000\n"), 0o644))

	r := NewHelmRenderer(&Options{Values: valuesPath})
	require.NoError(t, r.AddFile("Chart.yaml", []byte("apiVersion: v2\nname: web\nversion: 0.1.0\n")))
	require.NoError(t, r.AddFile("values.yaml", []byte("uid: 0\n")))
	require.NoError(t, r.AddFile("templates/pod.yaml", []byte(`kind: Pod
spec:
  containers:
    - name: app
      securityContext:
        runAsUser: {{ .Values.uid }}
`)))

	result, err := r.Render(context.Background(), nil)
	require.NoError(t, err)
	assert.Contains(t, string(result.Raw), "runAsUser: 1000")
}

func TestHelmRendererNoInput(t *testing.T) {
	r := NewHelmRenderer(nil)
	_, err := r.Render(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestKustomizeRenderer(t *testing.T) {
	r := NewKustomizeRenderer(nil)
	require.NoError(t, r.AddFile("kustomization.yaml", []byte("resources:\n  - pod.yaml\n")))
	require.NoError(t, r.AddFile("pod.yaml", []byte(`apiVersion: v1
kind: Pod
metadata:
  name: web
spec:
  containers:
    - name: app
      securityContext:
        runAsUser: 0
`)))

	result, err := r.Render(context.Background(), []byte("overlay"))
	require.NoError(t, err)
	assert.Equal(t, "overlay", result.Name)
	assert.Contains(t, string(result.Raw), "runAsUser: 0")
}

func TestKustomizeValidate(t *testing.T) {
	r := NewKustomizeRenderer(nil)
	assert.NoError(t, r.Validate([]byte("kind: Kustomization\nresources: []\n")))
	assert.Error(t, r.Validate([]byte("kind: Pod\n")))
	assert.Error(t, r.Validate([]byte(":")))
}

func TestDetectRendererType(t *testing.T) {
	helmDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(helmDir, "Chart.yaml"), []byte("name: x"), 0o644))

	kustomizeDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(kustomizeDir, "kustomization.yaml"), []byte("resources: []"), 0o644))

	plainDir := t.TempDir()

	assert.Equal(t, RendererTypeHelm, DetectRendererType(helmDir))
	assert.Equal(t, RendererTypeKustomize, DetectRendererType(kustomizeDir))
	assert.Equal(t, RendererTypeYAML, DetectRendererType(plainDir))
}

func TestRendererFactory(t *testing.T) {
	f := NewRendererFactory(nil)

	for _, typ := range []RendererType{RendererTypeYAML, RendererTypeHelm, RendererTypeKustomize} {
		r, err := f.GetRenderer(typ)
		assert.NoError(t, err)
		assert.NotNil(t, r)
	}

	_, err := f.GetRenderer(RendererType("jsonnet"))
	assert.ErrorIs(t, err, ErrInvalidFormat)
}
