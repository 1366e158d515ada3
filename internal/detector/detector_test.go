package detector

import (
	"strings"
	"testing"

	"github.com/k8sec/kubegate/internal/loader"
	"github.com/k8sec/kubegate/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func detect(t *testing.T, manifest string) []types.Finding {
	t.Helper()
	return Detect("test.yaml", loader.Load(strings.NewReader(manifest)))
}

func TestDetectClassification(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		want     []types.Classification
	}{
		{
			name: "explicit root",
			manifest: `kind: Pod
spec:
  containers:
    - name: app
      securityContext:
        runAsUser: 0
`,
			want: []types.Classification{types.ExplicitRoot},
		},
		{
			name: "implicit root via empty securityContext",
			manifest: `kind: Pod
spec:
  containers:
    - name: app
      securityContext: {}
`,
			want: []types.Classification{types.ImplicitRoot},
		},
		{
			name: "implicit root with no securityContext at all",
			manifest: `kind: Pod
spec:
  containers:
    - name: app
      image: nginx
`,
			want: []types.Classification{types.ImplicitRoot},
		},
		{
			name: "non-root user reported as clean",
			manifest: `kind: Pod
spec:
  containers:
    - name: app
      securityContext:
        runAsUser: 1000
`,
			want: nil,
		},
		{
			name: "quoted runAsUser zero is not an integer zero",
			manifest: `kind: Pod
spec:
  containers:
    - name: app
      securityContext:
        runAsUser: "0"
`,
			want: nil,
		},
		{
			name: "pod level securityContext is not consulted",
			manifest: `kind: Pod
spec:
  securityContext:
    runAsUser: 1000
  containers:
    - name: app
`,
			want: []types.Classification{types.ImplicitRoot},
		},
		{
			name: "mixed containers",
			manifest: `kind: Pod
spec:
  containers:
    - name: root-one
      securityContext:
        runAsUser: 0
    - name: clean
      securityContext:
        runAsUser: 1000
    - name: root-two
`,
			want: []types.Classification{types.ExplicitRoot, types.ImplicitRoot},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := detect(t, tt.manifest)
			require.Len(t, findings, len(tt.want))
			for i, want := range tt.want {
				assert.Equal(t, want, findings[i].Classification)
			}
		})
	}
}

func TestDetectDeploymentTemplate(t *testing.T) {
	manifest := `apiVersion: apps/v1
kind: Deployment
metadata:
  name: web
spec:
  replicas: 2
  template:
    spec:
      containers:
        - name: app
          securityContext:
            runAsUser: 0
`
	findings := detect(t, manifest)
	require.Len(t, findings, 1)
	assert.Equal(t, types.ExplicitRoot, findings[0].Classification)
	assert.Equal(t, "Deployment/web", findings[0].Resource)
	assert.Equal(t, "app", findings[0].Container)
	// line of the container mapping, not the document
	assert.Equal(t, 10, findings[0].Line)
}

func TestDetectCronJobTemplate(t *testing.T) {
	manifest := `kind: CronJob
metadata:
  name: nightly
spec:
  jobTemplate:
    spec:
      template:
        spec:
          containers:
            - name: job
`
	findings := detect(t, manifest)
	require.Len(t, findings, 1)
	assert.Equal(t, types.ImplicitRoot, findings[0].Classification)
	assert.Equal(t, "CronJob/nightly", findings[0].Resource)
}

func TestDetectInitContainers(t *testing.T) {
	manifest := `kind: Pod
spec:
  containers:
    - name: app
      securityContext:
        runAsUser: 1000
  initContainers:
    - name: setup
      securityContext:
        runAsUser: 0
`
	findings := detect(t, manifest)
	require.Len(t, findings, 1)
	assert.Equal(t, "setup", findings[0].Container)
	assert.Equal(t, types.ExplicitRoot, findings[0].Classification)
}

func TestDetectUnnamedContainer(t *testing.T) {
	manifest := `kind: Pod
spec:
  containers:
    - image: nginx
`
	findings := detect(t, manifest)
	require.Len(t, findings, 1)
	assert.Equal(t, "<unnamed>", findings[0].Container)
}

func TestDetectSkipsNonPodDocuments(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
	}{
		{"spec without containers", "kind: Service\nspec:\n  ports:\n    - port: 80\n"},
		{"no spec at all", "kind: ConfigMap\ndata:\n  key: value\n"},
		{"scalar document", "just text\n"},
		{"empty input", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, detect(t, tt.manifest))
		})
	}
}

func TestDetectParseError(t *testing.T) {
	manifest := "kind: Pod\n  bad: [\n"
	findings := detect(t, manifest)
	require.Len(t, findings, 1)
	assert.Equal(t, types.ParseFailure, findings[0].Classification)
	assert.Equal(t, 1, findings[0].Line)
	assert.Contains(t, findings[0].Message, "invalid YAML")
}

func TestDetectMultiDocumentOrderingIsStable(t *testing.T) {
	manifest := `kind: Pod
metadata:
  name: one
spec:
  containers:
    - name: a
    - name: b
---
kind: Pod
metadata:
  name: two
spec:
  containers:
    - name: c
`
	first := detect(t, manifest)
	second := detect(t, manifest)
	require.Equal(t, first, second)

	require.Len(t, first, 3)
	assert.Equal(t, "a", first[0].Container)
	assert.Equal(t, "b", first[1].Container)
	assert.Equal(t, "c", first[2].Container)
}

func TestDetectContainerLineAttribution(t *testing.T) {
	manifest := `kind: Pod
metadata:
  name: web
spec:
  containers:
    - name: app
      image: nginx
`
	findings := detect(t, manifest)
	require.Len(t, findings, 1)
	// the container mapping starts at the "name: app" line
	assert.Equal(t, 6, findings[0].Line)
}
