// Package detector walks parsed Kubernetes manifests looking for containers
// that run as root, either explicitly (securityContext.runAsUser: 0) or
// implicitly (no runAsUser at all).
package detector

import (
	"fmt"

	"github.com/k8sec/kubegate/internal/loader"
	"github.com/k8sec/kubegate/internal/types"
	yaml "gopkg.in/yaml.v3"
)

// unnamedContainer is reported when a container mapping has no name field
const unnamedContainer = "<unnamed>"

// podSpecPaths are the known locations of a pod spec inside a manifest,
// tried in priority order. The first path that resolves to a mapping with a
// containers sequence wins.
var podSpecPaths = [][]string{
	{"spec", "jobTemplate", "spec", "template", "spec"}, // CronJob
	{"spec", "template", "spec"},                        // Deployment, StatefulSet, DaemonSet, Job, ReplicaSet
	{"spec"},                                            // bare Pod
}

// containerLists are the container sequences checked within a pod spec
var containerLists = []string{"containers", "initContainers"}

// Detect classifies every container in docs and returns one finding per
// container that runs as root, plus one finding per document that failed to
// parse. Findings are produced in document order, then container order, so
// output is deterministic for a given input.
func Detect(file string, docs []types.Document) []types.Finding {
	var findings []types.Finding

	for _, doc := range docs {
		if doc.ParseErr != nil {
			findings = append(findings, types.Finding{
				File:           file,
				Line:           doc.Line,
				Severity:       types.SeverityHigh,
				Classification: types.ParseFailure,
				Message:        fmt.Sprintf("invalid YAML: %v", doc.ParseErr),
			})
			continue
		}

		// Non-mapping documents (scalars, sequences) are skipped silently
		if !loader.IsMapping(doc.Root) {
			continue
		}

		podSpec := findPodSpec(doc.Root)
		if podSpec == nil {
			continue
		}

		resource := doc.Name
		if doc.Kind != "" && doc.Name != "" {
			resource = doc.Kind + "/" + doc.Name
		}

		for _, list := range containerLists {
			for _, container := range loader.Sequence(loader.MapValue(podSpec, list)) {
				if f, bad := classify(container, doc.Line); bad {
					f.File = file
					f.Resource = resource
					findings = append(findings, f)
				}
			}
		}
	}

	return findings
}

// findPodSpec attempts the known pod spec extraction strategies in priority
// order and returns the first mapping that holds a containers sequence
func findPodSpec(root *yaml.Node) *yaml.Node {
	for _, path := range podSpecPaths {
		node := root
		for _, key := range path {
			node = loader.MapValue(node, key)
			if node == nil {
				break
			}
		}
		if !loader.IsMapping(node) {
			continue
		}
		for _, list := range containerLists {
			if loader.Sequence(loader.MapValue(node, list)) != nil {
				return node
			}
		}
	}
	return nil
}

// classify inspects one container mapping. Only the securityContext
// sub-mapping is consulted: runAsUser == 0 is explicit root, a missing
// runAsUser is implicit root, anything else is non-root and not reported.
// Pod-level security contexts are deliberately not considered.
func classify(container *yaml.Node, docLine int) (types.Finding, bool) {
	if !loader.IsMapping(container) {
		return types.Finding{}, false
	}

	name := loader.StringValue(loader.MapValue(container, "name"))
	if name == "" {
		name = unnamedContainer
	}

	line := container.Line
	if line == 0 {
		line = docLine
	}

	securityContext := loader.MapValue(container, "securityContext")
	runAsUser := loader.MapValue(securityContext, "runAsUser")

	if runAsUser == nil {
		return types.Finding{
			Line:           line,
			Container:      name,
			Severity:       types.SeverityHigh,
			Classification: types.ImplicitRoot,
			Message:        fmt.Sprintf("container %q implicitly runs as root (no runAsUser set)", name),
		}, true
	}

	if uid, ok := loader.IntValue(runAsUser); ok && uid == 0 {
		return types.Finding{
			Line:           line,
			Container:      name,
			Severity:       types.SeverityCritical,
			Classification: types.ExplicitRoot,
			Message:        fmt.Sprintf("container %q explicitly runs as root (runAsUser: 0)", name),
		}, true
	}

	return types.Finding{}, false
}
