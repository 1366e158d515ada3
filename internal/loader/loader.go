// Package loader parses Kubernetes manifest files into position-annotated
// document trees. Every node retains its 1-based source line so findings can
// point at the offending container definition.
package loader

import (
	"errors"
	"io"
	"os"
	"strconv"

	"github.com/k8sec/kubegate/internal/types"
	yaml "gopkg.in/yaml.v3"
)

// Document is an alias for types.Document
type Document = types.Document

// Load decodes a stream of `---`-separated YAML documents. Each document
// becomes one Document value; empty documents are skipped. A document that
// fails to decode is represented as a Document with ParseErr set and Line 1.
// yaml.v3 decoders cannot resume after a syntax error, so the remainder of
// the stream is covered by that single marker; other files are unaffected.
func Load(r io.Reader) []Document {
	var docs []Document
	dec := yaml.NewDecoder(r)

	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			docs = append(docs, Document{Line: 1, ParseErr: err})
			break
		}

		root := contentNode(&node)
		if root == nil || isNull(root) {
			continue
		}

		doc := Document{
			Root: root,
			Line: root.Line,
			Kind: StringValue(MapValue(root, "kind")),
		}
		if metadata := MapValue(root, "metadata"); metadata != nil {
			doc.Name = StringValue(MapValue(metadata, "name"))
		}
		docs = append(docs, doc)
	}

	return docs
}

// LoadFile parses the manifest file at path. An unreadable file is reported
// the same way as an unparsable document so the caller is still notified.
func LoadFile(path string) []Document {
	f, err := os.Open(path)
	if err != nil {
		return []Document{{Line: 1, ParseErr: err}}
	}
	defer f.Close()
	return Load(f)
}

// contentNode unwraps the document node produced by the decoder and returns
// the actual top-level content node
func contentNode(doc *yaml.Node) *yaml.Node {
	if doc == nil || doc.Kind == 0 {
		return nil
	}
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return nil
		}
		return resolve(doc.Content[0])
	}
	return resolve(doc)
}

// resolve follows alias nodes to their anchor target
func resolve(node *yaml.Node) *yaml.Node {
	if node != nil && node.Kind == yaml.AliasNode && node.Alias != nil {
		return node.Alias
	}
	return node
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.Tag == "!!null"
}

// MapValue returns the value node for key within a mapping node, or nil when
// node is not a mapping or the key is absent
func MapValue(node *yaml.Node, key string) *yaml.Node {
	node = resolve(node)
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return resolve(node.Content[i+1])
		}
	}
	return nil
}

// StringValue returns the string value of a scalar node, or "" for anything
// that is not a scalar
func StringValue(node *yaml.Node) string {
	node = resolve(node)
	if node == nil || node.Kind != yaml.ScalarNode {
		return ""
	}
	return node.Value
}

// IntValue returns the value of an integer scalar node. The second return
// value reports whether the node actually was an integer scalar; quoted
// strings like "0" do not qualify.
func IntValue(node *yaml.Node) (int, bool) {
	node = resolve(node)
	if node == nil || node.Kind != yaml.ScalarNode || node.Tag != "!!int" {
		return 0, false
	}
	v, err := strconv.Atoi(node.Value)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Sequence returns the item nodes of a sequence node, or nil when node is
// not a sequence
func Sequence(node *yaml.Node) []*yaml.Node {
	node = resolve(node)
	if node == nil || node.Kind != yaml.SequenceNode {
		return nil
	}
	items := make([]*yaml.Node, 0, len(node.Content))
	for _, c := range node.Content {
		items = append(items, resolve(c))
	}
	return items
}

// IsMapping reports whether node is a YAML mapping
func IsMapping(node *yaml.Node) bool {
	node = resolve(node)
	return node != nil && node.Kind == yaml.MappingNode
}
