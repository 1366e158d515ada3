// Package formatter renders scan results for humans and machines. The text
// formatter emits the dash-prefixed issue lines a pre-commit hook prints;
// json and yaml emit the full result; table emits a go-pretty summary table.
package formatter

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/k8sec/kubegate/internal/types"
	yaml "gopkg.in/yaml.v3"
)

// Formatter defines the interface for formatting scan results
type Formatter interface {
	Format(data types.Result) (string, error)
}

// Type represents the type of formatter
type Type string

const (
	// TypeText formats data as pre-commit issue lines
	TypeText Type = "text"
	// TypeJSON formats data as JSON
	TypeJSON Type = "json"
	// TypeYAML formats data as YAML
	TypeYAML Type = "yaml"
	// TypeTable formats data as a table
	TypeTable Type = "table"
)

// Text implements pre-commit hook style output
type Text struct{}

// JSON implements JSON formatting
type JSON struct{}

// YAML implements YAML formatting
type YAML struct{}

// Table implements table formatting
type Table struct{}

// Format renders the result the way the pre-commit hook reports it: a
// success banner when clean, otherwise one dash-prefixed issue line per
// finding plus any warnings
func (t *Text) Format(data types.Result) (string, error) {
	var b strings.Builder

	for _, w := range data.Warnings {
		fmt.Fprintf(&b, "⚠️  %s\n", w)
	}

	if len(data.Findings) == 0 {
		b.WriteString("✅ All checks passed: no root containers or blocking policy findings.\n")
		return b.String(), nil
	}

	b.WriteString("❌ Security issues found:\n")
	for _, f := range SortFindings(data.Findings) {
		fmt.Fprintf(&b, " - %s\n", f.IssueLine())
	}
	return b.String(), nil
}

// Format formats data as JSON
func (j *JSON) Format(data types.Result) (string, error) {
	data.Findings = SortFindings(data.Findings)
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error formatting as JSON: %w", err)
	}
	return string(bytes), nil
}

// Format formats data as YAML
func (y *YAML) Format(data types.Result) (string, error) {
	data.Findings = SortFindings(data.Findings)
	bytes, err := yaml.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("error formatting as YAML: %w", err)
	}
	return string(bytes), nil
}

// SortFindings orders findings by file, line, container then control so
// output is deterministic regardless of how results were merged
func SortFindings(findings []types.Finding) []types.Finding {
	sorted := make([]types.Finding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Container != b.Container {
			return a.Container < b.Container
		}
		return a.Control < b.Control
	})
	return sorted
}

// ParseType converts a string to a Type
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeText, TypeJSON, TypeYAML, TypeTable:
		return Type(s), nil
	default:
		return "", fmt.Errorf("unknown formatter type: %s", s)
	}
}

// NewFormatter creates a new formatter of the specified type
func NewFormatter(t Type) (Formatter, error) {
	switch t {
	case TypeText:
		return &Text{}, nil
	case TypeJSON:
		return &JSON{}, nil
	case TypeYAML:
		return &YAML{}, nil
	case TypeTable:
		return &Table{}, nil
	default:
		return nil, fmt.Errorf("unknown formatter type: %s", t)
	}
}
