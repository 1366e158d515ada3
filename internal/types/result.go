// Package types defines shared data structures (Document, Finding, Severity,
// Result) used across loader, detector, kubescape, and formatter packages to
// prevent import cycles.
package types

import (
	"fmt"
	"strconv"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// Document represents a single parsed YAML document within a manifest file
type Document struct {
	// Root is the top-level content node of the document (mapping, sequence
	// or scalar). Nil when the document failed to parse.
	Root *yaml.Node `json:"-"`
	// Kind is the Kubernetes resource kind, if present
	Kind string `json:"kind,omitempty"`
	// Name is metadata.name, if present
	Name string `json:"name,omitempty"`
	// Line is the 1-based source line at which the document starts
	Line int `json:"line"`
	// ParseErr is set when this document could not be decoded
	ParseErr error `json:"-"`
}

// Classification describes the security posture assigned to a finding
type Classification string

const (
	// ExplicitRoot means securityContext.runAsUser is set to 0
	ExplicitRoot Classification = "ExplicitRoot"
	// ImplicitRoot means securityContext.runAsUser is absent
	ImplicitRoot Classification = "ImplicitRoot"
	// NonRoot means runAsUser is set to a non-zero user
	NonRoot Classification = "NonRoot"
	// ParseFailure means the document could not be parsed at all
	ParseFailure Classification = "ParseFailure"
	// PolicyViolation means the external policy scanner flagged the resource
	PolicyViolation Classification = "PolicyViolation"
)

// Severity represents the severity level of a finding
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// Implement Stringer for Severity
func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "Critical"
	case SeverityHigh:
		return "High"
	case SeverityMedium:
		return "Medium"
	case SeverityLow:
		return "Low"
	default:
		return ""
	}
}

// ParseSeverity converts a string to a Severity level
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return SeverityCritical, nil
	case "high":
		return SeverityHigh, nil
	case "medium":
		return SeverityMedium, nil
	case "low":
		return SeverityLow, nil
	default:
		return SeverityLow, fmt.Errorf("unknown severity: %q", s)
	}
}

// Finding represents a single security finding against a manifest file
type Finding struct {
	// File is the path of the manifest as staged or given on the command line
	File string `json:"file"`
	// Line is the 1-based source line, 0 when unknown
	Line int `json:"line,omitempty"`
	// Container is the name of the offending container, if applicable
	Container string `json:"container,omitempty"`
	// Resource is the kind/name of the resource the finding belongs to
	Resource string `json:"resource,omitempty"`
	// Control is the policy control ID reported by the external scanner
	Control string `json:"control,omitempty"`
	// Severity of the finding
	Severity Severity `json:"severity"`
	// Classification of the finding
	Classification Classification `json:"classification"`
	// Message is the human readable description
	Message string `json:"message"`
}

// IssueLine renders the finding as a single "<file>:<line>: <message>" line.
// Unknown lines are printed as "?".
func (f Finding) IssueLine() string {
	line := "?"
	if f.Line > 0 {
		line = strconv.Itoa(f.Line)
	}
	return fmt.Sprintf("%s:%s: %s", f.File, line, f.Message)
}

// Result represents a unified result type for all scan operations
type Result struct {
	// Basic information
	Source    string `json:"source"`
	Success   bool   `json:"success"`
	Timestamp int64  `json:"timestamp"`

	// Findings collected from the detector and the policy scanner
	Findings []Finding `json:"findings,omitempty"`
	Warnings []string  `json:"warnings,omitempty"`

	// FilesScanned is the number of manifest files that were inspected
	FilesScanned int `json:"files_scanned"`

	// Formatted output
	OutputFormatted string `json:"output_formatted,omitempty"`
}
