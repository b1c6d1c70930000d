// Package domain holds the core review entities shared across the pipeline.
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Severity levels, ordered from most to least severe.
const (
	SeverityCritical   = "CRITICAL"
	SeverityMajor      = "MAJOR"
	SeverityMinor      = "MINOR"
	SeveritySuggestion = "SUGGESTION"
)

// severityRanks maps a severity to its rank; lower rank is more severe.
var severityRanks = map[string]int{
	SeverityCritical:   0,
	SeverityMajor:      1,
	SeverityMinor:      2,
	SeveritySuggestion: 3,
}

// SeverityRank returns the ordering rank for a severity level.
// Unknown severities rank below SUGGESTION so they never win arbitration.
func SeverityRank(severity string) int {
	if rank, ok := severityRanks[strings.ToUpper(strings.TrimSpace(severity))]; ok {
		return rank
	}
	return len(severityRanks)
}

// ValidSeverity reports whether the value is a recognized severity level.
func ValidSeverity(severity string) bool {
	_, ok := severityRanks[strings.ToUpper(strings.TrimSpace(severity))]
	return ok
}

// Violation types.
const (
	ViolationTypeInline  = "inline"
	ViolationTypeGeneral = "general"
)

// Line types reported with an inline violation's resolved location.
const (
	LineTypeAdded   = "ADDED"
	LineTypeRemoved = "REMOVED"
	LineTypeContext = "CONTEXT"
)

// SearchContext carries the diff lines surrounding a snippet, used to
// re-anchor a comment when the snippet alone is ambiguous.
type SearchContext struct {
	Before []string `json:"before,omitempty"`
	After  []string `json:"after,omitempty"`
}

// Violation is a single reported issue, optionally tied to a file and line.
// It is produced by the AI analysis call and mutated only by location
// validation before being posted or dropped.
type Violation struct {
	Type          string         `json:"type"`
	File          string         `json:"file,omitempty"`
	CodeSnippet   string         `json:"code_snippet,omitempty"`
	SearchContext *SearchContext `json:"search_context,omitempty"`
	LineNumber    int            `json:"line_number,omitempty"`
	LineType      string         `json:"line_type,omitempty"`
	Severity      string         `json:"severity"`
	Category      string         `json:"category"`
	Issue         string         `json:"issue"`
	Message       string         `json:"message"`
	Impact        string         `json:"impact,omitempty"`
	Suggestion    string         `json:"suggestion,omitempty"`
}

// Inline reports whether the violation targets a specific diff location.
func (v Violation) Inline() bool {
	return v.Type == ViolationTypeInline
}

// Fingerprint returns a deterministic hash over the identity fields of the
// violation. Two violations with the same fingerprint are exact duplicates.
func (v Violation) Fingerprint() string {
	payload := strings.Join([]string{
		strings.TrimSpace(v.File),
		strings.TrimSpace(v.CodeSnippet),
		strings.TrimSpace(v.Severity),
		strings.TrimSpace(v.Category),
		strings.TrimSpace(v.Issue),
		strings.TrimSpace(v.Message),
	}, "|")
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// Priority classifies how urgently a changed file should be analyzed.
type Priority int

const (
	PriorityHigh Priority = iota
	PriorityMedium
	PriorityLow
)

// String returns the lowercase priority name.
func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityLow:
		return "low"
	default:
		return "medium"
	}
}

// PrioritizedFile is a changed file annotated with its analysis priority and
// estimated token cost. Derived once per run.
type PrioritizedFile struct {
	Path            string
	Priority        Priority
	EstimatedTokens int
	Diff            string
}

// FileBatch groups prioritized files for a single analysis call.
// Priority is the highest priority among member files.
type FileBatch struct {
	Index           int
	Files           []PrioritizedFile
	Priority        Priority
	EstimatedTokens int
}

// Paths returns the member file paths in batch order.
func (b FileBatch) Paths() []string {
	paths := make([]string, len(b.Files))
	for i, f := range b.Files {
		paths[i] = f.Path
	}
	return paths
}

// BatchResult records the outcome of executing one batch.
// Err set implies Violations is empty.
type BatchResult struct {
	BatchIndex     int
	Files          []string
	Violations     []Violation
	ProcessingTime time.Duration
	Err            error
}

// DeduplicationResult is the outcome of the full duplicate pipeline.
// The per-stage removed counts plus the unique count always equal the
// input count.
type DeduplicationResult struct {
	Unique []Violation

	RemovedExact            int
	RemovedNormalized       int
	RemovedSameLocation     int
	RemovedSemanticComments int
	RemovedSemanticIntraRun int

	// Degraded is set when the semantic stage could not reach the scorer
	// and the pipeline fell back to the local stages only.
	Degraded bool

	ProcessingTime time.Duration
}

// RemovedTotal returns the number of violations dropped across all stages.
func (r DeduplicationResult) RemovedTotal() int {
	return r.RemovedExact + r.RemovedNormalized + r.RemovedSameLocation +
		r.RemovedSemanticComments + r.RemovedSemanticIntraRun
}

// PlatformComment is an existing review comment fetched from the git
// platform, used to suppress re-reporting of already-posted issues.
type PlatformComment struct {
	ID     int64
	Author string
	Body   string
	Path   string
	Line   int
}
