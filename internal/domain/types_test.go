package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityRank(t *testing.T) {
	tests := []struct {
		name     string
		severity string
		want     int
	}{
		{name: "critical outranks all", severity: "CRITICAL", want: 0},
		{name: "major", severity: "MAJOR", want: 1},
		{name: "minor", severity: "MINOR", want: 2},
		{name: "suggestion", severity: "SUGGESTION", want: 3},
		{name: "case insensitive", severity: "critical", want: 0},
		{name: "surrounding whitespace", severity: " MAJOR ", want: 1},
		{name: "unknown ranks last", severity: "BLOCKER", want: 4},
		{name: "empty ranks last", severity: "", want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SeverityRank(tt.severity))
		})
	}
}

func TestValidSeverity(t *testing.T) {
	assert.True(t, ValidSeverity("CRITICAL"))
	assert.True(t, ValidSeverity("suggestion"))
	assert.False(t, ValidSeverity("HIGH"))
	assert.False(t, ValidSeverity(""))
}

func TestViolationFingerprint(t *testing.T) {
	base := Violation{
		Type:        ViolationTypeInline,
		File:        "src/auth.ts",
		CodeSnippet: "+  const token = req.query.token;",
		Severity:    SeverityCritical,
		Category:    "security",
		Issue:       "Token in query string",
		Message:     "Tokens must not be passed via query parameters.",
	}

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, base.Fingerprint(), base.Fingerprint())
	})

	t.Run("trims identity fields", func(t *testing.T) {
		padded := base
		padded.File = "  src/auth.ts "
		padded.Issue = "Token in query string  "
		assert.Equal(t, base.Fingerprint(), padded.Fingerprint())
	})

	t.Run("sensitive to message changes", func(t *testing.T) {
		other := base
		other.Message = "different message"
		assert.NotEqual(t, base.Fingerprint(), other.Fingerprint())
	})

	t.Run("ignores suggestion and impact", func(t *testing.T) {
		other := base
		other.Suggestion = "use the Authorization header"
		other.Impact = "credential leakage via logs"
		assert.Equal(t, base.Fingerprint(), other.Fingerprint())
	})
}

func TestFileBatchPaths(t *testing.T) {
	batch := FileBatch{
		Index: 2,
		Files: []PrioritizedFile{
			{Path: "a.go"},
			{Path: "b.go"},
		},
	}
	assert.Equal(t, []string{"a.go", "b.go"}, batch.Paths())
}

func TestDeduplicationResultRemovedTotal(t *testing.T) {
	r := DeduplicationResult{
		RemovedExact:            2,
		RemovedNormalized:       1,
		RemovedSameLocation:     3,
		RemovedSemanticComments: 1,
		RemovedSemanticIntraRun: 2,
	}
	assert.Equal(t, 9, r.RemovedTotal())
}

func TestPriorityString(t *testing.T) {
	assert.Equal(t, "high", PriorityHigh.String())
	assert.Equal(t, "medium", PriorityMedium.String())
	assert.Equal(t, "low", PriorityLow.String())
}
