package review

import (
	"encoding/json"
	"strings"

	"github.com/juspay/yama-sub000/internal/domain"
)

// ExtractJSONBlock returns the first balanced {...} block in free text, or ""
// when none exists. AI responses routinely wrap the payload in prose or
// markdown fences, so the extractor scans for braces rather than trusting the
// whole body to be JSON.
func ExtractJSONBlock(text string) string {
	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

// analysisEnvelope is the loosely-shaped payload the AI call returns.
type analysisEnvelope struct {
	Violations []looseViolation `json:"violations"`
}

// looseViolation tolerates the field-name drift seen in AI output: both
// snake_case and camelCase spellings are accepted for multi-word fields.
type looseViolation struct {
	Type             string              `json:"type"`
	File             string              `json:"file"`
	CodeSnippet      string              `json:"code_snippet"`
	CodeSnippetAlt   string              `json:"codeSnippet"`
	SearchContext    *domain.SearchContext `json:"search_context"`
	SearchContextAlt *domain.SearchContext `json:"searchContext"`
	LineType         string              `json:"line_type"`
	LineTypeAlt      string              `json:"lineType"`
	Severity         string              `json:"severity"`
	Category         string              `json:"category"`
	Issue            string              `json:"issue"`
	Message          string              `json:"message"`
	Impact           string              `json:"impact"`
	Suggestion       string              `json:"suggestion"`
}

// ParseResult carries the coerced violations plus how many envelope entries
// failed validation.
type ParseResult struct {
	Violations []domain.Violation
	Invalid    int
}

// ParseAnalysisResponse extracts and validates violations from a raw AI
// response. A response with no JSON block or no violations field yields zero
// violations without error; entries failing required-field validation are
// dropped and counted rather than propagated partially.
func ParseAnalysisResponse(text string) ParseResult {
	block := ExtractJSONBlock(text)
	if block == "" {
		return ParseResult{}
	}

	var envelope analysisEnvelope
	if err := json.Unmarshal([]byte(block), &envelope); err != nil {
		return ParseResult{}
	}

	result := ParseResult{}
	for _, loose := range envelope.Violations {
		v, ok := coerceViolation(loose)
		if !ok {
			result.Invalid++
			continue
		}
		result.Violations = append(result.Violations, v)
	}
	return result
}

// coerceViolation converts a loose entry into a strict Violation. Entries
// missing a message or carrying an unknown severity are rejected; inline
// violations additionally require a file and a code snippet.
func coerceViolation(loose looseViolation) (domain.Violation, bool) {
	// The snippet keeps its exact spelling: leading diff prefixes and
	// whitespace are significant for locating it later.
	snippet := loose.CodeSnippet
	if strings.TrimSpace(snippet) == "" {
		snippet = loose.CodeSnippetAlt
	}

	v := domain.Violation{
		Type:          strings.ToLower(strings.TrimSpace(loose.Type)),
		File:          strings.TrimSpace(loose.File),
		CodeSnippet:   snippet,
		SearchContext: loose.SearchContext,
		LineType:      strings.ToUpper(firstNonEmpty(loose.LineType, loose.LineTypeAlt)),
		Severity:      strings.ToUpper(strings.TrimSpace(loose.Severity)),
		Category:      strings.TrimSpace(loose.Category),
		Issue:         strings.TrimSpace(loose.Issue),
		Message:       strings.TrimSpace(loose.Message),
		Impact:        strings.TrimSpace(loose.Impact),
		Suggestion:    strings.TrimSpace(loose.Suggestion),
	}
	if v.SearchContext == nil {
		v.SearchContext = loose.SearchContextAlt
	}

	if v.Type == "" {
		if v.File != "" && v.CodeSnippet != "" {
			v.Type = domain.ViolationTypeInline
		} else {
			v.Type = domain.ViolationTypeGeneral
		}
	}
	if v.Type != domain.ViolationTypeInline && v.Type != domain.ViolationTypeGeneral {
		return domain.Violation{}, false
	}
	if !domain.ValidSeverity(v.Severity) {
		return domain.Violation{}, false
	}
	if v.Message == "" {
		return domain.Violation{}, false
	}
	if v.Inline() && (v.File == "" || strings.TrimSpace(v.CodeSnippet) == "") {
		return domain.Violation{}, false
	}
	return v, true
}

func firstNonEmpty(values ...string) string {
	for _, s := range values {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
