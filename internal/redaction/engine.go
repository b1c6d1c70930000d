// Package redaction strips credential material from diff text before it
// leaves the process. The orchestrator redacts each file diff once, up
// front, so the rendered prompt and the later snippet-location step operate
// on identical bytes.
package redaction

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

const placeholderPrefix = "<REDACTED:"

// rule pairs a credential family with the pattern that detects it.
type rule struct {
	name string
	re   *regexp.Regexp
}

// Engine replaces matched secrets with deterministic placeholders. The
// placeholder is derived from the secret's own hash, so the same secret
// always redacts to the same text and a model that quotes a redacted line
// back still locates it in the diff.
type Engine struct {
	rules []rule
}

// NewEngine creates an engine with the default credential rules.
func NewEngine() *Engine {
	return &Engine{rules: defaultRules()}
}

// Redact replaces every secret match in input with its placeholder. Rules
// apply in declaration order; a placeholder emitted by an earlier rule never
// matches a later one.
func (e *Engine) Redact(input string) (string, error) {
	out := input
	for _, r := range e.rules {
		out = r.re.ReplaceAllStringFunc(out, placeholder)
	}
	return out, nil
}

// IsRedacted reports whether content carries redaction placeholders.
func (e *Engine) IsRedacted(content string) bool {
	return strings.Contains(content, placeholderPrefix)
}

// placeholder derives the stable replacement for one secret: the first 8 hex
// characters of its sha256.
func placeholder(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return fmt.Sprintf("%s%s>", placeholderPrefix, hex.EncodeToString(sum[:])[:8])
}

func defaultRules() []rule {
	specs := []struct {
		name    string
		pattern string
	}{
		// Provider-prefixed keys first: the generic sk- rule below must not
		// split them.
		{"anthropic-key", `sk-ant-[a-zA-Z0-9\-]{20,}`},
		{"openai-key", `sk-[a-zA-Z0-9]{20,}`},
		{"github-token", `gh[posr]_[a-zA-Z0-9]{20,}`},
		{"aws-access-key-id", `AKIA[0-9A-Z]{16}`},
		{"aws-secret-key", `aws.{0,20}?['"][0-9a-zA-Z/+]{40}['"]`},
		{"google-api-key", `AIza[0-9A-Za-z\-_]{35}`},
		{"slack-token", `xox[baprs]-[a-zA-Z0-9\-]{10,}`},
		{"private-key-block", `-----BEGIN\s+(?:RSA|EC|OPENSSH|DSA|ENCRYPTED)\s+PRIVATE\s+KEY-----[\s\S]*?-----END\s+(?:RSA|EC|OPENSSH|DSA|ENCRYPTED)\s+PRIVATE\s+KEY-----`},
		{"jwt", `eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`},
		{"bearer-token", `Bearer\s+[a-zA-Z0-9_\-\.]+`},
		// user:password@ credentials embedded in connection URLs, a frequent
		// find in reviewed config diffs.
		{"url-credentials", `[a-z][a-z0-9+]*://[^\s:@/]+:[^\s@]+@`},
	}

	rules := make([]rule, 0, len(specs))
	for _, s := range specs {
		rules = append(rules, rule{name: s.name, re: regexp.MustCompile(s.pattern)})
	}
	return rules
}
