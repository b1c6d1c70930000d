package review

import (
	"fmt"
	"strings"

	"github.com/juspay/yama-sub000/internal/domain"
)

// BuildBatchPrompt renders the analysis prompt for one batch of file diffs.
// The heavy lifting happens on the provider side; the prompt only has to
// carry the diffs and pin the response contract the parser expects.
func BuildBatchPrompt(batch domain.FileBatch) string {
	var sb strings.Builder

	sb.WriteString("Review the following code changes and report violations.\n\n")
	for _, f := range batch.Files {
		sb.WriteString(fmt.Sprintf("### File: %s\n```diff\n%s\n```\n\n", f.Path, f.Diff))
	}

	sb.WriteString(`Respond with a JSON object:
{
  "violations": [
    {
      "type": "inline",
      "file": "<path>",
      "code_snippet": "<exact diff line, prefix included>",
      "severity": "CRITICAL|MAJOR|MINOR|SUGGESTION",
      "category": "<category>",
      "issue": "<short issue title>",
      "message": "<explanation>",
      "impact": "<impact>",
      "suggestion": "<fix>"
    }
  ]
}
Quote code_snippet exactly as it appears in the diff, including the leading +, - or space.
`)

	return sb.String()
}
