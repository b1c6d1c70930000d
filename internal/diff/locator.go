package diff

import "strings"

// Location is a resolved position inside a file's diff.
type Location struct {
	LineNumber int
	Kind       LineKind
}

// FuzzyMatch is the outcome of a tolerant snippet search. FixedSnippet is the
// original prefixed diff line the snippet was re-anchored to; Before and After
// carry the adjacent raw lines as fresh search context.
type FuzzyMatch struct {
	FixedSnippet string
	Location     Location
	Before       []string
	After        []string
}

// contextLines is how many surrounding raw lines a fuzzy match reports.
const contextLines = 2

// LocateExact scans diff lines in order and returns the location of the first
// line whose raw content, prefix included, equals the snippet. Added lines
// report the new-side line number, removed lines the old side, context lines
// the new side.
func LocateExact(fd FileDiff, snippet string) (Location, bool) {
	for _, line := range fd.Lines() {
		if line.Raw != snippet {
			continue
		}
		return lineLocation(line), true
	}
	return Location{}, false
}

// LocateFuzzy strips the snippet's diff prefix and surrounding whitespace and
// searches for a diff line whose stripped content contains, or is contained
// by, the cleaned snippet. The match is returned with the original prefixed
// diff line as the corrected snippet.
func LocateFuzzy(fd FileDiff, snippet string) (FuzzyMatch, bool) {
	cleaned := cleanSnippet(snippet)
	if cleaned == "" {
		return FuzzyMatch{}, false
	}

	lines := fd.Lines()
	for i, line := range lines {
		content := strings.TrimSpace(line.Content)
		if content == "" {
			continue
		}
		if !strings.Contains(content, cleaned) && !strings.Contains(cleaned, content) {
			continue
		}
		return FuzzyMatch{
			FixedSnippet: line.Raw,
			Location:     lineLocation(line),
			Before:       rawWindow(lines, i-contextLines, i),
			After:        rawWindow(lines, i+1, i+1+contextLines),
		}, true
	}
	return FuzzyMatch{}, false
}

func lineLocation(line Line) Location {
	loc := Location{Kind: line.Kind}
	if line.Kind == KindRemoved {
		loc.LineNumber = line.OldLine
	} else {
		loc.LineNumber = line.NewLine
	}
	return loc
}

// cleanSnippet removes a leading diff marker and whitespace from a snippet.
func cleanSnippet(snippet string) string {
	s := strings.TrimSpace(snippet)
	if s == "" {
		return ""
	}
	switch s[0] {
	case '+', '-':
		s = s[1:]
	}
	return strings.TrimSpace(s)
}

func rawWindow(lines []Line, from, to int) []string {
	if from < 0 {
		from = 0
	}
	if to > len(lines) {
		to = len(lines)
	}
	if from >= to {
		return nil
	}
	window := make([]string, 0, to-from)
	for _, line := range lines[from:to] {
		window = append(window, line.Raw)
	}
	return window
}
