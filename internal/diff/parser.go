package diff

import (
	"strconv"
	"strings"
)

// LineKind represents the type of a line in a diff hunk.
type LineKind int

const (
	// KindContext represents an unchanged context line (starts with ' ').
	KindContext LineKind = iota
	// KindAdded represents an added line (starts with '+').
	KindAdded
	// KindRemoved represents a removed line (starts with '-').
	KindRemoved
)

// String returns the wire name used when reporting a resolved location.
func (k LineKind) String() string {
	switch k {
	case KindAdded:
		return "ADDED"
	case KindRemoved:
		return "REMOVED"
	default:
		return "CONTEXT"
	}
}

// Line represents a single line in a diff hunk.
type Line struct {
	Kind    LineKind
	Content string // Line content without the prefix character
	Raw     string // Full line as it appears in the diff, prefix included
	OldLine int    // Line number in the old file (0 for additions)
	NewLine int    // Line number in the new file (0 for removals)
}

// Hunk represents a single @@ hunk in a unified diff.
type Hunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Lines    []Line
}

// FileDiff represents a parsed unified diff for a single file.
type FileDiff struct {
	Path  string
	Hunks []Hunk
}

// Lines returns all hunk lines in scan order.
func (fd FileDiff) Lines() []Line {
	var lines []Line
	for _, h := range fd.Hunks {
		lines = append(lines, h.Lines...)
	}
	return lines
}

// Parse parses a unified diff string for one file into a FileDiff.
// Lines outside any hunk (file headers, mode lines) are ignored. Old and new
// line counters are seeded from each hunk header and advance per line kind.
func Parse(patch string) FileDiff {
	result := FileDiff{Path: headerPath(patch)}
	if patch == "" {
		return result
	}

	var currentHunk *Hunk
	oldLine := 0
	newLine := 0

	for _, line := range strings.Split(patch, "\n") {
		if strings.HasPrefix(line, "@@") {
			if currentHunk != nil {
				result.Hunks = append(result.Hunks, *currentHunk)
				currentHunk = nil
			}
			hunk, ok := parseHunkHeader(line)
			if !ok {
				// Malformed header; skip it and its lines
				continue
			}
			currentHunk = &hunk
			oldLine = hunk.OldStart
			newLine = hunk.NewStart
			continue
		}

		if currentHunk == nil || line == "" {
			continue
		}
		if strings.HasPrefix(line, "\\ ") {
			// "\ No newline at end of file"
			continue
		}

		var dl Line
		switch line[0] {
		case '+':
			dl = Line{Kind: KindAdded, Content: line[1:], Raw: line, NewLine: newLine}
			newLine++
		case '-':
			dl = Line{Kind: KindRemoved, Content: line[1:], Raw: line, OldLine: oldLine}
			oldLine++
		case ' ':
			dl = Line{Kind: KindContext, Content: line[1:], Raw: line, OldLine: oldLine, NewLine: newLine}
			oldLine++
			newLine++
		default:
			// A new file header starts; close the hunk
			if strings.HasPrefix(line, "diff --git") || strings.HasPrefix(line, "--- ") || strings.HasPrefix(line, "+++ ") {
				result.Hunks = append(result.Hunks, *currentHunk)
				currentHunk = nil
				continue
			}
			// Treat unknown prefixes as context
			dl = Line{Kind: KindContext, Content: line, Raw: line, OldLine: oldLine, NewLine: newLine}
			oldLine++
			newLine++
		}
		currentHunk.Lines = append(currentHunk.Lines, dl)
	}

	if currentHunk != nil {
		result.Hunks = append(result.Hunks, *currentHunk)
	}

	return result
}

// SplitByFile splits a whole-PR unified diff into per-file sub-diffs keyed by
// the new-side path (old-side path for deleted files). Prefixes like "a/" and
// "b/" are stripped from the key.
func SplitByFile(prDiff string) map[string]string {
	files := make(map[string]string)
	if strings.TrimSpace(prDiff) == "" {
		return files
	}

	lines := strings.Split(prDiff, "\n")
	var current []string
	currentPath := ""
	sawHunk := false
	oldLeft, newLeft := 0, 0

	flush := func() {
		if currentPath != "" && len(current) > 0 {
			files[currentPath] = strings.Join(current, "\n")
		}
		current = nil
		currentPath = ""
		sawHunk = false
		oldLeft, newLeft = 0, 0
	}

	for _, line := range lines {
		inHunk := oldLeft > 0 || newLeft > 0
		// A "--- " header between hunks also starts a new file; raw unified
		// diffs don't always carry "diff --git" separators. Inside a hunk the
		// same prefix is a removed line whose content starts with "--".
		if strings.HasPrefix(line, "diff --git ") ||
			(sawHunk && !inHunk && strings.HasPrefix(line, "--- ")) {
			flush()
		}
		current = append(current, line)

		if strings.HasPrefix(line, "@@") {
			if h, ok := parseHunkHeader(line); ok {
				sawHunk = true
				oldLeft, newLeft = h.OldLines, h.NewLines
			}
			continue
		}
		if inHunk && line != "" && line[0] != '\\' {
			switch line[0] {
			case '+':
				newLeft--
			case '-':
				oldLeft--
			default:
				oldLeft--
				newLeft--
			}
		}
		if strings.HasPrefix(line, "+++ ") {
			if p := stripDiffPrefix(strings.TrimSpace(line[4:])); p != "" {
				currentPath = p
			}
		} else if currentPath == "" && strings.HasPrefix(line, "--- ") {
			if p := stripDiffPrefix(strings.TrimSpace(line[4:])); p != "" {
				currentPath = p
			}
		}
	}
	flush()

	return files
}

// headerPath extracts the file path from a single-file patch header, if any.
func headerPath(patch string) string {
	for _, line := range strings.Split(patch, "\n") {
		if strings.HasPrefix(line, "+++ ") {
			if p := stripDiffPrefix(strings.TrimSpace(line[4:])); p != "" {
				return p
			}
		}
		if strings.HasPrefix(line, "--- ") {
			if p := stripDiffPrefix(strings.TrimSpace(line[4:])); p != "" {
				return p
			}
		}
		if strings.HasPrefix(line, "@@") {
			break
		}
	}
	return ""
}

// stripDiffPrefix removes the a/ or b/ marker from a diff header path.
// /dev/null (added or deleted files) yields an empty path.
func stripDiffPrefix(p string) string {
	if p == "/dev/null" {
		return ""
	}
	if strings.HasPrefix(p, "a/") || strings.HasPrefix(p, "b/") {
		return p[2:]
	}
	return p
}

// parseHunkHeader parses a header like "@@ -10,7 +10,8 @@ optional context".
func parseHunkHeader(line string) (Hunk, bool) {
	hunk := Hunk{}
	parts := strings.Split(line, "@@")
	if len(parts) < 2 {
		return hunk, false
	}

	seen := 0
	for _, part := range strings.Fields(strings.TrimSpace(parts[1])) {
		switch {
		case strings.HasPrefix(part, "-"):
			hunk.OldStart, hunk.OldLines = parseRange(strings.TrimPrefix(part, "-"))
			seen++
		case strings.HasPrefix(part, "+"):
			hunk.NewStart, hunk.NewLines = parseRange(strings.TrimPrefix(part, "+"))
			seen++
		}
	}
	return hunk, seen == 2
}

// parseRange parses "start,count" or "start" format.
func parseRange(s string) (start, count int) {
	if idx := strings.Index(s, ","); idx >= 0 {
		start, _ = strconv.Atoi(s[:idx])
		count, _ = strconv.Atoi(s[idx+1:])
	} else {
		start, _ = strconv.Atoi(s)
		count = 1
	}
	return
}
