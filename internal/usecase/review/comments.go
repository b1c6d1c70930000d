package review

import (
	"strings"

	"github.com/juspay/yama-sub000/internal/domain"
)

// ToolSignature is the marker embedded in every comment this tool posts.
// It identifies prior runs' comments even when the bot account changes.
const ToolSignature = "<!-- yama-review -->"

// FilterToolComments returns the subset of existing platform comments
// recognized as authored by a prior run: either the configured bot username
// matches the author or the body carries the tool signature.
func FilterToolComments(comments []domain.PlatformComment, botUsername string) []domain.PlatformComment {
	var tool []domain.PlatformComment
	for _, c := range comments {
		if isToolComment(c, botUsername) {
			tool = append(tool, c)
		}
	}
	return tool
}

func isToolComment(c domain.PlatformComment, botUsername string) bool {
	if botUsername != "" && strings.EqualFold(strings.TrimSpace(c.Author), botUsername) {
		return true
	}
	return strings.Contains(c.Body, ToolSignature)
}
