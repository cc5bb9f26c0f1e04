package cli

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/clipboardhistoryio/companion/internal/client/models"
)

const previewLength = 60

// parseAdd splits add arguments into content, #tags and the --fav switch.
func parseAdd(args []string) (content string, tags []string, fav bool) {
	words := make([]string, 0, len(args))
	for _, arg := range args {
		switch {
		case arg == "--fav":
			fav = true
		case strings.HasPrefix(arg, "#") && len(arg) > 1:
			tags = append(tags, arg[1:])
		default:
			words = append(words, arg)
		}
	}
	return strings.Join(words, " "), tags, fav
}

// formatEntry renders e on one line: favorite mark, id, time, a preview of
// the content and its tags.
func formatEntry(e models.Entry) string {
	mark := " "
	if e.IsFavorited {
		mark = "*"
	}

	preview := strings.Join(strings.Fields(e.Content), " ")
	if utf8.RuneCountInString(preview) > previewLength {
		preview = string([]rune(preview)[:previewLength-3]) + "..."
	}

	line := fmt.Sprintf("%s %s  %s  %s", mark, e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04"), preview)
	if len(e.Tags) > 0 {
		line += "  #" + strings.Join(e.Tags, " #")
	}
	return line
}
