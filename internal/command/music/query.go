package music

import (
	"regexp"
	"strings"
)

const searchPrefix = "ytsearch:"

var urlRx = regexp.MustCompile(`^https?://(?:www\.)?.+`)

// SearchQuery turns user input into a node query: links pass through, anything
// else becomes a YouTube search.
func SearchQuery(input string) string {
	q := strings.Trim(strings.TrimSpace(input), "<>")
	if urlRx.MatchString(q) {
		return q
	}
	return searchPrefix + q
}
