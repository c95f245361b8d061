package moderation

import (
	_ "embed"
	"strings"
)

//go:embed wordlist.txt
var defaultWordlist string

// DefaultWords returns the built-in dictionary, one word per line, used when
// no operator-supplied list is configured.
func DefaultWords() []string {
	var words []string
	for _, line := range strings.Split(defaultWordlist, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	return words
}
