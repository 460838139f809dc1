package orchestrator

import (
	"errors"
	"regexp"
	"strings"
)

// Models occasionally echo the transcript framing and open the reply
// with a speaker label like "Guildmate:" or "[bot]:".
var speakerPrefixPattern = regexp.MustCompile(`^(?:\[[^\]\n]{1,32}\]|[\w.@-]{1,32}):\s+`)

// renderReply post-processes completion output into deliverable reply
// text: strips a leading speaker label, trims whitespace, and truncates
// to maxLen runes with an ellipsis marker.
func renderReply(text string, maxLen int) (string, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimSpace(speakerPrefixPattern.ReplaceAllString(text, ""))
	if text == "" {
		return "", errors.New("completion returned an empty reply")
	}

	if maxLen > 0 {
		runes := []rune(text)
		if len(runes) > maxLen {
			text = string(runes[:maxLen-1]) + "…"
		}
	}
	return text, nil
}
