package novel

import "strings"

// ParsedTurn is the structured extraction of one raw completion: the
// speaker's text plus exactly three option slots. Slots the model omitted
// stay empty; parsing never fails.
type ParsedTurn struct {
	SpeakerText string
	SpeakerName string
	Options     [3]string
}

var optionPrefixes = [3]string{"option 1:", "option 2:", "option 3:"}

// Parse extracts a turn from untrusted free-text model output. Lines are
// matched case-insensitively against the mode's speaker label and the three
// option prefixes; everything else is ignored.
func Parse(responseText, speakerLabel string) ParsedTurn {
	var turn ParsedTurn
	speakerPrefix := strings.ToLower(speakerLabel) + ":"

	for _, line := range strings.Split(responseText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		if strings.HasPrefix(lower, speakerPrefix) {
			turn.SpeakerText = strings.TrimSpace(line[len(speakerPrefix):])
			continue
		}
		for i, prefix := range optionPrefixes {
			if strings.HasPrefix(lower, prefix) {
				turn.Options[i] = strings.TrimSpace(line[len(prefix):])
				break
			}
		}
	}
	return turn
}

// ExtractSpeakerName inspects speaker text for a leading "Name: " pattern,
// used by modes where the model self-identifies the in-story speaker inline
// (narrator vs. named character) rather than via the fixed label. Returns the
// empty string and the text unchanged when no name is present.
func ExtractSpeakerName(text string) (name, cleaned string) {
	idx := strings.Index(text, ":")
	if idx <= 0 {
		return "", text
	}
	name = strings.TrimSpace(text[:idx])
	if name == "" {
		return "", text
	}
	return name, strings.TrimSpace(text[idx+1:])
}
