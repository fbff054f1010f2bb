package novel

import (
	"encoding/json"
	"strings"
)

// Introduction records the story beginning the player picked and the name
// generated for it.
type Introduction struct {
	ChosenOption string `json:"chosenOption"`
	StoryName    string `json:"storyName"`
}

// MemoryRecord is one persisted player decision: the speaker text shown, the
// option committed to, and who was playing. When the speaker self-identified
// inline, the text is stored under a name-qualified JSON key
// ("speaker_<name>") so "who said what" survives replay; otherwise it lives
// under the generic "speakerText" field.
type MemoryRecord struct {
	Timestamp   string
	SpeakerName string
	SpeakerText string
	UserChoice  string
	UserName    string
}

const speakerFieldPrefix = "speaker_"

func (r MemoryRecord) MarshalJSON() ([]byte, error) {
	fields := map[string]string{
		"timestamp":  r.Timestamp,
		"userChoice": r.UserChoice,
		"userName":   r.UserName,
	}
	if r.SpeakerName != "" {
		fields[speakerFieldPrefix+r.SpeakerName] = r.SpeakerText
	} else {
		fields["speakerText"] = r.SpeakerText
	}
	return json.Marshal(fields)
}

func (r *MemoryRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]string
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	r.Timestamp = fields["timestamp"]
	r.UserChoice = fields["userChoice"]
	r.UserName = fields["userName"]
	r.SpeakerName = ""
	r.SpeakerText = fields["speakerText"]
	for key, value := range fields {
		if strings.HasPrefix(key, speakerFieldPrefix) {
			r.SpeakerName = strings.TrimPrefix(key, speakerFieldPrefix)
			r.SpeakerText = value
			break
		}
	}
	return nil
}

// StoryMemory is the persisted aggregate for one story: the setup profile,
// the chosen introduction, the append-only decision history, and a rolling
// plain-text summary of events.
type StoryMemory struct {
	Setup        Profile        `json:"setup"`
	Mode         string         `json:"mode,omitempty"`
	Introduction *Introduction  `json:"introduction,omitempty"`
	ChatHistory  []MemoryRecord `json:"chatHistory"`
	Summary      string         `json:"summary,omitempty"`
}

// RebuildSummary recomputes the summary by walking the full history in
// chronological order. The seed prompt is deliberately excluded so the
// summary describes events, not configuration; it is the only context fed to
// the art prompt builder. Recomputing from the same history always yields the
// same string.
func (m *StoryMemory) RebuildSummary() {
	var b strings.Builder
	for _, rec := range m.ChatHistory {
		if rec.SpeakerName != "" {
			b.WriteString("Speaker (" + rec.SpeakerName + "): " + rec.SpeakerText + "\n")
		} else {
			b.WriteString("Speaker: " + rec.SpeakerText + "\n")
		}
		b.WriteString("Option: " + rec.UserChoice + "\n")
	}
	m.Summary = strings.TrimSuffix(b.String(), "\n")
}
