package novel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	t.Run("extracts speaker text and all three options", func(t *testing.T) {
		response := "Kat: Hello there, ready for an adventure?\n" +
			"Option 1: Say yes\n" +
			"Option 2: Say no\n" +
			"Option 3: Ask who she is"

		turn := Parse(response, "Kat")

		assert.Equal(t, "Hello there, ready for an adventure?", turn.SpeakerText)
		assert.Equal(t, [3]string{"Say yes", "Say no", "Ask who she is"}, turn.Options)
	})

	t.Run("prefix matching is case-insensitive", func(t *testing.T) {
		response := "KAT: shouting now\noPtIoN 1: mixed case"

		turn := Parse(response, "Kat")

		assert.Equal(t, "shouting now", turn.SpeakerText)
		assert.Equal(t, "mixed case", turn.Options[0])
	})

	t.Run("missing options leave empty slots", func(t *testing.T) {
		response := "Kat: Just talking.\nOption 2: only the middle one"

		turn := Parse(response, "Kat")

		assert.Equal(t, "Just talking.", turn.SpeakerText)
		assert.Equal(t, [3]string{"", "only the middle one", ""}, turn.Options)
	})

	t.Run("unrecognized lines are ignored", func(t *testing.T) {
		response := "Some preamble the model added.\n" +
			"Kat: The actual line.\n" +
			"option 1: go\n" +
			"P.S. ignore me"

		turn := Parse(response, "Kat")

		assert.Equal(t, "The actual line.", turn.SpeakerText)
		assert.Equal(t, "go", turn.Options[0])
	})

	t.Run("never fails on garbage input", func(t *testing.T) {
		for _, input := range []string{"", "\n\n\n", "no structure at all", ":::", "option 4: nope"} {
			turn := Parse(input, "Kat")
			assert.Empty(t, turn.SpeakerText, "input %q", input)
			assert.Equal(t, [3]string{}, turn.Options, "input %q", input)
		}
	})

	t.Run("assistant-labeled turn", func(t *testing.T) {
		turn := Parse("Assistant: Hello\noption 1: A\noption 2: B\noption 3: C", "Assistant")

		assert.Equal(t, "Hello", turn.SpeakerText)
		assert.Equal(t, [3]string{"A", "B", "C"}, turn.Options)
	})

	t.Run("honors the mode's speaker label", func(t *testing.T) {
		response := "Assistant: Mira: We need to hurry.\noption 1: run"

		turn := Parse(response, "Assistant")

		assert.Equal(t, "Mira: We need to hurry.", turn.SpeakerText)
	})
}

func TestExtractSpeakerName(t *testing.T) {
	t.Run("splits at the first colon", func(t *testing.T) {
		name, cleaned := ExtractSpeakerName("Mira: We need to hurry: now.")
		assert.Equal(t, "Mira", name)
		assert.Equal(t, "We need to hurry: now.", cleaned)
	})

	t.Run("no colon means no name", func(t *testing.T) {
		name, cleaned := ExtractSpeakerName("Just narration without a speaker.")
		assert.Empty(t, name)
		assert.Equal(t, "Just narration without a speaker.", cleaned)
	})

	t.Run("leading colon leaves the text unchanged", func(t *testing.T) {
		name, cleaned := ExtractSpeakerName(": whispered words")
		assert.Empty(t, name)
		assert.Equal(t, ": whispered words", cleaned)
	})

	t.Run("whitespace-only name leaves the text unchanged", func(t *testing.T) {
		name, cleaned := ExtractSpeakerName("   : whispered words")
		assert.Empty(t, name)
		assert.Equal(t, "   : whispered words", cleaned)
	})
}
