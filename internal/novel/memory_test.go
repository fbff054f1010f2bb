package novel

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRecordJSON(t *testing.T) {
	t.Run("named speaker uses a name-qualified key", func(t *testing.T) {
		record := MemoryRecord{
			Timestamp:   "2026-09-01T10:00:00Z",
			SpeakerName: "Mira",
			SpeakerText: "We need to hurry.",
			UserChoice:  "Run",
			UserName:    "Sam",
		}

		data, err := json.Marshal(record)
		require.NoError(t, err)

		var raw map[string]string
		require.NoError(t, json.Unmarshal(data, &raw))
		assert.Equal(t, "We need to hurry.", raw["speaker_Mira"])
		assert.NotContains(t, raw, "speakerText")

		var decoded MemoryRecord
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, record, decoded)
	})

	t.Run("anonymous speaker uses the generic key", func(t *testing.T) {
		record := MemoryRecord{
			Timestamp:   "2026-09-01T10:00:00Z",
			SpeakerText: "A door creaks open.",
			UserChoice:  "Enter",
			UserName:    "Sam",
		}

		data, err := json.Marshal(record)
		require.NoError(t, err)

		var raw map[string]string
		require.NoError(t, json.Unmarshal(data, &raw))
		assert.Equal(t, "A door creaks open.", raw["speakerText"])

		var decoded MemoryRecord
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, record, decoded)
	})
}

func TestRebuildSummary(t *testing.T) {
	memory := &StoryMemory{
		ChatHistory: []MemoryRecord{
			{SpeakerText: "You wake up on a beach.", UserChoice: "Look around"},
			{SpeakerName: "Mira", SpeakerText: "Finally awake?", UserChoice: "Ask where you are"},
		},
	}

	memory.RebuildSummary()

	assert.Equal(t,
		"Speaker: You wake up on a beach.\n"+
			"Option: Look around\n"+
			"Speaker (Mira): Finally awake?\n"+
			"Option: Ask where you are",
		memory.Summary)

	t.Run("recomputing from the same history is idempotent", func(t *testing.T) {
		before := memory.Summary
		memory.RebuildSummary()
		assert.Equal(t, before, memory.Summary)
	})

	t.Run("empty history yields an empty summary", func(t *testing.T) {
		empty := &StoryMemory{}
		empty.RebuildSummary()
		assert.Empty(t, empty.Summary)
	})
}
