package novel

import "fmt"

// Mode is the per-game-mode prompt contract: which speaker label the model
// is instructed to prefix its dialogue with, whether the speaker text itself
// carries inline speaker names, and how the scenario seed is built from the
// player profile.
type Mode struct {
	Name           string
	SpeakerLabel   string
	InlineSpeakers bool
	SeedPrompt     func(p Profile, intro *Introduction) string
}

// KatMode is the classic single-character mode: every line of dialogue comes
// from Kat herself, so no inline speaker extraction is needed.
func KatMode() Mode {
	return Mode{
		Name:         "kat",
		SpeakerLabel: "Kat",
		SeedPrompt:   katSeedPrompt,
	}
}

// LittleMartianMode narrates an interplanetary quest with multiple in-story
// speakers; the assistant self-identifies the speaker inline.
func LittleMartianMode() Mode {
	return Mode{
		Name:           "little-martian",
		SpeakerLabel:   "Assistant",
		InlineSpeakers: true,
		SeedPrompt:     littleMartianSeedPrompt,
	}
}

// Modes lists every shipped game mode in menu order.
func Modes() []Mode {
	return []Mode{KatMode(), LittleMartianMode()}
}

// ModeByName resolves a mode by its persisted name.
func ModeByName(name string) (Mode, error) {
	for _, m := range Modes() {
		if m.Name == name {
			return m, nil
		}
	}
	return Mode{}, fmt.Errorf("unknown game mode %q", name)
}
