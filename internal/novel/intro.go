package novel

import (
	"context"
	"fmt"
	"strings"

	"visualnovel/internal/debug"
)

const maxStoryNameLength = 30

// TextCompleter is the one-shot flavor of the completion collaborator, used
// where no transcript needs replaying (story beginnings, story names, the
// art decision).
type TextCompleter interface {
	CompleteText(ctx context.Context, prompt string) (string, error)
}

// Intro generates the three story-beginning candidates shown after setup and
// names the story once the player has picked one.
type Intro struct {
	completer TextCompleter
	store     MemoryStore
	log       *debug.Logger
}

func NewIntro(completer TextCompleter, store MemoryStore, log *debug.Logger) *Intro {
	return &Intro{completer: completer, store: store, log: log}
}

// StoryOptions asks the model for three short beginnings built from the
// setup questionnaire. The response is parsed tolerantly: fewer than three
// recognizable options is not an error, the player just gets fewer choices.
func (i *Intro) StoryOptions(ctx context.Context, p Profile) ([]string, error) {
	response, err := i.completer.CompleteText(ctx, introOptionsPrompt(p))
	if err != nil {
		return nil, fmt.Errorf("fetch story options: %w", err)
	}
	return parseStoryOptions(response), nil
}

func parseStoryOptions(text string) []string {
	var options []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		for _, prefix := range optionPrefixes {
			if strings.HasPrefix(lower, prefix) {
				options = append(options, strings.TrimSpace(line[len(prefix):]))
				break
			}
		}
	}
	return options
}

// CommitChoice generates a name for the chosen beginning and persists the
// introduction onto the current story's memory.
func (i *Intro) CommitChoice(ctx context.Context, chosenOption string) (string, error) {
	key := i.store.CurrentStory()
	if key == "" {
		return "", ErrNoCurrentStory
	}
	memory, err := i.store.LoadMemory(key)
	if err != nil {
		return "", fmt.Errorf("load memory for %q: %w", key, err)
	}
	if memory == nil {
		return "", ErrNoMemory
	}

	response, err := i.completer.CompleteText(ctx, storyNamePrompt(chosenOption))
	if err != nil {
		return "", fmt.Errorf("generate story name: %w", err)
	}
	storyName := sanitizeStoryName(response)
	if storyName == "" {
		storyName = "Untitled_Story"
	}

	memory.Introduction = &Introduction{
		ChosenOption: chosenOption,
		StoryName:    storyName,
	}
	if err := i.store.SaveMemory(key, memory); err != nil {
		return "", fmt.Errorf("save memory for %q: %w", key, err)
	}
	i.log.Printf("story %q named %q", key, storyName)
	return storyName, nil
}

// sanitizeStoryName strips non-ASCII characters, replaces whitespace runs
// with underscores, and caps the length at 30.
func sanitizeStoryName(name string) string {
	name = strings.TrimSpace(name)
	var b strings.Builder
	for _, r := range name {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	fields := strings.Fields(b.String())
	name = strings.Join(fields, "_")
	if len(name) > maxStoryNameLength {
		name = name[:maxStoryNameLength]
	}
	return name
}
