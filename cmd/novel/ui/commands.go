package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"visualnovel/internal/art"
	"visualnovel/internal/novel"
	"visualnovel/internal/storage"
)

func animationTimer() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return animationTickMsg{}
	})
}

func fetchIntroOptionsCmd(intro *novel.Intro, profile novel.Profile) tea.Cmd {
	return func() tea.Msg {
		options, err := intro.StoryOptions(context.Background(), profile)
		return introOptionsMsg{options: options, err: err}
	}
}

func commitIntroCmd(intro *novel.Intro, chosen string) tea.Cmd {
	return func() tea.Msg {
		name, err := intro.CommitChoice(context.Background(), chosen)
		return introCommittedMsg{storyName: name, err: err}
	}
}

func startTurnCmd(engine *novel.Engine) tea.Cmd {
	return func() tea.Msg {
		view, err := engine.Start(context.Background())
		return turnMsg{view: view, err: err}
	}
}

func chooseCmd(engine *novel.Engine, index int) tea.Cmd {
	return func() tea.Msg {
		view, err := engine.Choose(context.Background(), index)
		return turnMsg{view: view, err: err}
	}
}

// refreshArtCmd runs the art sub-flow after a turn has landed. It is
// best-effort by construction: the generator keeps its previous state on any
// failure, so the narrative is never blocked.
func refreshArtCmd(artist *art.Generator, speakerName string, recorder *novel.Recorder) tea.Cmd {
	return func() tea.Msg {
		state, changed := artist.Refresh(context.Background(), speakerName, recorder.Summary())
		return artMsg{state: state, changed: changed}
	}
}

func listStoriesCmd(store *storage.FileStore) tea.Cmd {
	return func() tea.Msg {
		keys, err := store.ListStories()
		return storiesMsg{keys: keys, err: err}
	}
}

func loadStoryCmd(store *storage.FileStore, key string) tea.Cmd {
	return func() tea.Msg {
		if err := store.SetCurrentStory(key); err != nil {
			return storyLoadedMsg{key: key, err: err}
		}
		memory, err := store.LoadMemory(key)
		if err == nil && memory == nil {
			err = novel.ErrNoMemory
		}
		return storyLoadedMsg{key: key, memory: memory, err: err}
	}
}

func deleteStoryCmd(store *storage.FileStore, key string) tea.Cmd {
	return func() tea.Msg {
		if err := store.RemoveMemory(key); err != nil {
			return storiesMsg{err: err}
		}
		if store.CurrentStory() == key {
			_ = store.ClearCurrentStory()
		}
		keys, err := store.ListStories()
		return storiesMsg{keys: keys, err: err}
	}
}
