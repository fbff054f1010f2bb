package ui

import (
	"errors"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"visualnovel/internal/novel"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case animationTickMsg:
		return m.handleAnimation()
	case introOptionsMsg:
		return m.handleIntroOptions(msg)
	case introCommittedMsg:
		return m.handleIntroCommitted(msg)
	case turnMsg:
		return m.handleTurn(msg)
	case artMsg:
		return m.handleArt(msg)
	case storiesMsg:
		return m.handleStories(msg)
	case storyLoadedMsg:
		return m.handleStoryLoaded(msg)
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}
	return m, nil
}

func (m Model) handleAnimation() (tea.Model, tea.Cmd) {
	if m.loading {
		m.animationFrame++
		return m, animationTimer()
	}
	return m, nil
}

func (m Model) handleIntroOptions(msg introOptionsMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		m.status = "Could not fetch story beginnings: " + msg.err.Error()
		m.phase = phaseMenu
		return m, nil
	}
	if len(msg.options) == 0 {
		m.status = "The model returned no story beginnings, try again"
		m.phase = phaseMenu
		return m, nil
	}
	m.introOptions = msg.options
	m.introIndex = 0
	m.phase = phaseIntroChoose
	return m, nil
}

func (m Model) handleIntroCommitted(msg introCommittedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		m.status = "Could not name the story: " + msg.err.Error()
		m.phase = phaseIntroChoose
		return m, nil
	}
	m.storyName = msg.storyName
	return m.startEngine(nil)
}

// startEngine builds a fresh engine for the current story and kicks off the
// auto-advanced opening turn.
func (m Model) startEngine(memory *novel.StoryMemory) (tea.Model, tea.Cmd) {
	mode, err := novel.ModeByName(m.modeName)
	if err != nil {
		mode = novel.KatMode()
	}

	cfg := novel.EngineConfig{
		StoryKey:  m.storyKey,
		Mode:      mode,
		Profile:   m.profile,
		PageSize:  m.deps.PageSize,
		Completer: m.deps.LLM,
		Recorder:  m.deps.Recorder,
		Audit:     m.deps.Audit,
		Log:       m.deps.Log,
	}
	if memory != nil {
		cfg.Intro = memory.Introduction
		cfg.ResumeSummary = memory.Summary
	} else {
		cfg.Intro = &novel.Introduction{ChosenOption: m.introOptions[m.introIndex], StoryName: m.storyName}
	}

	if m.engine != nil {
		m.engine.Close()
	}
	m.engine = novel.NewEngine(cfg)
	m.phase = phaseTurnLoading
	m.loading = true
	m.animationFrame = 0
	return m, tea.Batch(startTurnCmd(m.engine), animationTimer())
}

func (m Model) handleTurn(msg turnMsg) (tea.Model, tea.Cmd) {
	if errors.Is(msg.err, novel.ErrFetchInFlight) {
		// Rejected duplicate; the honored fetch will deliver its own turnMsg.
		return m, nil
	}
	m.loading = false
	if msg.err != nil {
		if errors.Is(msg.err, novel.ErrSessionClosed) {
			return m, nil
		}
		m.status = "Error: " + msg.err.Error()
		// A failed choice keeps the options on screen for a retry.
		if m.turn.OptionsRevealed {
			m.phase = phasePlaying
		} else {
			m.phase = phaseMenu
		}
		return m, nil
	}

	m.status = ""
	m.turn = msg.view
	m.phase = phasePlaying

	if m.deps.Artist != nil {
		return m, refreshArtCmd(m.deps.Artist, msg.view.SpeakerName, m.deps.Recorder)
	}
	return m, nil
}

func (m Model) handleArt(msg artMsg) (tea.Model, tea.Cmd) {
	if msg.changed {
		m.artState = msg.state
	}
	return m, nil
}

func (m Model) handleStories(msg storiesMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.status = "Error: " + msg.err.Error()
		m.phase = phaseMenu
		return m, nil
	}
	m.stories = msg.keys
	if m.loadIndex >= len(m.stories) {
		m.loadIndex = 0
	}
	m.phase = phaseLoad
	return m, nil
}

func (m Model) handleStoryLoaded(msg storyLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.status = "Could not load story: " + msg.err.Error()
		m.phase = phaseLoad
		return m, nil
	}
	m.storyKey = msg.key
	m.profile = msg.memory.Setup
	m.modeName = msg.memory.Mode
	if msg.memory.Introduction != nil {
		m.storyName = msg.memory.Introduction.StoryName
	}
	return m.startEngine(msg.memory)
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.phase {
	case phaseMenu:
		return m.handleMenuKey(msg)
	case phaseSetup:
		return m.handleSetupKey(msg)
	case phaseIntroChoose:
		return m.handleIntroKey(msg)
	case phasePlaying:
		return m.handlePlayingKey(msg)
	case phaseLoad:
		return m.handleLoadKey(msg)
	}
	return m, nil
}

var menuEntries = []string{"New Story", "Load Story", "Quit"}

func (m Model) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < len(menuEntries)-1 {
			m.menuIndex++
		}
	case "enter":
		m.status = ""
		switch m.menuIndex {
		case 0:
			m.form = setupForm{answers: make([]string, len(setupFields))}
			m.input = ""
			m.phase = phaseSetup
		case 1:
			return m, listStoriesCmd(m.deps.Store)
		case 2:
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) handleSetupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.phase = phaseMenu
		return m, nil
	}

	if pick, picking := m.form.pickStep(); picking {
		choice := -1
		switch msg.String() {
		case "1":
			choice = 0
		case "2":
			choice = 1
		case "3":
			choice = 2
		}
		if choice < 0 {
			return m, nil
		}
		switch pick {
		case pickSetting:
			m.form.setting = settingChoices[choice]
			m.form.step++
		case pickGameType:
			m.form.gameType = gameTypeChoices[choice]
			m.form.step++
		case pickMode:
			modes := novel.Modes()
			if choice >= len(modes) {
				return m, nil
			}
			m.form.gameMode = modes[choice].Name
			return m.submitSetup()
		}
		return m, nil
	}

	switch msg.String() {
	case "enter":
		return m.submitSetupField()
	case "backspace":
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	default:
		if len(msg.String()) == 1 && len(m.input) < 20 {
			m.input += msg.String()
		}
	}
	return m, nil
}

func (m Model) submitSetupField() (tea.Model, tea.Cmd) {
	field := setupFields[m.form.step]
	value := strings.TrimSpace(m.input)
	if value == "" && !field.optional {
		m.status = "This field is required"
		return m, nil
	}
	if m.form.step == 1 {
		if _, err := strconv.Atoi(value); err != nil {
			m.status = "Age must be a number"
			return m, nil
		}
	}
	m.status = ""
	m.form.answers[m.form.step] = value
	m.form.step++
	m.input = ""
	return m, nil
}

func (m Model) submitSetup() (tea.Model, tea.Cmd) {
	age, _ := strconv.Atoi(m.form.answers[1])
	profile := novel.Profile{
		UserName: m.form.answers[0],
		UserAge:  age,
		Genre: novel.GenreSetting{
			Setting:  m.form.setting,
			GameType: m.form.gameType,
		},
	}
	for _, fav := range m.form.answers[2:5] {
		if fav != "" {
			profile.FavoriteThings = append(profile.FavoriteThings, fav)
		}
	}
	for _, trait := range m.form.answers[5:8] {
		if trait != "" {
			profile.PersonalityTraits = append(profile.PersonalityTraits, trait)
		}
	}

	key, err := m.deps.Store.CreateStory(profile, m.form.gameMode)
	if err != nil {
		m.status = "Setup failed: " + err.Error()
		m.phase = phaseMenu
		return m, nil
	}

	m.profile = profile
	m.modeName = m.form.gameMode
	m.storyKey = key
	m.phase = phaseIntroLoading
	m.loading = true
	m.animationFrame = 0
	return m, tea.Batch(fetchIntroOptionsCmd(m.deps.Intro, profile), animationTimer())
}

func (m Model) handleIntroKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.phase = phaseMenu
	case "up", "k":
		if m.introIndex > 0 {
			m.introIndex--
		}
	case "down", "j":
		if m.introIndex < len(m.introOptions)-1 {
			m.introIndex++
		}
	case "enter":
		m.phase = phaseNaming
		m.loading = true
		m.animationFrame = 0
		return m, tea.Batch(commitIntroCmd(m.deps.Intro, m.introOptions[m.introIndex]), animationTimer())
	}
	return m, nil
}

func (m Model) handlePlayingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.engine != nil {
			m.engine.Close()
			m.engine = nil
		}
		m.phase = phaseMenu
		return m, nil
	case "enter", " ":
		if m.engine != nil && !m.turn.OptionsRevealed {
			m.turn = m.engine.Advance()
		}
		return m, nil
	case "1", "2", "3":
		if m.engine == nil || !m.turn.OptionsRevealed {
			return m, nil
		}
		index := int(msg.String()[0] - '1')
		if m.turn.Options[index] == "" {
			return m, nil
		}
		m.loading = true
		m.animationFrame = 0
		m.phase = phaseTurnLoading
		return m, tea.Batch(chooseCmd(m.engine, index), animationTimer())
	}
	return m, nil
}

func (m Model) handleLoadKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.phase = phaseMenu
	case "up", "k":
		if m.loadIndex > 0 {
			m.loadIndex--
		}
	case "down", "j":
		if m.loadIndex < len(m.stories)-1 {
			m.loadIndex++
		}
	case "d":
		if len(m.stories) > 0 {
			return m, deleteStoryCmd(m.deps.Store, m.stories[m.loadIndex])
		}
	case "enter":
		if len(m.stories) > 0 {
			return m, loadStoryCmd(m.deps.Store, m.stories[m.loadIndex])
		}
	}
	return m, nil
}
