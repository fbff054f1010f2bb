package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"visualnovel/internal/art"
	"visualnovel/internal/debug"
	"visualnovel/internal/llm"
	"visualnovel/internal/logging"
	"visualnovel/internal/novel"
	"visualnovel/internal/storage"
)

type phase int

const (
	phaseMenu phase = iota
	phaseSetup
	phaseIntroLoading
	phaseIntroChoose
	phaseNaming
	phaseTurnLoading
	phasePlaying
	phaseLoad
)

// Deps are the collaborators the UI drives. Artist may be nil when the image
// API is not configured.
type Deps struct {
	Store    *storage.FileStore
	LLM      *llm.Service
	Recorder *novel.Recorder
	Intro    *novel.Intro
	Audit    *logging.CompletionLogger
	Artist   *art.Generator
	Log      *debug.Logger
	PageSize int
}

// setupField is one text question of the setup form.
type setupField struct {
	prompt   string
	optional bool
}

var setupFields = []setupField{
	{prompt: "Your name (max 20 chars)"},
	{prompt: "Your age"},
	{prompt: "Favorite thing 1 (optional)", optional: true},
	{prompt: "Favorite thing 2 (optional)", optional: true},
	{prompt: "Favorite thing 3 (optional)", optional: true},
	{prompt: "Personality trait 1 (optional)", optional: true},
	{prompt: "Personality trait 2 (optional)", optional: true},
	{prompt: "Personality trait 3 (optional)", optional: true},
}

// pick steps follow the text questions.
const (
	pickSetting = iota
	pickGameType
	pickMode
)

var (
	settingChoices  = []string{"sci-fi", "fantasy", "contemporary"}
	gameTypeChoices = []string{"adventure", "romance", "mystery"}
)

type setupForm struct {
	step     int // index into setupFields, then len(setupFields)+pick*
	answers  []string
	setting  string
	gameMode string
	gameType string
}

func modeNames() []string {
	var names []string
	for _, mode := range novel.Modes() {
		names = append(names, mode.Name)
	}
	return names
}

func (f *setupForm) pickStep() (int, bool) {
	if f.step < len(setupFields) {
		return 0, false
	}
	return f.step - len(setupFields), true
}

// Model is the bubbletea model for the whole client. All engine work runs
// behind tea.Cmds; the engine itself rejects concurrent fetches.
type Model struct {
	deps Deps

	width  int
	height int
	phase  phase

	menuIndex int

	form  setupForm
	input string

	profile      novel.Profile
	modeName     string
	storyKey     string
	introOptions []string
	introIndex   int
	storyName    string

	engine   *novel.Engine
	turn     novel.TurnView
	artState art.State

	stories   []string
	loadIndex int

	loading        bool
	animationFrame int
	status         string
}

func NewModel(deps Deps) Model {
	return Model{
		deps:  deps,
		phase: phaseMenu,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Cleanup abandons the active session so late completion results are
// discarded rather than applied.
func (m Model) Cleanup() {
	if m.engine != nil {
		m.engine.Close()
	}
}

type animationTickMsg struct{}

type introOptionsMsg struct {
	options []string
	err     error
}

type introCommittedMsg struct {
	storyName string
	err       error
}

type turnMsg struct {
	view novel.TurnView
	err  error
}

type artMsg struct {
	state   art.State
	changed bool
}

type storiesMsg struct {
	keys []string
	err  error
}

type storyLoadedMsg struct {
	key    string
	memory *novel.StoryMemory
	err    error
}
