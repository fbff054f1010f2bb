package novel

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedCompleter returns canned responses in order. When block is set,
// Complete waits on it first, which lets tests hold a fetch in flight.
type scriptedCompleter struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     [][]Message
	block     chan struct{}
}

func (c *scriptedCompleter) Complete(_ context.Context, messages []Message) (string, error) {
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, messages)
	if c.err != nil {
		return "", c.err
	}
	if len(c.responses) == 0 {
		return "", errors.New("no scripted response left")
	}
	response := c.responses[0]
	c.responses = c.responses[1:]
	return response, nil
}

func (c *scriptedCompleter) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

type auditEntry struct {
	storyKey      string
	userMessage   string
	response      string
	transcriptLen int
}

type captureAudit struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (a *captureAudit) LogTurn(storyKey, userMessage, response string, transcriptLen int, _ time.Duration) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, auditEntry{storyKey, userMessage, response, transcriptLen})
	return nil
}

func testProfile() Profile {
	return Profile{
		UserName: "Sam",
		UserAge:  25,
		Genre:    GenreSetting{Setting: "sci-fi", GameType: "adventure"},
	}
}

func newTestEngine(completer Completer, recorder *Recorder, audit TurnLogger) *Engine {
	return NewEngine(EngineConfig{
		StoryKey:  "story-sam-1",
		Mode:      KatMode(),
		Profile:   testProfile(),
		Intro:     &Introduction{ChosenOption: "You wake up on a starship.", StoryName: "Starship_Dawn"},
		PageSize:  20,
		Completer: completer,
		Recorder:  recorder,
		Audit:     audit,
		Log:       testLogger(),
	})
}

const katTurn = "Kat: Hello Sam, the engines just died.\n" +
	"option 1: Check the engine room\n" +
	"option 2: Call for help\n" +
	"option 3: Go back to sleep"

func TestEngineStart(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{katTurn}}
	audit := &captureAudit{}
	engine := newTestEngine(completer, nil, audit)

	require.Equal(t, 1, engine.LedgerLen(), "seed only before the first fetch")

	view, err := engine.Start(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Hello Sam, the engin", view.Page)
	assert.False(t, view.OptionsRevealed)
	assert.Equal(t, StateDisplaying, engine.State())
	assert.Equal(t, 2, engine.LedgerLen(), "seed plus raw assistant completion")

	t.Run("audit receives the honored turn", func(t *testing.T) {
		require.Len(t, audit.entries, 1)
		entry := audit.entries[0]
		assert.Equal(t, "story-sam-1", entry.storyKey)
		assert.Empty(t, entry.userMessage)
		assert.Equal(t, katTurn, entry.response)
		assert.Equal(t, 1, entry.transcriptLen)
	})
}

func TestEngineAdvanceRevealsOptions(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{katTurn}}
	engine := newTestEngine(completer, nil, nil)

	view, err := engine.Start(context.Background())
	require.NoError(t, err)
	require.Greater(t, view.PageCount, 1)

	for !view.OptionsRevealed {
		view = engine.Advance()
	}

	assert.Equal(t, StateOptionsShown, engine.State())
	assert.Equal(t, [3]string{"Check the engine room", "Call for help", "Go back to sleep"}, view.Options)

	t.Run("advancing past the end keeps the last page", func(t *testing.T) {
		last := view.Page
		view = engine.Advance()
		assert.Equal(t, last, view.Page)
		assert.True(t, view.OptionsRevealed)
	})
}

func TestEngineChoose(t *testing.T) {
	store := newMemStore()
	store.current = "story-sam-1"
	store.memories["story-sam-1"] = &StoryMemory{}
	recorder := NewRecorder(store, testLogger())

	completer := &scriptedCompleter{responses: []string{katTurn,
		"Kat: The engine room is dark.\noption 1: Find a light\noption 2: Feel your way\noption 3: Turn back"}}
	engine := newTestEngine(completer, recorder, nil)

	_, err := engine.Start(context.Background())
	require.NoError(t, err)
	view := engine.View()
	for !view.OptionsRevealed {
		view = engine.Advance()
	}
	require.Equal(t, 2, engine.LedgerLen())

	view, err = engine.Choose(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 4, engine.LedgerLen(), "choice and new completion appended")
	assert.Equal(t, "The engine room is d", view.Page)

	t.Run("memory record is written for the committed choice", func(t *testing.T) {
		memory := store.memories["story-sam-1"]
		require.Len(t, memory.ChatHistory, 1)
		record := memory.ChatHistory[0]
		assert.Equal(t, "Hello Sam, the engines just died.", record.SpeakerText)
		assert.Equal(t, "Check the engine room", record.UserChoice)
		assert.Equal(t, "Sam", record.UserName)
	})

	t.Run("the chosen option became the next user message", func(t *testing.T) {
		require.Len(t, completer.calls, 2)
		outbound := completer.calls[1]
		require.Len(t, outbound, 3)
		assert.Equal(t, RoleUser, outbound[2].Role)
		assert.Equal(t, "Check the engine room", outbound[2].Content)
	})

	t.Run("the raw completion is replayed, not the cleaned text", func(t *testing.T) {
		outbound := completer.calls[1]
		assert.Equal(t, RoleAssistant, outbound[1].Role)
		assert.Equal(t, katTurn, outbound[1].Content)
	})
}

func TestEngineChooseGuards(t *testing.T) {
	t.Run("rejected outside the options state", func(t *testing.T) {
		engine := newTestEngine(&scriptedCompleter{}, nil, nil)
		_, err := engine.Choose(context.Background(), 0)
		assert.ErrorIs(t, err, ErrNotChoosing)
	})

	t.Run("out-of-range index is rejected", func(t *testing.T) {
		completer := &scriptedCompleter{responses: []string{katTurn}}
		engine := newTestEngine(completer, nil, nil)
		_, err := engine.Start(context.Background())
		require.NoError(t, err)
		view := engine.View()
		for !view.OptionsRevealed {
			view = engine.Advance()
		}

		_, err = engine.Choose(context.Background(), 3)
		assert.ErrorIs(t, err, ErrNotChoosing)
		_, err = engine.Choose(context.Background(), -1)
		assert.ErrorIs(t, err, ErrNotChoosing)
	})
}

func TestEngineInFlightGuard(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{katTurn}, block: make(chan struct{})}
	engine := newTestEngine(completer, nil, nil)

	done := make(chan error, 1)
	go func() {
		_, err := engine.Start(context.Background())
		done <- err
	}()

	require.Eventually(t, func() bool {
		return engine.State() == StateFetching
	}, time.Second, time.Millisecond)

	_, err := engine.Start(context.Background())
	assert.ErrorIs(t, err, ErrFetchInFlight)

	close(completer.block)
	require.NoError(t, <-done)

	assert.Equal(t, 1, completer.callCount(), "the rejected call never reached the completion API")
	assert.Equal(t, 2, engine.LedgerLen(), "exactly one assistant append")
}

func TestEngineFetchFailure(t *testing.T) {
	t.Run("opening fetch failure leaves the ledger untouched", func(t *testing.T) {
		completer := &scriptedCompleter{err: errors.New("api down")}
		engine := newTestEngine(completer, nil, nil)

		_, err := engine.Start(context.Background())
		assert.ErrorContains(t, err, "api down")
		assert.Equal(t, 1, engine.LedgerLen())
		assert.Equal(t, StateIdle, engine.State())
	})

	t.Run("failed choice keeps the options for a retry", func(t *testing.T) {
		store := newMemStore()
		store.current = "story-sam-1"
		store.memories["story-sam-1"] = &StoryMemory{}
		recorder := NewRecorder(store, testLogger())

		completer := &scriptedCompleter{responses: []string{katTurn}}
		engine := newTestEngine(completer, recorder, nil)
		_, err := engine.Start(context.Background())
		require.NoError(t, err)
		view := engine.View()
		for !view.OptionsRevealed {
			view = engine.Advance()
		}

		completer.err = errors.New("api down")
		_, err = engine.Choose(context.Background(), 1)
		assert.ErrorContains(t, err, "api down")

		assert.Equal(t, 2, engine.LedgerLen(), "neither choice nor completion appended")
		assert.Equal(t, StateOptionsShown, engine.State())
		assert.True(t, engine.View().OptionsRevealed)

		completer.err = nil
		completer.responses = []string{"Kat: You call for help.\noption 1: Wait\noption 2: Shout\noption 3: Whistle"}
		_, err = engine.Choose(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, 4, engine.LedgerLen())
	})
}

func TestEngineCloseDiscardsStaleResult(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{katTurn}, block: make(chan struct{})}
	engine := newTestEngine(completer, nil, nil)

	done := make(chan error, 1)
	go func() {
		_, err := engine.Start(context.Background())
		done <- err
	}()

	require.Eventually(t, func() bool {
		return engine.State() == StateFetching
	}, time.Second, time.Millisecond)

	engine.Close()
	close(completer.block)

	assert.ErrorIs(t, <-done, ErrSessionClosed)
	assert.Equal(t, 1, engine.LedgerLen(), "late result did not touch the ledger")
}

func TestEngineInlineSpeakers(t *testing.T) {
	response := "Assistant: Mira: The airlock is jammed.\n" +
		"option 1: Force it\noption 2: Find another way\noption 3: Ask Mira for help"
	completer := &scriptedCompleter{responses: []string{response}}

	engine := NewEngine(EngineConfig{
		StoryKey:  "story-sam-2",
		Mode:      LittleMartianMode(),
		Profile:   testProfile(),
		Completer: completer,
		Log:       testLogger(),
	})

	view, err := engine.Start(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Mira", view.SpeakerName)
	assert.Equal(t, "The airlock is jammed.", view.Page)
}

func TestEngineFullTurnCycle(t *testing.T) {
	store := newMemStore()
	store.current = "story-Mari-1"
	store.memories["story-Mari-1"] = &StoryMemory{}
	recorder := NewRecorder(store, testLogger())

	opening := "Assistant: Narrator: Mari steps onto the red dust of the landing site.\n" +
		"option 1: Head for the dome\n" +
		"option 2: Inspect the rover\n" +
		"option 3: Radio the orbiter"
	second := "Assistant: Rover: Diagnostics green, Mari. Where to?\n" +
		"option 1: The dome\noption 2: The canyon\noption 3: Stay put"
	completer := &scriptedCompleter{responses: []string{opening, second}}

	engine := NewEngine(EngineConfig{
		StoryKey:  "story-Mari-1",
		Mode:      LittleMartianMode(),
		Profile:   Profile{UserName: "Mari", UserAge: 9, Genre: GenreSetting{Setting: "sci-fi", GameType: "adventure"}},
		Intro:     &Introduction{ChosenOption: "Mari lands on Mars.", StoryName: "Red_Dust"},
		Completer: completer,
		Recorder:  recorder,
		Log:       testLogger(),
	})

	view, err := engine.Start(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, view.Page)
	assert.Equal(t, "Narrator", view.SpeakerName)

	for !view.OptionsRevealed {
		view = engine.Advance()
	}
	require.Equal(t, "Inspect the rover", view.Options[1])
	ledgerBefore := engine.LedgerLen()

	view, err = engine.Choose(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, ledgerBefore+2, engine.LedgerLen(), "user choice plus assistant reply")
	assert.Equal(t, "Rover", view.SpeakerName)

	memory := store.memories["story-Mari-1"]
	require.Len(t, memory.ChatHistory, 1)
	record := memory.ChatHistory[0]
	assert.Equal(t, "Inspect the rover", record.UserChoice)
	assert.Equal(t, "Mari", record.UserName)
	assert.Equal(t, "Narrator", record.SpeakerName)
	assert.Equal(t, "Mari steps onto the red dust of the landing site.", record.SpeakerText)
}

func TestEngineResumeSummary(t *testing.T) {
	engine := NewEngine(EngineConfig{
		StoryKey:      "story-sam-3",
		Mode:          KatMode(),
		Profile:       testProfile(),
		ResumeSummary: "Speaker: Hi\nOption: Wave",
		Completer:     &scriptedCompleter{},
		Log:           testLogger(),
	})

	assert.Equal(t, 2, engine.LedgerLen(), "seed plus replayed summary")
}
