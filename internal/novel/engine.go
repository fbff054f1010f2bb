package novel

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"visualnovel/internal/debug"
)

var (
	// ErrFetchInFlight means a completion request is already running for
	// this session; the second call is rejected, never queued or raced.
	ErrFetchInFlight = errors.New("a turn fetch is already in flight")
	// ErrSessionClosed means the session was abandoned; any in-flight result
	// is discarded rather than applied.
	ErrSessionClosed = errors.New("story session is closed")
	// ErrNotChoosing means Choose was called while no options were on offer.
	ErrNotChoosing = errors.New("no options are currently available")
)

// Completer is the completion API collaborator: the full transcript in, one
// untrusted free-text completion out.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// TurnLogger receives a best-effort audit record of every honored turn.
type TurnLogger interface {
	LogTurn(storyKey, userMessage, response string, transcriptLen int, elapsed time.Duration) error
}

// State is the engine's position in the turn cycle.
type State int

const (
	StateIdle State = iota
	StateFetching
	StateDisplaying
	StateOptionsShown
)

// TurnView is the UI-facing snapshot of the current turn: the page on
// display, whether options are revealed, and which options there are.
type TurnView struct {
	SpeakerName     string
	Page            string
	PageIndex       int
	PageCount       int
	Options         [3]string
	OptionsRevealed bool
}

// Engine drives the request/response cycle for one story session: it builds
// the outbound transcript, invokes the completion call, parses the result,
// and updates ledger, pagination, and memory. Exactly one engine owns a
// story's ledger at a time.
type Engine struct {
	mu        sync.Mutex
	sessionID string
	storyKey  string
	mode      Mode
	ledger    *Ledger
	completer Completer
	recorder  *Recorder
	audit     TurnLogger
	log       *debug.Logger
	pageSize  int
	userName  string

	state           State
	view            PaginatedView
	options         [3]string
	lastSpeakerText string
	lastSpeakerName string

	inFlight bool
	closed   bool
	fetchSeq uint64
}

// EngineConfig wires an engine for one story session.
type EngineConfig struct {
	StoryKey string
	Mode     Mode
	Profile  Profile
	Intro    *Introduction
	// ResumeSummary, when non-empty, is replayed right after the seed so a
	// reloaded story picks up where its memory left off.
	ResumeSummary string
	PageSize      int

	Completer Completer
	Recorder  *Recorder
	Audit     TurnLogger
	Log       *debug.Logger
}

func NewEngine(cfg EngineConfig) *Engine {
	pageSize := cfg.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	ledger := NewLedger(cfg.Mode.SeedPrompt(cfg.Profile, cfg.Intro))
	if cfg.ResumeSummary != "" {
		ledger.AppendUser("The story so far:\n" + cfg.ResumeSummary)
	}
	return &Engine{
		sessionID: uuid.NewString(),
		storyKey:  cfg.StoryKey,
		mode:      cfg.Mode,
		ledger:    ledger,
		completer: cfg.Completer,
		recorder:  cfg.Recorder,
		audit:     cfg.Audit,
		log:       cfg.Log,
		pageSize:  pageSize,
		userName:  cfg.Profile.UserName,
		state:     StateIdle,
	}
}

// SessionID identifies this engine instance in logs and traces.
func (e *Engine) SessionID() string {
	return e.sessionID
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// LedgerLen reports the transcript length, mostly for tests and debug output.
func (e *Engine) LedgerLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Len()
}

// View returns the current turn snapshot.
func (e *Engine) View() TurnView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewLocked()
}

func (e *Engine) viewLocked() TurnView {
	return TurnView{
		SpeakerName:     e.lastSpeakerName,
		Page:            e.view.Current(),
		PageIndex:       e.view.Index,
		PageCount:       len(e.view.Pages),
		Options:         e.options,
		OptionsRevealed: e.view.OptionsRevealed,
	}
}

// Start performs the zero-th, auto-advanced fetch that plays the scenario
// seed. No memory record is written for it.
func (e *Engine) Start(ctx context.Context) (TurnView, error) {
	return e.fetchTurn(ctx, "")
}

// Advance reveals the next page of speaker text, or the options once the
// last page has been shown.
func (e *Engine) Advance() TurnView {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateDisplaying && e.state != StateOptionsShown {
		return e.viewLocked()
	}
	e.view.Advance()
	if e.view.OptionsRevealed {
		e.state = StateOptionsShown
	}
	return e.viewLocked()
}

// Choose commits the player to one of the three options: the memory record
// is written synchronously first, then the option text becomes the next user
// message and the next turn is fetched.
func (e *Engine) Choose(ctx context.Context, index int) (TurnView, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return TurnView{}, ErrSessionClosed
	}
	if e.state != StateOptionsShown {
		e.mu.Unlock()
		return e.View(), ErrNotChoosing
	}
	if index < 0 || index >= len(e.options) {
		e.mu.Unlock()
		return e.View(), ErrNotChoosing
	}
	if e.inFlight {
		e.mu.Unlock()
		return e.View(), ErrFetchInFlight
	}
	// Latch out of OptionsShown before releasing the lock so a racing second
	// Choose cannot write a duplicate memory record.
	e.state = StateFetching
	choice := e.options[index]
	speakerText := e.lastSpeakerText
	speakerName := e.lastSpeakerName
	e.mu.Unlock()

	if e.recorder != nil {
		if err := e.recorder.Record(speakerText, choice, e.userName, speakerName); err != nil {
			e.mu.Lock()
			e.state = StateOptionsShown
			e.mu.Unlock()
			return e.View(), err
		}
	}
	return e.fetchTurn(ctx, choice)
}

// Close abandons the session. An in-flight fetch is not cancelled, but its
// result will be discarded when it lands.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
}

// fetchTurn replays the full ledger (plus the new user message, if any) to
// the completion API. On failure the ledger is left untouched: the user
// message that triggered the fetch is discarded, not retried.
func (e *Engine) fetchTurn(ctx context.Context, userMessage string) (TurnView, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return TurnView{}, ErrSessionClosed
	}
	if e.inFlight {
		e.mu.Unlock()
		e.log.Printf("turn fetch rejected: one already in flight for session %s", e.sessionID)
		return TurnView{}, ErrFetchInFlight
	}
	e.inFlight = true
	e.fetchSeq++
	seq := e.fetchSeq
	e.state = StateFetching
	outbound := e.ledger.Snapshot()
	if userMessage != "" {
		outbound = append(outbound, Message{Role: RoleUser, Content: userMessage})
	}
	e.mu.Unlock()

	start := time.Now()
	raw, err := e.completer.Complete(ctx, outbound)
	elapsed := time.Since(start)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.inFlight = false

	if e.closed || seq != e.fetchSeq {
		e.log.Printf("discarding stale turn result for session %s", e.sessionID)
		return TurnView{}, ErrSessionClosed
	}
	if err != nil {
		// Return to the previous state: for a committed choice the options
		// stay on screen so the player can retry by re-choosing.
		if userMessage != "" {
			e.state = StateOptionsShown
		} else {
			e.state = StateIdle
		}
		e.log.Printf("turn fetch failed for session %s: %v", e.sessionID, err)
		return TurnView{}, err
	}

	// The full raw completion goes on the ledger, not the cleaned text, so
	// replay context matches exactly what the model produced.
	if userMessage != "" {
		e.ledger.AppendUser(userMessage)
	}
	e.ledger.AppendAssistant(raw)

	parsed := Parse(raw, e.mode.SpeakerLabel)
	speakerText := parsed.SpeakerText
	speakerName := ""
	if e.mode.InlineSpeakers {
		speakerName, speakerText = ExtractSpeakerName(speakerText)
	}
	e.lastSpeakerText = speakerText
	e.lastSpeakerName = speakerName
	e.options = parsed.Options
	e.view = NewPaginatedView(speakerText, e.pageSize)
	if e.view.OptionsRevealed {
		e.state = StateOptionsShown
	} else {
		e.state = StateDisplaying
	}

	if e.audit != nil {
		if logErr := e.audit.LogTurn(e.storyKey, userMessage, raw, len(outbound), elapsed); logErr != nil {
			e.log.Printf("failed to audit turn: %v", logErr)
		}
	}

	return e.viewLocked(), nil
}
