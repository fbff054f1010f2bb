package art

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"visualnovel/internal/debug"
)

// ErrTaskTimeout means the image task never reached a terminal status within
// the attempt cap.
var ErrTaskTimeout = errors.New("image task did not finish in time")

var errTaskPending = errors.New("image task still pending")

// State is the transient art state for one play session. It is never
// persisted.
type State struct {
	LastGeneratedCharacter string
	LastBackgroundPrompt   string
	CurrentImageURL        string
}

// BuildImagePrompt combines the narrating character and the story summary
// into a background description. The player character and the narrator must
// never themselves be depicted.
func BuildImagePrompt(speakerName, summary string) string {
	scene := "Current scene"
	if speakerName != "" {
		scene = fmt.Sprintf("Scene narrated by %s", speakerName)
	}
	return fmt.Sprintf(`%s. Story so far:
%s
Draw the scene's background and, if present, the other story characters. Never depict the player character or the narrator themselves.`, scene, summary)
}

// Generator runs the two-step art sub-flow. Every failure path keeps the
// previous state: stale art is always preferable to a blanked screen.
type Generator struct {
	decider     *Decider
	client      *Client
	log         *debug.Logger
	aspectRatio string
	interval    time.Duration
	maxAttempts int

	mu    sync.Mutex
	state State
}

// GeneratorConfig wires a Generator. Interval and MaxAttempts bound the task
// poll; with the 2s/24-attempt defaults a task gets about 50 seconds.
type GeneratorConfig struct {
	Decider     *Decider
	Client      *Client
	Log         *debug.Logger
	AspectRatio string
	Interval    time.Duration
	MaxAttempts int
}

func NewGenerator(cfg GeneratorConfig) *Generator {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 24
	}
	aspect := cfg.AspectRatio
	if aspect == "" {
		aspect = "16:9"
	}
	return &Generator{
		decider:     cfg.Decider,
		client:      cfg.Client,
		log:         cfg.Log,
		aspectRatio: aspect,
		interval:    interval,
		maxAttempts: maxAttempts,
	}
}

// State returns a copy of the current art state.
func (g *Generator) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Refresh derives the new background prompt and regenerates art when
// warranted. It returns the (possibly unchanged) state and whether it
// changed. Safe to call on every turn; unchanged prompts short-circuit and
// the first prompt of a session skips the decision call.
func (g *Generator) Refresh(ctx context.Context, speakerName, summary string) (State, bool) {
	prompt := BuildImagePrompt(speakerName, summary)

	g.mu.Lock()
	previous := g.state
	g.mu.Unlock()

	if prompt == previous.LastBackgroundPrompt && previous.CurrentImageURL != "" {
		return previous, false
	}
	if previous.LastBackgroundPrompt != "" && !g.decider.ShouldRegenerate(ctx, previous.LastBackgroundPrompt, prompt) {
		return previous, false
	}

	url, err := g.generate(ctx, prompt)
	if err != nil {
		g.log.Err(err, "art generation failed, keeping previous background")
		return previous, false
	}

	g.mu.Lock()
	g.state = State{
		LastGeneratedCharacter: speakerName,
		LastBackgroundPrompt:   prompt,
		CurrentImageURL:        url,
	}
	updated := g.state
	g.mu.Unlock()
	g.log.Printf("background updated for speaker %q: %s", speakerName, url)
	return updated, true
}

// generate submits the task and polls it at a fixed interval up to the
// attempt cap.
func (g *Generator) generate(ctx context.Context, prompt string) (string, error) {
	taskID, err := g.client.CreateTask(ctx, prompt, g.aspectRatio)
	if err != nil {
		return "", fmt.Errorf("create image task: %w", err)
	}

	poll := func() (string, error) {
		status, err := g.client.GetTask(ctx, taskID)
		if err != nil {
			return "", backoff.Permanent(err)
		}
		switch status.Status {
		case StatusCompleted:
			url := status.FirstURL()
			if url == "" {
				return "", backoff.Permanent(fmt.Errorf("task %s completed without an output url", taskID))
			}
			return url, nil
		case StatusFailed:
			return "", backoff.Permanent(fmt.Errorf("task %s failed", taskID))
		default:
			return "", errTaskPending
		}
	}

	url, err := backoff.RetryWithData(poll, backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(g.interval), uint64(g.maxAttempts-1)), ctx))
	if err != nil {
		if errors.Is(err, errTaskPending) {
			return "", fmt.Errorf("%w: task %s", ErrTaskTimeout, taskID)
		}
		return "", err
	}
	return url, nil
}
