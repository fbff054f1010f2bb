// Package art owns the best-effort scene art sub-flow: a yes/no model call
// deciding whether the background should change, followed by an asynchronous
// image-generation task against the external task API. Nothing here is ever
// allowed to block or fail the narrative turn.
package art

import (
	"context"
	"fmt"
	"strings"

	"visualnovel/internal/debug"
	"visualnovel/internal/novel"
)

// Decider asks the model whether new scene art is warranted. It fails
// closed: an error, or any answer that does not contain "yes", means keep
// the current background.
type Decider struct {
	completer novel.TextCompleter
	log       *debug.Logger
}

func NewDecider(completer novel.TextCompleter, log *debug.Logger) *Decider {
	return &Decider{completer: completer, log: log}
}

func decisionPrompt(previousPrompt, newPrompt string) string {
	return fmt.Sprintf(`The current scene background was generated from this description:
"%s"
The story has moved on and the scene is now described as:
"%s"
Should the background image change? Answer only "yes" or "no".`, previousPrompt, newPrompt)
}

// ShouldRegenerate runs the decision call for a prompt change.
func (d *Decider) ShouldRegenerate(ctx context.Context, previousPrompt, newPrompt string) bool {
	response, err := d.completer.CompleteText(ctx, decisionPrompt(previousPrompt, newPrompt))
	if err != nil {
		d.log.Err(err, "art decision call failed, keeping current background")
		return false
	}
	return strings.Contains(strings.ToLower(response), "yes")
}
