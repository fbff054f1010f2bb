package art

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"visualnovel/internal/debug"
)

type stubTextCompleter struct {
	response string
	err      error
}

func (c *stubTextCompleter) CompleteText(context.Context, string) (string, error) {
	return c.response, c.err
}

func testLogger() *debug.Logger {
	return debug.NewLogger(false, "")
}

func TestDeciderShouldRegenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("affirmative answer regenerates", func(t *testing.T) {
		decider := NewDecider(&stubTextCompleter{response: "Yes, the scene has changed."}, testLogger())
		assert.True(t, decider.ShouldRegenerate(ctx, "old scene", "new scene"))
	})

	t.Run("negative answer keeps the background", func(t *testing.T) {
		decider := NewDecider(&stubTextCompleter{response: "no"}, testLogger())
		assert.False(t, decider.ShouldRegenerate(ctx, "old scene", "new scene"))
	})

	t.Run("fails closed on error", func(t *testing.T) {
		decider := NewDecider(&stubTextCompleter{err: errors.New("api down")}, testLogger())
		assert.False(t, decider.ShouldRegenerate(ctx, "old scene", "new scene"))
	})

	t.Run("fails closed on an unparseable answer", func(t *testing.T) {
		decider := NewDecider(&stubTextCompleter{response: "perhaps, hard to say"}, testLogger())
		assert.False(t, decider.ShouldRegenerate(ctx, "old scene", "new scene"))
	})
}
