// Terminal visual-novel client. A short player questionnaire seeds an
// LLM-driven branching story: each turn the model narrates a beat and offers
// three options, the chosen option is persisted as game-save memory, and a
// secondary model call decides whether to regenerate scene art.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"visualnovel/internal/config"
	"visualnovel/internal/logging"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "review", "--review":
			runReviewMode()
			return
		}
	}

	model, cleanup, err := createApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runReviewMode prints the most recent audited turns without starting the
// TUI.
func runReviewMode() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		return
	}

	audit, err := logging.NewCompletionLogger(cfg.TurnsDB, cfg.ChatModel)
	if err != nil {
		fmt.Printf("Failed to open turn database: %v\n", err)
		return
	}
	defer audit.Close()

	turns, err := audit.RecentTurns(10)
	if err != nil {
		fmt.Printf("Failed to get turns: %v\n", err)
		return
	}
	if len(turns) == 0 {
		fmt.Println("No turns found. Play the game first to generate data!")
		return
	}

	fmt.Printf("Recent turns (%d):\n\n", len(turns))
	for _, turn := range turns {
		var metadata logging.TurnMetadata
		if err := json.Unmarshal([]byte(turn.Metadata), &metadata); err == nil {
			fmt.Printf("[%d] %s | %s | %v | transcript %d\n",
				turn.ID, turn.Timestamp.Format("15:04:05"), turn.StoryKey,
				metadata.ResponseTime, metadata.TranscriptLen)
		} else {
			fmt.Printf("[%d] %s | %s\n", turn.ID, turn.Timestamp.Format("15:04:05"), turn.StoryKey)
		}
		if turn.UserMessage != "" {
			fmt.Printf("Choice: %s\n", turn.UserMessage)
		}
		fmt.Printf("Response: %s\n", turn.Response)
		fmt.Println(strings.Repeat("-", 50))
	}
}
