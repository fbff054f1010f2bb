package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	switch m.phase {
	case phaseMenu:
		return m.viewMenu()
	case phaseSetup:
		return m.viewSetup()
	case phaseIntroLoading, phaseNaming, phaseTurnLoading:
		return m.viewLoading()
	case phaseIntroChoose:
		return m.viewIntroChoose()
	case phasePlaying:
		return m.viewPlaying()
	case phaseLoad:
		return m.viewLoad()
	}
	return ""
}

func (m Model) viewMenu() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("13")).
		Bold(true)

	cursorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Visual Novel") + "\n\n")

	for i, entry := range menuEntries {
		if i == m.menuIndex {
			b.WriteString(cursorStyle.Render("> "+entry) + "\n")
		} else {
			b.WriteString("  " + entry + "\n")
		}
	}

	if m.status != "" {
		b.WriteString("\n" + m.statusLine())
	}

	b.WriteString("\n" + m.helpLine("↑/↓ move · enter select · q quit"))
	return m.frame(b.String())
}

func (m Model) viewSetup() string {
	promptStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("7"))

	var b strings.Builder
	b.WriteString("Story Setup\n\n")

	if pick, picking := m.form.pickStep(); picking {
		var label string
		var choices []string
		switch pick {
		case pickSetting:
			label = "Pick a setting"
			choices = settingChoices
		case pickGameType:
			label = "Pick a story type"
			choices = gameTypeChoices
		case pickMode:
			label = "Pick a narrator"
			choices = modeNames()
		}
		b.WriteString(promptStyle.Render(label) + "\n\n")
		for i, choice := range choices {
			b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, choice))
		}
		b.WriteString("\n" + m.helpLine("1-3 pick · esc back"))
	} else {
		field := setupFields[m.form.step]
		b.WriteString(promptStyle.Render(field.prompt) + "\n\n")
		b.WriteString("  " + m.input + "│\n")
		b.WriteString("\n" + m.helpLine("enter confirm · esc back"))
	}

	if m.status != "" {
		b.WriteString("\n" + m.statusLine())
	}
	return m.frame(b.String())
}

func (m Model) viewLoading() string {
	loadingStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("6"))

	label := "Thinking"
	switch m.phase {
	case phaseIntroLoading:
		label = "Dreaming up beginnings"
	case phaseNaming:
		label = "Naming the story"
	}
	return m.frame(loadingStyle.Render(getLoadingAnimation(m.animationFrame) + " " + label + "..."))
}

func (m Model) viewIntroChoose() string {
	cursorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	contentWidth := m.contentWidth()

	var b strings.Builder
	b.WriteString("How should the story begin?\n\n")
	for i, option := range m.introOptions {
		if i == m.introIndex {
			b.WriteString(cursorStyle.Render(wrapAndIndent("> "+option, contentWidth, "  ")) + "\n\n")
		} else {
			b.WriteString(wrapAndIndent(option, contentWidth, "  ") + "\n\n")
		}
	}
	b.WriteString(m.helpLine("↑/↓ move · enter choose · esc back"))

	if m.status != "" {
		b.WriteString("\n" + m.statusLine())
	}
	return m.frame(b.String())
}

func (m Model) viewPlaying() string {
	speakerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("13")).
		Bold(true)

	textStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("7"))

	optionStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12"))

	contentWidth := m.contentWidth()

	var b strings.Builder
	if m.storyName != "" {
		b.WriteString(speakerStyle.Render(m.storyName) + "\n\n")
	}
	if m.turn.SpeakerName != "" {
		b.WriteString(speakerStyle.Render(m.turn.SpeakerName+":") + "\n")
	}
	b.WriteString(textStyle.Render(wrapAndIndent(m.turn.Page, contentWidth, " ")) + "\n")

	if m.turn.PageCount > 1 {
		b.WriteString(fmt.Sprintf("\n (%d/%d)\n", m.turn.PageIndex+1, m.turn.PageCount))
	}

	if m.turn.OptionsRevealed {
		b.WriteString("\n")
		for i, option := range m.turn.Options {
			if option == "" {
				continue
			}
			b.WriteString(optionStyle.Render(wrapAndIndent(fmt.Sprintf("%d. %s", i+1, option), contentWidth, "   ")) + "\n")
		}
		b.WriteString("\n" + m.helpLine("1-3 choose · esc menu"))
	} else {
		b.WriteString("\n" + m.helpLine("enter continue · esc menu"))
	}

	if m.artState.CurrentImageURL != "" {
		artStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
		b.WriteString("\n" + artStyle.Render(wrapAndIndent("scene: "+m.artState.CurrentImageURL, contentWidth, " ")))
	}

	if m.status != "" {
		b.WriteString("\n" + m.statusLine())
	}
	return m.frame(b.String())
}

func (m Model) viewLoad() string {
	cursorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	var b strings.Builder
	b.WriteString("Load Story\n\n")

	if len(m.stories) == 0 {
		b.WriteString("  No saved stories yet.\n")
	}
	for i, key := range m.stories {
		if i == m.loadIndex {
			b.WriteString(cursorStyle.Render("> "+key) + "\n")
		} else {
			b.WriteString("  " + key + "\n")
		}
	}
	b.WriteString("\n" + m.helpLine("↑/↓ move · enter load · d delete · esc back"))

	if m.status != "" {
		b.WriteString("\n" + m.statusLine())
	}
	return m.frame(b.String())
}

func (m Model) frame(content string) string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	panel := lipgloss.NewStyle().
		Width(width - 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(1)
	return panel.Render(content)
}

func (m Model) contentWidth() int {
	width := m.width - 6
	if width < 20 {
		width = 74
	}
	return width
}

func (m Model) statusLine() string {
	statusStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))
	return statusStyle.Render(m.status)
}

func (m Model) helpLine(text string) string {
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8"))
	return helpStyle.Render(text)
}

func wrapAndIndent(text string, width int, indent string) string {
	if len(text) <= width {
		return indent + text
	}

	var result strings.Builder
	words := strings.Fields(text)
	if len(words) == 0 {
		return indent + text
	}

	currentLine := indent + words[0]

	for _, word := range words[1:] {
		if len(currentLine)+1+len(word) <= width {
			currentLine += " " + word
		} else {
			result.WriteString(currentLine + "\n")
			currentLine = indent + word
		}
	}

	result.WriteString(currentLine)
	return result.String()
}

func getLoadingAnimation(frame int) string {
	arc := []string{"◜", "◠", "◝", "◞", "◡", "◟"}
	return arc[frame%len(arc)]
}
