package novel

import (
	"fmt"
	"strings"
)

func formatContract(speakerLabel string) string {
	return fmt.Sprintf(`make sure to obey the following format:
%s: <%s's text>
option 1: <option 1 text>
option 2: <option 2 text>
option 3: <option 3 text>`, speakerLabel, speakerLabel)
}

func profileContext(p Profile, intro *Introduction) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("The player is %s, age %d.", p.UserName, p.UserAge))
	if len(p.FavoriteThings) > 0 {
		b.WriteString(" Favorite things: " + strings.Join(p.FavoriteThings, ", ") + ".")
	}
	if len(p.PersonalityTraits) > 0 {
		b.WriteString(" Personality: " + strings.Join(p.PersonalityTraits, ", ") + ".")
	}
	b.WriteString(fmt.Sprintf(" The story is a %s %s.", p.Genre.Setting, p.Genre.GameType))
	if intro != nil && intro.ChosenOption != "" {
		b.WriteString("\nThe story begins like this:\n" + intro.ChosenOption)
	}
	return b.String()
}

func katSeedPrompt(p Profile, intro *Introduction) string {
	return fmt.Sprintf(`you're a kawaii anime cat girl called "Kat" talking to a nerd playing a visual novel
%s
%s`, profileContext(p, intro), formatContract("Kat"))
}

func littleMartianSeedPrompt(p Profile, intro *Introduction) string {
	return fmt.Sprintf(`Welcome to the Little Martian Adventure!
You are the narrator of an interplanetary quest across the red planet. The
player is a daring little martian. Whenever a character speaks, begin the
text with their name followed by a colon, or "Narrator:" for plain narration.
%s
%s`, profileContext(p, intro), formatContract("Assistant"))
}

// introOptionsPrompt asks for three short story-beginning candidates built
// from the setup questionnaire.
func introOptionsPrompt(p Profile) string {
	return fmt.Sprintf(`Using the following details, generate three short possibilities for the beginning of a story that situates the user and introduces the universe:
- Name: %s
- Age: %d
- Favorite Things: %s
- Personality Traits: %s
- Genre Setting: %s and %s
Provide your answer in the following format:
Option 1: <story beginning option 1>
Option 2: <story beginning option 2>
Option 3: <story beginning option 3>`,
		p.UserName, p.UserAge,
		strings.Join(p.FavoriteThings, ", "),
		strings.Join(p.PersonalityTraits, ", "),
		p.Genre.Setting, p.Genre.GameType)
}

func storyNamePrompt(chosenOption string) string {
	return fmt.Sprintf(`Given the following story beginning:
"%s"
Generate a short, catchy story name. The name should be in plain ASCII characters, have a maximum of 30 characters, and use underscores (_) instead of spaces.`, chosenOption)
}
