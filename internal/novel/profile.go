package novel

import (
	"errors"
	"fmt"
)

const (
	maxNameLength  = 20
	maxListEntries = 3
)

// GenreSetting pairs the story's universe with its game type.
type GenreSetting struct {
	Setting  string `json:"setting"`
	GameType string `json:"gameType"`
}

// Profile is the short player questionnaire collected at setup time. It
// seeds the scenario prompt and is persisted on the story memory.
type Profile struct {
	Timestamp         string       `json:"timestamp"`
	UserName          string       `json:"userName"`
	UserAge           int          `json:"userAge"`
	FavoriteThings    []string     `json:"favoriteThings"`
	PersonalityTraits []string     `json:"personalityTraits"`
	Genre             GenreSetting `json:"genreSetting"`
}

// Validate checks required-field presence and the length caps the setup form
// enforces. Optional lists may be shorter than three entries but never longer.
func (p Profile) Validate() error {
	if p.UserName == "" {
		return errors.New("user name is required")
	}
	if len(p.UserName) > maxNameLength {
		return fmt.Errorf("user name exceeds %d characters", maxNameLength)
	}
	if p.UserAge <= 0 {
		return errors.New("user age is required")
	}
	if p.Genre.Setting == "" {
		return errors.New("genre setting is required")
	}
	if p.Genre.GameType == "" {
		return errors.New("game type is required")
	}
	if len(p.FavoriteThings) > maxListEntries {
		return fmt.Errorf("at most %d favorite things allowed", maxListEntries)
	}
	if len(p.PersonalityTraits) > maxListEntries {
		return fmt.Errorf("at most %d personality traits allowed", maxListEntries)
	}
	for _, fav := range p.FavoriteThings {
		if len(fav) > maxNameLength {
			return fmt.Errorf("favorite thing %q exceeds %d characters", fav, maxNameLength)
		}
	}
	for _, trait := range p.PersonalityTraits {
		if len(trait) > maxNameLength {
			return fmt.Errorf("personality trait %q exceeds %d characters", trait, maxNameLength)
		}
	}
	return nil
}
