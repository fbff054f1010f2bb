package novel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfileValidate(t *testing.T) {
	valid := Profile{
		UserName:          "Sam",
		UserAge:           25,
		FavoriteThings:    []string{"music", "rain"},
		PersonalityTraits: []string{"curious"},
		Genre:             GenreSetting{Setting: "sci-fi", GameType: "adventure"},
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		mutate  func(*Profile)
		wantErr string
	}{
		{"missing name", func(p *Profile) { p.UserName = "" }, "user name is required"},
		{"name too long", func(p *Profile) { p.UserName = "an-extremely-long-player-name" }, "exceeds 20 characters"},
		{"missing age", func(p *Profile) { p.UserAge = 0 }, "user age is required"},
		{"missing setting", func(p *Profile) { p.Genre.Setting = "" }, "genre setting is required"},
		{"missing game type", func(p *Profile) { p.Genre.GameType = "" }, "game type is required"},
		{"too many favorites", func(p *Profile) { p.FavoriteThings = []string{"a", "b", "c", "d"} }, "at most 3 favorite things"},
		{"too many traits", func(p *Profile) { p.PersonalityTraits = []string{"a", "b", "c", "d"} }, "at most 3 personality traits"},
		{"favorite too long", func(p *Profile) { p.FavoriteThings = []string{"an-extremely-long-favorite-thing"} }, "exceeds 20 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			assert.ErrorContains(t, p.Validate(), tt.wantErr)
		})
	}
}
