package novel

// DefaultPageSize is how many characters of speaker text fit in the dialogue
// box before the player has to press next.
const DefaultPageSize = 200

// Paginate slices text into consecutive chunks of at most pageSize
// characters. Concatenating the chunks reproduces the input exactly. Chunks
// may split mid-word; word-boundary awareness is a deliberate non-feature.
func Paginate(text string, pageSize int) []string {
	if pageSize < 1 || text == "" {
		if text == "" {
			return nil
		}
		return []string{text}
	}

	runes := []rune(text)
	pages := make([]string, 0, (len(runes)+pageSize-1)/pageSize)
	for i := 0; i < len(runes); i += pageSize {
		end := i + pageSize
		if end > len(runes) {
			end = len(runes)
		}
		pages = append(pages, string(runes[i:end]))
	}
	return pages
}

// PaginatedView tracks the incremental reveal of one turn's speaker text.
// It is rebuilt from scratch on every new turn; options are revealed only
// once the player has advanced past the last page.
type PaginatedView struct {
	Pages           []string
	Index           int
	OptionsRevealed bool
}

func NewPaginatedView(text string, pageSize int) PaginatedView {
	v := PaginatedView{Pages: Paginate(text, pageSize)}
	if len(v.Pages) == 0 {
		v.OptionsRevealed = true
	}
	return v
}

// Current returns the page currently on display.
func (v *PaginatedView) Current() string {
	if v.Index < 0 || v.Index >= len(v.Pages) {
		return ""
	}
	return v.Pages[v.Index]
}

// Advance moves to the next page, flipping OptionsRevealed once the last
// page has been advanced past.
func (v *PaginatedView) Advance() {
	if v.Index+1 < len(v.Pages) {
		v.Index++
		return
	}
	v.OptionsRevealed = true
}
