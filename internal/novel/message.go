package novel

// Role tags a transcript message with its author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one entry in the conversation transcript sent to the
// completion API.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Ledger is the ordered, append-only list of messages exchanged with the
// completion API. The first message is always the scenario seed and is never
// removed. There is no server-side session: the full ledger is replayed on
// every request, so it can only grow.
type Ledger struct {
	messages []Message
}

// NewLedger creates a ledger seeded with the scenario prompt.
func NewLedger(seedPrompt string) *Ledger {
	return &Ledger{
		messages: []Message{{Role: RoleUser, Content: seedPrompt}},
	}
}

func (l *Ledger) AppendUser(content string) {
	l.messages = append(l.messages, Message{Role: RoleUser, Content: content})
}

func (l *Ledger) AppendAssistant(content string) {
	l.messages = append(l.messages, Message{Role: RoleAssistant, Content: content})
}

// Snapshot returns a copy of the ledger safe to extend without mutating the
// ledger itself.
func (l *Ledger) Snapshot() []Message {
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

func (l *Ledger) Len() int {
	return len(l.messages)
}
