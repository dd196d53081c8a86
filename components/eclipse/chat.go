package eclipse

import "unicode/utf16"

const (
	// ChatGreeting seeds every transcript.
	ChatGreeting = "Hello! I'm Eclipse AI, your intelligent assistant for optimizing Éminence Organics' organic skincare business. How can I help you analyze spa partnerships, product performance, or sustainability metrics?"
	// ChatReply is the scripted assistant answer appended after every send.
	ChatReply = "I'll analyze that for you. Based on Éminence's current metrics, I recommend focusing on expanding spa partnerships in underserved markets while maintaining your strong sustainability scores. Would you like me to create a detailed action plan?"
	// ChatPlaceholder is the input hint of the chat form.
	ChatPlaceholder = "Ask about spa performance, sustainability..."
)

// Chat holds the panel flag, the draft and the append-only transcript.
type Chat struct {
	open     bool
	input    string
	messages []ChatMessage
	pending  int
}

// NewChat returns a closed panel seeded with the greeting.
func NewChat() Chat {
	return Chat{
		messages: []ChatMessage{{Role: RoleAssistant, Content: ChatGreeting}},
	}
}

// SetOpen toggles the panel.
func (c *Chat) SetOpen(open bool) {
	c.open = open
}

// SetInput stores the draft.
func (c *Chat) SetInput(draft string) {
	c.input = draft
}

// chatSend describes an accepted user message. Lengths are taken before the append.
type chatSend struct {
	Content            string
	MessageLength      int
	ConversationLength int
}

// send appends the draft as a user message and clears it. Blank drafts are ignored.
func (c *Chat) send() (chatSend, bool) {
	if isBlankText(c.input) {
		return chatSend{}, false
	}
	sent := chatSend{
		Content:            c.input,
		MessageLength:      jsLength(c.input),
		ConversationLength: len(c.messages),
	}
	c.messages = append(c.messages, ChatMessage{Role: RoleUser, Content: c.input})
	c.input = ""
	c.pending++
	return sent, true
}

// deliverReply appends the scripted answer to the live transcript.
func (c *Chat) deliverReply() (ChatMessage, int) {
	msg := ChatMessage{Role: RoleAssistant, Content: ChatReply}
	c.messages = append(c.messages, msg)
	if c.pending > 0 {
		c.pending--
	}
	return msg, len(c.messages)
}

// State returns a copy of the panel state.
func (c *Chat) State() ChatState {
	return ChatState{
		Open:     c.open,
		Input:    c.input,
		Messages: append([]ChatMessage(nil), c.messages...),
		Pending:  c.pending,
	}
}

// jsLength counts UTF-16 code units, the unit browsers report for string length.
func jsLength(s string) int {
	return len(utf16.Encode([]rune(s)))
}
