package domain

// ChatRole is the author of a chat message as stored in tutorials.
type ChatRole string

const (
	RoleBot  ChatRole = "bot"
	RoleUser ChatRole = "user"
)

// ChatMessage is one turn of the "ask" modality conversation.
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}
