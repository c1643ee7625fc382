package domain

import (
	"time"

	"github.com/google/uuid"
)

// timestampLayout matches the millisecond ISO-8601 form browsers produce.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ChatMessage is relayed to the other room members and never stored.
type ChatMessage struct {
	ID        string        `json:"id"`
	Content   string        `json:"content"`
	Sender    string        `json:"sender"`
	SenderID  ParticipantID `json:"senderId"`
	Timestamp string        `json:"timestamp"`
}

func NewChatMessage(senderID ParticipantID, sender, content string, at time.Time) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		Content:   content,
		Sender:    sender,
		SenderID:  senderID,
		Timestamp: at.UTC().Format(timestampLayout),
	}
}
