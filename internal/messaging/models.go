// internal/messaging/models.go

package messaging

import "time"

// Message is one chat message inside an active match.
type Message struct {
	ID        int64     `json:"id" db:"id"`
	MatchID   int64     `json:"match_id" db:"match_id"`
	SenderID  int64     `json:"sender_id" db:"sender_id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SendMessageRequest is the payload for posting a message.
type SendMessageRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

// WSEvent is the envelope pushed to connected websocket clients.
type WSEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
