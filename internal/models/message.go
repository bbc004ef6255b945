package models

import (
	"time"

	"github.com/google/uuid"
)

// Message 代表一條聊天訊息，寫入後不再修改
// Side 是發送當下的立場快照，waiting 階段發送時為空
type Message struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Text      string    `json:"text"`
	Side      Side      `json:"side,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewMessage 創建一條新的聊天訊息，ID 由伺服器產生
func NewMessage(userID, name, text string, side Side) Message {
	return Message{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Text:      text,
		Side:      side,
		CreatedAt: time.Now(),
	}
}
