package models

import "time"

// Message is a point-to-point chat message (PostgreSQL). Rows are
// append-only; creation time plus insertion order is the only ordering.
type Message struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	SenderID   uint      `json:"senderId" gorm:"index"`
	ReceiverID uint      `json:"receiverId" gorm:"index"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt" gorm:"index"`
}

// PopulatedMessage is the canonical wire shape for a message: the sender
// resolved to a display-ready summary. Both the REST history endpoint and
// the realtime gateway emit this exact structure.
type PopulatedMessage struct {
	ID         uint        `json:"id"`
	Sender     UserSummary `json:"senderId"`
	ReceiverID uint        `json:"receiverId"`
	Content    string      `json:"content"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// Populate resolves the message's sender against the given summary.
func (m *Message) Populate(sender UserSummary) PopulatedMessage {
	return PopulatedMessage{
		ID:         m.ID,
		Sender:     sender,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		CreatedAt:  m.CreatedAt,
	}
}
