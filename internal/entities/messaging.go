package entities

import "time"

// Chat is a conversation thread. Providers that need their native object for
// follow-up calls keep it in the handles registry, keyed by ID.
type Chat struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	Recipient string    `json:"recipient,omitempty"`
	Creator   string    `json:"creator,omitempty"`
	Date      time.Time `json:"date"`
	Read      bool      `json:"read"`
}

type ChatMessage struct {
	ID          string       `json:"id"`
	ChatID      string       `json:"chat_id"`
	Author      string       `json:"author"`
	Content     string       `json:"content"`
	Date        time.Time    `json:"date"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Information is a news item published by the school.
type Information struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Author      string       `json:"author,omitempty"`
	Content     string       `json:"content"`
	Date        time.Time    `json:"date"`
	Category    string       `json:"category,omitempty"`
	Read        bool         `json:"read"`
	Attachments []Attachment `json:"attachments,omitempty"`
}
