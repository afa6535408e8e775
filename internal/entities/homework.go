package entities

import "time"

type AttachmentType string

const (
	AttachmentLink AttachmentType = "link"
	AttachmentFile AttachmentType = "file"
)

type Attachment struct {
	Type AttachmentType `json:"type"`
	Name string         `json:"name"`
	URL  string         `json:"url"`
}

// Homework is addressed in caches by its epoch week number.
type Homework struct {
	ID          string       `json:"id"`
	Subject     string       `json:"subject"`
	Content     string       `json:"content"` // HTML
	Due         time.Time    `json:"due"`
	Done        bool         `json:"done"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// WithDone returns a copy of h with the done flag set.
func (h Homework) WithDone(done bool) Homework {
	h.Done = done
	return h
}
