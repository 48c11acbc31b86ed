package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const EventJobPublished = "job_published"

type JobPublishedEvent struct {
	Type      string    `json:"type"`
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Timestamp string    `json:"timestamp"`
}

// Notifier turns domain events into feed messages.
type Notifier struct {
	hub *Hub
	now func() time.Time
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub, now: time.Now}
}

func (n *Notifier) JobPublished(id uuid.UUID, title, slug string) {
	if n == nil || n.hub == nil {
		return
	}
	b, err := json.Marshal(JobPublishedEvent{
		Type:      EventJobPublished,
		ID:        id,
		Title:     title,
		Slug:      slug,
		Timestamp: n.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}
	n.hub.Broadcast(b)
}
