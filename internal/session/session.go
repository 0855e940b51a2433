package session

import (
	"time"

	"github.com/pythonicvarun/anveshak/internal/provider"
)

// ChatSession is one persisted conversation. History is never empty and
// always starts with the system message.
type ChatSession struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	History   []provider.Message `json:"history"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

func (c *ChatSession) clone() *ChatSession {
	out := *c
	out.History = append([]provider.Message(nil), c.History...)
	return &out
}
