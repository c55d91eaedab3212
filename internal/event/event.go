package event

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeSessionStarted  Type = "session.started"
	TypeSessionRestored Type = "session.restored"
	TypeSessionEnded    Type = "session.ended"
	TypeLoginRejected   Type = "login.rejected"
	TypeTokenRejected   Type = "token.rejected"
	TypeAccountCreated  Type = "account.created"
	TypeSubjectCreated  Type = "subject.created"
	TypeGradeCreated    Type = "grade.created"
)

type Event struct {
	ID        string         `json:"id"`
	Type      Type           `json:"type"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp string         `json:"timestamp"`
	SessionID string         `json:"session_id,omitempty"` // portal session that triggered the event
}

func New(t Type, sessionID string, payload map[string]any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		SessionID: sessionID,
	}
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func()) // Returns channel and unsubscribe function
}
