package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeSessionStarted = "session.started"
	EventTypeSessionEnded   = "session.ended"
)

type SessionStartedEvent struct {
	BaseEvent
	Phone string `json:"phone"`
	Name  string `json:"name"`
}

func NewSessionStartedEvent(phone, name string) *SessionStartedEvent {
	return &SessionStartedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeSessionStarted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"phone": phone,
				"name":  name,
			},
		},
		Phone: phone,
		Name:  name,
	}
}

type SessionEndedEvent struct {
	BaseEvent
	Phone string `json:"phone"`
}

func NewSessionEndedEvent(phone string) *SessionEndedEvent {
	return &SessionEndedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeSessionEnded,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"phone": phone,
			},
		},
		Phone: phone,
	}
}
