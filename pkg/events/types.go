package events

import (
	"encoding/json"

	"github.com/charlie0129/corrcal/pkg/calcium"
)

// Event name constants
const (
	Notification   = "notification"
	SessionUpdated = "session.updated"
)

// Level is the severity of a notification, matching the toast styles a
// front end would render.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Event is a generic SSE event from daemon.
type Event struct {
	Name string          // SSE event name
	Data json.RawMessage // Raw JSON payload
}

// NotificationEvent is the typed payload for notification. It is
// fire-and-forget: nothing waits for it to be shown.
type NotificationEvent struct {
	Level     Level  `json:"level"`
	Message   string `json:"message"`
	SessionID string `json:"sessionId,omitempty"`
	Ts        int64  `json:"ts"`
}

// SessionUpdatedEvent is the typed payload for session.updated.
type SessionUpdatedEvent struct {
	SessionID string        `json:"sessionId"`
	State     calcium.State `json:"state"`
	Ts        int64         `json:"ts"`
}

// DecodeAs decodes the event payload into the caller-specified generic type T.
// It ignores the event name. If Data is empty, it returns the zero value of T
// with a nil error.
//
// Example:
//
//	payload, err := events.DecodeAs[events.NotificationEvent](ev)
//	if err != nil { /* handle */ }
//	fmt.Println(payload.Level, payload.Message)
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}
