// Package audit records every security-relevant step of a command's
// lifecycle as an append-only JSONL trail, and provides query, summary,
// and export over those trails.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies what happened.
type EventType string

// Event types covering a command's lifecycle and session boundaries.
const (
	EventSessionStarted    EventType = "session_started"
	EventSessionEnded      EventType = "session_ended"
	EventCommandRequested  EventType = "command_requested"
	EventCommandPreview    EventType = "command_preview"
	EventCommandApproved   EventType = "command_approved"
	EventCommandRejected   EventType = "command_rejected"
	EventPermissionCheck   EventType = "permission_check"
	EventFileOperation     EventType = "file_operation"
	EventBackupCreated     EventType = "backup_created"
	EventCommandCompleted  EventType = "command_completed"
	EventCommandCancelled  EventType = "command_cancelled"
	EventSecurityViolation EventType = "security_violation"
)

// Event is one audit record. CommandID is zero for session-level
// events. Details carries type-specific fields; unknown keys written by
// newer versions are preserved on read.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	EventType EventType      `json:"event_type"`
	SessionID uuid.UUID      `json:"session_id"`
	CommandID uuid.UUID      `json:"command_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// NewEvent builds an event stamped now.
func NewEvent(typ EventType, session uuid.UUID, details map[string]any) Event {
	return Event{
		Timestamp: time.Now().UTC(),
		EventType: typ,
		SessionID: session,
		Details:   details,
	}
}

// IsSecurityEvent reports whether the event represents a denial or
// violation, the classes a session summary counts separately.
func (e Event) IsSecurityEvent() bool {
	return e.EventType == EventSecurityViolation || e.EventType == EventCommandRejected
}
