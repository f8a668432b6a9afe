package broadcaster

import (
	"encoding/json"
	"fmt"

	"github.com/goevery/retroboard/internal/retro"
)

type EventType string

const (
	EventRetrospectiveCreated EventType = "retrospective-created"
	EventNoteCreated          EventType = "note-created"
	EventNoteUpdated          EventType = "note-updated"
	EventNoteDeleted          EventType = "note-deleted"
	EventUserJoined           EventType = "user-joined"
)

// Event is the closed set of messages pushed to clients. The unexported
// method keeps implementations inside this package.
type Event interface {
	Type() EventType
	isEvent()
}

// RoomEvent is an event scoped to a single retrospective.
type RoomEvent interface {
	Event
	RetrospectiveId() string
}

type RetrospectiveCreated struct {
	Retrospective retro.Retrospective
}

type NoteCreated struct {
	Note retro.Note
}

type NoteUpdated struct {
	Note retro.Note
}

type NoteDeleted struct {
	Id      string `json:"id"`
	RetroId string `json:"retrospectiveId"`
}

type UserJoined struct {
	RetroId string     `json:"retrospectiveId"`
	User    retro.User `json:"user"`
}

func (RetrospectiveCreated) Type() EventType { return EventRetrospectiveCreated }
func (NoteCreated) Type() EventType          { return EventNoteCreated }
func (NoteUpdated) Type() EventType          { return EventNoteUpdated }
func (NoteDeleted) Type() EventType          { return EventNoteDeleted }
func (UserJoined) Type() EventType           { return EventUserJoined }

func (RetrospectiveCreated) isEvent() {}
func (NoteCreated) isEvent()          {}
func (NoteUpdated) isEvent()          {}
func (NoteDeleted) isEvent()          {}
func (UserJoined) isEvent()           {}

func (e NoteCreated) RetrospectiveId() string { return e.Note.RetrospectiveId }
func (e NoteUpdated) RetrospectiveId() string { return e.Note.RetrospectiveId }
func (e NoteDeleted) RetrospectiveId() string { return e.RetroId }
func (e UserJoined) RetrospectiveId() string  { return e.RetroId }

type envelope struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
}

// Encode renders the wire frame {"type": ..., "data": ...}.
func Encode(event Event) ([]byte, error) {
	var data any

	switch e := event.(type) {
	case RetrospectiveCreated:
		data = e.Retrospective
	case NoteCreated:
		data = e.Note
	case NoteUpdated:
		data = e.Note
	case NoteDeleted:
		data = e
	case UserJoined:
		data = e
	default:
		return nil, fmt.Errorf("unknown event %T", event)
	}

	frame, err := json.Marshal(envelope{
		Type: event.Type(),
		Data: data,
	})
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", event.Type(), err)
	}

	return frame, nil
}
