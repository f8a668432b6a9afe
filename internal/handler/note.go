package handler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goevery/retroboard/internal/broadcaster"
	"github.com/goevery/retroboard/internal/ierr"
	"github.com/goevery/retroboard/internal/persistence"
	"github.com/goevery/retroboard/internal/retro"
	"github.com/google/uuid"
)

type CreateNoteRequest struct {
	Content string `json:"content"`
	Column  string `json:"column"`
}

type UpdateNoteRequest struct {
	Content string `json:"content"`
}

type NoteHandler struct {
	idValidator *IdValidator
	engine      persistence.Engine
	identity    *IdentityResolver
	notifier    Notifier
	writeMu     *sync.Mutex
}

func NewNoteHandler(
	idValidator *IdValidator,
	engine persistence.Engine,
	identity *IdentityResolver,
	notifier Notifier,
	writeMu *sync.Mutex,
) *NoteHandler {
	return &NoteHandler{
		idValidator,
		engine,
		identity,
		notifier,
		writeMu,
	}
}

func (h *NoteHandler) List(ctx context.Context, retrospectiveId string) ([]retro.Note, error) {
	err := h.idValidator.Validate("retrospectiveId", retrospectiveId)
	if err != nil {
		return nil, err
	}

	notes, err := h.engine.ListNotes(ctx, retrospectiveId)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	return notes, nil
}

// Create stores the note and adds its author to the board's participants.
func (h *NoteHandler) Create(ctx context.Context, retrospectiveId string, req CreateNoteRequest) (retro.Note, error) {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	user, err := h.identity.CurrentUser(ctx)
	if err != nil {
		return retro.Note{}, err
	}

	err = h.idValidator.Validate("retrospectiveId", retrospectiveId)
	if err != nil {
		return retro.Note{}, err
	}

	if req.Content == "" {
		return retro.Note{}, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("content is required"))
	}

	retrospective, err := getRetrospective(ctx, h.engine, retrospectiveId)
	if err != nil {
		return retro.Note{}, err
	}

	now := retro.Now()

	if !retrospective.HasParticipant(user.Id) {
		retrospective.Participants = append(retrospective.Participants, user)
		retrospective.UpdatedAt = now

		err = h.engine.SaveRetrospective(ctx, retrospective)
		if err != nil {
			return retro.Note{}, fmt.Errorf("save retrospective: %w", err)
		}
	}

	note := retro.Note{
		Id:              uuid.NewString(),
		Content:         req.Content,
		Author:          user,
		Column:          req.Column,
		RetrospectiveId: retrospectiveId,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = h.engine.SaveNote(ctx, note)
	if err != nil {
		return retro.Note{}, fmt.Errorf("save note: %w", err)
	}

	h.notifier.NotifyRoom(retrospectiveId, broadcaster.NoteCreated{Note: note})

	return note, nil
}

func (h *NoteHandler) Update(ctx context.Context, retrospectiveId string, noteId string, req UpdateNoteRequest) (retro.Note, error) {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	user, err := h.identity.CurrentUser(ctx)
	if err != nil {
		return retro.Note{}, err
	}

	err = h.validateIds(retrospectiveId, noteId)
	if err != nil {
		return retro.Note{}, err
	}

	if req.Content == "" {
		return retro.Note{}, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("content is required"))
	}

	note, err := h.authoredNote(ctx, user, retrospectiveId, noteId, "edit")
	if err != nil {
		return retro.Note{}, err
	}

	note.Content = req.Content
	note.UpdatedAt = retro.Now()

	err = h.engine.SaveNote(ctx, note)
	if err != nil {
		return retro.Note{}, fmt.Errorf("save note: %w", err)
	}

	err = h.touchRetrospective(ctx, retrospectiveId)
	if err != nil {
		return retro.Note{}, err
	}

	h.notifier.NotifyRoom(retrospectiveId, broadcaster.NoteUpdated{Note: note})

	return note, nil
}

func (h *NoteHandler) Delete(ctx context.Context, retrospectiveId string, noteId string) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	user, err := h.identity.CurrentUser(ctx)
	if err != nil {
		return err
	}

	err = h.validateIds(retrospectiveId, noteId)
	if err != nil {
		return err
	}

	_, err = h.authoredNote(ctx, user, retrospectiveId, noteId, "delete")
	if err != nil {
		return err
	}

	err = h.engine.DeleteNote(ctx, noteId)
	if err != nil && !errors.Is(err, persistence.ErrNotFound) {
		return fmt.Errorf("delete note: %w", err)
	}

	err = h.touchRetrospective(ctx, retrospectiveId)
	if err != nil {
		return err
	}

	h.notifier.NotifyRoom(retrospectiveId, broadcaster.NoteDeleted{
		Id:      noteId,
		RetroId: retrospectiveId,
	})

	return nil
}

func (h *NoteHandler) validateIds(retrospectiveId string, noteId string) error {
	err := h.idValidator.Validate("retrospectiveId", retrospectiveId)
	if err != nil {
		return err
	}

	return h.idValidator.Validate("noteId", noteId)
}

// authoredNote loads a note of the given board and checks that user wrote it.
func (h *NoteHandler) authoredNote(ctx context.Context, user retro.User, retrospectiveId string, noteId string, action string) (retro.Note, error) {
	note, err := h.engine.GetNote(ctx, noteId)
	if errors.Is(err, persistence.ErrNotFound) || (err == nil && note.RetrospectiveId != retrospectiveId) {
		return retro.Note{}, ierr.New(ierr.ErrorCodeNotFound, errors.New("note not found"))
	}
	if err != nil {
		return retro.Note{}, fmt.Errorf("get note: %w", err)
	}

	if note.Author.Id != user.Id {
		return retro.Note{}, ierr.New(ierr.ErrorCodePermissionDenied, errors.New("you can only "+action+" your own notes"))
	}

	return note, nil
}

// touchRetrospective bumps updatedAt when the board still exists.
func (h *NoteHandler) touchRetrospective(ctx context.Context, retrospectiveId string) error {
	retrospective, err := h.engine.GetRetrospective(ctx, retrospectiveId)
	if errors.Is(err, persistence.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get retrospective: %w", err)
	}

	retrospective.UpdatedAt = retro.Now()

	err = h.engine.SaveRetrospective(ctx, retrospective)
	if err != nil {
		return fmt.Errorf("save retrospective: %w", err)
	}

	return nil
}
