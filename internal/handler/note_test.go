package handler

import (
	"context"
	"testing"

	"github.com/goevery/retroboard/internal/broadcaster"
	"github.com/goevery/retroboard/internal/ierr"
	"github.com/goevery/retroboard/internal/persistence"
	"github.com/goevery/retroboard/internal/retro"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func seedRetrospective(t *testing.T, f restFixture) retro.Retrospective {
	t.Helper()

	f.notifier.On("NotifyAll", mock.Anything).Return(broadcaster.DeliveryResult{})

	retrospective, err := f.retrospective.Create(as("u1", "Ada"), CreateRetrospectiveRequest{
		Title:        "Sprint 1",
		TemplateType: retro.TemplateWhatWentWell,
	})
	require.NoError(t, err)

	return retrospective
}

func TestNoteHandler_Create(t *testing.T) {
	t.Run("persists then notifies the room", func(t *testing.T) {
		f := newRestFixture(t)
		board := seedRetrospective(t, f)

		f.notifier.On("NotifyRoom", board.Id, mock.AnythingOfType("broadcaster.NoteCreated")).
			Run(func(args mock.Arguments) {
				event := args.Get(1).(broadcaster.NoteCreated)

				stored, err := f.engine.GetNote(context.Background(), event.Note.Id)
				assert.NoError(t, err, "note must be stored before notifying")
				assert.Equal(t, event.Note, stored)
			}).
			Return(broadcaster.DeliveryResult{}).
			Once()

		note, err := f.notes.Create(as("u2", "Grace"), board.Id, CreateNoteRequest{
			Content: "more pairing",
			Column:  "To Improve",
		})

		require.NoError(t, err)
		assert.Equal(t, "Grace", note.Author.Name)
		assert.Equal(t, board.Id, note.RetrospectiveId)
		f.notifier.AssertExpectations(t)

		stored, err := f.engine.GetRetrospective(context.Background(), board.Id)
		require.NoError(t, err)
		require.Len(t, stored.Participants, 2)
		assert.Equal(t, "u2", stored.Participants[1].Id)
		assert.Equal(t, note.CreatedAt, stored.UpdatedAt)
	})

	t.Run("existing participant is not added twice", func(t *testing.T) {
		f := newRestFixture(t)
		board := seedRetrospective(t, f)
		f.notifier.On("NotifyRoom", board.Id, mock.Anything).Return(broadcaster.DeliveryResult{})

		_, err := f.notes.Create(as("u1", "Ada"), board.Id, CreateNoteRequest{Content: "a"})
		require.NoError(t, err)

		stored, err := f.engine.GetRetrospective(context.Background(), board.Id)
		require.NoError(t, err)
		assert.Len(t, stored.Participants, 1)
		assert.Equal(t, board.UpdatedAt, stored.UpdatedAt)
	})

	t.Run("unknown retrospective", func(t *testing.T) {
		f := newRestFixture(t)

		_, err := f.notes.Create(as("u1", "Ada"), "missing", CreateNoteRequest{Content: "a"})

		requireCode(t, ierr.ErrorCodeNotFound, err)
		f.notifier.AssertNotCalled(t, "NotifyRoom", mock.Anything, mock.Anything)
	})

	t.Run("empty content", func(t *testing.T) {
		f := newRestFixture(t)
		board := seedRetrospective(t, f)

		_, err := f.notes.Create(as("u1", "Ada"), board.Id, CreateNoteRequest{Column: "Start"})

		requireCode(t, ierr.ErrorCodeInvalidArgument, err)
	})

	t.Run("requires identity", func(t *testing.T) {
		f := newRestFixture(t)
		board := seedRetrospective(t, f)

		_, err := f.notes.Create(WithIdentity(context.Background(), Identity{UserId: "u1"}), board.Id, CreateNoteRequest{Content: "a"})

		requireCode(t, ierr.ErrorCodeUnauthenticated, err)
	})

	t.Run("identity is checked before input", func(t *testing.T) {
		f := newRestFixture(t)

		_, err := f.notes.Create(context.Background(), "not a valid id", CreateNoteRequest{})

		requireCode(t, ierr.ErrorCodeUnauthenticated, err)
	})
}

func TestNoteHandler_Update(t *testing.T) {
	f := newRestFixture(t)
	board := seedRetrospective(t, f)
	f.notifier.On("NotifyRoom", board.Id, mock.AnythingOfType("broadcaster.NoteCreated")).Return(broadcaster.DeliveryResult{})

	note, err := f.notes.Create(as("u1", "Ada"), board.Id, CreateNoteRequest{Content: "draft", Column: "Action Items"})
	require.NoError(t, err)

	t.Run("only the author may edit", func(t *testing.T) {
		_, err := f.notes.Update(as("u2", "Grace"), board.Id, note.Id, UpdateNoteRequest{Content: "hijack"})

		requireCode(t, ierr.ErrorCodePermissionDenied, err)
	})

	t.Run("note must belong to the retrospective", func(t *testing.T) {
		_, err := f.notes.Update(as("u1", "Ada"), "another-board", note.Id, UpdateNoteRequest{Content: "x"})

		requireCode(t, ierr.ErrorCodeNotFound, err)
	})

	t.Run("empty content", func(t *testing.T) {
		_, err := f.notes.Update(as("u1", "Ada"), board.Id, note.Id, UpdateNoteRequest{})

		requireCode(t, ierr.ErrorCodeInvalidArgument, err)
	})

	t.Run("identity is checked before input", func(t *testing.T) {
		_, err := f.notes.Update(context.Background(), board.Id, "not a valid id", UpdateNoteRequest{})

		requireCode(t, ierr.ErrorCodeUnauthenticated, err)
	})

	t.Run("persists then notifies the room", func(t *testing.T) {
		f.notifier.On("NotifyRoom", board.Id, mock.AnythingOfType("broadcaster.NoteUpdated")).
			Run(func(args mock.Arguments) {
				event := args.Get(1).(broadcaster.NoteUpdated)

				stored, err := f.engine.GetNote(context.Background(), event.Note.Id)
				assert.NoError(t, err)
				assert.Equal(t, "final", stored.Content)
			}).
			Return(broadcaster.DeliveryResult{}).
			Once()

		updated, err := f.notes.Update(as("u1", "Ada"), board.Id, note.Id, UpdateNoteRequest{Content: "final"})

		require.NoError(t, err)
		assert.Equal(t, "final", updated.Content)
		assert.Equal(t, note.CreatedAt, updated.CreatedAt)
		assert.GreaterOrEqual(t, string(updated.UpdatedAt), string(note.UpdatedAt))
		f.notifier.AssertExpectations(t)
	})
}

func TestNoteHandler_Delete(t *testing.T) {
	f := newRestFixture(t)
	board := seedRetrospective(t, f)
	f.notifier.On("NotifyRoom", board.Id, mock.AnythingOfType("broadcaster.NoteCreated")).Return(broadcaster.DeliveryResult{})

	note, err := f.notes.Create(as("u1", "Ada"), board.Id, CreateNoteRequest{Content: "remove me"})
	require.NoError(t, err)

	t.Run("only the author may delete", func(t *testing.T) {
		err := f.notes.Delete(as("u2", "Grace"), board.Id, note.Id)

		requireCode(t, ierr.ErrorCodePermissionDenied, err)
	})

	t.Run("identity is checked before input", func(t *testing.T) {
		err := f.notes.Delete(context.Background(), "not a valid id", note.Id)

		requireCode(t, ierr.ErrorCodeUnauthenticated, err)
	})

	t.Run("persists then notifies the room", func(t *testing.T) {
		f.notifier.On("NotifyRoom", board.Id, broadcaster.NoteDeleted{Id: note.Id, RetroId: board.Id}).
			Run(func(mock.Arguments) {
				_, err := f.engine.GetNote(context.Background(), note.Id)
				assert.ErrorIs(t, err, persistence.ErrNotFound, "note must be gone before notifying")
			}).
			Return(broadcaster.DeliveryResult{}).
			Once()

		err := f.notes.Delete(as("u1", "Ada"), board.Id, note.Id)

		require.NoError(t, err)
		f.notifier.AssertExpectations(t)
	})

	t.Run("unknown note", func(t *testing.T) {
		err := f.notes.Delete(as("u1", "Ada"), board.Id, note.Id)

		requireCode(t, ierr.ErrorCodeNotFound, err)
	})
}

func TestNoteHandler_List(t *testing.T) {
	f := newRestFixture(t)
	board := seedRetrospective(t, f)
	f.notifier.On("NotifyRoom", board.Id, mock.Anything).Return(broadcaster.DeliveryResult{})

	notes, err := f.notes.List(context.Background(), board.Id)
	require.NoError(t, err)
	assert.Empty(t, notes)

	_, err = f.notes.Create(as("u1", "Ada"), board.Id, CreateNoteRequest{Content: "one"})
	require.NoError(t, err)

	notes, err = f.notes.List(context.Background(), board.Id)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "one", notes[0].Content)
}
