package handler

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/goevery/retroboard/internal/broadcaster"
	"github.com/goevery/retroboard/internal/ierr"
	"github.com/goevery/retroboard/internal/persistence/sqlite"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyRoom(roomId string, event broadcaster.RoomEvent) broadcaster.DeliveryResult {
	args := m.Called(roomId, event)

	return args.Get(0).(broadcaster.DeliveryResult)
}

func (m *mockNotifier) NotifyAll(event broadcaster.RetrospectiveCreated) broadcaster.DeliveryResult {
	args := m.Called(event)

	return args.Get(0).(broadcaster.DeliveryResult)
}

type restFixture struct {
	engine        *sqlite.PersistenceEngine
	notifier      *mockNotifier
	users         *UserHandler
	retrospective *RetrospectiveHandler
	notes         *NoteHandler
}

func newRestFixture(t *testing.T) restFixture {
	t.Helper()

	engine, err := sqlite.Open(filepath.Join(t.TempDir(), "retroboard.db"))
	require.NoError(t, err)
	require.NoError(t, engine.Setup(context.Background()))
	t.Cleanup(func() {
		engine.Close(context.Background())
	})

	notifier := &mockNotifier{}
	validator := NewIdValidator()
	identity := NewIdentityResolver(engine)
	writeMu := &sync.Mutex{}

	return restFixture{
		engine:        engine,
		notifier:      notifier,
		users:         NewUserHandler(engine, writeMu),
		retrospective: NewRetrospectiveHandler(validator, engine, identity, notifier, writeMu),
		notes:         NewNoteHandler(validator, engine, identity, notifier, writeMu),
	}
}

func as(userId, userName string) context.Context {
	return WithIdentity(context.Background(), Identity{UserId: userId, UserName: userName})
}

func requireCode(t *testing.T, expected ierr.ErrorCode, err error) {
	t.Helper()

	code, ok := ierr.CodeOf(err)
	require.True(t, ok, "expected ierr.Error, got %v", err)
	require.Equal(t, expected, code)
}
