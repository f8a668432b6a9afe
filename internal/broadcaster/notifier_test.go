package broadcaster

import (
	"testing"

	"github.com/goevery/retroboard/internal/retro"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNotifier_NotifyRoom(t *testing.T) {
	registry := newTestRegistry()
	notifier := NewNotifier(zap.NewNop(), NewRouter(zap.NewNop(), nil, registry))
	c1 := newOpenConnection(registry)
	c2 := newOpenConnection(registry)
	outsider := newOpenConnection(registry)
	registry.SetAssociation(c1.Id, "u1", "r1")
	registry.SetAssociation(c2.Id, "u2", "r1")
	registry.SetAssociation(outsider.Id, "u3", "r2")

	t.Run("write path excludes nobody", func(t *testing.T) {
		result := notifier.NotifyRoom("r1", NoteCreated{Note: retro.Note{Id: "n1", RetrospectiveId: "r1"}})

		assert.Equal(t, DeliveryResult{Recipients: 2, Delivered: 2}, result)
		assert.Len(t, drain(c1), 1)
		assert.Len(t, drain(c2), 1)
		assert.Empty(t, drain(outsider))
	})

	t.Run("event for another room is refused", func(t *testing.T) {
		result := notifier.NotifyRoom("r1", NoteDeleted{Id: "n1", RetroId: "r2"})

		assert.Equal(t, DeliveryResult{}, result)
		assert.Empty(t, drain(c1))
		assert.Empty(t, drain(outsider))
	})
}

func TestNotifier_NotifyAll(t *testing.T) {
	registry := newTestRegistry()
	notifier := NewNotifier(zap.NewNop(), NewRouter(zap.NewNop(), nil, registry))
	inRoom := newOpenConnection(registry)
	lobby := newOpenConnection(registry)
	registry.SetAssociation(inRoom.Id, "u1", "r1")

	result := notifier.NotifyAll(RetrospectiveCreated{Retrospective: retro.Retrospective{Id: "r9"}})

	assert.Equal(t, DeliveryResult{Recipients: 2, Delivered: 2}, result)
	assert.Len(t, drain(inRoom), 1)
	assert.Len(t, drain(lobby), 1)
}
