package broadcaster

import "go.uber.org/zap"

// Notifier is the only path from a committed write to the push layer. Callers
// must have durably stored the record before calling it. Write-path events
// have no originating connection, so nobody in the room is excluded.
type Notifier struct {
	logger *zap.Logger
	router *Router
}

func NewNotifier(logger *zap.Logger, router *Router) *Notifier {
	return &Notifier{
		logger,
		router,
	}
}

func (n *Notifier) NotifyRoom(roomId string, event RoomEvent) DeliveryResult {
	if event.RetrospectiveId() != roomId {
		n.logger.Error("event does not belong to room",
			zap.String("roomId", roomId),
			zap.String("eventRoomId", event.RetrospectiveId()),
			zap.String("type", string(event.Type())))

		return DeliveryResult{}
	}

	return n.router.DeliverToRoom(roomId, event, "")
}

func (n *Notifier) NotifyAll(event RetrospectiveCreated) DeliveryResult {
	return n.router.DeliverToAll(event)
}
