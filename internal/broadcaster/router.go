package broadcaster

import (
	"github.com/goevery/retroboard/internal/metrics"
	"go.uber.org/zap"
)

// DeliveryResult counts what one fan-out did. Recipients is every connection
// that matched the room and exclusion filter.
type DeliveryResult struct {
	Recipients int
	Delivered  int
	Skipped    int
	Failed     int
}

type Router struct {
	logger   *zap.Logger
	metrics  *metrics.Metrics
	registry *InMemoryRegistry
}

func NewRouter(
	logger *zap.Logger,
	metrics *metrics.Metrics,
	registry *InMemoryRegistry,
) *Router {
	return &Router{
		logger,
		metrics,
		registry,
	}
}

// DeliverToRoom enqueues event on every ready connection associated with
// roomId, except excludeId. An empty excludeId excludes nobody; an empty
// roomId matches nobody.
func (r *Router) DeliverToRoom(roomId string, event RoomEvent, excludeId string) DeliveryResult {
	return r.deliver(event, func(e *entry) bool {
		return e.roomId != "" && e.roomId == roomId && e.connection.Id != excludeId
	})
}

// DeliverToAll enqueues event on every ready connection, with or without a
// room. Only board creation is global.
func (r *Router) DeliverToAll(event RetrospectiveCreated) DeliveryResult {
	return r.deliver(event, func(*entry) bool {
		return true
	})
}

func (r *Router) deliver(event Event, match func(e *entry) bool) DeliveryResult {
	var result DeliveryResult

	frame, err := Encode(event)
	if err != nil {
		r.logger.Error("failed to encode event",
			zap.String("type", string(event.Type())),
			zap.Error(err))

		return result
	}

	r.registry.each(func(e *entry) {
		if !match(e) {
			return
		}

		result.Recipients++

		if !e.connection.Ready() {
			result.Skipped++

			return
		}

		err := e.connection.enqueue(frame)
		if err != nil {
			r.logger.Warn("failed to enqueue event",
				zap.String("connectionId", e.connection.Id),
				zap.String("type", string(event.Type())),
				zap.Error(err))

			result.Failed++

			return
		}

		result.Delivered++
	})

	r.metrics.RecordFanout(string(event.Type()), result.Delivered, result.Skipped, result.Failed)

	return result
}
