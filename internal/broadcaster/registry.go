package broadcaster

import (
	"sync"

	"github.com/goevery/retroboard/internal/metrics"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"
)

type Registry interface {
	Register(connection *Connection) string
	Unregister(connectionId string)
	SetAssociation(connectionId string, userId string, roomId string) bool
	ClearRoomAssociation(connectionId string, roomId string) bool
	Snapshot() []ConnectionInfo
}

// ConnectionInfo is a point-in-time copy of one registry entry.
type ConnectionInfo struct {
	Id     string
	UserId string
	RoomId string
	State  ConnectionState
}

type entry struct {
	connection *Connection
	userId     string
	roomId     string
}

// InMemoryRegistry holds every live connection in registration order. A
// single mutex covers both mutations and fan-outs, so a fan-out never
// observes a half-applied join or leave.
type InMemoryRegistry struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
	mu      sync.Mutex

	entries *orderedmap.OrderedMap[string, *entry]
}

func NewInMemoryRegistry(
	logger *zap.Logger,
	metrics *metrics.Metrics,
) *InMemoryRegistry {
	return &InMemoryRegistry{
		logger:  logger,
		metrics: metrics,
		entries: orderedmap.New[string, *entry](),
	}
}

func (r *InMemoryRegistry) Register(connection *Connection) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries.Get(connection.Id); ok {
		return connection.Id
	}

	r.entries.Set(connection.Id, &entry{connection: connection})
	r.metrics.ConnectionRegistered()

	r.logger.Debug("connection registered",
		zap.String("connectionId", connection.Id))

	return connection.Id
}

func (r *InMemoryRegistry) Unregister(connectionId string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries.Delete(connectionId)
	if !ok {
		return
	}

	e.connection.close()
	r.metrics.ConnectionUnregistered()

	r.logger.Debug("connection unregistered",
		zap.String("connectionId", connectionId),
		zap.String("roomId", e.roomId))
}

func (r *InMemoryRegistry) SetAssociation(connectionId string, userId string, roomId string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries.Get(connectionId)
	if !ok {
		return false
	}

	e.userId = userId
	e.roomId = roomId

	return true
}

// ClearRoomAssociation only clears when the stored room still equals roomId,
// so a late leave cannot undo a newer join.
func (r *InMemoryRegistry) ClearRoomAssociation(connectionId string, roomId string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries.Get(connectionId)
	if !ok || e.roomId != roomId {
		return false
	}

	e.roomId = ""

	return true
}

func (r *InMemoryRegistry) Snapshot() []ConnectionInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	infos := make([]ConnectionInfo, 0, r.entries.Len())
	for pair := r.entries.Oldest(); pair != nil; pair = pair.Next() {
		infos = append(infos, pair.Value.info())
	}

	return infos
}

func (r *InMemoryRegistry) Lookup(connectionId string) (ConnectionInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries.Get(connectionId)
	if !ok {
		return ConnectionInfo{}, false
	}

	return e.info(), true
}

func (r *InMemoryRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.entries.Len()
}

// each visits entries in registration order while holding the lock for the
// whole walk.
func (r *InMemoryRegistry) each(visit func(e *entry)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for pair := r.entries.Oldest(); pair != nil; pair = pair.Next() {
		visit(pair.Value)
	}
}

func (e *entry) info() ConnectionInfo {
	return ConnectionInfo{
		Id:     e.connection.Id,
		UserId: e.userId,
		RoomId: e.roomId,
		State:  e.connection.State(),
	}
}
