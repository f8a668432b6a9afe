package handler

import (
	"context"
	"errors"

	"github.com/goevery/retroboard/internal/broadcaster"
	"github.com/goevery/retroboard/internal/retro"
)

type JoinRequest struct {
	RetrospectiveId string `json:"retrospectiveId"`
	UserId          string `json:"userId"`
	UserName        string `json:"userName"`
	UserColor       string `json:"userColor"`
}

type RoomRouter interface {
	DeliverToRoom(roomId string, event broadcaster.RoomEvent, excludeId string) broadcaster.DeliveryResult
}

type JoinHandlerInterface interface {
	Handle(ctx context.Context, req JoinRequest) (broadcaster.DeliveryResult, error)
}

type JoinHandler struct {
	idValidator *IdValidator
	registry    broadcaster.Registry
	router      RoomRouter
}

func NewJoinHandler(
	idValidator *IdValidator,
	registry broadcaster.Registry,
	router RoomRouter,
) *JoinHandler {
	return &JoinHandler{
		idValidator,
		registry,
		router,
	}
}

// Handle moves the connection into the requested room, replacing any previous
// room, and announces the user to everyone else already there. The user id is
// taken as asserted by the client.
func (h *JoinHandler) Handle(ctx context.Context, req JoinRequest) (broadcaster.DeliveryResult, error) {
	err := h.idValidator.ValidateRoomId(req.RetrospectiveId)
	if err != nil {
		return broadcaster.DeliveryResult{}, err
	}

	connection, ok := broadcaster.ConnectionFromContext(ctx)
	if !ok {
		return broadcaster.DeliveryResult{}, errors.New("connection not found in context")
	}

	if !h.registry.SetAssociation(connection.Id, req.UserId, req.RetrospectiveId) {
		return broadcaster.DeliveryResult{}, errors.New("connection is not registered")
	}

	event := broadcaster.UserJoined{
		RetroId: req.RetrospectiveId,
		User: retro.User{
			Id:    req.UserId,
			Name:  req.UserName,
			Color: req.UserColor,
		},
	}

	return h.router.DeliverToRoom(req.RetrospectiveId, event, connection.Id), nil
}
