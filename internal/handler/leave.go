package handler

import (
	"context"
	"errors"

	"github.com/goevery/retroboard/internal/broadcaster"
)

type LeaveRequest struct {
	RetrospectiveId string `json:"retrospectiveId"`
}

type LeaveResponse struct {
	Left bool
}

type LeaveHandlerInterface interface {
	Handle(ctx context.Context, req LeaveRequest) (LeaveResponse, error)
}

type LeaveHandler struct {
	idValidator *IdValidator
	registry    broadcaster.Registry
}

func NewLeaveHandler(
	idValidator *IdValidator,
	registry broadcaster.Registry,
) *LeaveHandler {
	return &LeaveHandler{
		idValidator,
		registry,
	}
}

// Handle clears the connection's room if it is still the one being left.
// Leaving announces nothing; there is no user-left event.
func (h *LeaveHandler) Handle(ctx context.Context, req LeaveRequest) (LeaveResponse, error) {
	err := h.idValidator.ValidateRoomId(req.RetrospectiveId)
	if err != nil {
		return LeaveResponse{}, err
	}

	connection, ok := broadcaster.ConnectionFromContext(ctx)
	if !ok {
		return LeaveResponse{}, errors.New("connection not found in context")
	}

	return LeaveResponse{
		Left: h.registry.ClearRoomAssociation(connection.Id, req.RetrospectiveId),
	}, nil
}
