package server

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/goevery/retroboard/internal/broadcaster"
	"github.com/goevery/retroboard/internal/handler"
	"github.com/goevery/retroboard/internal/ierr"
	"github.com/goevery/retroboard/internal/metrics"
	"go.uber.org/zap"
)

const (
	MessageJoinRoom  = "join-room"
	MessageLeaveRoom = "leave-room"
)

type envelope struct {
	Type string `json:"type"`
}

// Router dispatches inbound WebSocket frames. Nothing is ever written back to
// the sender: frames that cannot be handled are logged and dropped, and the
// connection stays open.
type Router struct {
	logger  *zap.Logger
	metrics *metrics.Metrics

	joinHandler  handler.JoinHandlerInterface
	leaveHandler handler.LeaveHandlerInterface
}

func NewRouter(
	logger *zap.Logger,
	metrics *metrics.Metrics,
	joinHandler handler.JoinHandlerInterface,
	leaveHandler handler.LeaveHandlerInterface,
) *Router {
	return &Router{
		logger,
		metrics,
		joinHandler,
		leaveHandler,
	}
}

func (r *Router) Route(ctx context.Context, frame []byte) {
	logger := r.logger
	if connection, ok := broadcaster.ConnectionFromContext(ctx); ok {
		logger = logger.With(zap.String("connectionId", connection.Id))
	}

	err := r.handle(ctx, logger, frame)
	if err != nil {
		r.metrics.RecordInbound(metrics.ResultDiscarded)

		if _, ok := ierr.CodeOf(err); ok {
			logger.Warn("discarding inbound message", zap.Error(err))
		} else {
			logger.Error("failed to handle inbound message", zap.Error(err))
		}

		return
	}

	r.metrics.RecordInbound(metrics.ResultAccepted)
}

func (r *Router) handle(ctx context.Context, logger *zap.Logger, frame []byte) error {
	var message envelope
	if err := decodeMessage(frame, &message); err != nil {
		return err
	}

	switch message.Type {
	case MessageJoinRoom:
		var joinReq handler.JoinRequest
		if err := decodeMessage(frame, &joinReq); err != nil {
			return err
		}

		result, err := r.joinHandler.Handle(ctx, joinReq)
		if err != nil {
			return err
		}

		logger.Debug("joined room",
			zap.String("retrospectiveId", joinReq.RetrospectiveId),
			zap.String("userId", joinReq.UserId),
			zap.Int("notified", result.Delivered))
	case MessageLeaveRoom:
		var leaveReq handler.LeaveRequest
		if err := decodeMessage(frame, &leaveReq); err != nil {
			return err
		}

		response, err := r.leaveHandler.Handle(ctx, leaveReq)
		if err != nil {
			return err
		}

		logger.Debug("left room",
			zap.String("retrospectiveId", leaveReq.RetrospectiveId),
			zap.Bool("left", response.Left))
	default:
		return ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("unknown message type: "+message.Type))
	}

	return nil
}

func decodeMessage(frame []byte, v any) error {
	if err := json.Unmarshal(frame, v); err != nil {
		return ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("invalid message: "+err.Error()))
	}

	return nil
}
