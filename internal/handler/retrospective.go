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

// Notifier is called only after the mutation it describes has been stored.
type Notifier interface {
	NotifyRoom(roomId string, event broadcaster.RoomEvent) broadcaster.DeliveryResult
	NotifyAll(event broadcaster.RetrospectiveCreated) broadcaster.DeliveryResult
}

type CreateRetrospectiveRequest struct {
	Title        string             `json:"title"`
	TemplateType retro.TemplateType `json:"templateType"`
}

type RetrospectiveHandler struct {
	idValidator *IdValidator
	engine      persistence.Engine
	identity    *IdentityResolver
	notifier    Notifier
	writeMu     *sync.Mutex
}

func NewRetrospectiveHandler(
	idValidator *IdValidator,
	engine persistence.Engine,
	identity *IdentityResolver,
	notifier Notifier,
	writeMu *sync.Mutex,
) *RetrospectiveHandler {
	return &RetrospectiveHandler{
		idValidator,
		engine,
		identity,
		notifier,
		writeMu,
	}
}

func (h *RetrospectiveHandler) List(ctx context.Context) ([]retro.Retrospective, error) {
	retrospectives, err := h.engine.ListRetrospectives(ctx)
	if err != nil {
		return nil, fmt.Errorf("list retrospectives: %w", err)
	}

	return retrospectives, nil
}

func (h *RetrospectiveHandler) Get(ctx context.Context, id string) (retro.Retrospective, error) {
	err := h.idValidator.Validate("retrospectiveId", id)
	if err != nil {
		return retro.Retrospective{}, err
	}

	return getRetrospective(ctx, h.engine, id)
}

func (h *RetrospectiveHandler) Create(ctx context.Context, req CreateRetrospectiveRequest) (retro.Retrospective, error) {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	user, err := h.identity.CurrentUser(ctx)
	if err != nil {
		return retro.Retrospective{}, err
	}

	if req.Title == "" {
		return retro.Retrospective{}, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("title is required"))
	}

	if !req.TemplateType.Valid() {
		return retro.Retrospective{}, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("invalid templateType"))
	}

	now := retro.Now()
	retrospective := retro.Retrospective{
		Id:           uuid.NewString(),
		Title:        req.Title,
		TemplateType: req.TemplateType,
		CreatedAt:    now,
		UpdatedAt:    now,
		Participants: []retro.User{user},
	}

	err = h.engine.SaveRetrospective(ctx, retrospective)
	if err != nil {
		return retro.Retrospective{}, fmt.Errorf("save retrospective: %w", err)
	}

	h.notifier.NotifyAll(broadcaster.RetrospectiveCreated{Retrospective: retrospective})

	return retrospective, nil
}

func getRetrospective(ctx context.Context, engine persistence.Engine, id string) (retro.Retrospective, error) {
	retrospective, err := engine.GetRetrospective(ctx, id)
	if errors.Is(err, persistence.ErrNotFound) {
		return retro.Retrospective{}, ierr.New(ierr.ErrorCodeNotFound, errors.New("retrospective not found"))
	}
	if err != nil {
		return retro.Retrospective{}, fmt.Errorf("get retrospective: %w", err)
	}

	return retrospective, nil
}
