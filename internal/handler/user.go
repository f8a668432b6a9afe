package handler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goevery/retroboard/internal/ierr"
	"github.com/goevery/retroboard/internal/persistence"
	"github.com/goevery/retroboard/internal/retro"
)

type FindUserByNameRequest struct {
	Name string `json:"name"`
}

type CreateUserRequest struct {
	Id    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type CreateUserResponse struct {
	User    retro.User
	Created bool
}

type UserHandler struct {
	engine  persistence.Engine
	writeMu *sync.Mutex
}

func NewUserHandler(engine persistence.Engine, writeMu *sync.Mutex) *UserHandler {
	return &UserHandler{
		engine,
		writeMu,
	}
}

func (h *UserHandler) FindByName(ctx context.Context, req FindUserByNameRequest) (retro.User, error) {
	if req.Name == "" {
		return retro.User{}, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("name is required"))
	}

	user, err := h.engine.FindUserByName(ctx, req.Name)
	if errors.Is(err, persistence.ErrNotFound) {
		return retro.User{}, ierr.New(ierr.ErrorCodeNotFound, errors.New("user not found"))
	}
	if err != nil {
		return retro.User{}, fmt.Errorf("find user by name: %w", err)
	}

	return user, nil
}

// Create returns an existing user with the same name, or else the same id,
// before registering a new one.
func (h *UserHandler) Create(ctx context.Context, req CreateUserRequest) (CreateUserResponse, error) {
	if req.Id == "" || req.Name == "" || req.Color == "" {
		return CreateUserResponse{},
			ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("id, name, and color are required"))
	}

	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	existing, err := h.engine.FindUserByName(ctx, req.Name)
	if err == nil {
		return CreateUserResponse{User: existing}, nil
	}
	if !errors.Is(err, persistence.ErrNotFound) {
		return CreateUserResponse{}, fmt.Errorf("find user by name: %w", err)
	}

	existing, err = h.engine.FindUser(ctx, req.Id)
	if err == nil {
		return CreateUserResponse{User: existing}, nil
	}
	if !errors.Is(err, persistence.ErrNotFound) {
		return CreateUserResponse{}, fmt.Errorf("find user by id: %w", err)
	}

	user := retro.User{
		Id:    req.Id,
		Name:  req.Name,
		Color: req.Color,
	}

	err = h.engine.SaveUser(ctx, user)
	if err != nil {
		return CreateUserResponse{}, fmt.Errorf("save user: %w", err)
	}

	return CreateUserResponse{User: user, Created: true}, nil
}
