package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/goevery/retroboard/internal/ierr"
	"github.com/goevery/retroboard/internal/persistence"
	"github.com/goevery/retroboard/internal/retro"
)

// Identity is what the client claims to be. Nothing is verified.
type Identity struct {
	UserId   string
	UserName string
}

type contextKey string

const identityKey contextKey = "identity"

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)

	return identity, ok
}

type IdentityResolver struct {
	engine persistence.Engine
}

func NewIdentityResolver(engine persistence.Engine) *IdentityResolver {
	return &IdentityResolver{
		engine,
	}
}

// RequireIdentity returns the asserted identity, or Unauthenticated when
// either field is missing.
func RequireIdentity(ctx context.Context) (Identity, error) {
	identity, ok := IdentityFromContext(ctx)
	if !ok || identity.UserId == "" || identity.UserName == "" {
		return Identity{}, ierr.New(ierr.ErrorCodeUnauthenticated, errors.New("authentication required"))
	}

	return identity, nil
}

// CurrentUser resolves the asserted identity by id, then by name, and
// registers a new user when neither matches. Write handlers call it before
// looking at their input.
func (r *IdentityResolver) CurrentUser(ctx context.Context) (retro.User, error) {
	identity, err := RequireIdentity(ctx)
	if err != nil {
		return retro.User{}, err
	}

	user, err := r.engine.FindUser(ctx, identity.UserId)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, persistence.ErrNotFound) {
		return retro.User{}, fmt.Errorf("find user by id: %w", err)
	}

	user, err = r.engine.FindUserByName(ctx, identity.UserName)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, persistence.ErrNotFound) {
		return retro.User{}, fmt.Errorf("find user by name: %w", err)
	}

	user = retro.User{
		Id:    identity.UserId,
		Name:  identity.UserName,
		Color: retro.UserColor(identity.UserName),
	}

	err = r.engine.SaveUser(ctx, user)
	if err != nil {
		return retro.User{}, fmt.Errorf("save user: %w", err)
	}

	return user, nil
}
