package persistence

import (
	"context"
	"errors"

	"github.com/goevery/retroboard/internal/retro"
)

var ErrNotFound = errors.New("record not found")

// Engine is a key-collection store. Every write returns only after the record
// has been stored; there are no transactions across calls.
type Engine interface {
	Setup(ctx context.Context) error
	Close(ctx context.Context) error

	FindUser(ctx context.Context, id string) (retro.User, error)
	FindUserByName(ctx context.Context, name string) (retro.User, error)
	SaveUser(ctx context.Context, user retro.User) error

	ListRetrospectives(ctx context.Context) ([]retro.Retrospective, error)
	GetRetrospective(ctx context.Context, id string) (retro.Retrospective, error)
	SaveRetrospective(ctx context.Context, retrospective retro.Retrospective) error

	ListNotes(ctx context.Context, retrospectiveId string) ([]retro.Note, error)
	GetNote(ctx context.Context, id string) (retro.Note, error)
	SaveNote(ctx context.Context, note retro.Note) error
	DeleteNote(ctx context.Context, id string) error
}
