package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/goevery/retroboard/internal/persistence"
	"github.com/goevery/retroboard/internal/retro"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type PersistenceEngine struct {
	client         *mongo.Client
	users          *mongo.Collection
	retrospectives *mongo.Collection
	notes          *mongo.Collection
}

func Connect(uri string, databaseName string) (*PersistenceEngine, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb: connect: %w", err)
	}

	return NewPersistenceEngine(client, databaseName), nil
}

func NewPersistenceEngine(client *mongo.Client, databaseName string) *PersistenceEngine {
	database := client.Database(databaseName)

	return &PersistenceEngine{
		client:         client,
		users:          database.Collection("users"),
		retrospectives: database.Collection("retrospectives"),
		notes:          database.Collection("notes"),
	}
}

func (e *PersistenceEngine) Setup(ctx context.Context) error {
	_, err := e.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("mongodb: create users index: %w", err)
	}

	_, err = e.retrospectives.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "updatedAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("mongodb: create retrospectives index: %w", err)
	}

	_, err = e.notes.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "retrospectiveId", Value: 1},
			{Key: "createdAt", Value: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("mongodb: create notes index: %w", err)
	}

	return nil
}

func (e *PersistenceEngine) Close(ctx context.Context) error {
	return e.client.Disconnect(ctx)
}

func (e *PersistenceEngine) FindUser(ctx context.Context, id string) (retro.User, error) {
	var user retro.User
	err := findOne(ctx, e.users, bson.M{"_id": id}, &user)

	return user, err
}

func (e *PersistenceEngine) FindUserByName(ctx context.Context, name string) (retro.User, error) {
	var user retro.User
	err := findOne(ctx, e.users, bson.M{"name": name}, &user)

	return user, err
}

func (e *PersistenceEngine) SaveUser(ctx context.Context, user retro.User) error {
	return replace(ctx, e.users, user.Id, user)
}

func (e *PersistenceEngine) ListRetrospectives(ctx context.Context) ([]retro.Retrospective, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}})

	return findAll[retro.Retrospective](ctx, e.retrospectives, bson.M{}, opts)
}

func (e *PersistenceEngine) GetRetrospective(ctx context.Context, id string) (retro.Retrospective, error) {
	var retrospective retro.Retrospective
	err := findOne(ctx, e.retrospectives, bson.M{"_id": id}, &retrospective)

	return retrospective, err
}

func (e *PersistenceEngine) SaveRetrospective(ctx context.Context, retrospective retro.Retrospective) error {
	return replace(ctx, e.retrospectives, retrospective.Id, retrospective)
}

func (e *PersistenceEngine) ListNotes(ctx context.Context, retrospectiveId string) ([]retro.Note, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}})

	return findAll[retro.Note](ctx, e.notes, bson.M{"retrospectiveId": retrospectiveId}, opts)
}

func (e *PersistenceEngine) GetNote(ctx context.Context, id string) (retro.Note, error) {
	var note retro.Note
	err := findOne(ctx, e.notes, bson.M{"_id": id}, &note)

	return note, err
}

func (e *PersistenceEngine) SaveNote(ctx context.Context, note retro.Note) error {
	return replace(ctx, e.notes, note.Id, note)
}

func (e *PersistenceEngine) DeleteNote(ctx context.Context, id string) error {
	result, err := e.notes.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("mongodb: delete note: %w", err)
	}

	if result.DeletedCount == 0 {
		return persistence.ErrNotFound
	}

	return nil
}

func findOne(ctx context.Context, collection *mongo.Collection, filter bson.M, v any) error {
	err := collection.FindOne(ctx, filter).Decode(v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return persistence.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("mongodb: find in %s: %w", collection.Name(), err)
	}

	return nil
}

func findAll[T any](ctx context.Context, collection *mongo.Collection, filter bson.M, opts *options.FindOptionsBuilder) ([]T, error) {
	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb: find in %s: %w", collection.Name(), err)
	}

	var records []T
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("mongodb: decode %s: %w", collection.Name(), err)
	}

	if records == nil {
		records = []T{}
	}

	return records, nil
}

func replace(ctx context.Context, collection *mongo.Collection, id string, document any) error {
	_, err := collection.ReplaceOne(ctx,
		bson.M{"_id": id},
		document,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongodb: save to %s: %w", collection.Name(), err)
	}

	return nil
}
