package mongo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/time/rate"

	"listing_seeder/internal/adapters/observability"
	"listing_seeder/internal/domain"
)

var ErrNotFound = &domain.CodedError{Code: "not_found", Msg: "mongo: document not found"}

// Store implements domain.DocumentStore on MongoDB: the database id selects
// the database and the collection id the collection.
type Store struct {
	client *mongo.Client
	rl     *rate.Limiter
}

func NewStore(client *mongo.Client, rps int) *Store {
	if rps <= 0 {
		rps = 50
	}
	return &Store{client: client, rl: rate.NewLimiter(rate.Limit(rps), 1)}
}

func (s *Store) collection(databaseID, collectionID string) *mongo.Collection {
	return s.client.Database(databaseID).Collection(collectionID)
}

func (s *Store) ListDocuments(ctx context.Context, databaseID, collectionID string) (docs []domain.Document, err error) {
	if err := s.rl.Wait(ctx); err != nil {
		return nil, err
	}
	defer observe("list", time.Now(), &err)

	cursor, err := s.collection(databaseID, collectionID).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs = make([]domain.Document, 0)
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		docs = append(docs, toDocument(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *Store) CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]any) (doc domain.Document, err error) {
	if err := s.rl.Wait(ctx); err != nil {
		return domain.Document{}, err
	}
	defer observe("create", time.Now(), &err)

	var id any = documentID
	if documentID == domain.UniqueID || documentID == "" {
		id = primitive.NewObjectID()
	}
	record := bson.M{"_id": id}
	for k, v := range data {
		record[k] = v
	}
	if _, err := s.collection(databaseID, collectionID).InsertOne(ctx, record); err != nil {
		return domain.Document{}, fmt.Errorf("insert into %s: %w", collectionID, err)
	}
	return domain.Document{ID: idString(id), Data: data}, nil
}

func (s *Store) DeleteDocument(ctx context.Context, databaseID, collectionID, documentID string) (err error) {
	if err := s.rl.Wait(ctx); err != nil {
		return err
	}
	defer observe("delete", time.Now(), &err)

	var filter bson.M
	if oid, perr := primitive.ObjectIDFromHex(documentID); perr == nil {
		filter = bson.M{"_id": bson.M{"$in": bson.A{oid, documentID}}}
	} else {
		filter = bson.M{"_id": documentID}
	}
	res, err := s.collection(databaseID, collectionID).DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func toDocument(raw bson.M) domain.Document {
	id := idString(raw["_id"])
	delete(raw, "_id")
	return domain.Document{ID: id, Data: map[string]any(raw)}
}

func idString(v any) string {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex()
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func observe(endpoint string, start time.Time, err *error) {
	status := http.StatusOK
	if *err != nil {
		status = http.StatusInternalServerError
		if errors.Is(*err, ErrNotFound) {
			status = http.StatusNotFound
		}
	}
	observability.ObserveExternal("mongo", endpoint, status, time.Since(start))
}
