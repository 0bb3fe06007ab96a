package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/powerlab/transistordb/internal/domain"
)

// MongoStore keeps records as documents keyed by name, matching the layout
// of existing shared collections. Documents go through the JSON codec in
// both directions so the curve matrices keep their two-row exchange form.
type MongoStore struct {
	col *mongo.Collection
}

// NewMongoStore wraps the given collection.
func NewMongoStore(col *mongo.Collection) *MongoStore {
	return &MongoStore{col: col}
}

func toDocument(t *domain.Transistor) (bson.M, error) {
	data, err := Encode(t)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func fromDocument(doc bson.M) (*domain.Transistor, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("re-encode document: %w: %w", domain.ErrInvalidRecord, err)
	}
	return Decode(data)
}

func (s *MongoStore) Save(ctx context.Context, t *domain.Transistor, overwrite bool) error {
	if !ValidName(t.Name) {
		return fmt.Errorf("%q is not a valid transistor name: %w", t.Name, domain.ErrInvalidRecord)
	}
	if !overwrite {
		err := s.col.FindOne(ctx, bson.M{"name": t.Name}).Err()
		if err == nil {
			return fmt.Errorf("%s: %w", t.Name, ErrExists)
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return err
		}
	}
	doc, err := toDocument(t)
	if err != nil {
		return err
	}
	_, err = s.col.ReplaceOne(ctx, bson.M{"name": t.Name}, doc, options.Replace().SetUpsert(true))
	return err
}

func (s *MongoStore) Load(ctx context.Context, name string) (*domain.Transistor, error) {
	var doc bson.M
	err := s.col.FindOne(ctx, bson.M{"name": name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("transistor %s: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return fromDocument(doc)
}

func (s *MongoStore) Delete(ctx context.Context, name string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("transistor %s: %w", name, domain.ErrNotFound)
	}
	return nil
}

func (s *MongoStore) Names(ctx context.Context) ([]string, error) {
	cur, err := s.col.Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{"name": 1}).SetSort(bson.M{"name": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var names []string
	for cur.Next(ctx) {
		var doc struct {
			Name string `bson:"name"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		names = append(names, doc.Name)
	}
	return names, cur.Err()
}

func (s *MongoStore) All(ctx context.Context) ([]*domain.Transistor, error) {
	cur, err := s.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domain.Transistor
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		t, err := fromDocument(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, cur.Err()
}
