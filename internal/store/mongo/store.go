// Package mongo reads insight documents from a MongoDB collection.
package mongo

import (
	"context"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Open connects and pings the server so a bad URI fails at start-up.
func Open(ctx context.Context, uri, database, collection string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &Store{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

// FindAll returns every document of the collection as relaxed extended JSON,
// in natural order.
func (s *Store) FindAll(ctx context.Context) ([]json.RawMessage, error) {
	cur, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find documents: %w", err)
	}
	defer cur.Close(ctx)

	docs := make([]json.RawMessage, 0)
	for cur.Next(ctx) {
		doc, err := toJSON(cur.Current)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

// Import inserts docs, each decoded from (extended) JSON.
func (s *Store) Import(ctx context.Context, docs []json.RawMessage) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	batch := make([]interface{}, len(docs))
	for i, raw := range docs {
		doc, err := fromJSON(raw)
		if err != nil {
			return 0, fmt.Errorf("document %d: %w", i, err)
		}
		batch[i] = doc
	}

	res, err := s.coll.InsertMany(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("insert documents: %w", err)
	}
	return len(res.InsertedIDs), nil
}

func toJSON(raw bson.Raw) (json.RawMessage, error) {
	b, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return json.RawMessage(b), nil
}

func fromJSON(raw json.RawMessage) (bson.D, error) {
	var doc bson.D
	if err := bson.UnmarshalExtJSON(raw, false, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}
