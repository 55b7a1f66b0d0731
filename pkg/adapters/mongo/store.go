// Package mongo implements ports.DocumentStore on top of a MongoDB collection.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"
	"time"

	"github.com/aretw0/exprmig/pkg/codec"
	"github.com/aretw0/exprmig/pkg/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Store implements ports.DocumentStore using a MongoDB collection.
// Replace keeps the stored field order: it lays the new document out like the one
// Find returned, or like the current stored version when Find never saw it.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
	owned      bool

	// layouts holds the field order of documents yielded by Find, keyed by FormatID.
	layouts sync.Map
}

// Option configures the Store.
type Option func(*options.ClientOptions)

// WithConnectTimeout bounds the initial connection and server selection.
func WithConnectTimeout(d time.Duration) Option {
	return func(o *options.ClientOptions) {
		o.SetConnectTimeout(d)
		o.SetServerSelectionTimeout(d)
	}
}

// Connect opens a client for uri, pings the server and binds the store to database.collection.
// The returned store owns the client and disconnects it on Close.
func Connect(ctx context.Context, uri, database, collection string, opts ...Option) (*Store, error) {
	clientOpts := options.Client().ApplyURI(uri)
	for _, opt := range opts {
		opt(clientOpts)
	}

	client, err := mongo.Connect(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	store := NewFromClient(client, database, collection)
	store.owned = true
	return store, nil
}

// NewFromClient creates a store from an existing client. Close leaves the client connected.
func NewFromClient(client *mongo.Client, database, collection string) *Store {
	return &Store{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}
}

// Find runs the filter against the collection and yields each document as it is fetched.
func (s *Store) Find(ctx context.Context, filter domain.Filter) iter.Seq2[domain.Document, error] {
	return func(yield func(domain.Document, error) bool) {
		query, err := Translate(filter)
		if err != nil {
			yield(nil, err)
			return
		}

		cur, err := s.collection.Find(ctx, query)
		if err != nil {
			yield(nil, fmt.Errorf("failed to query %s: %w", s.collection.Name(), err))
			return
		}
		defer cur.Close(ctx)

		for cur.Next(ctx) {
			var d bson.D
			if err := cur.Decode(&d); err != nil {
				yield(nil, fmt.Errorf("failed to decode document: %w", err))
				return
			}
			doc := domain.Document(codec.Normalize(d).(map[string]any))
			s.layouts.Store(domain.FormatID(doc.ID()), d)
			if !yield(doc, nil) {
				return
			}
		}
		if err := cur.Err(); err != nil {
			yield(nil, fmt.Errorf("cursor failed: %w", err))
		}
	}
}

// Replace overwrites the whole document whose _id equals id.
func (s *Store) Replace(ctx context.Context, id any, doc domain.Document) error {
	layout, err := s.layout(ctx, id)
	if err != nil {
		return err
	}

	res, err := s.collection.ReplaceOne(ctx, bson.M{domain.FieldID: id}, codec.Ordered(doc, layout))
	if err != nil {
		return fmt.Errorf("failed to replace document: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// layout returns the field order to replace id with. A missing document yields a nil
// layout so that ReplaceOne reports the miss.
func (s *Store) layout(ctx context.Context, id any) (bson.D, error) {
	if v, ok := s.layouts.LoadAndDelete(domain.FormatID(id)); ok {
		return v.(bson.D), nil
	}

	var current bson.D
	err := s.collection.FindOne(ctx, bson.M{domain.FieldID: id}).Decode(&current)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read current document: %w", err)
	}
	return current, nil
}

// Insert adds a document to the collection. Used to seed fixtures.
func (s *Store) Insert(ctx context.Context, doc domain.Document) error {
	if _, err := s.collection.InsertOne(ctx, map[string]any(doc)); err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// Drop removes the whole collection.
func (s *Store) Drop(ctx context.Context) error {
	return s.collection.Drop(ctx)
}

// Client returns the underlying MongoDB client.
func (s *Store) Client() *mongo.Client {
	return s.client
}

// Close disconnects the client when the store owns it.
func (s *Store) Close(ctx context.Context) error {
	if !s.owned {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// Translate converts a domain filter into a MongoDB query document.
func Translate(filter domain.Filter) (bson.M, error) {
	switch f := filter.(type) {
	case nil:
		return bson.M{}, nil
	case domain.And:
		if len(f) == 0 {
			return bson.M{}, nil
		}
		children, err := translateAll(f)
		if err != nil {
			return nil, err
		}
		return bson.M{"$and": children}, nil
	case domain.Or:
		if len(f) == 0 {
			// $or requires a non-empty array; an empty disjunction matches nothing
			return bson.M{domain.FieldID: bson.M{"$in": bson.A{}}}, nil
		}
		children, err := translateAll(f)
		if err != nil {
			return nil, err
		}
		return bson.M{"$or": children}, nil
	case domain.Regex:
		return bson.M{f.Field: bson.M{"$regex": f.Pattern}}, nil
	case domain.Equal:
		return bson.M{f.Field: f.Value}, nil
	case domain.Exists:
		return bson.M{f.Field: bson.M{"$exists": true}}, nil
	default:
		return nil, fmt.Errorf("unsupported filter %T", filter)
	}
}

func translateAll(filters []domain.Filter) (bson.A, error) {
	out := make(bson.A, 0, len(filters))
	for _, f := range filters {
		q, err := Translate(f)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}
