// Package mongo stores flow documents in a MongoDB collection.
//
// Documents are stored whole, keyed by _id = flow id. Node configs are
// embedded as sub-documents whose shape follows the node's type.
package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/ivrflow/pkg/document"
	errs "github.com/matzehuels/ivrflow/pkg/errors"
	"github.com/matzehuels/ivrflow/pkg/store"
)

// Defaults used by [Connect].
const (
	DefaultDatabase   = "ivrflow"
	DefaultCollection = "flows"
)

// Store implements [store.Store] on a MongoDB collection.
type Store struct {
	coll   *mongo.Collection
	client *mongo.Client
	now    func() time.Time
	log    *log.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// Connect dials uri and returns a store over database.flows. An empty
// database selects [DefaultDatabase].
func Connect(ctx context.Context, uri, database string, opts ...Option) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeNetwork, err, "connect to mongodb")
	}
	if database == "" {
		database = DefaultDatabase
	}
	s := New(client.Database(database).Collection(DefaultCollection), opts...)
	s.client = client
	return s, nil
}

// New wraps an existing collection. Close does not disconnect the client.
func New(coll *mongo.Collection, opts ...Option) *Store {
	s := &Store{coll: coll, now: time.Now, log: log.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save upserts d.
func (s *Store) Save(ctx context.Context, d *document.Document) error {
	store.Prepare(d, s.now())

	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": d.ID}, d, options.Replace().SetUpsert(true))
	if err != nil {
		return errs.Wrap(errs.ErrCodeNetwork, err, "save flow to mongodb")
	}
	s.log.Debug("flow saved", "backend", "mongo", "id", d.ID)
	return nil
}

// Load reads the flow with the given id.
func (s *Store) Load(ctx context.Context, id string) (*document.Document, error) {
	var d document.Document
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.NotFound(id)
		}
		return nil, errs.Wrap(errs.ErrCodeNetwork, err, "load flow from mongodb")
	}
	return &d, nil
}

// List returns flow summaries, newest first.
func (s *Store) List(ctx context.Context) ([]store.Summary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}}).
		SetProjection(bson.M{"_id": 1, "name": 1, "status": 1, "updatedAt": 1})

	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeNetwork, err, "list flows")
	}
	var out []store.Summary
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.Wrap(errs.ErrCodeNetwork, err, "list flows")
	}
	return out, nil
}

// Delete removes the flow.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return errs.Wrap(errs.ErrCodeNetwork, err, "delete flow from mongodb")
	}
	return nil
}

// Close disconnects the client if the store created it.
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ store.Store = (*Store)(nil)
