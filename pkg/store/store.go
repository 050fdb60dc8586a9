// Package store defines persistence for flow documents.
//
// A [Store] keeps documents keyed by id. The editor talks to it only through
// [document.Saver]; the CLI and HTTP server use the full interface. Backends
// live in subpackages:
//
//	store/file   one JSON file per flow under a directory
//	store/redis  JSON values plus a sorted-set index in Redis
//	store/mongo  one BSON document per flow in a MongoDB collection
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/ivrflow/pkg/document"
	errs "github.com/matzehuels/ivrflow/pkg/errors"
)

// Store persists flow documents.
type Store interface {
	document.Saver

	// Load returns the document with the given id, or an
	// ErrCodeFlowNotFound error.
	Load(ctx context.Context, id string) (*document.Document, error)

	// List returns summaries of all stored flows, most recently updated first.
	List(ctx context.Context) ([]Summary, error)

	// Delete removes a flow. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases the backend's resources.
	Close() error
}

// Summary is the listing entry for a stored flow.
type Summary struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Status    string    `json:"status" bson:"status"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// SummaryOf returns the listing entry for d.
func SummaryOf(d *document.Document) Summary {
	return Summary{ID: d.ID, Name: d.Name, Status: d.Status, UpdatedAt: d.UpdatedAt}
}

// Prepare assigns an id to a never-saved document and stamps UpdatedAt.
// Backends call it at the start of Save.
func Prepare(d *document.Document, now time.Time) {
	if d.ID == "" {
		d.ID = NewID()
	}
	d.UpdatedAt = now.UTC().Truncate(time.Millisecond)
}

// NewID returns a fresh flow id.
func NewID() string {
	return "flow-" + uuid.NewString()
}

// NotFound returns the error backends report for an unknown id.
func NotFound(id string) error {
	return errs.New(errs.ErrCodeFlowNotFound, "flow %q not found", id)
}

// ValidID reports whether id is safe to use as a file name or key suffix.
func ValidID(id string) bool {
	if id == "" || len(id) > 128 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
