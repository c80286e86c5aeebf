package persistence

import (
	"context"
	"errors"

	apperrors "github.com/spec-kit/verif-backoffice/pkg/util"
)

// Collections used by the back-office.
const (
	CollectionAdmins        = "admins"
	CollectionSubmissions   = "coupon_submissions"
	CollectionRefunds       = "refund_requests"
	CollectionContacts      = "contact_messages"
	CollectionNotifications = "admin_notifications"
)

// ErrDocumentNotFound is returned when a document id does not exist in a collection.
var ErrDocumentNotFound = errors.New("document not found")

func init() {
	apperrors.RegisterNotFound(ErrDocumentNotFound)
}

// Document is a schemaless record. The "id" key carries the document id on reads.
type Document map[string]any

// ID returns the document id, if any.
func (d Document) ID() string {
	id, _ := d["id"].(string)
	return id
}

func (d Document) withoutID() Document {
	out := make(Document, len(d))
	for k, v := range d {
		if k == "id" {
			continue
		}
		out[k] = v
	}
	return out
}

// Query narrows a Find call. Where holds top-level equality matches.
type Query struct {
	Where       map[string]any
	NewestFirst bool
	Limit       int
}

// DocumentStore is the document repository every workflow reads and writes through.
type DocumentStore interface {
	Find(ctx context.Context, collection string, q Query) ([]Document, error)
	FindAll(ctx context.Context, collection string) ([]Document, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	Update(ctx context.Context, collection, id string, fields Document) error
	Create(ctx context.Context, collection string, doc Document) (string, error)
	Delete(ctx context.Context, collection, id string) error
}
