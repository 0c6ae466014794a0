package docstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/freightboard/dashboard-api/internal/errs"
)

// firestoreStore maps docstore paths onto Firestore's alternating
// collection/document hierarchy. Document paths need an even number of
// segments, list prefixes an odd number.
type firestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *firestoreStore {
	return &firestoreStore{client: client}
}

const payloadField = "payload"

func (s *firestoreStore) docRef(path string) (*firestore.DocumentRef, error) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) < 2 || len(segments)%2 != 0 {
		return nil, fmt.Errorf("document path %q must have an even number of segments", path)
	}
	doc := s.client.Collection(segments[0]).Doc(segments[1])
	for i := 2; i < len(segments); i += 2 {
		doc = doc.Collection(segments[i]).Doc(segments[i+1])
	}
	return doc, nil
}

func (s *firestoreStore) collectionRef(prefix string) (*firestore.CollectionRef, error) {
	segments := strings.Split(strings.Trim(prefix, "/"), "/")
	if len(segments) == 0 || len(segments)%2 != 1 {
		return nil, fmt.Errorf("list prefix %q must have an odd number of segments", prefix)
	}
	coll := s.client.Collection(segments[0])
	for i := 1; i < len(segments); i += 2 {
		coll = coll.Doc(segments[i]).Collection(segments[i+1])
	}
	return coll, nil
}

func (s *firestoreStore) Put(ctx context.Context, path string, data []byte) error {
	doc, err := s.docRef(path)
	if err != nil {
		return errs.NewDatabaseError("write", "invalid document path", err)
	}
	if _, err := doc.Set(ctx, map[string]any{
		payloadField: data,
		"updatedAt":  time.Now(),
	}); err != nil {
		return errs.NewDatabaseError("write", "failed to put document", err)
	}
	return nil
}

func (s *firestoreStore) Get(ctx context.Context, path string) ([]byte, error) {
	doc, err := s.docRef(path)
	if err != nil {
		return nil, errs.NewDatabaseError("read", "invalid document path", err)
	}
	snap, err := doc.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, errs.NewDatabaseError("read", "failed to get document", err)
	}
	payload, _ := snap.Data()[payloadField].([]byte)
	return payload, nil
}

func (s *firestoreStore) List(ctx context.Context, prefix string) ([]Document, error) {
	coll, err := s.collectionRef(prefix)
	if err != nil {
		return nil, errs.NewDatabaseError("read", "invalid list prefix", err)
	}
	snaps, err := coll.Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list documents", err)
	}
	docs := make([]Document, 0, len(snaps))
	for _, snap := range snaps {
		payload, _ := snap.Data()[payloadField].([]byte)
		docs = append(docs, Document{
			Path: strings.Trim(prefix, "/") + "/" + snap.Ref.ID,
			Data: payload,
		})
	}
	return docs, nil
}

func (s *firestoreStore) Delete(ctx context.Context, path string) error {
	doc, err := s.docRef(path)
	if err != nil {
		return errs.NewDatabaseError("delete", "invalid document path", err)
	}
	// Firestore deletes are idempotent; a missing document is not an error.
	if _, err := doc.Delete(ctx); err != nil {
		return errs.NewDatabaseError("delete", "failed to delete document", err)
	}
	return nil
}
