package store

import (
	"context"
	"encoding/json"

	"github.com/freightboard/dashboard-api/internal/docstore"
	"github.com/freightboard/dashboard-api/internal/errs"
	"github.com/freightboard/dashboard-api/internal/models"
	"github.com/freightboard/dashboard-api/pkg/logger"
)

// snapshotCipher encrypts frozen widget snapshots at rest.
type snapshotCipher interface {
	Encrypt(ctx context.Context, plaintext []byte) (string, error)
	Decrypt(ctx context.Context, ciphertext string) ([]byte, error)
}

// storedWidget is the persisted form of a custom widget. The live snapshot
// field is replaced by its encrypted form.
type storedWidget struct {
	models.CustomWidgetDefinition
	EncryptedSnapshot string `json:"encryptedSnapshot,omitempty"`
}

type customWidgetStore struct {
	docs   docstore.Store
	cipher snapshotCipher
}

func NewCustomWidgetStore(docs docstore.Store, cipher snapshotCipher) *customWidgetStore {
	return &customWidgetStore{docs: docs, cipher: cipher}
}

func (s *customWidgetStore) Save(ctx context.Context, owner models.OwnerContext, def *models.CustomWidgetDefinition) error {
	stored := storedWidget{CustomWidgetDefinition: *def}
	// The live snapshot never persists in plaintext.
	stored.CustomWidgetDefinition.StaticSnapshot = nil
	if def.StaticSnapshot != nil {
		plaintext, err := json.Marshal(def.StaticSnapshot)
		if err != nil {
			return errs.NewDatabaseError("write", "failed to encode widget snapshot", err)
		}
		stored.EncryptedSnapshot, err = s.cipher.Encrypt(ctx, plaintext)
		if err != nil {
			return err
		}
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return errs.NewDatabaseError("write", "failed to encode widget definition", err)
	}
	return s.docs.Put(ctx, docstore.WidgetPath(owner.Scope, owner.OwnerID, def.ID), data)
}

func (s *customWidgetStore) Get(ctx context.Context, owner models.OwnerContext, widgetID string) (*models.CustomWidgetDefinition, error) {
	data, err := s.docs.Get(ctx, docstore.WidgetPath(owner.Scope, owner.OwnerID, widgetID))
	if err == docstore.ErrNotFound {
		return nil, errs.NewNotFoundError("custom widget not found: " + widgetID)
	}
	if err != nil {
		return nil, err
	}
	return s.decode(ctx, data)
}

// List enumerates every definition under the owner's namespace. A document
// that fails to parse is logged and skipped; it never aborts the listing.
func (s *customWidgetStore) List(ctx context.Context, owner models.OwnerContext) ([]*models.CustomWidgetDefinition, error) {
	log := logger.FromContext(ctx)
	docs, err := s.docs.List(ctx, docstore.WidgetPrefix(owner.Scope, owner.OwnerID))
	if err != nil {
		return nil, err
	}
	defs := make([]*models.CustomWidgetDefinition, 0, len(docs))
	for _, doc := range docs {
		def, err := s.decode(ctx, doc.Data)
		if err != nil {
			log.Warn("skipping malformed widget document", "path", doc.Path, "error", err)
			continue
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Delete is idempotent; deleting an id that does not exist is not an error.
func (s *customWidgetStore) Delete(ctx context.Context, owner models.OwnerContext, widgetID string) error {
	return s.docs.Delete(ctx, docstore.WidgetPath(owner.Scope, owner.OwnerID, widgetID))
}

func (s *customWidgetStore) decode(ctx context.Context, data []byte) (*models.CustomWidgetDefinition, error) {
	var stored storedWidget
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}
	def := stored.CustomWidgetDefinition
	if stored.EncryptedSnapshot != "" {
		plaintext, err := s.cipher.Decrypt(ctx, stored.EncryptedSnapshot)
		if err != nil {
			return nil, err
		}
		var snapshot models.WidgetData
		if err := json.Unmarshal(plaintext, &snapshot); err != nil {
			return nil, err
		}
		def.StaticSnapshot = &snapshot
	}
	return &def, nil
}
