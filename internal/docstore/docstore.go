// Package docstore is a minimal key-addressed JSON document store. Paths are
// slash-separated and hierarchical; listing walks a prefix. Custom widget and
// layout persistence sit on this interface so the aggregation engine never
// touches storage details and tests can run against the in-memory backend.
package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/freightboard/dashboard-api/internal/models"
)

// ErrNotFound is returned by Get when no document exists at the path.
var ErrNotFound = errors.New("document not found")

// Document is one stored entry: its full path and raw JSON payload.
type Document struct {
	Path string
	Data []byte
}

// Store is the storage contract. Put replaces the document wholesale; Delete
// of a missing path is not an error.
type Store interface {
	Put(ctx context.Context, path string, data []byte) error
	Get(ctx context.Context, path string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]Document, error)
	Delete(ctx context.Context, path string) error
}

// scopeNamespace renders the exclusive namespace segment for an owner scope.
func scopeNamespace(scope models.OwnerScope, ownerID string) string {
	switch scope {
	case models.ScopeSystem:
		return "system"
	case models.ScopeAdmin:
		return "admin:" + ownerID
	default:
		return "customer:" + ownerID
	}
}

// WidgetPath addresses one custom widget definition.
func WidgetPath(scope models.OwnerScope, ownerID, widgetID string) string {
	return fmt.Sprintf("scopes/%s/widgets/%s", scopeNamespace(scope, ownerID), widgetID)
}

// WidgetPrefix addresses a scope's whole widget namespace.
func WidgetPrefix(scope models.OwnerScope, ownerID string) string {
	return fmt.Sprintf("scopes/%s/widgets", scopeNamespace(scope, ownerID))
}

// LayoutPath addresses the single layout document for a (kind, owner) pair.
// Broker dashboards belong to admin namespaces, customer dashboards to
// customer namespaces, so layouts inherit the same namespace exclusivity as
// widgets.
func LayoutPath(key models.OwnerKey) string {
	scope := models.ScopeCustomer
	if key.Kind == models.DashboardBroker {
		scope = models.ScopeAdmin
	}
	return fmt.Sprintf("scopes/%s/layouts/%s", scopeNamespace(scope, key.OwnerID), key.Kind)
}
