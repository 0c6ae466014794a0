// Package registry is the immutable catalog of built-in widget definitions.
// Definitions are pure data: each carries a QuerySpec executed through the
// shared aggregation pipeline, so built-in and user-authored widgets follow
// the same auditable path. Changing a definition means a new deployment.
package registry

import (
	"github.com/freightboard/dashboard-api/internal/errs"
	"github.com/freightboard/dashboard-api/internal/models"
)

// AccessScope gates who may see a built-in widget.
type AccessScope string

const (
	AccessAll   AccessScope = "all"
	AccessAdmin AccessScope = "admin"
)

// Definition is one built-in widget. Never mutated at runtime.
type Definition struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Type        models.WidgetType `json:"type"`
	Category    string            `json:"category"`
	AccessScope AccessScope       `json:"accessScope"`
	QuerySpec   models.QuerySpec  `json:"querySpec"`
}

// ListForScope returns the catalog visible to the caller's scope, in display
// order. Admin-gated widgets are excluded for restricted scopes.
func ListForScope(scope models.OwnerScope) []Definition {
	out := make([]Definition, 0, len(catalog))
	for _, def := range catalog {
		if def.AccessScope == AccessAdmin && scope.Restricted() {
			continue
		}
		out = append(out, def)
	}
	return out
}

// Get looks up a built-in definition by id.
func Get(id string) (Definition, error) {
	for _, def := range catalog {
		if def.ID == id {
			return def, nil
		}
	}
	return Definition{}, errs.NewNotFoundError("widget definition not found: " + id)
}

// Exists reports whether id names a built-in widget.
func Exists(id string) bool {
	_, err := Get(id)
	return err == nil
}
