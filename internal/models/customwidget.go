package models

import "time"

// OwnerScope is the ownership tier a custom widget or layout lives under.
type OwnerScope string

const (
	ScopeSystem   OwnerScope = "system"
	ScopeAdmin    OwnerScope = "admin"
	ScopeCustomer OwnerScope = "customer"
)

// Restricted reports whether the scope is non-privileged. Restricted scopes
// never see deny-listed fields (cost, margin, carrier pay).
func (s OwnerScope) Restricted() bool {
	return s == ScopeCustomer
}

// OwnerContext identifies the caller a store operation acts for.
type OwnerContext struct {
	Scope   OwnerScope
	OwnerID string
}

type Visibility string

const (
	VisibilityPrivate  Visibility = "private"
	VisibilityPromoted Visibility = "promoted"
	VisibilitySystem   Visibility = "system"
)

// Provenance records who authored a definition and when.
type Provenance struct {
	OwnerID    string     `firestore:"ownerId" json:"ownerId"`
	OwnerScope OwnerScope `firestore:"ownerScope" json:"ownerScope"`
	Timestamp  time.Time  `firestore:"timestamp" json:"timestamp"`
}

// CustomWidgetDefinition is a user-authored widget. It belongs to exactly one
// scope namespace; moving between namespaces is a copy, never an in-place
// move, so the original's audit trail survives.
type CustomWidgetDefinition struct {
	ID                string     `firestore:"id" json:"id"`
	Name              string     `firestore:"name" json:"name"`
	Description       string     `firestore:"description,omitempty" json:"description,omitempty"`
	Type              WidgetType `firestore:"type" json:"type"`
	Category          string     `firestore:"category,omitempty" json:"category,omitempty"`
	QuerySpec         QuerySpec  `firestore:"querySpec" json:"querySpec"`
	VisualizationHint string     `firestore:"visualizationHint,omitempty" json:"visualizationHint,omitempty"`
	Visibility        Visibility `firestore:"visibility" json:"visibility"`
	CreatedBy         Provenance `firestore:"createdBy" json:"createdBy"`
	Version           int        `firestore:"version" json:"version"`
	UpdatedAt         time.Time  `firestore:"updatedAt" json:"updatedAt"`

	// StaticSnapshot freezes the widget's data at SnapshotTimestamp instead of
	// re-querying live. Persisted KMS-encrypted since snapshots can embed
	// restricted figures.
	StaticSnapshot    *WidgetData `firestore:"-" json:"staticSnapshot,omitempty"`
	SnapshotTimestamp time.Time   `firestore:"snapshotTimestamp,omitempty" json:"snapshotTimestamp,omitempty"`
}
