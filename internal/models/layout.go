package models

import "time"

// SizeLevel is an ordered small-integer size class. The broker dashboard uses
// levels 1..4, the customer dashboard 1..3.
type SizeLevel int

const (
	SizeSmall  SizeLevel = 1
	SizeMedium SizeLevel = 2
	SizeLarge  SizeLevel = 3
	SizeWide   SizeLevel = 4
)

// DashboardKind names a dashboard variant. Each (kind, owner) pair owns one
// layout document.
type DashboardKind string

const (
	DashboardBroker   DashboardKind = "broker"
	DashboardCustomer DashboardKind = "customer"
)

// MaxLevel returns the top of the size scale for the dashboard kind.
func (k DashboardKind) MaxLevel() SizeLevel {
	if k == DashboardCustomer {
		return SizeLarge
	}
	return SizeWide
}

// OwnerKey identifies the owner of one layout document.
type OwnerKey struct {
	Kind    DashboardKind
	OwnerID string
}

// LayoutDocument is the ordered widget id list plus per-widget size overrides
// for one dashboard instance. Widget ids are unique within the sequence. The
// document is replaced wholesale on every save.
type LayoutDocument struct {
	WidgetIDs []string             `json:"widgetIds"`
	Sizes     map[string]SizeLevel `json:"sizes,omitempty"`
	UpdatedAt time.Time            `json:"updatedAt,omitempty"`
}

// EmptyLayout is the valid initial state for an owner with no saved layout.
func EmptyLayout() LayoutDocument {
	return LayoutDocument{WidgetIDs: []string{}, Sizes: map[string]SizeLevel{}}
}

// Contains reports whether the layout already holds the widget id.
func (l LayoutDocument) Contains(widgetID string) bool {
	for _, id := range l.WidgetIDs {
		if id == widgetID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can mutate without aliasing the
// stored document.
func (l LayoutDocument) Clone() LayoutDocument {
	out := LayoutDocument{
		WidgetIDs: make([]string, len(l.WidgetIDs)),
		Sizes:     make(map[string]SizeLevel, len(l.Sizes)),
		UpdatedAt: l.UpdatedAt,
	}
	copy(out.WidgetIDs, l.WidgetIDs)
	for id, size := range l.Sizes {
		out.Sizes[id] = size
	}
	return out
}
