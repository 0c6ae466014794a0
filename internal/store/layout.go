package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/freightboard/dashboard-api/internal/docstore"
	"github.com/freightboard/dashboard-api/internal/errs"
	"github.com/freightboard/dashboard-api/internal/models"
	"github.com/freightboard/dashboard-api/pkg/logger"
)

// layoutStore persists one layout document per (dashboard kind, owner) pair.
// Documents are replaced wholesale on save; there is no partial patching.
type layoutStore struct {
	docs docstore.Store
}

func NewLayoutStore(docs docstore.Store) *layoutStore {
	return &layoutStore{docs: docs}
}

// Load returns the owner's layout. Absence is a normal initial state, not an
// error: a fresh empty layout comes back instead. A corrupt document is
// logged and treated the same way so the dashboard still renders.
func (s *layoutStore) Load(ctx context.Context, key models.OwnerKey) (models.LayoutDocument, error) {
	data, err := s.docs.Get(ctx, docstore.LayoutPath(key))
	if err == docstore.ErrNotFound {
		return models.EmptyLayout(), nil
	}
	if err != nil {
		return models.LayoutDocument{}, err
	}
	var layout models.LayoutDocument
	if err := json.Unmarshal(data, &layout); err != nil {
		logger.FromContext(ctx).Warn("discarding malformed layout document",
			"kind", key.Kind, "owner", key.OwnerID, "error", err)
		return models.EmptyLayout(), nil
	}
	if layout.Sizes == nil {
		layout.Sizes = map[string]models.SizeLevel{}
	}
	return layout, nil
}

// Save replaces the layout document wholesale.
func (s *layoutStore) Save(ctx context.Context, key models.OwnerKey, layout models.LayoutDocument) error {
	layout.UpdatedAt = time.Now()
	data, err := json.Marshal(layout)
	if err != nil {
		return errs.NewDatabaseError("write", "failed to encode layout", err)
	}
	return s.docs.Put(ctx, docstore.LayoutPath(key), data)
}

// AddWidget appends the widget id if absent. Set semantics: a second add of
// the same id is a no-op, never a duplicate entry.
func (s *layoutStore) AddWidget(ctx context.Context, key models.OwnerKey, widgetID string) (models.LayoutDocument, error) {
	layout, err := s.Load(ctx, key)
	if err != nil {
		return models.LayoutDocument{}, err
	}
	if layout.Contains(widgetID) {
		return layout, nil
	}
	layout.WidgetIDs = append(layout.WidgetIDs, widgetID)
	if err := s.Save(ctx, key, layout); err != nil {
		return models.LayoutDocument{}, err
	}
	return layout, nil
}

// RemoveWidget drops the id from the sequence along with its size override.
func (s *layoutStore) RemoveWidget(ctx context.Context, key models.OwnerKey, widgetID string) (models.LayoutDocument, error) {
	layout, err := s.Load(ctx, key)
	if err != nil {
		return models.LayoutDocument{}, err
	}
	kept := layout.WidgetIDs[:0]
	for _, id := range layout.WidgetIDs {
		if id != widgetID {
			kept = append(kept, id)
		}
	}
	layout.WidgetIDs = kept
	delete(layout.Sizes, widgetID)
	if err := s.Save(ctx, key, layout); err != nil {
		return models.LayoutDocument{}, err
	}
	return layout, nil
}

// Reorder replaces the id sequence with newOrder. newOrder must be a
// permutation of the stored id set; a lost or invented widget is a
// user-visible regression, so any mismatch is rejected before persisting.
func (s *layoutStore) Reorder(ctx context.Context, key models.OwnerKey, newOrder []string) (models.LayoutDocument, error) {
	layout, err := s.Load(ctx, key)
	if err != nil {
		return models.LayoutDocument{}, err
	}
	if err := validatePermutation(layout.WidgetIDs, newOrder); err != nil {
		return models.LayoutDocument{}, err
	}
	layout.WidgetIDs = append([]string(nil), newOrder...)
	if err := s.Save(ctx, key, layout); err != nil {
		return models.LayoutDocument{}, err
	}
	return layout, nil
}

// SetSize stores the requested size for the widget. Callers clamp against
// the widget's constraints first; the store still clamps defensively to the
// dashboard kind's scale so layout math never sees an out-of-scale level.
func (s *layoutStore) SetSize(ctx context.Context, key models.OwnerKey, widgetID string, size models.SizeLevel) (models.LayoutDocument, error) {
	layout, err := s.Load(ctx, key)
	if err != nil {
		return models.LayoutDocument{}, err
	}
	if !layout.Contains(widgetID) {
		return models.LayoutDocument{}, errs.NewNotFoundError("widget not in layout: " + widgetID)
	}
	if size < models.SizeSmall {
		size = models.SizeSmall
	}
	if max := key.Kind.MaxLevel(); size > max {
		size = max
	}
	layout.Sizes[widgetID] = size
	if err := s.Save(ctx, key, layout); err != nil {
		return models.LayoutDocument{}, err
	}
	return layout, nil
}

func validatePermutation(current, proposed []string) error {
	if len(current) != len(proposed) {
		return errs.NewInvalidReorderError(fmt.Sprintf(
			"reorder has %d ids, layout has %d", len(proposed), len(current)))
	}
	set := make(map[string]int, len(current))
	for _, id := range current {
		set[id]++
	}
	for _, id := range proposed {
		set[id]--
		if set[id] < 0 {
			return errs.NewInvalidReorderError("reorder id not in layout: " + id)
		}
	}
	return nil
}
