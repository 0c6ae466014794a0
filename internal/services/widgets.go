package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/freightboard/dashboard-api/internal/dto"
	"github.com/freightboard/dashboard-api/internal/errs"
	"github.com/freightboard/dashboard-api/internal/fieldpolicy"
	"github.com/freightboard/dashboard-api/internal/models"
	"github.com/freightboard/dashboard-api/internal/registry"
	"github.com/freightboard/dashboard-api/pkg/logger"
)

// customWidgetStore is the persistence interface for user-authored widgets.
type customWidgetStore interface {
	Save(ctx context.Context, owner models.OwnerContext, def *models.CustomWidgetDefinition) error
	Get(ctx context.Context, owner models.OwnerContext, widgetID string) (*models.CustomWidgetDefinition, error)
	List(ctx context.Context, owner models.OwnerContext) ([]*models.CustomWidgetDefinition, error)
	Delete(ctx context.Context, owner models.OwnerContext, widgetID string) error
}

// widgetDataSource computes live data for a definition; Freeze captures its
// output into a static snapshot.
type widgetDataSource interface {
	GetWidgetData(ctx context.Context, owner models.OwnerContext, execCtx models.ExecContext, widgetID string) (dto.WidgetDataResponse, error)
}

type widgetService struct {
	store    customWidgetStore
	data     widgetDataSource
	clockNow func() time.Time
}

func NewWidgetService(store customWidgetStore, data widgetDataSource) *widgetService {
	return &widgetService{store: store, data: data, clockNow: time.Now}
}

// Save creates or updates a definition in the owner's namespace. First save
// gets version 1; every update bumps the version and refreshes updatedAt.
// For restricted owners, deny-listed fields are silently stripped first: the
// save still succeeds with the narrowed spec.
func (s *widgetService) Save(ctx context.Context, owner models.OwnerContext, def models.CustomWidgetDefinition) (*models.CustomWidgetDefinition, error) {
	if def.Name == "" {
		return nil, errs.NewValidationError("widget name is required")
	}
	if !def.Type.Valid() {
		return nil, errs.NewValidationError("unknown widget type: " + string(def.Type))
	}
	if def.QuerySpec.BaseEntity == "" {
		return nil, errs.NewValidationError("querySpec.baseEntity is required")
	}
	if err := validateDynamicFilters(def.QuerySpec); err != nil {
		return nil, err
	}

	if owner.Scope.Restricted() {
		def.QuerySpec = fieldpolicy.Strip(def.QuerySpec)
	}

	now := s.clockNow()
	if def.ID == "" {
		def.ID = uuid.New().String()
	}
	if registry.Exists(def.ID) {
		return nil, errs.NewAlreadyExistsError("widget id is taken by a built-in: " + def.ID)
	}

	existing, err := s.store.Get(ctx, owner, def.ID)
	switch err.(type) {
	case nil:
		def.Version = existing.Version + 1
		def.CreatedBy = existing.CreatedBy
		// Fields the save request does not carry survive the update.
		if def.Visibility == "" {
			def.Visibility = existing.Visibility
		}
		if def.StaticSnapshot == nil {
			def.StaticSnapshot = existing.StaticSnapshot
			def.SnapshotTimestamp = existing.SnapshotTimestamp
		}
	case *errs.NotFoundError:
		def.Version = 1
		def.CreatedBy = models.Provenance{OwnerID: owner.OwnerID, OwnerScope: owner.Scope, Timestamp: now}
		if def.Visibility == "" {
			def.Visibility = models.VisibilityPrivate
		}
	default:
		return nil, err
	}
	def.UpdatedAt = now

	if err := s.store.Save(ctx, owner, &def); err != nil {
		return nil, err
	}
	return &def, nil
}

func (s *widgetService) Get(ctx context.Context, owner models.OwnerContext, widgetID string) (*models.CustomWidgetDefinition, error) {
	return s.store.Get(ctx, owner, widgetID)
}

func (s *widgetService) List(ctx context.Context, owner models.OwnerContext) ([]*models.CustomWidgetDefinition, error) {
	return s.store.List(ctx, owner)
}

// Delete is idempotent: deleting an id that never existed succeeds.
func (s *widgetService) Delete(ctx context.Context, owner models.OwnerContext, widgetID string) error {
	return s.store.Delete(ctx, owner, widgetID)
}

// Freeze captures the widget's current data as a static snapshot. A frozen
// widget serves the snapshot instead of executing its query until unfrozen;
// refreshing a snapshot means unfreezing first, so a freeze never silently
// overwrites an earlier capture.
func (s *widgetService) Freeze(ctx context.Context, owner models.OwnerContext, execCtx models.ExecContext, widgetID string) (*models.CustomWidgetDefinition, error) {
	def, err := s.store.Get(ctx, owner, widgetID)
	if err != nil {
		return nil, err
	}
	if def.StaticSnapshot != nil {
		return nil, errs.NewValidationError("widget is already frozen; unfreeze it first")
	}

	data, err := s.data.GetWidgetData(ctx, owner, execCtx, widgetID)
	if err != nil {
		return nil, err
	}

	now := s.clockNow()
	def.StaticSnapshot = &data.Data
	def.SnapshotTimestamp = now
	def.Version++
	def.UpdatedAt = now
	if err := s.store.Save(ctx, owner, def); err != nil {
		return nil, err
	}
	return def, nil
}

// Unfreeze discards the snapshot so the widget executes live again. A widget
// that was never frozen is left untouched.
func (s *widgetService) Unfreeze(ctx context.Context, owner models.OwnerContext, widgetID string) (*models.CustomWidgetDefinition, error) {
	def, err := s.store.Get(ctx, owner, widgetID)
	if err != nil {
		return nil, err
	}
	if def.StaticSnapshot == nil {
		return def, nil
	}

	now := s.clockNow()
	def.StaticSnapshot = nil
	def.SnapshotTimestamp = time.Time{}
	def.Version++
	def.UpdatedAt = now
	if err := s.store.Save(ctx, owner, def); err != nil {
		return nil, err
	}
	return def, nil
}

// Promote copies a definition into the system namespace. It is a copy, never
// an in-place move: the original keeps its audit trail, and is deleted
// afterwards only when removeOriginal is set.
func (s *widgetService) Promote(ctx context.Context, owner models.OwnerContext, widgetID string, removeOriginal bool) (*models.CustomWidgetDefinition, error) {
	if owner.Scope.Restricted() {
		return nil, errs.NewValidationError("only privileged scopes may promote widgets")
	}
	def, err := s.store.Get(ctx, owner, widgetID)
	if err != nil {
		return nil, err
	}

	promoted := *def
	promoted.Visibility = models.VisibilitySystem
	promoted.Version = 1
	promoted.UpdatedAt = s.clockNow()
	system := models.OwnerContext{Scope: models.ScopeSystem}
	if err := s.store.Save(ctx, system, &promoted); err != nil {
		return nil, err
	}

	if removeOriginal {
		if err := s.store.Delete(ctx, owner, widgetID); err != nil {
			// The copy exists; losing the delete leaves a duplicate, not data loss.
			logger.FromContext(ctx).Warn("promoted widget original not removed",
				"widget_id", widgetID, "error", err)
		}
	}
	return &promoted, nil
}

// Catalog returns the built-in definitions visible to the owner's scope.
func (s *widgetService) Catalog(_ context.Context, owner models.OwnerContext) []registry.Definition {
	return registry.ListForScope(owner.Scope)
}

// validateDynamicFilters rejects specs whose dynamic filters embed a value;
// dynamic scoping resolves only at execution time.
func validateDynamicFilters(spec models.QuerySpec) error {
	for _, f := range spec.Filters {
		if f.IsDynamic && f.Value != nil {
			return errs.NewValidationError("dynamic filter on " + f.Field + " must not embed a value")
		}
	}
	return nil
}
