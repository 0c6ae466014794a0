package services

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/freightboard/dashboard-api/internal/aggregate"
	"github.com/freightboard/dashboard-api/internal/dto"
	"github.com/freightboard/dashboard-api/internal/errs"
	"github.com/freightboard/dashboard-api/internal/fieldpolicy"
	"github.com/freightboard/dashboard-api/internal/models"
	"github.com/freightboard/dashboard-api/internal/registry"
	"github.com/freightboard/dashboard-api/pkg/logger"
)

// rowSource is the opaque query executor: scoped filters in, records out.
type rowSource interface {
	Query(ctx context.Context, execCtx models.ExecContext, entity string, filters []models.QueryFilter) ([]models.Row, error)
}

type customWidgetReader interface {
	Get(ctx context.Context, owner models.OwnerContext, widgetID string) (*models.CustomWidgetDefinition, error)
}

const dataCacheSize = 512

type dataService struct {
	rows     rowSource
	custom   customWidgetReader
	cache    *expirable.LRU[string, models.WidgetData]
	clockNow func() time.Time
}

func NewDataService(rows rowSource, custom customWidgetReader, ttl time.Duration) *dataService {
	return &dataService{
		rows:     rows,
		custom:   custom,
		cache:    expirable.NewLRU[string, models.WidgetData](dataCacheSize, nil, ttl),
		clockNow: time.Now,
	}
}

// GetWidgetData resolves the widget's definition, executes its query spec
// under the caller's context and aggregates the rows into renderable data.
// This is the single boundary where dynamic tenant/date scoping is applied.
func (s *dataService) GetWidgetData(ctx context.Context, owner models.OwnerContext, execCtx models.ExecContext, widgetID string) (dto.WidgetDataResponse, error) {
	spec, widgetType, frozen, err := s.resolve(ctx, owner, widgetID)
	if err != nil {
		return dto.WidgetDataResponse{}, err
	}
	if frozen != nil {
		return dto.WidgetDataResponse{
			WidgetID:    widgetID,
			Data:        *frozen,
			Frozen:      true,
			LastUpdated: s.clockNow(),
		}, nil
	}

	// Defense in depth: save-time stripping already ran, but execution for a
	// restricted scope strips again so a denied field can never be read even
	// from a document written before the policy covered it.
	if owner.Scope.Restricted() && fieldpolicy.References(spec) {
		logger.FromContext(ctx).Warn("stored spec referenced restricted fields at execution",
			"widget_id", widgetID, "owner", owner.OwnerID)
		spec = fieldpolicy.Strip(spec)
	}

	key := cacheKey(owner, execCtx, widgetID)
	if data, ok := s.cache.Get(key); ok {
		return dto.WidgetDataResponse{WidgetID: widgetID, Data: data, LastUpdated: s.clockNow()}, nil
	}

	rows, err := s.rows.Query(ctx, execCtx, spec.BaseEntity, spec.Filters)
	if err != nil {
		return dto.WidgetDataResponse{}, err
	}

	data := aggregate.Run(spec, widgetType, rows)
	// An empty result is not pinned for the TTL; a tenant whose rows are
	// still landing sees data on the next call.
	if !data.Empty() {
		s.cache.Add(key, data)
	}
	return dto.WidgetDataResponse{WidgetID: widgetID, Data: data, LastUpdated: s.clockNow()}, nil
}

// resolve finds the spec and type behind a widget id: built-in catalog
// first, then the owner's custom namespace. A frozen custom widget returns
// its stored snapshot instead of a spec.
func (s *dataService) resolve(ctx context.Context, owner models.OwnerContext, widgetID string) (models.QuerySpec, models.WidgetType, *models.WidgetData, error) {
	if def, err := registry.Get(widgetID); err == nil {
		// Admin-gated widgets stay invisible to restricted scopes.
		if def.AccessScope == registry.AccessAdmin && owner.Scope.Restricted() {
			return models.QuerySpec{}, "", nil, errs.NewNotFoundError("widget definition not found: " + widgetID)
		}
		return def.QuerySpec, def.Type, nil, nil
	}

	def, err := s.custom.Get(ctx, owner, widgetID)
	if err != nil {
		return models.QuerySpec{}, "", nil, err
	}
	if def.StaticSnapshot != nil {
		return models.QuerySpec{}, def.Type, def.StaticSnapshot, nil
	}
	return def.QuerySpec, def.Type, nil, nil
}

func cacheKey(owner models.OwnerContext, execCtx models.ExecContext, widgetID string) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s",
		widgetID, owner.Scope, owner.OwnerID,
		execCtx.TenantID, execCtx.DateRange.From, execCtx.DateRange.To)
}
