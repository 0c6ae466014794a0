package services

import (
	"context"

	"github.com/freightboard/dashboard-api/internal/errs"
	"github.com/freightboard/dashboard-api/internal/grid"
	"github.com/freightboard/dashboard-api/internal/models"
	"github.com/freightboard/dashboard-api/internal/registry"
)

// resolverService answers "what is this widget id" for layout rendering:
// built-in catalog first, then the owner's custom namespace.
type resolverService struct {
	custom customWidgetReader
}

func NewResolverService(custom customWidgetReader) *resolverService {
	return &resolverService{custom: custom}
}

func (s *resolverService) Resolve(ctx context.Context, owner models.OwnerContext, widgetID string) (grid.ResolvedWidget, error) {
	if def, err := registry.Get(widgetID); err == nil {
		if def.AccessScope == registry.AccessAdmin && owner.Scope.Restricted() {
			return grid.ResolvedWidget{}, errs.NewNotFoundError("widget definition not found: " + widgetID)
		}
		return grid.ResolvedWidget{Name: def.Name, Type: def.Type}, nil
	}
	def, err := s.custom.Get(ctx, owner, widgetID)
	if err != nil {
		return grid.ResolvedWidget{}, err
	}
	return grid.ResolvedWidget{Name: def.Name, Type: def.Type, Custom: true}, nil
}
