package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/freightboard/dashboard-api/internal/errs"
	"github.com/freightboard/dashboard-api/internal/models"
	"github.com/freightboard/dashboard-api/pkg/logger"
)

// maxQueryRows bounds a single widget query; aggregation happens in memory.
const maxQueryRows = 5000

// rowStore reads the operational records synced into Firestore per customer.
// It is the concrete row source behind the aggregation pipeline: it applies
// the scoped filter set and hands back plain records.
type rowStore struct {
	client *firestore.Client
}

func NewRowStore(client *firestore.Client) *rowStore {
	return &rowStore{client: client}
}

func (s *rowStore) collection(tenantID, entity string) *firestore.CollectionRef {
	return s.client.Collection("customers").Doc(tenantID).Collection(entity)
}

// dateField orders records of each entity in time.
func dateField(entity string) string {
	if entity == "quotes" {
		return "quoted_date"
	}
	return "pickup_date"
}

// Query fetches rows for the spec's base entity under the execution context.
// Tenant scoping is structural: rows live in per-customer subcollections, so
// the dynamic tenant filter can never widen the result. Static filters with
// operators Firestore understands are pushed down; anything else is skipped
// here and left to in-memory filtering by the caller.
func (s *rowStore) Query(ctx context.Context, execCtx models.ExecContext, entity string, filters []models.QueryFilter) ([]models.Row, error) {
	log := logger.FromContext(ctx)

	q := s.collection(execCtx.TenantID, entity).Query
	if execCtx.DateRange.From != "" {
		q = q.Where(dateField(entity), ">=", execCtx.DateRange.From)
	}
	if execCtx.DateRange.To != "" {
		q = q.Where(dateField(entity), "<=", execCtx.DateRange.To)
	}
	for _, f := range filters {
		if f.IsDynamic {
			continue
		}
		switch f.Operator {
		case "==", "!=", "<", "<=", ">", ">=", "in":
			q = q.Where(f.Field, f.Operator, f.Value)
		default:
			log.Debug("filter operator not pushed down", "field", f.Field, "operator", f.Operator)
		}
	}

	iter := q.Limit(maxQueryRows).Documents(ctx)
	defer iter.Stop()

	var rows []models.Row
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errs.NewDatabaseError("read", "failed to query rows", err)
		}
		rows = append(rows, models.Row(snap.Data()))
	}
	return rows, nil
}
