package services

import (
	"context"

	"github.com/freightboard/dashboard-api/internal/errs"
	"github.com/freightboard/dashboard-api/pkg/logger"
)

type sourceSecrets interface {
	Set(ctx context.Context, customerID, token string) error
	Get(ctx context.Context, customerID string) (string, error)
	Delete(ctx context.Context, customerID string) error
}

// sourceService manages per-customer TMS source credentials.
type sourceService struct {
	secrets sourceSecrets
}

func NewSourceService(secrets sourceSecrets) *sourceService {
	return &sourceService{secrets: secrets}
}

func (s *sourceService) SetToken(ctx context.Context, customerID, token string) error {
	if customerID == "" || token == "" {
		return errs.NewValidationError("customer id and token are required")
	}
	if err := s.secrets.Set(ctx, customerID, token); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("source token rotated", "customer_id", customerID)
	return nil
}

// HasToken reports whether the customer has a usable source credential.
func (s *sourceService) HasToken(ctx context.Context, customerID string) (bool, error) {
	_, err := s.secrets.Get(ctx, customerID)
	if _, ok := err.(*errs.NotFoundError); ok {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *sourceService) DeleteToken(ctx context.Context, customerID string) error {
	return s.secrets.Delete(ctx, customerID)
}
