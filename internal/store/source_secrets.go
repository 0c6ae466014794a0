package store

import (
	"context"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/freightboard/dashboard-api/internal/errs"
)

// Secrets path
// projects/{project}/secrets/tms-source-token-{customerID}/versions/latest

// sourceSecretsStore keeps the per-customer credentials the TMS sync uses to
// pull that customer's operational records. Tokens never touch Firestore.
type sourceSecretsStore struct {
	client    *secretmanager.Client
	projectID string
	prefix    string
}

func NewSourceSecretsStore(client *secretmanager.Client, projectID string) *sourceSecretsStore {
	return &sourceSecretsStore{
		client:    client,
		projectID: projectID,
		prefix:    "tms-source-token",
	}
}

func (s *sourceSecretsStore) secretID(customerID string) string {
	return fmt.Sprintf("%s-%s", s.prefix, customerID)
}

func (s *sourceSecretsStore) secretName(customerID string) string {
	return fmt.Sprintf("projects/%s/secrets/%s", s.projectID, s.secretID(customerID))
}

func (s *sourceSecretsStore) ensureSecret(ctx context.Context, customerID string) error {
	_, err := s.client.GetSecret(ctx, &secretmanagerpb.GetSecretRequest{Name: s.secretName(customerID)})
	if status.Code(err) == codes.NotFound {
		_, err = s.client.CreateSecret(ctx, &secretmanagerpb.CreateSecretRequest{
			Parent:   fmt.Sprintf("projects/%s", s.projectID),
			SecretId: s.secretID(customerID),
			Secret: &secretmanagerpb.Secret{
				Replication: &secretmanagerpb.Replication{
					Replication: &secretmanagerpb.Replication_Automatic_{Automatic: &secretmanagerpb.Replication_Automatic{}},
				},
			},
		})
	}
	if err != nil {
		return errs.NewExternalServiceError("secretmanager", "failed to ensure source secret", false, err)
	}
	return nil
}

// Set stores a new token version for the customer.
func (s *sourceSecretsStore) Set(ctx context.Context, customerID, token string) error {
	if err := s.ensureSecret(ctx, customerID); err != nil {
		return err
	}
	_, err := s.client.AddSecretVersion(ctx, &secretmanagerpb.AddSecretVersionRequest{
		Parent:  s.secretName(customerID),
		Payload: &secretmanagerpb.SecretPayload{Data: []byte(token)},
	})
	if err != nil {
		return errs.NewExternalServiceError("secretmanager", "failed to store source token", false, err)
	}
	return nil
}

// Get returns the latest token for the customer.
func (s *sourceSecretsStore) Get(ctx context.Context, customerID string) (string, error) {
	resp, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: s.secretName(customerID) + "/versions/latest",
	})
	if status.Code(err) == codes.NotFound {
		return "", errs.NewNotFoundError("no source token for customer " + customerID)
	}
	if err != nil {
		return "", errs.NewExternalServiceError("secretmanager", "failed to access source token", false, err)
	}
	return string(resp.Payload.Data), nil
}

// Delete removes the customer's secret entirely. Idempotent.
func (s *sourceSecretsStore) Delete(ctx context.Context, customerID string) error {
	err := s.client.DeleteSecret(ctx, &secretmanagerpb.DeleteSecretRequest{Name: s.secretName(customerID)})
	if err != nil && status.Code(err) != codes.NotFound {
		return errs.NewExternalServiceError("secretmanager", "failed to delete source token", false, err)
	}
	return nil
}
