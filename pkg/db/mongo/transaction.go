package mongo

import (
	"context"
	"fmt"

	apperrors "slotkeeper/pkg/errors"
	"slotkeeper/pkg/lock"

	"go.mongodb.org/mongo-driver/mongo"
)

// TransactionManager runs functions inside a multi-document transaction.
// Repositories must pass the ctx they receive to every driver call so the
// session travels with it.
type TransactionManager struct {
	client *mongo.Client
}

var _ lock.Transactor = (*TransactionManager)(nil)

func NewTransactionManager(client *mongo.Client) *TransactionManager {
	return &TransactionManager{
		client: client,
	}
}

func (m *TransactionManager) WithinTransaction(ctx context.Context, fn lock.TxFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		return nil, fn(sessCtx)
	})

	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}
