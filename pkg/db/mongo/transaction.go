package mongo

import (
	"context"
	"fmt"

	apperrors "staybook/pkg/errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// TransactionFunc must do all of its reads and writes through sessCtx.
type TransactionFunc func(sessCtx mongo.SessionContext) error

type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type sessionRunner struct {
	client *mongo.Client
	opts   *options.TransactionOptions
}

func NewTransactionManager(client *mongo.Client) TransactionManager {
	return &sessionRunner{
		client: client,
		opts: options.Transaction().
			SetReadPreference(readpref.Primary()).
			SetReadConcern(readconcern.Snapshot()).
			SetWriteConcern(writeconcern.Majority()),
	}
}

// ExecuteTransaction commits fn's writes atomically. The driver retries the
// whole callback on transient transaction errors, so fn may run more than
// once. An AppError returned by fn aborts and is handed back unwrapped.
func (s *sessionRunner) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	err := s.client.UseSession(ctx, func(sessCtx mongo.SessionContext) error {
		_, err := sessCtx.WithTransaction(sessCtx, func(txCtx mongo.SessionContext) (any, error) {
			return nil, fn(txCtx)
		}, s.opts)
		return err
	})
	if err == nil || apperrors.IsAppError(err) {
		return err
	}
	return fmt.Errorf("transaction failed: %w", err)
}
