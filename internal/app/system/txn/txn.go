// Package txn wraps multi-document writes in a MongoDB transaction when the
// deployment supports one, and degrades to sequential writes when it does
// not (standalone servers reject transactions).
//
// Member creation and update touch up to four documents: the member itself,
// the spouse back-link, and the children arrays of the father and mother.
// On a replica set those writes commit or abort together; on a standalone
// server they are applied in order and each fix-up is written so that
// re-applying it is a no-op (conditional spouse back-link, $addToSet for
// children).
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// WithTransaction runs fn inside a transaction when possible. When the
// server reports transactions as unsupported, fn runs once more against the
// plain context, so fn must be safe to apply sequentially.
func WithTransaction(ctx context.Context, client *mongo.Client, log *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			log.Debug("sessions unsupported; applying writes sequentially", zap.Error(err))
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		log.Debug("transactions unsupported; applying writes sequentially", zap.Error(err))
		return fn(ctx)
	}
	return err
}

// Server error codes that indicate transactions are unavailable rather than
// that the operation itself failed.
const (
	codeIllegalOperation        = 20
	codeCommandNotSupported     = 51
	codeOperationNotSupportedIn = 263
)

// IsNotSupported reports whether err means the deployment cannot run
// multi-document transactions (standalone server, old wire version).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		switch cmdErr.Code {
		case codeIllegalOperation, codeCommandNotSupported, codeOperationNotSupportedIn:
			return true
		}
		return false
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "transaction") &&
		(strings.Contains(msg, "replica set") ||
			strings.Contains(msg, "session") ||
			strings.Contains(msg, "illegal operation")) {
		return true
	}
	if strings.Contains(msg, "session") && strings.Contains(msg, "not supported") {
		return true
	}
	return false
}
