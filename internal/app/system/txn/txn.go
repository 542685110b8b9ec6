// Package txn runs multi-document MongoDB writes atomically where the
// deployment allows it.
//
// The dual-write pairs in this service (a document record plus its folder's
// membership array) want a transaction, but transactions need a replica set
// or mongos. Run detects the unsupported case and degrades to executing the
// writes sequentially, which matches the behavior this service had before
// transactions were introduced.
package txn

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Func holds the database operations to run atomically. The context passed
// in is a mongo.SessionContext when a transaction is active, otherwise the
// caller's context; use it for every operation inside.
type Func func(ctx context.Context) error

// Run executes fn in a MongoDB transaction, retrying via the driver's
// WithTransaction machinery. When the server does not support transactions
// the function is re-run outside one, and a warning is logged since
// atomicity is lost. log may be nil.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn Func) error {
	session, err := db.Client().StartSession()
	if err != nil {
		if log != nil {
			log.Warn("failed to start session, running without transaction", zap.Error(err))
		}
		return fn(ctx)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil {
		if IsNotSupported(err) {
			if log != nil {
				log.Warn("transactions not supported, running without transaction", zap.Error(err))
			}
			return fn(ctx)
		}
		return err
	}
	return nil
}

// IsNotSupported reports whether err means the server cannot run
// multi-document transactions (standalone MongoDB, DocumentDB with
// transactions disabled).
//
// Known error codes:
//   - 20: "Transaction numbers are only allowed on a replica set member or mongos"
//   - 51: IllegalOperation
//   - 263: "Cannot run 'aggregate' in a multi-document transaction"
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	if cmdErr, ok := err.(mongo.CommandError); ok {
		switch cmdErr.Code {
		case 20, 51, 263:
			return true
		}
	}

	// Message sniffing catches MongoDB and DocumentDB variations that do
	// not surface a known code. Two keyword matches are required so an
	// ordinary write error mentioning "session" does not false-positive.
	errStr := strings.ToLower(err.Error())
	keywords := []string{
		"transaction",
		"replica set",
		"session",
		"not supported",
		"illegal operation",
	}

	matches := 0
	for _, kw := range keywords {
		if strings.Contains(errStr, kw) {
			matches++
		}
	}
	return matches >= 2
}
