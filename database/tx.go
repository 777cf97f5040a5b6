/*
 * Copyright 2025 toolkitcore.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

type txContextKey struct{}

// UnitOfWork is the body of a transaction. Every repository call made with
// the supplied context runs inside the same transaction.
type UnitOfWork func(ctx context.Context) error

// Executor runs units of work under a single commit/rollback boundary.
//
// The transaction handle never leaves the executor: it is carried in the
// context and resolved by the stores. A unit returning nil commits; a unit
// returning an error or panicking rolls back, and the error or panic
// propagates unchanged. There are no retries and no savepoints. A nested
// ExecuteTransaction call reuses the ambient transaction; only the
// outermost call commits or rolls back.
type Executor struct {
	db     *bun.DB
	logger Logger
}

// NewExecutor returns an Executor bound to the given connection.
func NewExecutor(db *bun.DB) *Executor {
	return &Executor{db: db, logger: GetLogger()}
}

// ExecuteTransaction runs unit inside a transaction.
func (e *Executor) ExecuteTransaction(ctx context.Context, unit UnitOfWork) error {
	if e.db == nil {
		return fmt.Errorf("%w: database not initialized", ErrStorageFailure)
	}
	if _, ok := TxFromContext(ctx); ok {
		return unit(ctx)
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return Classify(err)
	}
	var committed bool
	defer func() {
		if !committed {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && e.logger != nil {
				e.logger.Error("Failed to rollback transaction", "error", rollbackErr)
			}
		}
	}()

	if err := unit(ContextWithTx(ctx, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return Classify(err)
	}
	committed = true
	return nil
}

// ExecuteTransaction runs unit inside a transaction on the global
// connection established by InitDB.
func ExecuteTransaction(ctx context.Context, unit UnitOfWork) error {
	return NewExecutor(GetDB()).ExecuteTransaction(ctx, unit)
}

// ContextWithTx returns a context carrying the transaction.
func ContextWithTx(ctx context.Context, tx bun.Tx) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// TxFromContext extracts the ambient transaction, if any.
func TxFromContext(ctx context.Context) (bun.Tx, bool) {
	tx, ok := ctx.Value(txContextKey{}).(bun.Tx)
	return tx, ok
}

// ContextDB resolves the connection to run a statement on: the ambient
// transaction when present, the given connection otherwise.
func ContextDB(ctx context.Context, db *bun.DB) bun.IDB {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return db
}
