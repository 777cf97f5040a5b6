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

package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/toolkitcore/SaoVietAPI/database"
	"github.com/toolkitcore/SaoVietAPI/types"
)

// Store is the typed entity store: durable records of one entity type,
// addressable by predicate or primary key.
//
// Every operation resolves the ambient transaction from the context when
// one is present (see database.ExecuteTransaction) and runs on the shared
// connection otherwise. Storage errors come back classified: matching
// database.ErrDuplicateKey, database.ErrReferentialViolation, or
// database.ErrStorageFailure. A missing record is not an error.
type Store[T any] struct {
	db       *bun.DB
	idColumn string
}

// NewStore returns a store for T on the given connection. The primary key
// column is "id" by convention.
func NewStore[T any](db *bun.DB) *Store[T] {
	return &Store[T]{db: db, idColumn: "id"}
}

func (s *Store[T]) conn(ctx context.Context) bun.IDB {
	return database.ContextDB(ctx, s.db)
}

// GetAll returns every record. No records is an empty slice.
func (s *Store[T]) GetAll(ctx context.Context) ([]*T, error) {
	return s.GetList(ctx, nil)
}

// GetList returns the records matching filter; a nil filter matches all.
// Zero matches is an empty slice, not an error.
func (s *Store[T]) GetList(ctx context.Context, filter *types.QueryFilter) ([]*T, error) {
	entities := make([]*T, 0)
	query := s.conn(ctx).NewSelect().Model(&entities)
	if filter != nil {
		query = query.Where(filter.Schema, filter.Args...)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, database.Classify(err)
	}
	return entities, nil
}

// GetByID returns the record with the given id, or (nil, nil) when no such
// record exists.
func (s *Store[T]) GetByID(ctx context.Context, id any) (*T, error) {
	var entity T
	err := s.conn(ctx).NewSelect().
		Model(&entity).
		Where("? = ?", bun.Ident(s.idColumn), id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, database.Classify(err)
	}
	return &entity, nil
}

// Insert adds the given records in one statement. A primary key collision
// reports database.ErrDuplicateKey and leaves no partial record.
func (s *Store[T]) Insert(ctx context.Context, entity ...*T) error {
	if len(entity) == 0 {
		return nil
	}
	entities := entity
	if _, err := s.conn(ctx).NewInsert().Model(&entities).Exec(ctx); err != nil {
		return database.Classify(err)
	}
	return nil
}

// Update applies entity's field values to every record matching filter; a
// nil filter matches all. The primary key and creation timestamp are never
// part of the SET list. Zero matching records is a silent no-op.
func (s *Store[T]) Update(ctx context.Context, entity *T, filter *types.QueryFilter) error {
	query := s.conn(ctx).NewUpdate().
		Model(entity).
		ExcludeColumn(s.idColumn, "created_at")
	if filter != nil {
		query = query.Where(filter.Schema, filter.Args...)
	} else {
		query = query.Where("1 = 1")
	}
	if _, err := query.Exec(ctx); err != nil {
		return database.Classify(err)
	}
	return nil
}

// Delete removes every record matching filter; a nil filter matches all.
// Zero matching records is a silent no-op, so deletes are idempotent.
func (s *Store[T]) Delete(ctx context.Context, filter *types.QueryFilter) error {
	var entity T
	query := s.conn(ctx).NewDelete().Model(&entity)
	if filter != nil {
		query = query.Where(filter.Schema, filter.Args...)
	} else {
		query = query.Where("1 = 1")
	}
	if _, err := query.Exec(ctx); err != nil {
		return database.Classify(err)
	}
	return nil
}

// Count returns the number of records matching filter; nil matches all.
func (s *Store[T]) Count(ctx context.Context, filter *types.QueryFilter) (int, error) {
	query := s.conn(ctx).NewSelect().Model((*T)(nil))
	if filter != nil {
		query = query.Where(filter.Schema, filter.Args...)
	}
	total, err := query.Count(ctx)
	if err != nil {
		return 0, database.Classify(err)
	}
	return total, nil
}

// Exists reports whether any record matches filter.
func (s *Store[T]) Exists(ctx context.Context, filter *types.QueryFilter) (bool, error) {
	query := s.conn(ctx).NewSelect().Model((*T)(nil))
	if filter != nil {
		query = query.Where(filter.Schema, filter.Args...)
	}
	ok, err := query.Exists(ctx)
	if err != nil {
		return false, database.Classify(err)
	}
	return ok, nil
}
