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

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"

	"github.com/toolkitcore/SaoVietAPI/types"
)

// CrudRepository is the id-addressed persistence contract shared by every
// entity type. Reads never turn absence into an error: GetByID reports a
// missing record as (nil, nil), and list operations report zero matches as
// an empty slice.
type CrudRepository[T any] interface {
	// GetByID returns the record with the given id, or (nil, nil) when it
	// does not exist.
	GetByID(ctx context.Context, id any) (*T, error)

	// GetAll returns every record.
	GetAll(ctx context.Context) ([]*T, error)

	// GetList returns the records matching filter; nil matches all.
	GetList(ctx context.Context, filter *types.QueryFilter) ([]*T, error)

	// Query returns the records matching a raw conditional fragment, e.g.
	// Query(ctx, "name = ? AND address <> ?", name, address).
	Query(ctx context.Context, query string, args ...any) ([]*T, error)

	// Add inserts the given records. Records arriving without an id are
	// assigned a generated UUID before they hit the table.
	Add(ctx context.Context, entity ...*T) error

	// Upsert inserts the given records, updating the listed fields of the
	// existing row instead when a unique key collides. The duplicateKeys
	// name the conflict columns on dialects that need them; the primary
	// key is assumed when they are omitted.
	Upsert(ctx context.Context, fields []string, duplicateKeys []string, entity ...*T) error

	// UpdateByID applies entity's field values to the record with the
	// given id. The id itself is immutable: the update targets the
	// addressed record and cannot move it. Updating an absent id is a
	// silent no-op.
	UpdateByID(ctx context.Context, entity *T, id any) error

	// DeleteByID removes the record with the given id. Deleting an absent
	// id is a silent no-op, so the operation is idempotent.
	DeleteByID(ctx context.Context, id any) error
}

// SearchRepository adds the lookups the validation layer and the list
// screens lean on.
type SearchRepository[T any] interface {
	// GetByName returns the records whose name contains the given
	// substring. A blank name returns an empty slice without touching
	// the database.
	GetByName(ctx context.Context, name string) ([]*T, error)

	// GetAllIds returns the set of primary keys currently in the table.
	GetAllIds(ctx context.Context) (types.IDSet, error)
}

// PageQueryRepository serves windowed reads for large tables.
type PageQueryRepository[T any] interface {
	// Page returns one page of records for the given request, including
	// the total count across all pages.
	Page(ctx context.Context, req *types.PageRequest) (*types.Pagination[T], error)
}

// Repository is the full persistence surface for one entity type. Every
// operation joins the ambient transaction when the context carries one
// (see database.ExecuteTransaction) and runs standalone otherwise.
type Repository[T any] interface {
	CrudRepository[T]
	SearchRepository[T]
	PageQueryRepository[T]

	// Store exposes the predicate-addressed store backing this repository.
	Store() *Store[T]

	// Dialect returns the SQL dialect of the underlying connection.
	Dialect() schema.Dialect

	// NewSelect creates a select query builder on the underlying
	// connection, for reads the fixed surface above does not cover.
	NewSelect() *bun.SelectQuery

	// NewInsert creates an insert query builder.
	NewInsert() *bun.InsertQuery

	// NewUpdate creates an update query builder.
	NewUpdate() *bun.UpdateQuery

	// NewDelete creates a delete query builder.
	NewDelete() *bun.DeleteQuery
}
