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
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"
	"github.com/uptrace/bun/schema"

	"github.com/toolkitcore/SaoVietAPI/database"
	"github.com/toolkitcore/SaoVietAPI/types"
)

type baseRepositoryImpl[T any] struct {
	db         *bun.DB
	store      *Store[T]
	idColumn   string
	nameColumn string
}

// NewRepository returns a generic repository backed by the provided Bun DB.
// The primary key column is "id" and the search column is "name", by the
// same convention the models follow.
func NewRepository[T any](db *bun.DB) Repository[T] {
	return &baseRepositoryImpl[T]{
		db:         db,
		store:      NewStore[T](db),
		idColumn:   "id",
		nameColumn: "name",
	}
}

func (r *baseRepositoryImpl[T]) Store() *Store[T] { return r.store }

func (r *baseRepositoryImpl[T]) Dialect() schema.Dialect { return r.db.Dialect() }

func (r *baseRepositoryImpl[T]) NewSelect() *bun.SelectQuery { return r.db.NewSelect() }

func (r *baseRepositoryImpl[T]) NewInsert() *bun.InsertQuery { return r.db.NewInsert() }

func (r *baseRepositoryImpl[T]) NewUpdate() *bun.UpdateQuery { return r.db.NewUpdate() }

func (r *baseRepositoryImpl[T]) NewDelete() *bun.DeleteQuery { return r.db.NewDelete() }

func (r *baseRepositoryImpl[T]) conn(ctx context.Context) bun.IDB {
	return database.ContextDB(ctx, r.db)
}

func (r *baseRepositoryImpl[T]) GetByID(ctx context.Context, id any) (*T, error) {
	return r.store.GetByID(ctx, id)
}

func (r *baseRepositoryImpl[T]) GetAll(ctx context.Context) ([]*T, error) {
	return r.store.GetAll(ctx)
}

func (r *baseRepositoryImpl[T]) GetList(ctx context.Context, filter *types.QueryFilter) ([]*T, error) {
	return r.store.GetList(ctx, filter)
}

func (r *baseRepositoryImpl[T]) Query(ctx context.Context, query string, args ...any) ([]*T, error) {
	entities := make([]*T, 0)
	err := r.conn(ctx).NewSelect().Model(&entities).Where(query, args...).Scan(ctx)
	if err != nil {
		return nil, database.Classify(err)
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) GetByName(ctx context.Context, name string) ([]*T, error) {
	if strings.TrimSpace(name) == "" {
		return make([]*T, 0), nil
	}
	filter := types.NewQueryFilter("? LIKE ?", bun.Ident(r.nameColumn), "%"+name+"%")
	return r.store.GetList(ctx, filter)
}

func (r *baseRepositoryImpl[T]) GetAllIds(ctx context.Context) (types.IDSet, error) {
	ids := make([]string, 0)
	err := r.conn(ctx).NewSelect().
		Model((*T)(nil)).
		Column(r.idColumn).
		Scan(ctx, &ids)
	if err != nil {
		return nil, database.Classify(err)
	}
	return types.NewIDSet(ids...), nil
}

func (r *baseRepositoryImpl[T]) Page(ctx context.Context, req *types.PageRequest) (*types.Pagination[T], error) {
	entities := make([]*T, 0)
	query := r.conn(ctx).NewSelect().Model(&entities)
	if req.GetFilter() != nil {
		query = query.Where(req.GetFilter().Schema, req.GetFilter().Args...)
	}
	pagination := types.NewPagination[T](req)
	total, err := query.Count(ctx)
	if err != nil {
		return nil, database.Classify(err)
	}
	if total == 0 {
		return pagination, nil
	}
	err = query.
		Offset(req.GetOffset()).
		Limit(req.GetPageSize()).
		Order(req.GetOrders()...).
		Scan(ctx)
	if err != nil {
		return nil, database.Classify(err)
	}
	pagination.Total = total
	pagination.Items = entities
	return pagination, nil
}

func (r *baseRepositoryImpl[T]) Add(ctx context.Context, entity ...*T) error {
	return r.store.Insert(ctx, entity...)
}

func (r *baseRepositoryImpl[T]) UpdateByID(ctx context.Context, entity *T, id any) error {
	return r.store.Update(ctx, entity, types.NewIDFilter(r.idColumn, id))
}

func (r *baseRepositoryImpl[T]) DeleteByID(ctx context.Context, id any) error {
	return r.store.Delete(ctx, types.NewIDFilter(r.idColumn, id))
}

func (r *baseRepositoryImpl[T]) Upsert(ctx context.Context, fields []string, duplicateKeys []string, entity ...*T) error {
	if len(fields) == 0 {
		return fmt.Errorf("upsert fields cannot be empty")
	}
	entities := make([]*T, len(entity))
	copy(entities, entity)

	insertQuery := r.conn(ctx).NewInsert()
	switch {
	case r.db.HasFeature(feature.InsertOnConflict):
		return r.upsertOnConflict(ctx, insertQuery, fields, duplicateKeys, entities)
	case r.db.HasFeature(feature.InsertOnDuplicateKey):
		return r.upsertOnDuplicateKey(ctx, insertQuery, fields, entities)
	default:
		// Separate insert/update statements for dialects without a
		// native upsert.
		return r.upsertFallback(ctx, entities)
	}
}

// upsertOnConflict serves PostgreSQL and SQLite.
func (r *baseRepositoryImpl[T]) upsertOnConflict(ctx context.Context, insertQuery *bun.InsertQuery, fields, duplicateKeys []string, entities []*T) error {
	if len(duplicateKeys) == 0 {
		duplicateKeys = []string{r.idColumn}
	}
	assignments := make([]string, 0, len(fields))
	for _, field := range fields {
		assignments = append(assignments, fmt.Sprintf("%s = EXCLUDED.%s", field, field))
	}
	_, err := insertQuery.
		Model(&entities).
		On("CONFLICT (" + strings.Join(duplicateKeys, ",") + ") DO UPDATE").
		Set(strings.Join(assignments, ", ")).
		Exec(ctx)
	if err != nil {
		return database.Classify(err)
	}
	return nil
}

// upsertOnDuplicateKey serves MySQL, which names the conflict columns itself.
func (r *baseRepositoryImpl[T]) upsertOnDuplicateKey(ctx context.Context, insertQuery *bun.InsertQuery, fields []string, entities []*T) error {
	assignments := make([]string, 0, len(fields))
	for _, field := range fields {
		assignments = append(assignments, fmt.Sprintf("%s = VALUES(%s)", field, field))
	}
	_, err := insertQuery.
		Model(&entities).
		On("DUPLICATE KEY UPDATE " + strings.Join(assignments, ", ")).
		Exec(ctx)
	if err != nil {
		return database.Classify(err)
	}
	return nil
}

func (r *baseRepositoryImpl[T]) upsertFallback(ctx context.Context, entities []*T) error {
	for _, entity := range entities {
		_, err := r.conn(ctx).NewInsert().Model(entity).Exec(ctx)
		if err == nil {
			continue
		}
		if !database.IsDuplicateKey(database.Classify(err)) {
			return database.Classify(err)
		}
		if _, updateErr := r.conn(ctx).NewUpdate().Model(entity).WherePK().Exec(ctx); updateErr != nil {
			return database.Classify(updateErr)
		}
	}
	return nil
}
