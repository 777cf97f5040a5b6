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

package saovietapi

import (
	"context"
	"sync"

	"github.com/uptrace/bun"

	"github.com/toolkitcore/SaoVietAPI/database"
	"github.com/toolkitcore/SaoVietAPI/models"
	"github.com/toolkitcore/SaoVietAPI/repository"
	"github.com/toolkitcore/SaoVietAPI/types"
)

// Service is the application facade over one entity type. Methods join the
// ambient transaction when the context carries one; Transaction opens one
// around a unit of work. There is no transaction handle to pass around.
type Service[T any] interface {
	// Get returns a single entity by its identifier, or (nil, nil) when
	// no such entity exists.
	Get(ctx context.Context, id any) (*T, error)

	// All returns all entities.
	All(ctx context.Context) ([]*T, error)

	// List returns entities that match the provided filter.
	List(ctx context.Context, filter *types.QueryFilter) ([]*T, error)

	// Search returns entities whose name contains the given substring.
	Search(ctx context.Context, name string) ([]*T, error)

	// Ids returns the set of entity identifiers currently stored.
	Ids(ctx context.Context) (types.IDSet, error)

	// Query executes a raw conditional fragment and maps the results.
	Query(ctx context.Context, query string, args ...any) ([]*T, error)

	// Page returns a paginated list of entities.
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error)

	// Save inserts one or more new entities, generating ids where absent.
	Save(ctx context.Context, model ...*T) error

	// SaveOrUpdate upserts entities based on fields and duplicate keys.
	SaveOrUpdate(ctx context.Context, fields []string, duplicateKeys []string, model ...*T) error

	// Update applies model's field values to the entity with the given id.
	Update(ctx context.Context, model *T, id any) error

	// Delete removes an entity by its identifier. Deleting an absent id
	// is a no-op.
	Delete(ctx context.Context, id any) error

	// Transaction runs unit atomically: commit when it returns nil, roll
	// back when it returns an error or panics. Service calls made with
	// the context passed to unit join the same transaction.
	Transaction(ctx context.Context, unit database.UnitOfWork) error

	// Repository exposes the repository behind the facade.
	Repository() repository.Repository[T]

	// SelectBuilder returns a Bun select query builder for the entity.
	SelectBuilder() *bun.SelectQuery

	// InsertBuilder returns a Bun insert query builder for the entity.
	InsertBuilder() *bun.InsertQuery

	// UpdateBuilder returns a Bun update query builder for the entity.
	UpdateBuilder() *bun.UpdateQuery

	// DeleteBuilder returns a Bun delete query builder for the entity.
	DeleteBuilder() *bun.DeleteQuery
}

type baseServiceImpl[T any] struct {
	repo repository.Repository[T]
	once sync.Once
}

// NewService returns a Service implementation using the generic repository
// backed by the global database connection.
func NewService[T any]() Service[T] {
	return &baseServiceImpl[T]{}
}

// NewBranchService returns the facade for branches.
func NewBranchService() Service[models.Branch] {
	return NewService[models.Branch]()
}

// NewCustomerService returns the facade for customers.
func NewCustomerService() Service[models.Customer] {
	return NewService[models.Customer]()
}

// NewTeacherService returns the facade for teachers.
func NewTeacherService() Service[models.Teacher] {
	return NewService[models.Teacher]()
}

func (s *baseServiceImpl[T]) baseRepo() repository.Repository[T] {
	s.once.Do(func() { s.repo = repository.NewRepository[T](database.GetDB()) })
	return s.repo
}

func (s *baseServiceImpl[T]) Get(ctx context.Context, id any) (*T, error) {
	return s.baseRepo().GetByID(ctx, id)
}

func (s *baseServiceImpl[T]) All(ctx context.Context) ([]*T, error) {
	return s.baseRepo().GetAll(ctx)
}

func (s *baseServiceImpl[T]) List(ctx context.Context, filter *types.QueryFilter) ([]*T, error) {
	return s.baseRepo().GetList(ctx, filter)
}

func (s *baseServiceImpl[T]) Search(ctx context.Context, name string) ([]*T, error) {
	return s.baseRepo().GetByName(ctx, name)
}

func (s *baseServiceImpl[T]) Ids(ctx context.Context) (types.IDSet, error) {
	return s.baseRepo().GetAllIds(ctx)
}

func (s *baseServiceImpl[T]) Query(ctx context.Context, query string, args ...any) ([]*T, error) {
	return s.baseRepo().Query(ctx, query, args...)
}

func (s *baseServiceImpl[T]) Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error) {
	return s.baseRepo().Page(ctx, page)
}

func (s *baseServiceImpl[T]) Save(ctx context.Context, model ...*T) error {
	return s.baseRepo().Add(ctx, model...)
}

func (s *baseServiceImpl[T]) SaveOrUpdate(ctx context.Context, fields []string, duplicateKeys []string, model ...*T) error {
	return s.baseRepo().Upsert(ctx, fields, duplicateKeys, model...)
}

func (s *baseServiceImpl[T]) Update(ctx context.Context, model *T, id any) error {
	return s.baseRepo().UpdateByID(ctx, model, id)
}

func (s *baseServiceImpl[T]) Delete(ctx context.Context, id any) error {
	return s.baseRepo().DeleteByID(ctx, id)
}

func (s *baseServiceImpl[T]) Transaction(ctx context.Context, unit database.UnitOfWork) error {
	return database.ExecuteTransaction(ctx, unit)
}

func (s *baseServiceImpl[T]) Repository() repository.Repository[T] {
	return s.baseRepo()
}

func (s *baseServiceImpl[T]) SelectBuilder() *bun.SelectQuery {
	return s.baseRepo().NewSelect()
}

func (s *baseServiceImpl[T]) InsertBuilder() *bun.InsertQuery {
	return s.baseRepo().NewInsert()
}

func (s *baseServiceImpl[T]) UpdateBuilder() *bun.UpdateQuery {
	return s.baseRepo().NewUpdate()
}

func (s *baseServiceImpl[T]) DeleteBuilder() *bun.DeleteQuery {
	return s.baseRepo().NewDelete()
}
