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

package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/toolkitcore/SaoVietAPI/database"
)

func init() {
	// Referenced tables carry a lower priority so they exist before the
	// tables pointing at them.
	database.RegisterModel((*Branch)(nil), 1)
	database.RegisterModel((*Customer)(nil), 1)
	database.RegisterModel((*Teacher)(nil), 2)

	database.RegisterForeignKey(database.ForeignKeyConstraint{
		Table:           "teachers",
		Column:          "customer_id",
		ReferenceTable:  "customers",
		ReferenceColumn: "id",
		OnDelete:        "RESTRICT",
		OnUpdate:        "CASCADE",
	})
}

// Branch is one campus of the center.
type Branch struct {
	bun.BaseModel `bun:"table:branches,alias:b"`

	ID        string    `bun:"id,pk,type:varchar(36)" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Address   string    `bun:"address" json:"address"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Customer is a person or company paying for courses.
type Customer struct {
	bun.BaseModel `bun:"table:customers,alias:c"`

	ID        string    `bun:"id,pk,type:varchar(36)" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Email     string    `bun:"email" json:"email"`
	Phone     string    `bun:"phone" json:"phone"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Teacher teaches at the center. A teacher may be tied to the customer who
// sponsors them; the tie is optional.
type Teacher struct {
	bun.BaseModel `bun:"table:teachers,alias:t"`

	ID         string    `bun:"id,pk,type:varchar(36)" json:"id"`
	Name       string    `bun:"name,notnull" json:"name"`
	Email      string    `bun:"email" json:"email"`
	Phone      string    `bun:"phone" json:"phone"`
	CustomerID *string   `bun:"customer_id,type:varchar(36),nullzero" json:"customer_id,omitempty"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`

	Customer *Customer `bun:"rel:belongs-to,join:customer_id=id" json:"customer,omitempty"`
}

var (
	_ bun.BeforeAppendModelHook = (*Branch)(nil)
	_ bun.BeforeAppendModelHook = (*Customer)(nil)
	_ bun.BeforeAppendModelHook = (*Teacher)(nil)
)

// stamp fills the generated columns right before a statement is built: a
// fresh UUID for records inserted without an id, and the two timestamps.
func stamp(query bun.Query, id *string, createdAt, updatedAt *time.Time) {
	switch query.(type) {
	case *bun.InsertQuery:
		if *id == "" {
			*id = uuid.NewString()
		}
		now := time.Now()
		if createdAt.IsZero() {
			*createdAt = now
		}
		*updatedAt = now
	case *bun.UpdateQuery:
		*updatedAt = time.Now()
	}
}

func (b *Branch) BeforeAppendModel(_ context.Context, query bun.Query) error {
	stamp(query, &b.ID, &b.CreatedAt, &b.UpdatedAt)
	return nil
}

func (c *Customer) BeforeAppendModel(_ context.Context, query bun.Query) error {
	stamp(query, &c.ID, &c.CreatedAt, &c.UpdatedAt)
	return nil
}

func (t *Teacher) BeforeAppendModel(_ context.Context, query bun.Query) error {
	stamp(query, &t.ID, &t.CreatedAt, &t.UpdatedAt)
	return nil
}
