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
	"fmt"
	"sort"
	"strings"
	"sync"
)

// SQLModel is a registrable database model. Instance returns a struct
// pointer compatible with Bun; Priority controls table creation order,
// lower values first. Referenced tables must carry lower priorities than
// the tables referencing them.
type SQLModel interface {
	Instance() any
	Priority() int
}

type registeredModel struct {
	instance any
	priority int
}

func (m *registeredModel) Instance() any { return m.instance }

func (m *registeredModel) Priority() int { return m.priority }

type registry struct {
	mu          sync.RWMutex
	models      []SQLModel
	foreignKeys []ForeignKeyConstraint
}

var defaultRegistry = &registry{}

// RegisterModel adds a model instance with the given creation priority to
// the default registry. Typically called from a models package init.
func RegisterModel(instance any, priority int) {
	RegisterSQLModel(&registeredModel{instance: instance, priority: priority})
}

// RegisterSQLModel adds a custom SQLModel implementation to the registry.
func RegisterSQLModel(model SQLModel) {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	defaultRegistry.models = append(defaultRegistry.models, model)
}

// RegisteredModels returns the registered models sorted by ascending
// priority.
func RegisteredModels() []SQLModel {
	defaultRegistry.mu.RLock()
	defer defaultRegistry.mu.RUnlock()
	result := make([]SQLModel, len(defaultRegistry.models))
	copy(result, defaultRegistry.models)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Priority() < result[j].Priority()
	})
	return result
}

// RegisteredModelInstances returns the model struct pointers in priority
// order, ready for bun.DB.RegisterModel.
func RegisteredModelInstances() []any {
	models := RegisteredModels()
	instances := make([]any, len(models))
	for i, model := range models {
		instances[i] = model.Instance()
	}
	return instances
}

// RegisterForeignKey adds a foreign key constraint applied during bootstrap.
func RegisterForeignKey(fk ForeignKeyConstraint) {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	defaultRegistry.foreignKeys = append(defaultRegistry.foreignKeys, fk)
}

// RegisteredForeignKeys returns a copy of the registered constraints.
func RegisteredForeignKeys() []ForeignKeyConstraint {
	defaultRegistry.mu.RLock()
	defer defaultRegistry.mu.RUnlock()
	result := make([]ForeignKeyConstraint, len(defaultRegistry.foreignKeys))
	copy(result, defaultRegistry.foreignKeys)
	return result
}

// ForeignKeyConstraint describes a foreign key relationship between tables.
type ForeignKeyConstraint struct {
	Table           string
	Column          string
	ReferenceTable  string
	ReferenceColumn string
	OnDelete        string // CASCADE, RESTRICT, SET NULL, NO ACTION
	OnUpdate        string // CASCADE, RESTRICT, SET NULL, NO ACTION
	ConstraintName  string
}

// Name returns the explicit constraint name or a derived one.
func (fk *ForeignKeyConstraint) Name() string {
	if fk.ConstraintName != "" {
		return fk.ConstraintName
	}
	return fmt.Sprintf("fk_%s_%s", fk.Table, fk.Column)
}

// GenerateSQL returns the ALTER TABLE statement adding the constraint.
func (fk *ForeignKeyConstraint) GenerateSQL() string {
	stmt := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(%s)",
		fk.Table, fk.Name(), fk.Column, fk.ReferenceTable, fk.ReferenceColumn)
	if fk.OnDelete != "" {
		stmt += " ON DELETE " + fk.OnDelete
	}
	if fk.OnUpdate != "" {
		stmt += " ON UPDATE " + fk.OnUpdate
	}
	return stmt
}

var validReferentialActions = []string{"CASCADE", "RESTRICT", "SET NULL", "NO ACTION"}

// Validate checks the constraint definition for common mistakes.
func (fk *ForeignKeyConstraint) Validate() error {
	if fk.Table == "" {
		return fmt.Errorf("foreign key table cannot be empty")
	}
	if fk.Column == "" {
		return fmt.Errorf("foreign key column cannot be empty: table %s", fk.Table)
	}
	if fk.ReferenceTable == "" {
		return fmt.Errorf("reference table cannot be empty: %s.%s", fk.Table, fk.Column)
	}
	if fk.ReferenceColumn == "" {
		return fmt.Errorf("reference column cannot be empty: %s.%s -> %s", fk.Table, fk.Column, fk.ReferenceTable)
	}
	for _, action := range []string{fk.OnDelete, fk.OnUpdate} {
		if action == "" {
			continue
		}
		valid := false
		for _, known := range validReferentialActions {
			if strings.EqualFold(action, known) {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("invalid referential action %q on constraint %s", action, fk.Name())
		}
	}
	return nil
}
