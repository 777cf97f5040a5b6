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
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/uptrace/bun"
)

// bootstrapper prepares a fresh connection for use: registered tables,
// foreign keys, and optional seed data. There is no versioned schema
// evolution; table creation is idempotent via IF NOT EXISTS.
type bootstrapper struct {
	db     *bun.DB
	config *BootstrapConfig
	logger Logger
}

func newBootstrapper(db *bun.DB, config *BootstrapConfig, logger Logger) *bootstrapper {
	return &bootstrapper{db: db, config: config, logger: logger}
}

func (b *bootstrapper) Run(ctx context.Context) error {
	if b.db == nil {
		return fmt.Errorf("database not initialized")
	}
	if _, ok := os.LookupEnv(sqlLogEnv); !ok {
		EnableSQLLogSilence(true)
		defer EnableSQLLogSilence(false)
	}

	if b.config.CreateTablesOnStartup {
		if err := b.createTables(ctx); err != nil {
			return err
		}
	}
	if b.config.EnableForeignKeys {
		b.applyForeignKeys(ctx)
	}
	if b.config.SeedDir != "" {
		if err := b.seedFromDir(ctx, b.config.SeedDir); err != nil {
			return err
		}
	}
	if b.logger != nil {
		b.logger.Info("Database bootstrap completed")
	}
	return nil
}

func (b *bootstrapper) createTables(ctx context.Context) error {
	for _, model := range RegisteredModelInstances() {
		_, err := b.db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create table for %T: %w", model, err)
		}
	}
	return nil
}

// applyForeignKeys adds every known constraint, best effort. Dialects that
// reject ALTER TABLE ADD CONSTRAINT (sqlite) log and continue.
func (b *bootstrapper) applyForeignKeys(ctx context.Context) {
	constraints := RegisteredForeignKeys()
	if b.config.ForeignKeyFile != "" {
		loaded, err := LoadForeignKeyFile(b.config.ForeignKeyFile)
		if err != nil {
			if b.logger != nil {
				b.logger.Debug("Falling back to registered foreign keys", "error", err.Error(), "file", b.config.ForeignKeyFile)
			}
		} else {
			constraints = loaded
		}
	}

	for _, fk := range constraints {
		if err := fk.Validate(); err != nil {
			if b.logger != nil {
				b.logger.Warn("Skipping invalid foreign key constraint", "constraint", fk.Name(), "error", err.Error())
			}
			continue
		}
		if _, err := b.db.ExecContext(ctx, fk.GenerateSQL()); err != nil {
			if b.logger != nil {
				b.logger.Debug("Failed to add foreign key constraint", "constraint", fk.Name(), "error", err.Error())
			}
			continue
		}
		if b.logger != nil {
			b.logger.Debug("Added foreign key constraint", "constraint", fk.Name())
		}
	}
}

// seedFromDir executes every .sql file under dir, ordered by numeric
// filename prefix, inside a single transaction.
func (b *bootstrapper) seedFromDir(ctx context.Context, dir string) error {
	files, err := listSeedFiles(dir)
	if err != nil {
		return fmt.Errorf("failed to list seed files: %w", err)
	}
	if len(files) == 0 {
		if b.logger != nil {
			b.logger.Info("No seed files found", "dir", dir)
		}
		return nil
	}

	err = b.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, file := range files {
			content, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read seed file %s: %w", file, err)
			}
			for _, stmt := range splitSQLStatements(string(content)) {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("seed statement failed in %s: %w", file, err)
				}
			}
			if b.logger != nil {
				b.logger.Debug("Seed file executed", "file", file)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if b.logger != nil {
		b.logger.Info("Seed data loaded", "files", len(files), "dir", dir)
	}
	return nil
}

var seedOrderPattern = regexp.MustCompile(`^(\d+)_`)

// listSeedFiles returns the .sql files in dir sorted by numeric prefix,
// unprefixed files last in name order.
func listSeedFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	type seedFile struct {
		path  string
		order int
	}
	var files []seedFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			continue
		}
		order := 999
		if m := seedOrderPattern.FindStringSubmatch(e.Name()); len(m) > 1 {
			_, _ = fmt.Sscanf(m[1], "%d", &order)
		}
		files = append(files, seedFile{path: filepath.Join(dir, e.Name()), order: order})
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].order != files[j].order {
			return files[i].order < files[j].order
		}
		return files[i].path < files[j].path
	})
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}
	return paths, nil
}

// splitSQLStatements splits file content on terminating semicolons,
// dropping blank lines and line comments.
func splitSQLStatements(content string) []string {
	var statements []string
	var current strings.Builder

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString(" ")
		if strings.HasSuffix(line, ";") {
			if stmt := strings.TrimSpace(current.String()); stmt != "" {
				statements = append(statements, stmt)
			}
			current.Reset()
		}
	}
	if stmt := strings.TrimSpace(current.String()); stmt != "" {
		statements = append(statements, stmt)
	}
	return statements
}
