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

package database_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/toolkitcore/SaoVietAPI/database"
)

type txProbe struct {
	bun.BaseModel `bun:"table:tx_probes,alias:tp"`

	ID   string `bun:"id,pk,type:varchar(36)"`
	Name string `bun:"name,notnull"`
}

func TestMain(m *testing.M) {
	cfg := database.DefaultConfig()
	cfg.Connection.Type = "sqlite"
	cfg.Connection.DBName = ":memory:"
	if _, err := database.InitDB(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "init database: %v\n", err)
		os.Exit(1)
	}
	ctx := context.Background()
	if _, err := database.GetDB().NewCreateTable().Model((*txProbe)(nil)).IfNotExists().Exec(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "create probe table: %v\n", err)
		os.Exit(1)
	}
	code := m.Run()
	_ = database.CloseDB()
	os.Exit(code)
}

// insertProbe writes through the ambient transaction when ctx carries one.
func insertProbe(ctx context.Context, id, name string) error {
	probe := &txProbe{ID: id, Name: name}
	_, err := database.ContextDB(ctx, database.GetDB()).NewInsert().Model(probe).Exec(ctx)
	return database.Classify(err)
}

func countProbes(t *testing.T) int {
	t.Helper()
	count, err := database.GetDB().NewSelect().Model((*txProbe)(nil)).Count(context.Background())
	require.NoError(t, err)
	return count
}

func clearProbes(t *testing.T) {
	t.Helper()
	_, err := database.GetDB().NewDelete().Model((*txProbe)(nil)).Where("1 = 1").Exec(context.Background())
	require.NoError(t, err)
}

func TestExecuteTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("Should commit when the unit returns nil", func(t *testing.T) {
		clearProbes(t)
		err := database.ExecuteTransaction(ctx, func(ctx context.Context) error {
			return insertProbe(ctx, "commit-1", "first")
		})
		require.NoError(t, err)
		require.Equal(t, 1, countProbes(t))
	})

	t.Run("Should roll back every mutation when one fails", func(t *testing.T) {
		clearProbes(t)
		err := database.ExecuteTransaction(ctx, func(ctx context.Context) error {
			if err := insertProbe(ctx, "atomic-1", "first"); err != nil {
				return err
			}
			return insertProbe(ctx, "atomic-1", "second")
		})
		require.Error(t, err)
		require.ErrorIs(t, err, database.ErrDuplicateKey)
		require.Equal(t, 0, countProbes(t))
	})

	t.Run("Should hand back the unit's error unchanged", func(t *testing.T) {
		clearProbes(t)
		boom := errors.New("boom")
		err := database.ExecuteTransaction(ctx, func(ctx context.Context) error {
			if err := insertProbe(ctx, "unchanged-1", "first"); err != nil {
				return err
			}
			return boom
		})
		require.Equal(t, boom, err)
		require.Equal(t, 0, countProbes(t))
	})

	t.Run("Should roll back when the unit panics", func(t *testing.T) {
		clearProbes(t)
		require.PanicsWithValue(t, "boom", func() {
			_ = database.ExecuteTransaction(ctx, func(ctx context.Context) error {
				if err := insertProbe(ctx, "panic-1", "first"); err != nil {
					return err
				}
				panic("boom")
			})
		})
		require.Equal(t, 0, countProbes(t))
	})

	t.Run("Should see its own uncommitted writes inside the unit", func(t *testing.T) {
		clearProbes(t)
		var inside int
		err := database.ExecuteTransaction(ctx, func(ctx context.Context) error {
			if err := insertProbe(ctx, "visible-1", "first"); err != nil {
				return err
			}
			count, err := database.ContextDB(ctx, database.GetDB()).
				NewSelect().Model((*txProbe)(nil)).Count(ctx)
			inside = count
			return err
		})
		require.NoError(t, err)
		require.Equal(t, 1, inside)
		require.Equal(t, 1, countProbes(t))
	})

	t.Run("Should reuse the ambient transaction for a nested call", func(t *testing.T) {
		clearProbes(t)
		boom := errors.New("outer failure")
		err := database.ExecuteTransaction(ctx, func(outerCtx context.Context) error {
			if err := insertProbe(outerCtx, "nested-1", "outer"); err != nil {
				return err
			}
			nestedErr := database.ExecuteTransaction(outerCtx, func(innerCtx context.Context) error {
				return insertProbe(innerCtx, "nested-2", "inner")
			})
			if nestedErr != nil {
				return nestedErr
			}
			// The nested call returned nil; a failure here must still
			// take the inner write down with the outer one.
			return boom
		})
		require.Equal(t, boom, err)
		require.Equal(t, 0, countProbes(t))
	})

	t.Run("Should fail cleanly when no database is initialized", func(t *testing.T) {
		executor := database.NewExecutor(nil)
		err := executor.ExecuteTransaction(ctx, func(ctx context.Context) error { return nil })
		require.ErrorIs(t, err, database.ErrStorageFailure)
	})
}

func TestContextTx(t *testing.T) {
	t.Run("Should report no ambient transaction on a bare context", func(t *testing.T) {
		_, ok := database.TxFromContext(context.Background())
		require.False(t, ok)
	})

	t.Run("Should expose the ambient transaction to the unit", func(t *testing.T) {
		err := database.ExecuteTransaction(context.Background(), func(ctx context.Context) error {
			if _, ok := database.TxFromContext(ctx); !ok {
				return errors.New("expected an ambient transaction")
			}
			return nil
		})
		require.NoError(t, err)
	})
}
