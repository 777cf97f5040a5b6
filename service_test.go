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

package saovietapi_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	saovietapi "github.com/toolkitcore/SaoVietAPI"
	"github.com/toolkitcore/SaoVietAPI/database"
	"github.com/toolkitcore/SaoVietAPI/models"
	"github.com/toolkitcore/SaoVietAPI/validation"
)

func TestMain(m *testing.M) {
	cfg := database.DefaultConfig()
	cfg.Connection.Type = "sqlite"
	cfg.Connection.DBName = ":memory:"
	if _, err := database.InitDB(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "init database: %v\n", err)
		os.Exit(1)
	}
	code := m.Run()
	_ = database.CloseDB()
	os.Exit(code)
}

func clearService[T any](t *testing.T, svc saovietapi.Service[T]) {
	t.Helper()
	require.NoError(t, svc.Repository().Store().Delete(context.Background(), nil))
}

func TestCustomerServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := saovietapi.NewCustomerService()
	clearService(t, svc)

	t.Run("Should admit, store, search, update, and remove a customer", func(t *testing.T) {
		payload := &models.CustomerPayload{Name: " Alice ", Email: "alice@example.com", Phone: "0123456789"}
		ok, err := validation.NewCustomerValidator().Validate(ctx, payload)
		require.True(t, ok)
		require.NoError(t, err)

		alice := models.ToCustomer(payload)
		require.NoError(t, svc.Save(ctx, alice))
		require.NotEmpty(t, alice.ID)

		found, err := svc.Search(ctx, "Ali")
		require.NoError(t, err)
		require.Len(t, found, 1)
		require.Equal(t, "Alice", found[0].Name)

		patch := models.ToCustomer(&models.CustomerPayload{Name: "Alice Nguyen", Email: "alice@example.com", Phone: "0123456789"})
		require.NoError(t, svc.Update(ctx, patch, alice.ID))

		updated, err := svc.Get(ctx, alice.ID)
		require.NoError(t, err)
		require.NotNil(t, updated)
		require.Equal(t, "Alice Nguyen", updated.Name)

		require.NoError(t, svc.Delete(ctx, alice.ID))

		gone, err := svc.Get(ctx, alice.ID)
		require.NoError(t, err)
		require.Nil(t, gone)
	})

	t.Run("Should refuse an invalid payload before it reaches storage", func(t *testing.T) {
		payload := &models.CustomerPayload{Name: "Alice", Email: "abc"}
		ok, err := validation.NewCustomerValidator().Validate(ctx, payload)
		require.False(t, ok)
		require.ErrorIs(t, err, validation.ErrValidationFailed)
	})
}

func TestServiceTransaction(t *testing.T) {
	ctx := context.Background()
	svc := saovietapi.NewCustomerService()
	clearService(t, svc)

	t.Run("Should keep the store unchanged when the unit fails halfway", func(t *testing.T) {
		first := models.ToCustomer(&models.CustomerPayload{ID: "tx-dup", Name: "First"})
		second := models.ToCustomer(&models.CustomerPayload{ID: "tx-dup", Name: "Second"})

		err := svc.Transaction(ctx, func(ctx context.Context) error {
			if err := svc.Save(ctx, first); err != nil {
				return err
			}
			return svc.Save(ctx, second)
		})
		require.Error(t, err)
		require.ErrorIs(t, err, database.ErrDuplicateKey)

		all, err := svc.All(ctx)
		require.NoError(t, err)
		require.Empty(t, all)
	})

	t.Run("Should commit the unit's writes together", func(t *testing.T) {
		err := svc.Transaction(ctx, func(ctx context.Context) error {
			if err := svc.Save(ctx, models.ToCustomer(&models.CustomerPayload{Name: "One"})); err != nil {
				return err
			}
			return svc.Save(ctx, models.ToCustomer(&models.CustomerPayload{Name: "Two"}))
		})
		require.NoError(t, err)

		all, err := svc.All(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
	})
}

func TestTeacherReferenceGate(t *testing.T) {
	ctx := context.Background()
	customers := saovietapi.NewCustomerService()
	teachers := saovietapi.NewTeacherService()
	clearService(t, teachers)
	clearService(t, customers)

	sponsor := models.ToCustomer(&models.CustomerPayload{Name: "Sponsor"})
	require.NoError(t, customers.Save(ctx, sponsor))

	validator := validation.NewTeacherValidator(customers.Repository())

	t.Run("Should admit a teacher tied to an existing customer", func(t *testing.T) {
		payload := &models.TeacherPayload{Name: "Taylor", CustomerID: sponsor.ID}
		ok, err := validator.Validate(ctx, payload)
		require.True(t, ok)
		require.NoError(t, err)

		taylor := models.ToTeacher(payload)
		require.NoError(t, teachers.Save(ctx, taylor))

		stored, err := teachers.Get(ctx, taylor.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		require.NotNil(t, stored.CustomerID)
		require.Equal(t, sponsor.ID, *stored.CustomerID)
	})

	t.Run("Should reject a teacher tied to a missing customer", func(t *testing.T) {
		payload := &models.TeacherPayload{Name: "Jordan", CustomerID: "ghost"}
		ok, err := validator.Validate(ctx, payload)
		require.False(t, ok)
		require.ErrorIs(t, err, validation.ErrValidationFailed)
		require.ErrorContains(t, err, "ghost")
	})

	t.Run("Should admit a teacher with no customer at all", func(t *testing.T) {
		ok, err := validator.Validate(ctx, &models.TeacherPayload{Name: "Morgan"})
		require.True(t, ok)
		require.NoError(t, err)
	})
}
