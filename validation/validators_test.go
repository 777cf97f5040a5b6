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

package validation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/toolkitcore/SaoVietAPI/models"
	"github.com/toolkitcore/SaoVietAPI/types"
	"github.com/toolkitcore/SaoVietAPI/validation"
)

type stubSource struct {
	ids types.IDSet
	err error
}

func (s *stubSource) GetAllIds(context.Context) (types.IDSet, error) {
	return s.ids, s.err
}

func TestBranchValidator(t *testing.T) {
	ctx := context.Background()
	validator := validation.NewBranchValidator()

	t.Run("Should accept a named branch with an address", func(t *testing.T) {
		ok, err := validator.Validate(ctx, &models.BranchPayload{Name: "Main Campus", Address: "12 Nguyen Hue"})
		require.True(t, ok)
		require.NoError(t, err)
	})

	t.Run("Should require a name after trimming", func(t *testing.T) {
		ok, err := validator.Validate(ctx, &models.BranchPayload{Name: "   ", Address: "12 Nguyen Hue"})
		require.False(t, ok)
		require.ErrorIs(t, err, validation.ErrValidationFailed)
		require.ErrorContains(t, err, "name")
	})

	t.Run("Should require an address", func(t *testing.T) {
		ok, err := validator.Validate(ctx, &models.BranchPayload{Name: "Main Campus", Address: " "})
		require.False(t, ok)
		require.ErrorIs(t, err, validation.ErrValidationFailed)
		require.ErrorContains(t, err, "address")
	})
}

func TestCustomerValidator(t *testing.T) {
	ctx := context.Background()
	validator := validation.NewCustomerValidator()

	t.Run("Should accept a name with blank optional fields", func(t *testing.T) {
		ok, err := validator.Validate(ctx, &models.CustomerPayload{Name: "Alice"})
		require.True(t, ok)
		require.NoError(t, err)
	})

	t.Run("Should accept a well formed email", func(t *testing.T) {
		ok, err := validator.Validate(ctx, &models.CustomerPayload{Name: "Alice", Email: "user@example.com"})
		require.True(t, ok)
		require.NoError(t, err)
	})

	t.Run("Should reject a malformed email", func(t *testing.T) {
		ok, err := validator.Validate(ctx, &models.CustomerPayload{Name: "Alice", Email: "abc"})
		require.False(t, ok)
		require.ErrorIs(t, err, validation.ErrValidationFailed)
		require.ErrorContains(t, err, "email")
	})

	t.Run("Should accept a ten digit phone", func(t *testing.T) {
		ok, err := validator.Validate(ctx, &models.CustomerPayload{Name: "Alice", Phone: "0123456789"})
		require.True(t, ok)
		require.NoError(t, err)
	})

	t.Run("Should reject a short phone", func(t *testing.T) {
		ok, err := validator.Validate(ctx, &models.CustomerPayload{Name: "Alice", Phone: "12345"})
		require.False(t, ok)
		require.ErrorIs(t, err, validation.ErrValidationFailed)
		require.ErrorContains(t, err, "phone")
	})

	t.Run("Should reject a phone with letters", func(t *testing.T) {
		ok, err := validator.Validate(ctx, &models.CustomerPayload{Name: "Alice", Phone: "01234abcde"})
		require.False(t, ok)
		require.ErrorIs(t, err, validation.ErrValidationFailed)
	})

	t.Run("Should stop at the first failing rule", func(t *testing.T) {
		ok, err := validator.Validate(ctx, &models.CustomerPayload{Name: " ", Email: "abc"})
		require.False(t, ok)
		require.ErrorContains(t, err, "name")
	})
}

func TestTeacherValidator(t *testing.T) {
	ctx := context.Background()

	t.Run("Should accept an empty customer reference without a source", func(t *testing.T) {
		validator := validation.NewTeacherValidator(nil)
		ok, err := validator.Validate(ctx, &models.TeacherPayload{Name: "Taylor"})
		require.True(t, ok)
		require.NoError(t, err)
	})

	t.Run("Should accept a reference to an existing customer", func(t *testing.T) {
		validator := validation.NewTeacherValidator(&stubSource{ids: types.NewIDSet("c-1", "c-2")})
		ok, err := validator.Validate(ctx, &models.TeacherPayload{Name: "Taylor", CustomerID: "c-1"})
		require.True(t, ok)
		require.NoError(t, err)
	})

	t.Run("Should reject a reference to a missing customer", func(t *testing.T) {
		validator := validation.NewTeacherValidator(&stubSource{ids: types.NewIDSet("c-1")})
		ok, err := validator.Validate(ctx, &models.TeacherPayload{Name: "Taylor", CustomerID: "c-9"})
		require.False(t, ok)
		require.ErrorIs(t, err, validation.ErrValidationFailed)
		require.ErrorContains(t, err, "c-9")
	})

	t.Run("Should fail closed when the reference source errors", func(t *testing.T) {
		cause := errors.New("connection lost")
		validator := validation.NewTeacherValidator(&stubSource{err: cause})
		ok, err := validator.Validate(ctx, &models.TeacherPayload{Name: "Taylor", CustomerID: "c-1"})
		require.False(t, ok)
		require.ErrorIs(t, err, validation.ErrValidationFailed)
		require.ErrorIs(t, err, cause)
	})

	t.Run("Should check email and phone before the reference", func(t *testing.T) {
		validator := validation.NewTeacherValidator(&stubSource{err: errors.New("must not be reached")})
		ok, err := validator.Validate(ctx, &models.TeacherPayload{Name: "Taylor", Email: "abc", CustomerID: "c-1"})
		require.False(t, ok)
		require.ErrorContains(t, err, "email")
	})
}

func TestRules(t *testing.T) {
	t.Run("Should require text to survive trimming", func(t *testing.T) {
		require.False(t, validation.Required(""))
		require.False(t, validation.Required("   "))
		require.True(t, validation.Required("x"))
	})

	t.Run("Should fail closed on a canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.False(t, validation.IsValidEmail(ctx, "user@example.com"))
	})

	t.Run("Should match emails and phones", func(t *testing.T) {
		ctx := context.Background()
		require.True(t, validation.IsValidEmail(ctx, "user@example.com"))
		require.True(t, validation.IsValidEmail(ctx, "first.last+tag@sub.domain.org"))
		require.False(t, validation.IsValidEmail(ctx, "abc"))
		require.False(t, validation.IsValidEmail(ctx, "user@host"))
		require.True(t, validation.IsValidPhone(ctx, "0123456789"))
		require.False(t, validation.IsValidPhone(ctx, "12345"))
		require.False(t, validation.IsValidPhone(ctx, "01234567890"))
	})
}
