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

package validation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/toolkitcore/SaoVietAPI/models"
	"github.com/toolkitcore/SaoVietAPI/types"
)

// ErrValidationFailed marks every rejection reported by a validator. The
// wrapped message carries the first rule that failed.
var ErrValidationFailed = errors.New("validation failed")

// Validator is the admission gate for one payload type. Validate returns
// (true, nil) for an acceptable payload and (false, reason) otherwise,
// with reason matching ErrValidationFailed. Rules run in order and stop at
// the first failure.
type Validator[P any] interface {
	Validate(ctx context.Context, payload *P) (bool, error)
}

// ReferenceSource lists the ids a reference field may point at. Any
// repository satisfies it through GetAllIds.
type ReferenceSource interface {
	GetAllIds(ctx context.Context) (types.IDSet, error)
}

func reject(format string, args ...any) (bool, error) {
	return false, fmt.Errorf("%w: %s", ErrValidationFailed, fmt.Sprintf(format, args...))
}

// BranchValidator admits branch payloads.
type BranchValidator struct{}

func NewBranchValidator() *BranchValidator { return &BranchValidator{} }

func (v *BranchValidator) Validate(_ context.Context, payload *models.BranchPayload) (bool, error) {
	if !Required(payload.Name) {
		return reject("branch name is required")
	}
	if !Required(payload.Address) {
		return reject("branch address is required")
	}
	return true, nil
}

// CustomerValidator admits customer payloads. Email and phone are optional
// but must be well formed when present.
type CustomerValidator struct{}

func NewCustomerValidator() *CustomerValidator { return &CustomerValidator{} }

func (v *CustomerValidator) Validate(ctx context.Context, payload *models.CustomerPayload) (bool, error) {
	if !Required(payload.Name) {
		return reject("customer name is required")
	}
	if email := strings.TrimSpace(payload.Email); email != "" && !IsValidEmail(ctx, email) {
		return reject("email %q is not a valid address", email)
	}
	if phone := strings.TrimSpace(payload.Phone); phone != "" && !IsValidPhone(ctx, phone) {
		return reject("phone %q is not a ten digit number", phone)
	}
	return true, nil
}

// TeacherValidator admits teacher payloads. A customer reference, when
// present, must name an existing customer; a reference that cannot be
// checked is treated as invalid.
type TeacherValidator struct {
	customers ReferenceSource
}

func NewTeacherValidator(customers ReferenceSource) *TeacherValidator {
	return &TeacherValidator{customers: customers}
}

func (v *TeacherValidator) Validate(ctx context.Context, payload *models.TeacherPayload) (bool, error) {
	if !Required(payload.Name) {
		return reject("teacher name is required")
	}
	if email := strings.TrimSpace(payload.Email); email != "" && !IsValidEmail(ctx, email) {
		return reject("email %q is not a valid address", email)
	}
	if phone := strings.TrimSpace(payload.Phone); phone != "" && !IsValidPhone(ctx, phone) {
		return reject("phone %q is not a ten digit number", phone)
	}

	customerID := strings.TrimSpace(payload.CustomerID)
	if customerID == "" {
		return true, nil
	}
	if v.customers == nil {
		return reject("customer %q cannot be checked: no reference source", customerID)
	}
	ids, err := v.customers.GetAllIds(ctx)
	if err != nil {
		// Fail closed: an unverifiable reference does not pass.
		return false, fmt.Errorf("%w: customer %q cannot be checked: %w", ErrValidationFailed, customerID, err)
	}
	if !ids.Contains(customerID) {
		return reject("customer %q does not exist", customerID)
	}
	return true, nil
}
