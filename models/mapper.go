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

import "strings"

// The mappers translate between payloads and entities field by field. Text
// fields are trimmed on the way in; an id left blank stays blank so the
// insert hook can generate one.

// ToBranch maps a payload onto a storable branch.
func ToBranch(p *BranchPayload) *Branch {
	return &Branch{
		ID:      strings.TrimSpace(p.ID),
		Name:    strings.TrimSpace(p.Name),
		Address: strings.TrimSpace(p.Address),
	}
}

// ToBranchPayload maps a stored branch back to its transport shape.
func ToBranchPayload(b *Branch) *BranchPayload {
	return &BranchPayload{
		ID:      b.ID,
		Name:    b.Name,
		Address: b.Address,
	}
}

// ToCustomer maps a payload onto a storable customer.
func ToCustomer(p *CustomerPayload) *Customer {
	return &Customer{
		ID:    strings.TrimSpace(p.ID),
		Name:  strings.TrimSpace(p.Name),
		Email: strings.TrimSpace(p.Email),
		Phone: strings.TrimSpace(p.Phone),
	}
}

// ToCustomerPayload maps a stored customer back to its transport shape.
func ToCustomerPayload(c *Customer) *CustomerPayload {
	return &CustomerPayload{
		ID:    c.ID,
		Name:  c.Name,
		Email: c.Email,
		Phone: c.Phone,
	}
}

// ToTeacher maps a payload onto a storable teacher. A blank customer id
// maps to no reference at all.
func ToTeacher(p *TeacherPayload) *Teacher {
	teacher := &Teacher{
		ID:    strings.TrimSpace(p.ID),
		Name:  strings.TrimSpace(p.Name),
		Email: strings.TrimSpace(p.Email),
		Phone: strings.TrimSpace(p.Phone),
	}
	if customerID := strings.TrimSpace(p.CustomerID); customerID != "" {
		teacher.CustomerID = &customerID
	}
	return teacher
}

// ToTeacherPayload maps a stored teacher back to its transport shape.
func ToTeacherPayload(t *Teacher) *TeacherPayload {
	payload := &TeacherPayload{
		ID:    t.ID,
		Name:  t.Name,
		Email: t.Email,
		Phone: t.Phone,
	}
	if t.CustomerID != nil {
		payload.CustomerID = *t.CustomerID
	}
	return payload
}
