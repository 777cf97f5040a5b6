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
	"regexp"
	"strings"
	"time"
)

// DefaultMatchTimeout bounds a single pattern match. A match that cannot
// finish inside the budget counts as a mismatch.
const DefaultMatchTimeout = 2 * time.Second

var (
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\d{10}$`)
)

// Required reports whether value still holds text after trimming.
func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

// MatchBounded runs pattern against value under DefaultMatchTimeout and the
// caller's context. Cancellation and timeout fail closed.
func MatchBounded(ctx context.Context, pattern *regexp.Regexp, value string) bool {
	if ctx.Err() != nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, DefaultMatchTimeout)
	defer cancel()

	result := make(chan bool, 1)
	go func() { result <- pattern.MatchString(value) }()

	select {
	case matched := <-result:
		return matched
	case <-ctx.Done():
		return false
	}
}

// IsValidEmail reports whether value looks like an email address.
func IsValidEmail(ctx context.Context, value string) bool {
	return MatchBounded(ctx, emailPattern, value)
}

// IsValidPhone reports whether value is a ten digit phone number.
func IsValidPhone(ctx context.Context, value string) bool {
	return MatchBounded(ctx, phonePattern, value)
}
