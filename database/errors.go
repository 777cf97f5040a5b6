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
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// Storage errors are classified into three sentinels. Callers match them
// with errors.Is; the original driver error stays in the chain. Absence of
// a record is never an error and is reported as a nil result instead.
var (
	// ErrDuplicateKey reports a write that collided with an existing
	// primary key or unique index.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrReferentialViolation reports a write rejected by a foreign key
	// constraint.
	ErrReferentialViolation = errors.New("referential violation")

	// ErrStorageFailure covers every other storage-level failure.
	ErrStorageFailure = errors.New("storage failure")
)

// ErrorKind labels the storage failure categories recognized across the
// supported engines.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindDuplicateKey
	KindForeignKeyViolation
	KindNotNullViolation
	KindCheckConstraintViolation
	KindDataTruncated
	KindNoTable
	KindTableExists
	KindConnectionFailed
)

func (k ErrorKind) String() string {
	switch k {
	case KindDuplicateKey:
		return "duplicate_key"
	case KindForeignKeyViolation:
		return "foreign_key_violation"
	case KindNotNullViolation:
		return "not_null_violation"
	case KindCheckConstraintViolation:
		return "check_constraint_violation"
	case KindDataTruncated:
		return "data_truncated"
	case KindNoTable:
		return "no_table"
	case KindTableExists:
		return "table_exists"
	case KindConnectionFailed:
		return "connection_failed"
	default:
		return "unknown"
	}
}

// KindOf inspects a driver error and returns its category. MySQL errors are
// matched by number, other engines by SQLSTATE or message fragment.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case 1062:
			return KindDuplicateKey
		case 1216, 1217, 1451, 1452:
			return KindForeignKeyViolation
		case 1048:
			return KindNotNullViolation
		case 3819:
			return KindCheckConstraintViolation
		case 1265:
			return KindDataTruncated
		case 1146:
			return KindNoTable
		case 1050:
			return KindTableExists
		default:
			return KindUnknown
		}
	}
	if errors.Is(err, driver.ErrBadConn) {
		return KindConnectionFailed
	}

	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "duplicate key value") ||
		strings.Contains(s, "unique constraint failed") ||
		strings.Contains(s, "sqlstate 23505"):
		return KindDuplicateKey
	case strings.Contains(s, "foreign key violation") ||
		strings.Contains(s, "foreign key constraint failed") ||
		strings.Contains(s, "violates foreign key constraint") ||
		strings.Contains(s, "sqlstate 23503"):
		return KindForeignKeyViolation
	case strings.Contains(s, "not-null constraint") ||
		strings.Contains(s, "not null constraint failed") ||
		strings.Contains(s, "sqlstate 23502"):
		return KindNotNullViolation
	case strings.Contains(s, "check constraint") ||
		strings.Contains(s, "sqlstate 23514"):
		return KindCheckConstraintViolation
	case strings.Contains(s, "string data right truncation") ||
		strings.Contains(s, "data truncated") ||
		strings.Contains(s, "sqlstate 22001"):
		return KindDataTruncated
	case strings.Contains(s, "sqlstate 42p01") ||
		strings.Contains(s, "undefined table") ||
		strings.Contains(s, "no such table"):
		return KindNoTable
	case strings.Contains(s, "already exists") &&
		(strings.Contains(s, "table") || strings.Contains(s, "relation")):
		return KindTableExists
	case strings.Contains(s, "connection refused") ||
		strings.Contains(s, "bad connection"):
		return KindConnectionFailed
	default:
		return KindUnknown
	}
}

// Classify wraps a storage error with its sentinel. Nil and sql.ErrNoRows
// pass through unchanged, as do errors already carrying a sentinel.
func Classify(err error) error {
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if errors.Is(err, ErrDuplicateKey) || errors.Is(err, ErrReferentialViolation) || errors.Is(err, ErrStorageFailure) {
		return err
	}
	switch KindOf(err) {
	case KindDuplicateKey:
		return fmt.Errorf("%w: %w", ErrDuplicateKey, err)
	case KindForeignKeyViolation:
		return fmt.Errorf("%w: %w", ErrReferentialViolation, err)
	default:
		return fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}
}

// IsDuplicateKey reports whether err carries the duplicate key sentinel.
func IsDuplicateKey(err error) bool {
	return errors.Is(err, ErrDuplicateKey)
}

// IsReferentialViolation reports whether err carries the referential
// violation sentinel.
func IsReferentialViolation(err error) bool {
	return errors.Is(err, ErrReferentialViolation)
}

// IsStorageFailure reports whether err carries the storage failure sentinel.
func IsStorageFailure(err error) bool {
	return errors.Is(err, ErrStorageFailure)
}
