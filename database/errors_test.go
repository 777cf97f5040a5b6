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
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"

	"github.com/toolkitcore/SaoVietAPI/database"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want database.ErrorKind
	}{
		{"mysql duplicate entry", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'x' for key 'PRIMARY'"}, database.KindDuplicateKey},
		{"mysql missing parent row", &mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"}, database.KindForeignKeyViolation},
		{"mysql referenced row in use", &mysql.MySQLError{Number: 1451, Message: "Cannot delete or update a parent row"}, database.KindForeignKeyViolation},
		{"mysql null column", &mysql.MySQLError{Number: 1048, Message: "Column 'name' cannot be null"}, database.KindNotNullViolation},
		{"mysql check constraint", &mysql.MySQLError{Number: 3819, Message: "Check constraint 'chk' is violated"}, database.KindCheckConstraintViolation},
		{"mysql data truncated", &mysql.MySQLError{Number: 1265, Message: "Data truncated for column 'phone'"}, database.KindDataTruncated},
		{"mysql missing table", &mysql.MySQLError{Number: 1146, Message: "Table 'db.missing' doesn't exist"}, database.KindNoTable},
		{"mysql table exists", &mysql.MySQLError{Number: 1050, Message: "Table 'customers' already exists"}, database.KindTableExists},
		{"mysql unrecognized number", &mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}, database.KindUnknown},
		{"bad connection", driver.ErrBadConn, database.KindConnectionFailed},
		{"postgres unique sqlstate", errors.New(`ERROR: duplicate key value violates unique constraint "customers_pkey" (SQLSTATE 23505)`), database.KindDuplicateKey},
		{"postgres foreign key sqlstate", errors.New(`ERROR: insert or update on table "teachers" violates foreign key constraint (SQLSTATE 23503)`), database.KindForeignKeyViolation},
		{"sqlite unique constraint", errors.New("constraint failed: UNIQUE constraint failed: customers.id (1555)"), database.KindDuplicateKey},
		{"sqlite foreign key constraint", errors.New("constraint failed: FOREIGN KEY constraint failed (787)"), database.KindForeignKeyViolation},
		{"sqlite missing table", errors.New("SQL logic error: no such table: missing (1)"), database.KindNoTable},
		{"connection refused", errors.New("dial tcp 127.0.0.1:3306: connect: connection refused"), database.KindConnectionFailed},
		{"unrelated error", errors.New("something else went wrong"), database.KindUnknown},
		{"nil error", nil, database.KindUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, database.KindOf(tc.err))
		})
	}
}

func TestClassify(t *testing.T) {
	t.Run("Should pass nil through", func(t *testing.T) {
		require.NoError(t, database.Classify(nil))
	})

	t.Run("Should pass no-rows through untouched", func(t *testing.T) {
		err := database.Classify(sql.ErrNoRows)
		require.Equal(t, sql.ErrNoRows, err)
		require.False(t, database.IsStorageFailure(err))
	})

	t.Run("Should mark duplicate keys and keep the driver error in the chain", func(t *testing.T) {
		cause := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'x' for key 'PRIMARY'"}
		err := database.Classify(cause)
		require.ErrorIs(t, err, database.ErrDuplicateKey)
		require.True(t, database.IsDuplicateKey(err))

		var mysqlErr *mysql.MySQLError
		require.ErrorAs(t, err, &mysqlErr)
		require.Equal(t, uint16(1062), mysqlErr.Number)
	})

	t.Run("Should mark foreign key rejections as referential violations", func(t *testing.T) {
		cause := errors.New("constraint failed: FOREIGN KEY constraint failed (787)")
		err := database.Classify(cause)
		require.ErrorIs(t, err, database.ErrReferentialViolation)
		require.True(t, database.IsReferentialViolation(err))
		require.ErrorIs(t, err, cause)
	})

	t.Run("Should fold everything else into a storage failure", func(t *testing.T) {
		cause := errors.New("disk I/O error")
		err := database.Classify(cause)
		require.ErrorIs(t, err, database.ErrStorageFailure)
		require.True(t, database.IsStorageFailure(err))
		require.ErrorIs(t, err, cause)
	})

	t.Run("Should leave an already classified error alone", func(t *testing.T) {
		once := database.Classify(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
		twice := database.Classify(once)
		require.Equal(t, once, twice)
	})
}

func TestErrorKindString(t *testing.T) {
	require.Equal(t, "duplicate_key", database.KindDuplicateKey.String())
	require.Equal(t, "foreign_key_violation", database.KindForeignKeyViolation.String())
	require.Equal(t, "unknown", database.KindUnknown.String())
}
