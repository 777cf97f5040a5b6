// Package repository provides the typed entity store and the generic
// repository facade built on Bun: id-addressed CRUD, substring search,
// pagination, and upsert, with classified storage errors and transparent
// participation in the ambient transaction.
package repository
