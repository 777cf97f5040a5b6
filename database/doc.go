// Package database manages the storage connection and everything that
// surrounds it: dialect setup and pooling, health checks, startup
// bootstrap (tables, foreign keys, seed data), storage error
// classification, and the transaction executor that carries the ambient
// transaction through a context. Built on top of Bun.
package database
