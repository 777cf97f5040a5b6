// Package models defines the persistent entities of the center, their
// inbound payload shapes, and the mappers between the two. Entities
// self-register with the database package so startup can create tables
// and constraints in dependency order.
package models
