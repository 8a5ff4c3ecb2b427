// Package database provides connection pool management for PostgreSQL.
//
// The pool backs the Postgres snapshot store, which keeps every refreshed
// snapshot for later comparison.
package database
