// Package local is a self-contained identity and profile backend on an
// embedded SQLite database. It exists for development and tests, where
// pointing at a hosted project is overkill; the session and event semantics
// match the hosted adapter.
package local
