// Package store persists picvoice metadata in SQLite: users, uploaded
// images, audio annotations, tags, and tag-to-image associations.
//
// The Store manages the database connection, schema initialization, and
// every query the server and CLI perform. Operations are request-scoped:
// no state is held between calls beyond the connection itself. Images are
// soft-deleted (flagged, never dropped) so annotation history stays
// coherent; annotations and tags are hard-deleted.
//
// Treat this package as the single source of truth for data-model
// semantics; schema changes go into schema.sql with a schemaVersion bump.
package store
