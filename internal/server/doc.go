// Package server exposes the picvoice HTTP surface: image uploads,
// gallery queries, tagging, annotation creation, and static serving of
// stored media for the configured account.
package server
