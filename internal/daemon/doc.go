// Package daemon supervises the picvoice process: it enforces
// single-instance execution with a file lock, owns the store and HTTP
// server lifecycles, and reports runtime status.
package daemon
