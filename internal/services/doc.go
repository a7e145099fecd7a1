// Package services defines the shared error taxonomy for picvoice
// components and the mapping from classified errors to HTTP statuses.
//
// Components tag failures with one of the sentinel markers (validation,
// not-found, external tool, timeout, storage) via Wrap; the HTTP surface
// translates the marker into a response status without inspecting message
// text.
package services
