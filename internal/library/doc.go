// Package library manages the on-disk media tree. Each account owns a
// directory under the configured users root with uploads, outputs, and
// temp subdirectories; all file naming and placement goes through this
// package so the rest of the system never builds media paths by hand.
package library
