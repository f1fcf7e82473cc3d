// Package gnclade holds version information of the gnclade project.
package gnclade

var (
	// Version of gnclade, set by build flags.
	Version = "v0.1.0"
	// Build timestamp, set by build flags.
	Build = "n/a"
)
