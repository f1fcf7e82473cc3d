// Package main provides the gnclade CLI application.
package main

import "github.com/gnames/gnclade/cmd"

func main() {
	cmd.Execute()
}
