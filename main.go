// Package main provides the entry point for the scimrename CLI tool.
// It delegates execution to the cmd package.
package main

import (
	"scimrename/cmd"
)

func main() {
	cmd.Execute()
}
