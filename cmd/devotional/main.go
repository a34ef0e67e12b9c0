// Package main provides the devotional CLI and HTTP server.
package main

import "github.com/mesh-intelligence/devotional/internal/cli"

func main() {
	cli.Execute()
}
