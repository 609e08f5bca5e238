// Command repairhub is the operator CLI: serve, migrate, seed, inspect orders and
// run workers.
package main

import (
	"os"

	"github.com/Additional-Code/repairhub/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
