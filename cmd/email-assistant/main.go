// Email assistant exposes the email agent tools over the Model Context
// Protocol and renders emails and tool calls for review.
package main

import (
	"os"
)

// version is set at build time.
var version = "dev"

func main() {
	root := newRootCmd()
	root.Version = version

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
