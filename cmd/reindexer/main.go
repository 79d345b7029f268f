// Command reindexer rebuilds the producers and products search indices.
package main

import (
	"os"

	"github.com/dmitrymomot/reindexer/cmd/reindexer/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
