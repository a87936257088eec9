// Command dex is a local-first task tracker with a GitHub Issues mirror.
package main

import (
	"os"

	"github.com/dexcli/dex/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
