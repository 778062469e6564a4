package main

import (
	"os"

	"github.com/aishell/cli/cmd/aish/cli"
)

func main() {
	os.Exit(cli.Execute())
}
