package main

import (
	"os"

	"lineage/internal/ui/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
