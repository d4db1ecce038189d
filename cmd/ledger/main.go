package main

import (
	"os"

	"github.com/rustyeddy/ledger/cmd/ledger/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
