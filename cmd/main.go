package main

import (
	"os"

	"truthschool-funnel/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
