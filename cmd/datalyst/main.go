// Command datalyst is the Datalyst personal data analyst CLI.
package main

import (
	"os"

	"github.com/datalyst-labs/datalyst/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
