package main

import (
	"os"

	"github.com/arthur-debert/confsynth/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
