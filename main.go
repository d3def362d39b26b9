package main

import (
	"os"

	"github.com/afuente/examly/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
