package main

import (
	"os"

	"github.com/jmllr/ytx/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
