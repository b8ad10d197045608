package main

import (
	"os"

	"github.com/shiwano/errorx/cmd/errorx/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
