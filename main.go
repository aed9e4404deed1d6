package main

import (
	"os"

	"github.com/mkervran/bikefleet/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
