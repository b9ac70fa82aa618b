package main

import (
	"os"

	"github.com/rctandrade/jobfitia-train-interview/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
