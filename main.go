package main

import (
	"os"

	"github.com/guilhermegouw/socchat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
