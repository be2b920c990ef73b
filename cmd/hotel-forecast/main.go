package main

import (
	"fmt"
	"hotel-forecast/cmd/hotel-forecast/commands"
	"os"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
