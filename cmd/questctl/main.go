package main

import (
	"fmt"
	"os"

	"github.com/benvon/questlog/cmd/questctl/commands"
)

func main() {
	if err := commands.NewRootCmd(commands.OpenRedisStore).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
