// Command flywire runs the demo applications and inspects serialized trees.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/flywire/cmd/flywire/cmd"
)

func main() {
	if err := cmd.Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
