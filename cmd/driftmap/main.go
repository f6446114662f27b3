// Command driftmap renders and inspects map marker icons.
package main

import (
	"os"

	"github.com/go-drift/driftmap/cmd/driftmap/cmd"
)

func main() {
	if err := cmd.Execute(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
