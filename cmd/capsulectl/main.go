// Command capsulectl is the operator tool for the time capsule server:
// schema migrations, one-shot expiration sweeps and account provisioning.
package main

import (
	"fmt"
	"os"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	app := newCLIApp(defaultEnv())
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
