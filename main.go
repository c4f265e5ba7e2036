// main is the entry point of the sonar-cli command.
package main

import (
	"fmt"
	"os"

	"github.com/huangsam/sonar-cli/cmd"
	"github.com/subosito/gotenv"
)

func main() {
	// A .env file in the working directory is optional.
	_ = gotenv.Load()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
