// Command querymix compiles textual queries into SQL, MongoDB and
// Elasticsearch constraints.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/querymix/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// stdout carries the formatted response; the summary goes to stderr
		fmt.Fprintln(os.Stderr, "querymix:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
